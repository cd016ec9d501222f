package ops

import (
	"errors"
	"fmt"

	"github.com/dot5enko/metatable/metadata"
	"github.com/dot5enko/metatable/schema"
)

var ErrUnsupportedProperty = errors.New("property cannot be filtered")

type Operation uint8

const (
	Equal Operation = iota
	// inclusive on both ends
	InRange
)

// Condition selects rows whose scalar numeric property equals Value, or lies
// within [Value, To] for InRange. Values are in the caller's domain.
type Condition struct {
	Property  string
	Operation Operation
	Value     any
	To        any
}

// Select returns the indices of the rows of table matching every condition, in
// ascending order. No conditions select every row.
func Select(table *metadata.Table, conditions ...Condition) ([]int, error) {

	result := make([]int, table.Count())
	for i := range result {
		result[i] = i
	}

	if len(conditions) == 0 {
		return result, nil
	}

	matches := make([]int, table.Count())
	cache := make(map[int]struct{}, table.Count())

	for _, cond := range conditions {

		filled, err := match(table, cond, matches)
		if err != nil {
			return nil, err
		}

		result = result[:Intersect(result, matches[:filled], result, cache)]

		if len(result) == 0 {
			break
		}
	}

	return result, nil
}

// Stats returns the bounds of a scalar numeric property over every row as seen
// through GetProperty. ok is false when the table has no value for it.
func Stats(table *metadata.Table, id string) (bounds Bounds[float64], ok bool, err error) {

	prop, err := filterable(table, id)
	if err != nil || !table.HasProperty(id) {
		return bounds, false, err
	}

	values, err := column(table, prop, func(v any) (float64, error) {
		f, _ := schema.ToFloat(v)
		return f, nil
	})
	if err != nil {
		return bounds, false, err
	}

	bounds, ok = GetMaxMin(values)
	return bounds, ok, nil
}

func filterable(table *metadata.Table, id string) (*schema.ClassProperty, error) {

	prop, declared := table.Class().Property(id)
	if !declared {
		return nil, fmt.Errorf("%w: class '%s' has no property '%s'", ErrUnsupportedProperty, table.Class().Id, id)
	}

	if prop.IsArray() || prop.IsEnum() || !schema.IsNumeric(prop.Type) {
		return nil, fmt.Errorf("%w: '%s' is %s, only scalar numbers are supported", ErrUnsupportedProperty, id, prop.Type.String())
	}

	return prop, nil
}

func match(table *metadata.Table, cond Condition, out []int) (int, error) {

	prop, err := filterable(table, cond.Property)
	if err != nil {
		return 0, err
	}

	if !table.HasProperty(cond.Property) {
		return 0, nil
	}

	switch {
	case prop.IsNormalized() || table.LosesPrecision(prop.Id) || schema.IsFloat(prop.Type):
		return matchColumn(table, prop, cond, out, func(v any) (float64, error) {
			f, ok := schema.ToFloat(v)
			if !ok {
				return 0, fmt.Errorf("%w: %v is not a number", metadata.ErrTypeMismatch, v)
			}
			return f, nil
		})
	case schema.IsUnsignedInteger(prop.Type):
		return matchColumn(table, prop, cond, out, rawAs[uint64](prop))
	default:
		return matchColumn(table, prop, cond, out, rawAs[int64](prop))
	}
}

// rawAs converts through the property's own validation, so comparands must be
// valid values of the property.
func rawAs[T int64 | uint64](prop *schema.ClassProperty) func(any) (T, error) {
	return func(v any) (T, error) {
		raw, err := prop.CoerceRaw(v)
		if err != nil {
			return 0, err
		}
		return raw.(T), nil
	}
}

func matchColumn[T int64 | uint64 | float64](table *metadata.Table, prop *schema.ClassProperty, cond Condition, out []int, convert func(any) (T, error)) (int, error) {

	from, err := convert(cond.Value)
	if err != nil {
		return 0, fmt.Errorf("condition on '%s': %w", prop.Id, err)
	}

	values, err := column(table, prop, convert)
	if err != nil {
		return 0, err
	}

	switch cond.Operation {
	case Equal:
		return MatchEqual(values, from, out), nil
	case InRange:
		to, err := convert(cond.To)
		if err != nil {
			return 0, fmt.Errorf("condition on '%s': %w", prop.Id, err)
		}
		return MatchRange(values, from, to, out), nil
	}

	return 0, fmt.Errorf("unknown operation %d", cond.Operation)
}

func column[T int64 | uint64 | float64](table *metadata.Table, prop *schema.ClassProperty, convert func(any) (T, error)) ([]T, error) {

	values := make([]T, table.Count())

	for i := range values {
		v, err := table.GetProperty(i, prop.Id)
		if err != nil {
			return nil, err
		}

		typed, ok := v.(T)
		if !ok {
			if typed, err = convert(v); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		values[i] = typed
	}

	return values, nil
}

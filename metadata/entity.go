package metadata

import (
	"fmt"
	"iter"

	"github.com/dot5enko/metatable/schema"
)

// Entity is anything holding property values of a class: a single Instance or
// one Row of a Table.
type Entity interface {
	HasProperty(id string) bool
	// PropertyIds reuses results and returns it resliced.
	PropertyIds(results []string) []string
	GetProperty(id string) (any, error)
	SetProperty(id string, value any) error
	GetPropertyBySemantic(semantic string) (any, error)
	SetPropertyBySemantic(semantic string, value any) error
}

var (
	_ Entity = (*Instance)(nil)
	_ Entity = (*Row)(nil)
)

// propertySource is the entity's own property set, on top of the class defaults.
type propertySource interface {
	defines(id string) bool
	definedIds() iter.Seq[string]
}

func hasProperty(class *schema.Class, source propertySource, id string) bool {
	if source.defines(id) {
		return true
	}

	prop, declared := class.Property(id)
	return declared && prop.Default != nil
}

func propertyIds(class *schema.Class, source propertySource, results []string) []string {
	results = results[:0]

	seen := map[string]struct{}{}
	for id := range source.definedIds() {
		seen[id] = struct{}{}
		results = append(results, id)
	}

	if class == nil {
		return results
	}

	for _, prop := range class.Properties {
		if prop.Default == nil {
			continue
		}
		if _, overridden := seen[prop.Id]; overridden {
			continue
		}
		results = append(results, prop.Id)
	}

	return results
}

// presentValue turns a stored raw value into what callers get back: normalized
// when the property is normalized, a fresh copy for arrays.
func presentValue(prop *schema.ClassProperty, value any) any {
	if value == nil {
		return nil
	}
	if prop != nil && prop.IsNormalized() {
		return schema.NormalizeValue(value, prop.ValueType())
	}
	return schema.CloneValue(value)
}

// Instance is a single entity holding its own property values over a class.
type Instance struct {
	class *schema.Class

	// created on first write
	values map[string]any
	order  []string
}

func NewInstance(class *schema.Class) *Instance {
	return &Instance{class: class}
}

func (e *Instance) Class() *schema.Class {
	return e.class
}

func (e *Instance) defines(id string) bool {
	return e.values[id] != nil
}

func (e *Instance) definedIds() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, id := range e.order {
			if e.values[id] == nil {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

func (e *Instance) HasProperty(id string) bool {
	return hasProperty(e.class, e, id)
}

func (e *Instance) PropertyIds(results []string) []string {
	return propertyIds(e.class, e, results)
}

func (e *Instance) GetProperty(id string) (any, error) {
	prop, _ := e.class.Property(id)

	value, ok := e.values[id]
	if !ok && prop != nil {
		value = prop.Default
	}

	return presentValue(prop, value), nil
}

func (e *Instance) SetProperty(id string, value any) error {
	if value == nil {
		return fmt.Errorf("%w: value of property '%s' is nil", ErrInvalidArgument, id)
	}

	var stored any

	if prop, declared := e.class.Property(id); declared {
		coerced, err := prop.CoerceValue(value)
		if err != nil {
			return fmt.Errorf("property '%s': %w", id, err)
		}
		stored = coerced
	} else {
		stored = schema.CloneValue(value)
	}

	if e.values == nil {
		e.values = map[string]any{}
	}

	if _, exists := e.values[id]; !exists {
		e.order = append(e.order, id)
	}
	e.values[id] = stored

	return nil
}

func (e *Instance) GetPropertyBySemantic(semantic string) (any, error) {
	prop, ok := e.class.PropertyBySemantic(semantic)
	if !ok {
		return nil, nil
	}
	return e.GetProperty(prop.Id)
}

func (e *Instance) SetPropertyBySemantic(semantic string, value any) error {
	prop, ok := e.class.PropertyBySemantic(semantic)
	if !ok {
		return nil
	}
	return e.SetProperty(prop.Id, value)
}

// Row is the Entity view of one table row.
type Row struct {
	table *Table
	index int
}

func (r *Row) Index() int {
	return r.index
}

func (r *Row) HasProperty(id string) bool {
	return r.table.HasProperty(id)
}

func (r *Row) PropertyIds(results []string) []string {
	return r.table.PropertyIds(results)
}

func (r *Row) GetProperty(id string) (any, error) {
	return r.table.GetProperty(r.index, id)
}

func (r *Row) SetProperty(id string, value any) error {
	return r.table.SetProperty(r.index, id, value)
}

func (r *Row) GetPropertyBySemantic(semantic string) (any, error) {
	return r.table.GetPropertyBySemantic(r.index, semantic)
}

func (r *Row) SetPropertyBySemantic(semantic string, value any) error {
	return r.table.SetPropertyBySemantic(r.index, semantic, value)
}

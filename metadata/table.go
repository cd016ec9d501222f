package metadata

import (
	"fmt"
	"iter"

	"github.com/dot5enko/metatable/bufferview"
	"github.com/dot5enko/metatable/schema"
	"github.com/google/uuid"
)

type TableOptions struct {
	Count       int
	Class       *schema.Class
	Properties  map[string]PropertyBinding
	BufferViews map[int][]byte

	// nil uses bufferview.DefaultHost
	Host *bufferview.Host
	// generated when zero
	Uid uuid.UUID
}

// Table gives per-row access to the properties of count entities of one class,
// reading straight from the packed buffers until an edit forces a column to unpack.
type Table struct {
	uid   uuid.UUID
	count int
	class *schema.Class
	host  *bufferview.Host

	properties map[string]*TableProperty
	// bound property ids in class order
	order []string
}

func NewTable(options TableOptions) (*Table, error) {

	if options.Count < 1 {
		return nil, fmt.Errorf("%w: table row count must be positive, got %d", ErrInvalidArgument, options.Count)
	}

	if options.Class == nil {
		return nil, fmt.Errorf("%w: table class is required", ErrInvalidArgument)
	}

	uid := options.Uid
	if uid == uuid.Nil {
		uid = uuid.New()
	}

	host := options.Host
	if host == nil {
		host = bufferview.DefaultHost()
	}

	for id := range options.Properties {
		if _, declared := options.Class.Property(id); !declared {
			return nil, fmt.Errorf("%w: class '%s' does not declare property '%s'", ErrInvalidArgument, options.Class.Id, id)
		}
	}

	result := &Table{
		uid:        uid,
		count:      options.Count,
		class:      options.Class,
		host:       host,
		properties: make(map[string]*TableProperty, len(options.Properties)),
	}

	for _, prop := range options.Class.Properties {
		binding, bound := options.Properties[prop.Id]
		if !bound {
			continue
		}

		tableProperty, err := newTableProperty(uid, options.Count, prop, binding, options.BufferViews, host)
		if err != nil {
			return nil, err
		}

		result.properties[prop.Id] = tableProperty
		result.order = append(result.order, prop.Id)
	}

	return result, nil
}

func (t *Table) Uid() uuid.UUID {
	return t.uid
}

func (t *Table) Count() int {
	return t.count
}

func (t *Table) Class() *schema.Class {
	return t.class
}

func (t *Table) Host() *bufferview.Host {
	return t.host
}

// Property returns the column bound to id, nil when there is none.
func (t *Table) Property(id string) *TableProperty {
	return t.properties[id]
}

// LosesPrecision reports whether reads of id may lose precision on this host.
func (t *Table) LosesPrecision(id string) bool {
	prop, ok := t.properties[id]
	return ok && prop.LosesPrecision()
}

func (t *Table) defines(id string) bool {
	_, ok := t.properties[id]
	return ok
}

func (t *Table) definedIds() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, id := range t.order {
			if !yield(id) {
				return
			}
		}
	}
}

func (t *Table) HasProperty(id string) bool {
	return hasProperty(t.class, t, id)
}

func (t *Table) PropertyIds(results []string) []string {
	return propertyIds(t.class, t, results)
}

func (t *Table) checkIndex(index int) error {
	if index < 0 || index >= t.count {
		return fmt.Errorf("%w: index %d, table has %d rows", ErrIndexOutOfRange, index, t.count)
	}
	return nil
}

func (t *Table) Row(index int) (*Row, error) {
	if err := t.checkIndex(index); err != nil {
		return nil, err
	}
	return &Row{table: t, index: index}, nil
}

// GetProperty returns the value of id for row index, nil when the row has no
// value and the class no default.
func (t *Table) GetProperty(index int, id string) (any, error) {
	if err := t.checkIndex(index); err != nil {
		return nil, err
	}

	classProperty, _ := t.class.Property(id)

	var value any
	if prop, bound := t.properties[id]; bound {
		value = prop.Get(index)
	} else if classProperty != nil {
		value = classProperty.Default
	}

	return presentValue(classProperty, value), nil
}

// SetProperty validates value fully before anything is written. Properties
// without a bound column are silently skipped.
func (t *Table) SetProperty(index int, id string, value any) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}

	prop, bound := t.properties[id]
	if !bound {
		return nil
	}

	if value == nil {
		return fmt.Errorf("%w: value of property '%s' is nil", ErrInvalidArgument, id)
	}

	coerced, err := prop.ClassProperty().CoerceValue(value)
	if err != nil {
		return fmt.Errorf("property '%s', row %d: %w", id, index, err)
	}

	prop.Set(index, coerced)

	return nil
}

func (t *Table) GetPropertyBySemantic(index int, semantic string) (any, error) {
	prop, ok := t.class.PropertyBySemantic(semantic)
	if !ok {
		return nil, nil
	}
	return t.GetProperty(index, prop.Id)
}

func (t *Table) SetPropertyBySemantic(index int, semantic string, value any) error {
	prop, ok := t.class.PropertyBySemantic(semantic)
	if !ok {
		return nil
	}
	return t.SetProperty(index, prop.Id, value)
}

// Rows iterates every row in order.
func (t *Table) Rows() iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		for i := 0; i < t.count; i++ {
			if !yield(i, &Row{table: t, index: i}) {
				return
			}
		}
	}
}

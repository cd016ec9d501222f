package metadata

import (
	"fmt"
	"log"

	"github.com/dot5enko/metatable/bufferview"
	"github.com/dot5enko/metatable/schema"
	"github.com/google/uuid"
)

const DefaultOffsetType = schema.Uint32ValueType

// PropertyBinding names the buffer views holding one property column.
type PropertyBinding struct {
	BufferView             int
	ArrayOffsetBufferView  *int
	StringOffsetBufferView *int

	// width of both offset kinds, the zero value selects DefaultOffsetType
	OffsetType schema.ValueType
}

func (b PropertyBinding) offsetType() (schema.ValueType, error) {
	switch {
	case b.OffsetType == schema.NoValueType:
		return DefaultOffsetType, nil
	case b.OffsetType.IsOffsetType():
		return b.OffsetType, nil
	}
	return schema.NoValueType, fmt.Errorf("%w: %s is not an offset type", ErrInvalidArgument, b.OffsetType.String())
}

// column is either packed views over the caller's buffers or boxed values.
type column interface {
	column()
}

type packedColumn struct {
	values        *bufferview.View
	arrayOffsets  *bufferview.View
	stringOffsets *bufferview.View
}

type boxedColumn struct {
	values []any
}

func (*packedColumn) column() {}
func (*boxedColumn) column()  {}

// TableProperty holds the values of one property for every row of a table.
// Values go in and come out in raw canonical form, normalization is the
// table's concern.
type TableProperty struct {
	table         uuid.UUID
	count         int
	classProperty *schema.ClassProperty
	host          *bufferview.Host

	// 64-bit values are read into float64
	degraded bool
	// the column unpacks on first access
	unpackOnAccess bool

	column column
}

func newTableProperty(table uuid.UUID, count int, prop *schema.ClassProperty, binding PropertyBinding, buffers map[int][]byte, host *bufferview.Host) (*TableProperty, error) {

	offsetType, err := binding.offsetType()
	if err != nil {
		return nil, err
	}

	valueType := prop.ValueType()
	isString := prop.ElementType() == schema.StringValueType

	view := func(id int, typ schema.ValueType, length int) (*bufferview.View, error) {
		buf, ok := buffers[id]
		if !ok {
			return nil, fmt.Errorf("%w: property '%s' references missing buffer view %d", ErrInvalidArgument, prop.Id, id)
		}
		v, err := bufferview.New(buf, 0, typ, length, host)
		if err != nil {
			return nil, fmt.Errorf("property '%s', buffer view %d: %w", prop.Id, id, err)
		}
		return v, nil
	}

	packed := &packedColumn{}
	elements := count

	switch {
	case prop.IsVariableSizeArray():
		if binding.ArrayOffsetBufferView == nil {
			return nil, fmt.Errorf("%w: variable size array '%s' has no array offset buffer view", ErrInvalidArgument, prop.Id)
		}
		if packed.arrayOffsets, err = view(*binding.ArrayOffsetBufferView, offsetType, count+1); err != nil {
			return nil, err
		}
		elements = packed.arrayOffsets.Offset(count)
	case prop.IsArray():
		elements = count * prop.ComponentCount
	}

	if isString {
		if binding.StringOffsetBufferView == nil {
			return nil, fmt.Errorf("%w: string property '%s' has no string offset buffer view", ErrInvalidArgument, prop.Id)
		}
		if packed.stringOffsets, err = view(*binding.StringOffsetBufferView, offsetType, elements+1); err != nil {
			return nil, err
		}
		packed.values, err = view(binding.BufferView, schema.Uint8ValueType, packed.stringOffsets.Offset(elements))
	} else {
		packed.values, err = view(binding.BufferView, valueType, elements)
	}

	if err != nil {
		return nil, err
	}

	return &TableProperty{
		table:          table,
		count:          count,
		classProperty:  prop,
		host:           host,
		degraded:       host.Degraded(valueType),
		unpackOnAccess: isString || host.SlowPath(valueType),
		column:         packed,
	}, nil
}

func (p *TableProperty) ClassProperty() *schema.ClassProperty {
	return p.classProperty
}

func (p *TableProperty) Count() int {
	return p.count
}

func (p *TableProperty) IsUnpacked() bool {
	_, boxed := p.column.(*boxedColumn)
	return boxed
}

// Degraded reports whether 64-bit values of this property come back as float64.
func (p *TableProperty) Degraded() bool {
	return p.degraded && !p.classProperty.IsEnum()
}

// LosesPrecision reports whether the stored codes pass through float64 on this
// host. Enums still read as names but codes beyond 2^53-1 round on the way.
func (p *TableProperty) LosesPrecision() bool {
	return p.degraded
}

// Unpack decodes every row into boxed values and drops the packed views.
func (p *TableProperty) Unpack() {
	packed, ok := p.column.(*packedColumn)
	if !ok {
		return
	}

	values := make([]any, p.count)
	for i := range values {
		values[i] = p.readPacked(packed, i)
	}

	p.column = &boxedColumn{values: values}

	log.Printf("table %s: unpacked property '%s' (%d rows)", p.table.String(), p.classProperty.Id, p.count)
}

// Get returns row i. Arrays are always fresh slices.
func (p *TableProperty) Get(i int) any {
	if p.unpackOnAccess {
		p.Unpack()
	}

	switch c := p.column.(type) {
	case *boxedColumn:
		return schema.CloneValue(c.values[i])
	case *packedColumn:
		return p.readPacked(c, i)
	}
	return nil
}

// Set stores row i. value must be validated raw canonical input, arrays are
// owned by the property afterwards.
func (p *TableProperty) Set(i int, value any) {
	if p.unpackOnAccess {
		p.Unpack()
	}

	if packed, ok := p.column.(*packedColumn); ok && p.classProperty.IsVariableSizeArray() {
		start, end := p.elementRange(packed, i)
		if len(elementsOf(value)) != end-start {
			p.Unpack()
		}
	}

	switch c := p.column.(type) {
	case *boxedColumn:
		if p.Degraded() {
			value = schema.DegradeValue(value)
		}
		c.values[i] = value
	case *packedColumn:
		p.writePacked(c, i, value)
	}
}

func (p *TableProperty) elementRange(c *packedColumn, i int) (start, end int) {
	prop := p.classProperty

	switch {
	case prop.IsVariableSizeArray():
		return c.arrayOffsets.Offset(i), c.arrayOffsets.Offset(i + 1)
	case prop.IsArray():
		start = i * prop.ComponentCount
		return start, start + prop.ComponentCount
	}
	return i, i + 1
}

func (p *TableProperty) readPacked(c *packedColumn, i int) any {
	start, end := p.elementRange(c, i)

	if !p.classProperty.IsArray() {
		return p.readElement(c, start)
	}

	elements := make([]any, 0, end-start)
	for e := start; e < end; e++ {
		elements = append(elements, p.readElement(c, e))
	}

	arrayType := p.classProperty.ElementType()
	if p.Degraded() {
		arrayType = schema.Float64ValueType
	}
	return schema.MakeArray(arrayType, elements)
}

func (p *TableProperty) readElement(c *packedColumn, e int) any {
	prop := p.classProperty

	switch {
	case c.stringOffsets != nil:
		from, to := c.stringOffsets.Offset(e), c.stringOffsets.Offset(e+1)
		return string(c.values.Bytes(from, to))
	case prop.IsEnum():
		name, _ := prop.EnumType.NameByValue(enumCode(c.values.Get(e)))
		return name
	}

	return c.values.Get(e)
}

func (p *TableProperty) writePacked(c *packedColumn, i int, value any) {
	start, _ := p.elementRange(c, i)

	if !p.classProperty.IsArray() {
		p.writeElement(c, start, value)
		return
	}

	for j, el := range elementsOf(value) {
		p.writeElement(c, start+j, el)
	}
}

func (p *TableProperty) writeElement(c *packedColumn, e int, value any) {
	if p.classProperty.IsEnum() {
		code, _ := p.classProperty.EnumType.ValueByName(value.(string))
		c.values.Set(e, code)
		return
	}
	c.values.Set(e, value)
}

func enumCode(raw any) int64 {
	switch t := raw.(type) {
	case int64:
		return t
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	}
	panic(fmt.Sprintf("enum backing value %v (%T) is not an integer", raw, raw))
}

func elementsOf(value any) []any {
	switch t := value.(type) {
	case []int64:
		return boxAll(t)
	case []uint64:
		return boxAll(t)
	case []float64:
		return boxAll(t)
	case []bool:
		return boxAll(t)
	case []string:
		return boxAll(t)
	case []any:
		return t
	}
	return []any{value}
}

func boxAll[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

package packer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dot5enko/metatable/bits"
	"github.com/dot5enko/metatable/bufferview"
	"github.com/dot5enko/metatable/metadata"
	"github.com/dot5enko/metatable/schema"
)

var (
	ErrOffsetOverflow    = errors.New("offset does not fit offset type")
	ErrRowCountMismatch  = errors.New("row count mismatch")
	ErrUnknownProperty   = errors.New("unknown property")
	ErrDuplicateProperty = errors.New("property packed twice")
)

// Packed is the buffer layout of a table, ready for metadata.NewTable.
type Packed struct {
	Class       *schema.Class
	Count       int
	OffsetType  schema.ValueType
	BufferViews map[int][]byte
	Properties  map[string]metadata.PropertyBinding
}

func (p *Packed) Table(host *bufferview.Host) (*metadata.Table, error) {
	return metadata.NewTable(metadata.TableOptions{
		Count:       p.Count,
		Class:       p.Class,
		Properties:  p.Properties,
		BufferViews: p.BufferViews,
		Host:        host,
	})
}

type column struct {
	prop *schema.ClassProperty
	rows []any
}

type Packer struct {
	class      *schema.Class
	count      int
	offsetType schema.ValueType

	columns []column
}

// New starts a layout of count rows. offsetType is used for every array and
// string offset buffer, NoValueType selects metadata.DefaultOffsetType.
func New(class *schema.Class, count int, offsetType schema.ValueType) (*Packer, error) {
	if class == nil {
		return nil, errors.New("packer needs a class")
	}

	if count < 1 {
		return nil, fmt.Errorf("row count must be positive, got %d", count)
	}

	if offsetType == schema.NoValueType {
		offsetType = metadata.DefaultOffsetType
	}

	if !offsetType.IsOffsetType() {
		return nil, fmt.Errorf("%s is not an offset type", offsetType.String())
	}

	return &Packer{
		class:      class,
		count:      count,
		offsetType: offsetType,
	}, nil
}

// AddColumn takes one value per row in the caller's domain, normalized values
// for normalized properties. nil rows take the property default or zero.
func (p *Packer) AddColumn(id string, rows []any) error {
	return p.addColumn(id, rows, true)
}

// AddRawColumn is AddColumn for raw storage values.
func (p *Packer) AddRawColumn(id string, rows []any) error {
	return p.addColumn(id, rows, false)
}

func (p *Packer) addColumn(id string, rows []any, callerDomain bool) error {

	prop, declared := p.class.Property(id)
	if !declared {
		return fmt.Errorf("%w: class '%s' has no property '%s'", ErrUnknownProperty, p.class.Id, id)
	}

	for _, c := range p.columns {
		if c.prop.Id == id {
			return fmt.Errorf("%w: '%s'", ErrDuplicateProperty, id)
		}
	}

	if len(rows) != p.count {
		return fmt.Errorf("%w: property '%s' has %d rows, expected %d", ErrRowCountMismatch, id, len(rows), p.count)
	}

	coerced := make([]any, len(rows))

	for i, row := range rows {
		var (
			value any
			err   error
		)

		switch {
		case row == nil:
			value = zeroValue(prop)
		case callerDomain:
			value, err = prop.CoerceValue(row)
		default:
			value, err = prop.CoerceRaw(row)
		}

		if err != nil {
			return fmt.Errorf("property '%s', row %d: %w", id, i, err)
		}

		coerced[i] = value
	}

	p.columns = append(p.columns, column{prop: prop, rows: coerced})

	return nil
}

func zeroValue(prop *schema.ClassProperty) any {
	if prop.Default != nil {
		return schema.CloneValue(prop.Default)
	}

	var zero any

	switch typ := prop.ElementType(); {
	case typ == schema.StringValueType:
		zero = ""
	case typ == schema.EnumValueType:
		zero = firstEnumName(prop.EnumType)
	case typ == schema.BooleanValueType:
		zero = false
	case schema.IsUnsignedInteger(typ):
		zero = uint64(0)
	case schema.IsInteger(typ):
		zero = int64(0)
	default:
		zero = float64(0)
	}

	if !prop.IsArray() {
		return zero
	}

	elements := make([]any, prop.ComponentCount)
	for i := range elements {
		elements[i] = zero
	}
	return schema.MakeArray(prop.ElementType(), elements)
}

func firstEnumName(enum *schema.Enum) string {
	if len(enum.Values) == 0 {
		return ""
	}
	return enum.Values[0].Name
}

// Build encodes every column. Buffer view ids are assigned in column order:
// values, then array offsets, then string offsets.
func (p *Packer) Build() (*Packed, error) {

	result := &Packed{
		Class:       p.class,
		Count:       p.count,
		OffsetType:  p.offsetType,
		BufferViews: map[int][]byte{},
		Properties:  map[string]metadata.PropertyBinding{},
	}

	nextView := 0
	addView := func(data []byte) int {
		id := nextView
		result.BufferViews[id] = data
		nextView++
		return id
	}

	for _, c := range p.columns {

		encoded, err := p.encode(c)
		if err != nil {
			return nil, err
		}

		binding := metadata.PropertyBinding{
			BufferView: addView(encoded.values),
			OffsetType: p.offsetType,
		}

		if encoded.arrayOffsets != nil {
			id := addView(encoded.arrayOffsets)
			binding.ArrayOffsetBufferView = &id
		}

		if encoded.stringOffsets != nil {
			id := addView(encoded.stringOffsets)
			binding.StringOffsetBufferView = &id
		}

		result.Properties[c.prop.Id] = binding
	}

	return result, nil
}

// Bindings returns the bindings Build assigns when every property of class is
// added in class order.
func Bindings(class *schema.Class, offsetType schema.ValueType) map[string]metadata.PropertyBinding {

	if offsetType == schema.NoValueType {
		offsetType = metadata.DefaultOffsetType
	}

	result := make(map[string]metadata.PropertyBinding, len(class.Properties))
	nextView := 0

	for _, prop := range class.Properties {
		binding := metadata.PropertyBinding{BufferView: nextView, OffsetType: offsetType}
		nextView++

		if prop.IsVariableSizeArray() {
			id := nextView
			binding.ArrayOffsetBufferView = &id
			nextView++
		}

		if prop.ElementType() == schema.StringValueType {
			id := nextView
			binding.StringOffsetBufferView = &id
			nextView++
		}

		result[prop.Id] = binding
	}

	return result
}

type encodedColumn struct {
	values        []byte
	arrayOffsets  []byte
	stringOffsets []byte
}

func (p *Packer) encode(c column) (*encodedColumn, error) {

	prop := c.prop
	result := &encodedColumn{}

	// flatten rows into elements, recording array offsets on the way
	var elements []any

	if prop.IsVariableSizeArray() {
		offsets := make([]uint64, 0, len(c.rows)+1)
		for _, row := range c.rows {
			offsets = append(offsets, uint64(len(elements)))
			elements = append(elements, listOf(row)...)
		}
		offsets = append(offsets, uint64(len(elements)))

		encoded, err := p.encodeOffsets(prop, offsets)
		if err != nil {
			return nil, err
		}
		result.arrayOffsets = encoded
	} else if prop.IsArray() {
		for _, row := range c.rows {
			elements = append(elements, listOf(row)...)
		}
	} else {
		elements = c.rows
	}

	switch typ := prop.ElementType(); {
	case typ == schema.StringValueType:
		payload := bits.NewGrowingBuffer(64, binary.LittleEndian)
		offsets := make([]uint64, 0, len(elements)+1)

		for _, el := range elements {
			offsets = append(offsets, uint64(payload.Position()))
			payload.Write([]byte(el.(string)))
		}
		offsets = append(offsets, uint64(payload.Position()))

		encoded, err := p.encodeOffsets(prop, offsets)
		if err != nil {
			return nil, err
		}
		result.values = payload.Bytes()
		result.stringOffsets = encoded

	case typ == schema.BooleanValueType:
		values := make([]bool, len(elements))
		for i, el := range elements {
			values[i] = el.(bool)
		}
		result.values = bits.FromBools(values)

	default:
		valueType := prop.ValueType()
		w := bits.NewGrowingBuffer(len(elements)*valueType.Size(), binary.LittleEndian)

		for _, el := range elements {
			if prop.IsEnum() {
				code, _ := prop.EnumType.ValueByName(el.(string))
				el = code
			}
			putElement(&w, valueType, el)
		}
		result.values = w.Bytes()
	}

	return result, nil
}

func (p *Packer) encodeOffsets(prop *schema.ClassProperty, offsets []uint64) ([]byte, error) {

	limit := schema.MaxInteger(p.offsetType)
	w := bits.NewGrowingBuffer(len(offsets)*p.offsetType.Size(), binary.LittleEndian)

	for _, offset := range offsets {
		if offset > limit {
			return nil, fmt.Errorf("%w: property '%s' needs offset %d, %s holds at most %d", ErrOffsetOverflow, prop.Id, offset, p.offsetType.String(), limit)
		}
		putElement(&w, p.offsetType, offset)
	}

	return w.Bytes(), nil
}

func putElement(w *bits.BitWriter, typ schema.ValueType, value any) {
	switch typ {
	case schema.Int8ValueType:
		w.PutInt8(int8(signed(value)))
	case schema.Uint8ValueType:
		w.WriteByte(uint8(unsigned(value)))
	case schema.Int16ValueType:
		w.PutInt16(int16(signed(value)))
	case schema.Uint16ValueType:
		w.PutUint16(uint16(unsigned(value)))
	case schema.Int32ValueType:
		w.PutInt32(int32(signed(value)))
	case schema.Uint32ValueType:
		w.PutUint32(uint32(unsigned(value)))
	case schema.Int64ValueType:
		w.PutInt64(signed(value))
	case schema.Uint64ValueType:
		w.PutUint64(unsigned(value))
	case schema.Float32ValueType:
		w.PutFloat32(float32(value.(float64)))
	case schema.Float64ValueType:
		w.PutFloat64(value.(float64))
	default:
		panic("cannot pack element of type " + typ.String())
	}
}

func signed(value any) int64 {
	switch t := value.(type) {
	case int64:
		return t
	case uint64:
		return int64(t)
	}
	panic(fmt.Sprintf("not an integer: %v (%T)", value, value))
}

func unsigned(value any) uint64 {
	switch t := value.(type) {
	case uint64:
		return t
	case int64:
		return uint64(t)
	}
	panic(fmt.Sprintf("not an integer: %v (%T)", value, value))
}

func listOf(value any) []any {
	switch t := value.(type) {
	case []int64:
		return box(t)
	case []uint64:
		return box(t)
	case []float64:
		return box(t)
	case []bool:
		return box(t)
	case []string:
		return box(t)
	}
	panic(fmt.Sprintf("not an array value: %T", value))
}

func box[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Repack encodes the current raw values of every bound column of table.
func Repack(table *metadata.Table, offsetType schema.ValueType) (*Packed, error) {

	p, err := New(table.Class(), table.Count(), offsetType)
	if err != nil {
		return nil, err
	}

	for _, id := range table.PropertyIds(nil) {
		prop := table.Property(id)
		if prop == nil {
			continue
		}

		rows := make([]any, table.Count())
		for i := range rows {
			rows[i] = prop.Get(i)
		}

		if err := p.AddRawColumn(id, rows); err != nil {
			return nil, err
		}
	}

	return p.Build()
}

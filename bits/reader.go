package bits

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
)

var (
	ErrEOF          = errors.New("end of file")
	ErrReadMismatch = errors.New("read size mismatch")
)

// BitsReader decodes fixed-width values from an in-memory buffer. ReadBytes
// returns sub-slices of the input, nothing is copied.
type BitsReader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func NewBinReader(buf []byte, order binary.ByteOrder) *BitsReader {
	return &BitsReader{buf: buf, order: order}
}

func (r *BitsReader) Reset() {
	r.pos = 0
}

func (r *BitsReader) Position() int {
	return r.pos
}

func (r *BitsReader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *BitsReader) next(size int) ([]byte, error) {
	if r.pos+size > len(r.buf) {
		return nil, ErrEOF
	}

	out := r.buf[r.pos : r.pos+size : r.pos+size]
	r.pos += size

	return out, nil
}

func (r *BitsReader) ReadU8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *BitsReader) ReadU16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *BitsReader) ReadU32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *BitsReader) ReadU64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

func (r *BitsReader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *BitsReader) ReadF64() (float64, error) {
	u, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func (r *BitsReader) ReadUUID() (result uuid.UUID, err error) {
	b, err := r.next(16)
	if err != nil {
		return uuid.Nil, err
	}
	copy(result[:], b)
	return result, nil
}

// ReadBytes returns the next n bytes as a view into the underlying buffer.
func (r *BitsReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrReadMismatch
	}
	return r.next(n)
}

func (r *BitsReader) MustReadU8() uint8 {
	u, er := r.ReadU8()
	if er != nil {
		panic(er)
	}
	return u
}

func (r *BitsReader) MustReadU16() uint16 {
	u, er := r.ReadU16()
	if er != nil {
		panic(er)
	}
	return u
}

func (r *BitsReader) MustReadU64() uint64 {
	u, er := r.ReadU64()
	if er != nil {
		panic(er)
	}
	return u
}

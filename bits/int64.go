package bits

import "encoding/binary"

// int64Magnitude reads a little-endian two's complement value one byte at a
// time starting from the least significant byte. Negative values are negated
// in place by inverting every byte and propagating the +1 carry, so the
// magnitude is built directly instead of subtracting from 2^64.
func int64Magnitude(b []byte, visit func(i int, v byte)) (negative bool) {
	negative = b[7]&0x80 != 0
	carrying := true

	for i := 0; i < 8; i++ {
		v := b[i]
		if negative {
			if carrying {
				if v != 0x00 {
					v = ^(v - 1)
					carrying = false
				}
			} else {
				v = ^v
			}
		}
		visit(i, v)
	}

	return negative
}

// ReadInt64Bytes is exact for the full int64 range.
func ReadInt64Bytes(b []byte) int64 {
	var magnitude uint64

	negative := int64Magnitude(b, func(i int, v byte) {
		magnitude |= uint64(v) << (8 * i)
	})

	if negative {
		// magnitude of MinInt64 is 2^63, which wraps back to MinInt64
		return -int64(magnitude)
	}
	return int64(magnitude)
}

// ReadInt64BytesFloat accumulates into a float64, values beyond ±(2^53-1) lose precision.
func ReadInt64BytesFloat(b []byte) float64 {
	var value float64
	scale := 1.0

	negative := int64Magnitude(b, func(i int, v byte) {
		value += float64(v) * scale
		scale *= 256
	})

	if negative {
		return -value
	}
	return value
}

// ReadUint64Bytes combines the two 32-bit halves.
func ReadUint64Bytes(b []byte) uint64 {
	low := binary.LittleEndian.Uint32(b[0:4])
	high := binary.LittleEndian.Uint32(b[4:8])
	return uint64(low) | uint64(high)<<32
}

// ReadUint64BytesFloat is ReadUint64Bytes on a float64 accumulator.
func ReadUint64BytesFloat(b []byte) float64 {
	low := binary.LittleEndian.Uint32(b[0:4])
	high := binary.LittleEndian.Uint32(b[4:8])
	return float64(low) + 4294967296*float64(high)
}

func WriteInt64Bytes(b []byte, v int64) {
	binary.LittleEndian.PutUint64(b, uint64(v))
}

func WriteUint64Bytes(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

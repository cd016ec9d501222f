package bits

import "math/bits"

// Bit streams are little endian: bit 0 is the least significant bit of byte 0.

func BytesForBits(n int) int {
	return (n + 7) >> 3
}

func GetBit(data []byte, bit int) bool {
	return (data[bit>>3]>>(bit&7))&1 == 1
}

func SetBit(data []byte, bit int) {
	data[bit>>3] |= 1 << (bit & 7)
}

func ClearBit(data []byte, bit int) {
	data[bit>>3] &^= 1 << (bit & 7)
}

func SetBitTo(data []byte, bit int, v bool) {
	if v {
		SetBit(data, bit) // set
	} else {
		ClearBit(data, bit) // clear
	}
}

// FromBools packs values into a fresh bit stream.
func FromBools(values []bool) []byte {
	out := make([]byte, BytesForBits(len(values)))
	for i, v := range values {
		if v {
			SetBit(out, i)
		}
	}
	return out
}

// Count returns the number of set bits among the first n bits.
func Count(data []byte, n int) int {
	c := 0
	full := n >> 3
	for _, b := range data[:full] {
		c += bits.OnesCount8(b)
	}
	for i := full << 3; i < n; i++ {
		if GetBit(data, i) {
			c++
		}
	}
	return c
}

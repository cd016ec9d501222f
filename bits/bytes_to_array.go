package bits

import (
	"unsafe"
)

// MapBytesToArray reinterprets data as count elements of T without copying.
// The caller must check IsAligned and the host byte order first.
func MapBytesToArray[T any](data []byte, count int) []T {

	var sample T
	valueSize := int(unsafe.Sizeof(sample))

	if len(data) < count*valueSize {
		panic("not enough data")
	}

	if count == 0 {
		return nil
	}

	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), count)
}

func IsAligned[T any](data []byte) bool {
	if len(data) == 0 {
		return true
	}

	var sample T
	return uintptr(unsafe.Pointer(&data[0]))%unsafe.Alignof(sample) == 0
}

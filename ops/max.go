package ops

type NumericTypes interface {
	~uint64 | ~uint32 | ~uint16 | ~uint8 | ~int64 | ~int32 | ~int16 | ~int8 | ~int | ~float64 | ~float32
}

type Bounds[T NumericTypes] struct {
	Min T
	Max T
}

func (b *Bounds[T]) Morph(other Bounds[T]) {
	if other.Min < b.Min {
		b.Min = other.Min
	}
	if other.Max > b.Max {
		b.Max = other.Max
	}
}

// GetMaxMin returns the bounds of arr, ok is false for an empty slice.
func GetMaxMin[T NumericTypes](arr []T) (result Bounds[T], ok bool) {

	if len(arr) == 0 {
		return result, false
	}

	result = Bounds[T]{
		Min: arr[0],
		Max: arr[0],
	}

	for _, v := range arr[1:] {
		if v < result.Min {
			result.Min = v
		}
		if v > result.Max {
			result.Max = v
		}
	}

	return result, true
}

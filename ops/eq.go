package ops

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// MatchEqual writes the indices of arr equal to cmp into out and returns how
// many were written. out must hold len(arr) items.
func MatchEqual[T NumericTypes](arr []T, cmp T, out []int) int {
	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {

		a0 := arr[i+0]
		a1 := arr[i+1]
		a2 := arr[i+2]
		a3 := arr[i+3]
		a4 := arr[i+4]
		a5 := arr[i+5]
		a6 := arr[i+6]
		a7 := arr[i+7]

		// every slot is written, filled only advances on a match
		out[filled] = i + 0
		filled += b2i(a0 == cmp)
		out[filled] = i + 1
		filled += b2i(a1 == cmp)
		out[filled] = i + 2
		filled += b2i(a2 == cmp)
		out[filled] = i + 3
		filled += b2i(a3 == cmp)
		out[filled] = i + 4
		filled += b2i(a4 == cmp)
		out[filled] = i + 5
		filled += b2i(a5 == cmp)
		out[filled] = i + 6
		filled += b2i(a6 == cmp)
		out[filled] = i + 7
		filled += b2i(a7 == cmp)
	}

	// tail
	for ; i < n; i++ {
		if arr[i] == cmp {
			out[filled] = i
			filled++
		}
	}

	return filled
}

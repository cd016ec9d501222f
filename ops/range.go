package ops

// MatchRange writes the indices of arr within [from, to] into out and returns
// how many were written. out must hold len(arr) items.
func MatchRange[T NumericTypes](arr []T, from, to T, out []int) int {
	if to < from {
		return 0
	}

	n := len(arr)
	filled := 0
	i := 0

	for ; i+3 < n; i += 4 {
		a0 := arr[i+0]
		a1 := arr[i+1]
		a2 := arr[i+2]
		a3 := arr[i+3]

		out[filled] = i + 0
		filled += b2i(a0 >= from && a0 <= to)
		out[filled] = i + 1
		filled += b2i(a1 >= from && a1 <= to)
		out[filled] = i + 2
		filled += b2i(a2 >= from && a2 <= to)
		out[filled] = i + 3
		filled += b2i(a3 >= from && a3 <= to)
	}

	for ; i < n; i++ {
		if v := arr[i]; v >= from && v <= to {
			out[filled] = i
			filled++
		}
	}

	return filled
}

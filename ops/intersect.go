package ops

// Intersect writes the values present in both a and b into out, in the order of
// the longer list. cache is cleared and reused between calls.
func Intersect[T ~int | ~uint16 | ~uint64](a, b, out []T, cache map[T]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	clear(cache)
	var other []T

	if len(a) < len(b) {
		other = b
		for _, v := range a {
			cache[v] = struct{}{}
		}
	} else {
		other = a
		for _, v := range b {
			cache[v] = struct{}{}
		}
	}

	filled := 0
	for _, v := range other {
		if _, ok := cache[v]; ok {
			out[filled] = v
			filled++
		}
	}

	return filled
}

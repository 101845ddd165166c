package util

// EqualSlices reports whether a and b hold the same elements under equal.
// With ignoreOrder every element of a must pair with a distinct element of b.
func EqualSlices[T any](a, b []T, equal func(x, y T) bool, ignoreOrder bool) bool {
	if len(a) != len(b) {
		return false
	}

	if !ignoreOrder {
		for i := range a {
			if !equal(a[i], b[i]) {
				return false
			}
		}
		return true
	}

	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if used[j] || !equal(x, y) {
				continue
			}
			used[j] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

package blocks

// Matches compares two command sequences position by position. No reordering,
// subsequence or wildcard tolerance.
func Matches(actual, expected []Command) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}

package kmp

// Overlap returns the size and offset of the longest prefix of pattern found in text, in O(n) time.  Drivers use it
// to report the best partial match after a search ends without a match.  Returns (0, 0) if nothing overlaps.
func Overlap(pattern, text string) (size, pos int) {
	m, n := len(pattern), len(text)
	if m == 0 || n == 0 {
		return
	}

	prefix := Prefix([]byte(pattern))
	for i, j := 0, 0; i < n; i++ {
		for j > 0 && text[i] != pattern[j] {
			j = prefix[j-1]
		}
		if text[i] == pattern[j] {
			j++
		}
		if j > size {
			size, pos = j, i-j+1
		}
		if j == m {
			return
		}
	}
	return
}

// Index returns the index of the first occurrence of pattern in text, or -1.  It is the one-shot counterpart of
// Engine and does not count comparisons.
func Index(text, pattern string) int {
	if pattern == `` {
		return -1
	}
	size, pos := Overlap(pattern, text)
	if size < len(pattern) {
		return -1
	}
	return pos
}

// Prefix returns the classic prefix function of pattern: entry i is the length of the longest proper prefix of
// pattern[:i+1] that is also its suffix.  Unlike Failure, it is unbiased and has one entry per element.
func Prefix[T comparable](pattern []T) []int {
	n := len(pattern)
	table := make([]int, n)
	for i := 1; i < n; i++ {
		j := table[i-1]
		for j > 0 && pattern[i] != pattern[j] {
			j = table[j-1]
		}
		if pattern[i] == pattern[j] {
			j++
		}
		table[i] = j
	}
	return table
}

package kmp

import "testing"

func TestOverlap(t *testing.T) {
	for _, test := range []struct {
		pattern, text string
		sz, ofs       int
	}{
		{``, ``, 0, 0},
		{``, `a`, 0, 0},
		{`a`, ``, 0, 0},
		{`a`, `a`, 1, 0},
		{`a`, `xa`, 1, 1},
		{`ab`, `a`, 1, 0},
		{`ab`, `xa`, 1, 1},
		{`ab`, `xabx`, 2, 1},
		{`ababaca`, `bacbababaabcbab`, 5, 4},
		{`abc`, `xyz`, 0, 0},
	} {
		sz, ofs := Overlap(test.pattern, test.text)
		t.Logf(`Overlap(%q, %q) = #%v@%v`, test.pattern, test.text, sz, ofs)
		if sz != test.sz || ofs != test.ofs {
			t.Errorf(`expected #%v@%v`, test.sz, test.ofs)
		}
	}
}

func TestIndex(t *testing.T) {
	for _, test := range []struct {
		text, pattern string
		ix            int
	}{
		{``, ``, -1},
		{`abc`, ``, -1},
		{`abc`, `c`, 2},
		{`abcabd`, `abd`, 3},
		{`aaaa`, `aab`, -1},
	} {
		if got := Index(test.text, test.pattern); got != test.ix {
			t.Errorf(`Index(%q, %q) = %d, want %d`, test.text, test.pattern, got, test.ix)
		}
	}
}

func TestPrefix(t *testing.T) {
	got := Prefix([]byte(`ababaca`))
	want := []int{0, 0, 1, 2, 3, 0, 1}
	if !equalInts(got, want) {
		t.Errorf(`Prefix("ababaca") = %v, want %v`, got, want)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

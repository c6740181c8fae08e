// Package boyermoore implements Boyer-Moore as a stepwise search.Interface.  Each alignment is compared right to
// left, and a mismatch shifts the alignment by the larger of the bad character and good suffix rules.
package boyermoore

import (
	search "github.com/swdunlop/search-go"
)

func init() {
	search.Register(`boyer-moore`, func() search.Interface { return New() })
	search.Register(`bm`, func() search.Interface { return New() })
}

// New returns an engine with no text or pattern.
func New() *Engine {
	return &Engine{badChar: BadCharacter(``), goodSuffix: GoodSuffix(``)}
}

type Engine struct {
	text, pattern string
	badChar       map[byte]int
	goodSuffix    []int

	i    int // text cursor, the end of the alignment until a match starts scanning left
	j    int // pattern cursor, scanned from len(pattern)-1 down to 0
	last search.MatchInfo
}

var _ search.Annotator = (*Engine)(nil)

func (e *Engine) Text() string    { return e.text }
func (e *Engine) Pattern() string { return e.pattern }

func (e *Engine) SetText(s string) {
	e.text = s
	e.restart()
}

func (e *Engine) SetPattern(s string) {
	e.pattern = s
	e.badChar = BadCharacter(s)
	e.goodSuffix = GoodSuffix(s)
	e.restart()
}

func (e *Engine) restart() {
	e.last = search.MatchInfo{}
	e.i, e.j = 0, 0
	if e.pattern == `` {
		return
	}
	e.i = len(e.pattern) - 1
	e.j = len(e.pattern) - 1
}

func (e *Engine) Ready() bool {
	return e.text != `` && e.pattern != `` && e.State() == search.InProgress
}

func (e *Engine) State() search.State {
	m, n := len(e.pattern), len(e.text)
	if m == 0 || n == 0 || m > n || e.i >= n {
		return search.NoMatch
	}
	// a match is only reported once the comparison at pattern index 0 has been made.
	if e.last.Match && e.last.PatternIndex == 0 {
		return search.MatchFound
	}
	return search.InProgress
}

func (e *Engine) PatternOffset() int {
	if e.State() == search.MatchFound {
		return e.last.TextIndex
	}
	return e.last.TextIndex - e.last.PatternIndex
}

func (e *Engine) Step() search.MatchInfo {
	if e.State() != search.InProgress {
		return e.last
	}
	m := len(e.pattern)
	info := search.MatchInfo{TextIndex: e.i, PatternIndex: e.j}
	if e.pattern[e.j] == e.text[e.i] {
		info.Match = true
		e.i--
		e.j--
	} else {
		e.i += max(e.goodSuffix[m-e.j-1], e.BadCharacterShift(e.text[e.i]))
		e.j = m - 1
	}
	e.last = info
	return info
}

// BadCharacterShift returns the bad character shift for c, which is the pattern length if c is not in the pattern.
func (e *Engine) BadCharacterShift(c byte) int {
	if shift, ok := e.badChar[c]; ok {
		return shift
	}
	return len(e.pattern)
}

// BadCharacterTable returns a copy of the bad character table for the current pattern.
func (e *Engine) BadCharacterTable() map[byte]int {
	table := make(map[byte]int, len(e.badChar))
	for c, shift := range e.badChar {
		table[c] = shift
	}
	return table
}

// GoodSuffixTable returns a copy of the good suffix table for the current pattern.
func (e *Engine) GoodSuffixTable() []int {
	return append([]int(nil), e.goodSuffix...)
}

// Annotations labels each text character with its bad character shift and each pattern character with its good
// suffix entry.  Nothing is annotated without a pattern.
func (e *Engine) Annotations() (text, pattern []int) {
	if e.pattern == `` {
		return nil, nil
	}
	text = make([]int, len(e.text))
	for i := 0; i < len(e.text); i++ {
		text[i] = e.BadCharacterShift(e.text[i])
	}
	return text, e.GoodSuffixTable()
}

// BadCharacter maps each character of pattern to max(1, len(pattern)-p-1), where p is its rightmost position.
func BadCharacter(pattern string) map[byte]int {
	m := len(pattern)
	table := make(map[byte]int, m)
	for p := 0; p < m; p++ {
		table[pattern[p]] = max(1, m-p-1)
	}
	return table
}

// GoodSuffix builds the good suffix table for pattern, indexed by the distance of a mismatch from the end of the
// pattern.  Shifts for suffixes that recur inside the pattern replace the shifts based on prefixes.
func GoodSuffix(pattern string) []int {
	table := prefixShifts(pattern)
	m := len(pattern)
	for p := 0; p < m-1; p++ {
		n := suffixLength(pattern, p)
		table[n] = m - 1 - p + n
	}
	return table
}

// prefixShifts is the first pass of GoodSuffix, using the widest suffix that is also a prefix.
func prefixShifts(pattern string) []int {
	m := len(pattern)
	table := make([]int, m)
	last := m
	for p := m; p > 0; p-- {
		if isPrefix(pattern, p) {
			last = p
		}
		table[m-p] = last - p + m
	}
	return table
}

// isPrefix is true if pattern[p:] is a prefix of pattern.
func isPrefix(pattern string, p int) bool {
	for i, j := p, 0; i < len(pattern); i, j = i+1, j+1 {
		if pattern[i] != pattern[j] {
			return false
		}
	}
	return true
}

// suffixLength returns the length of the longest substring ending at p that is also a suffix of pattern.
func suffixLength(pattern string, p int) int {
	n := 0
	for i, j := p, len(pattern)-1; i >= 0 && pattern[i] == pattern[j]; i, j = i-1, j-1 {
		n++
	}
	return n
}

// Package kmp implements Knuth-Morris-Pratt as a stepwise search.Interface.
package kmp

import (
	search "github.com/swdunlop/search-go"
)

func init() {
	search.Register(`kmp`, func() search.Interface { return New() })
}

// New returns an engine with no text or pattern.
func New() *Engine {
	e := new(Engine)
	e.table = Failure(``)
	return e
}

// Engine steps a single alignment of the pattern across the text, using the failure table to skip comparisons
// that are already known to succeed after a mismatch.
type Engine struct {
	text, pattern string
	table         []int

	k      int // start of the current alignment in the text
	i      int // characters of the pattern matched at this alignment
	offset int // alignment of the most recent comparison
	last   search.MatchInfo
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
	e.table = Failure(s)
	e.restart()
}

func (e *Engine) restart() {
	e.k, e.i, e.offset = 0, 0, 0
	e.last = search.MatchInfo{}
}

func (e *Engine) Ready() bool {
	return e.text != `` && e.pattern != `` && e.State() == search.InProgress
}

func (e *Engine) State() search.State {
	m, n := len(e.pattern), len(e.text)
	if m == 0 || n == 0 || m > n || e.k+m > n {
		return search.NoMatch
	}
	// i can only reach m through a match, but the character is checked again anyway.
	if e.i == m && e.pattern[e.i-1] == e.text[e.k+e.i-1] {
		return search.MatchFound
	}
	return search.InProgress
}

func (e *Engine) PatternOffset() int { return e.offset }

func (e *Engine) Step() search.MatchInfo {
	if e.State() != search.InProgress {
		return e.last
	}
	e.offset = e.k
	info := search.MatchInfo{TextIndex: e.k + e.i, PatternIndex: e.i}
	switch {
	case e.pattern[e.i] == e.text[e.k+e.i]:
		info.Match = true
		e.i++
	case e.table[e.i] == -1:
		// nothing recurs, so restart just past the mismatch
		e.k += e.i + 1
		e.i = 0
	default:
		// the prefix ending before i recurs; keep it and realign on it
		e.k += e.i - e.table[e.i]
		e.i = e.table[e.i]
	}
	e.last = info
	return info
}

// FailureTable returns a copy of the failure table for the current pattern.
func (e *Engine) FailureTable() []int {
	return append([]int(nil), e.table...)
}

// Annotations labels each pattern character with its failure table entry; the text is not annotated.
func (e *Engine) Annotations() (text, pattern []int) {
	if e.pattern == `` {
		return nil, nil
	}
	return nil, e.FailureTable()[:len(e.pattern)]
}

// Failure builds the failure table for pattern by comparing the pattern against itself.  The table has
// len(pattern)+1 entries: entry 0 is -1, and the final entry holds the candidate left over after the last
// position.
func Failure(pattern string) []int {
	table := make([]int, len(pattern)+1)
	table[0] = -1
	if pattern == `` {
		return table
	}
	cnd, pos := 0, 1
	for ; pos < len(pattern); pos, cnd = pos+1, cnd+1 {
		if pattern[pos] == pattern[cnd] {
			table[pos] = table[cnd]
			continue
		}
		table[pos] = cnd
		for cnd >= 0 && pattern[pos] != pattern[cnd] {
			cnd = table[cnd]
		}
	}
	table[pos] = cnd
	return table
}

package kmp

import (
	"testing"

	search "github.com/swdunlop/search-go"
)

func TestFailure(t *testing.T) {
	for _, test := range []struct {
		Name    string
		Pattern string
		Table   []int
	}{
		{"empty", ``, []int{-1}},
		{"single", `a`, []int{-1, 0}},
		{"distinct", `abd`, []int{-1, 0, 0, 0}},
		{"repeated", `aaaa`, []int{-1, -1, -1, -1, 3}},
		{"ababaca", `ababaca`, []int{-1, 0, -1, 0, -1, 3, -1, 1}},
		{"abacababc", `ABACABABC`, []int{-1, 0, -1, 1, -1, 0, -1, 3, 2, 0}},
	} {
		t.Run(test.Name, func(t *testing.T) {
			got := Failure(test.Pattern)
			if !equalInts(got, test.Table) {
				t.Errorf(`got %v, want %v`, got, test.Table)
			}
		})
	}
}

func TestStepTrace(t *testing.T) {
	e := New()
	e.SetText(`abcabd`)
	e.SetPattern(`abd`)
	for i, want := range []struct {
		info   search.MatchInfo
		offset int
		state  search.State
	}{
		{search.MatchInfo{TextIndex: 0, PatternIndex: 0, Match: true}, 0, search.InProgress},
		{search.MatchInfo{TextIndex: 1, PatternIndex: 1, Match: true}, 0, search.InProgress},
		{search.MatchInfo{TextIndex: 2, PatternIndex: 2, Match: false}, 0, search.InProgress},
		{search.MatchInfo{TextIndex: 2, PatternIndex: 0, Match: false}, 2, search.InProgress},
		{search.MatchInfo{TextIndex: 3, PatternIndex: 0, Match: true}, 3, search.InProgress},
		{search.MatchInfo{TextIndex: 4, PatternIndex: 1, Match: true}, 3, search.InProgress},
		{search.MatchInfo{TextIndex: 5, PatternIndex: 2, Match: true}, 3, search.MatchFound},
	} {
		info := e.Step()
		t.Logf(`step %d: %v offset %d %v`, i, info, e.PatternOffset(), e.State())
		if info != want.info {
			t.Errorf(`step %d: got %v, want %v`, i, info, want.info)
		}
		if got := e.PatternOffset(); got != want.offset {
			t.Errorf(`step %d: got offset %d, want %d`, i, got, want.offset)
		}
		if got := e.State(); got != want.state {
			t.Errorf(`step %d: got state %v, want %v`, i, got, want.state)
		}
	}
	if e.Ready() {
		t.Errorf(`engine is ready after a match`)
	}
	last := e.Step()
	if last.TextIndex != 5 || last.PatternIndex != 2 || e.k != 3 || e.i != 3 {
		t.Errorf(`step after match moved the engine: %v k=%d i=%d`, last, e.k, e.i)
	}
}

func TestState(t *testing.T) {
	for _, test := range []struct {
		Name          string
		Text, Pattern string
		State         search.State
		Ready         bool
	}{
		{"empty", ``, ``, search.NoMatch, false},
		{"emptyText", ``, `a`, search.NoMatch, false},
		{"emptyPattern", `a`, ``, search.NoMatch, false},
		{"tooLong", `ab`, `abc`, search.NoMatch, false},
		{"fresh", `abc`, `bc`, search.InProgress, true},
	} {
		t.Run(test.Name, func(t *testing.T) {
			e := New()
			e.SetPattern(test.Pattern)
			e.SetText(test.Text)
			if got := e.State(); got != test.State {
				t.Errorf(`got state %v, want %v`, got, test.State)
			}
			if got := e.Ready(); got != test.Ready {
				t.Errorf(`got ready %v, want %v`, got, test.Ready)
			}
			if test.State == search.NoMatch {
				if info := e.Step(); info != (search.MatchInfo{}) {
					t.Errorf(`step on an idle engine returned %v`, info)
				}
			}
		})
	}
}

// A full pattern count is only a match if the last character really matched.
func TestMatchRecheck(t *testing.T) {
	e := New()
	e.SetText(`abx`)
	e.SetPattern(`aby`)
	e.i = len(e.pattern)
	if got := e.State(); got != search.InProgress {
		t.Errorf(`got %v with a mismatched final character, want %v`, got, search.InProgress)
	}
	e.SetText(`aby`)
	if e.i != 0 || e.State() != search.InProgress {
		t.Errorf(`SetText did not restart: i=%d state=%v`, e.i, e.State())
	}
	e.i = len(e.pattern)
	if got := e.State(); got != search.MatchFound {
		t.Errorf(`got %v, want %v`, got, search.MatchFound)
	}
}

func TestReset(t *testing.T) {
	e := New()
	e.SetText(`xxababcab`)
	e.SetPattern(`abc`)
	search.Run(e, 4)
	e.SetPattern(`abc`)
	once := *e
	e.SetPattern(`abc`)
	if e.k != once.k || e.i != once.i || e.offset != once.offset || e.State() != once.State() ||
		!equalInts(e.table, once.table) {
		t.Errorf(`setting the same pattern twice changed the engine`)
	}
	e.SetText(`xxababcab`)
	if e.k != 0 || e.i != 0 || e.PatternOffset() != 0 {
		t.Errorf(`SetText did not restart: k=%d i=%d`, e.k, e.i)
	}
	if steps, state := search.Run(e, 0); state != search.MatchFound || e.PatternOffset() != 4 {
		t.Errorf(`got %v at %d after %d steps, want a match at 4`, state, e.PatternOffset(), steps)
	}
}

func TestAnnotations(t *testing.T) {
	e := New()
	if text, pattern := e.Annotations(); text != nil || pattern != nil {
		t.Errorf(`empty engine has annotations %v %v`, text, pattern)
	}
	e.SetPattern(`abd`)
	text, pattern := e.Annotations()
	if text != nil || !equalInts(pattern, []int{-1, 0, 0}) {
		t.Errorf(`got annotations %v %v`, text, pattern)
	}
	pattern[0] = 99
	if e.table[0] != -1 {
		t.Errorf(`annotations alias the failure table`)
	}
}

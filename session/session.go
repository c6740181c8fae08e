// Package session drives a search algorithm one step at a time on behalf of a display, keeping the trace of steps
// and producing snapshots of the engine and its preprocessing tables.
package session

import (
	"context"
	"fmt"

	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/internal/slog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	_ "github.com/swdunlop/search-go/boyermoore"
	_ "github.com/swdunlop/search-go/kmp"
)

// New creates a session for the named algorithm.
func New(algorithm string) (*Session, error) {
	alg, err := search.New(algorithm)
	if err != nil {
		return nil, err
	}
	return &Session{algorithm: algorithm, alg: alg}, nil
}

// A Session owns one engine.  Like the engine, it must only be used by one goroutine at a time.
type Session struct {
	algorithm string
	alg       search.Interface
	steps     int
	last      *Event
}

// An Event describes one step and the state of the engine after it.
type Event struct {
	Step   int              `json:"step" yaml:"step"`
	Info   search.MatchInfo `json:"info" yaml:"info"`
	State  search.State     `json:"state" yaml:"state"`
	Offset int              `json:"offset" yaml:"offset"`
}

func (evt Event) String() string {
	return fmt.Sprintf(`#%d %v offset %d %v`, evt.Step, evt.Info, evt.Offset, evt.State)
}

func (s *Session) Algorithm() string        { return s.algorithm }
func (s *Session) Engine() search.Interface { return s.alg }
func (s *Session) Steps() int               { return s.steps }

// Load replaces both the text and the pattern, restarting the search.
func (s *Session) Load(text, pattern string) {
	s.alg.SetText(text)
	s.alg.SetPattern(pattern)
	s.restart()
}

func (s *Session) SetText(text string) {
	s.alg.SetText(text)
	s.restart()
}

func (s *Session) SetPattern(pattern string) {
	s.alg.SetPattern(pattern)
	s.restart()
}

func (s *Session) restart() {
	s.steps = 0
	s.last = nil
	slog.Debug(`search loaded`, `algorithm`, s.algorithm,
		`text`, len(s.alg.Text()), `pattern`, len(s.alg.Pattern()), `state`, s.alg.State())
}

// Step advances the engine by one comparison.  Once the search is over, Step returns the last event again.
func (s *Session) Step() Event {
	if !s.alg.Ready() {
		if s.last != nil {
			return *s.last
		}
		return Event{State: s.alg.State(), Offset: s.alg.PatternOffset()}
	}
	info := s.alg.Step()
	s.steps++
	evt := Event{Step: s.steps, Info: info, State: s.alg.State(), Offset: s.alg.PatternOffset()}
	s.last = &evt
	if evt.State.Terminal() {
		slog.Debug(`search finished`, `algorithm`, s.algorithm, `steps`, s.steps,
			`state`, evt.State, `offset`, evt.Offset)
	}
	return evt
}

// Run steps until the search is over, limit steps have been taken, or ctx is done.  A limit of zero or less means
// no limit.
func (s *Session) Run(ctx context.Context, limit int) ([]Event, error) {
	var events []Event
	for s.alg.Ready() {
		if limit > 0 && len(events) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return events, err
		}
		events = append(events, s.Step())
	}
	return events, nil
}

// Highlight returns the range of text a display should colour for the current state.
func (s *Session) Highlight() (start, end int, state search.State) {
	snap := Snapshot{
		Text:    s.alg.Text(),
		Pattern: s.alg.Pattern(),
		State:   s.alg.State(),
		Offset:  s.alg.PatternOffset(),
		Last:    s.last,
	}
	start, end = snap.Highlight()
	return start, end, snap.State
}

// Snapshot describes a session for display or transmission.
type Snapshot struct {
	Algorithm string       `json:"algorithm" yaml:"algorithm"`
	Text      string       `json:"text" yaml:"text"`
	Pattern   string       `json:"pattern" yaml:"pattern"`
	State     search.State `json:"state" yaml:"state"`
	Ready     bool         `json:"ready" yaml:"ready"`
	Offset    int          `json:"offset" yaml:"offset"`
	Steps     int          `json:"steps" yaml:"steps"`
	Last      *Event       `json:"last,omitempty" yaml:"last,omitempty"`

	Failure      []int       `json:"failure,omitempty" yaml:"failure,omitempty"`
	BadCharacter []Shift     `json:"bad_character,omitempty" yaml:"bad_character,omitempty"`
	GoodSuffix   []int       `json:"good_suffix,omitempty" yaml:"good_suffix,omitempty"`
	Annotations  *Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Shift is one entry of a bad character table.
type Shift struct {
	Char  string `json:"char" yaml:"char"`
	Shift int    `json:"shift" yaml:"shift"`
}

// Annotation holds the per character labels of an Annotator.
type Annotation struct {
	Text    []int `json:"text,omitempty" yaml:"text,omitempty"`
	Pattern []int `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

type failureTabler interface{ FailureTable() []int }

type shiftTabler interface {
	BadCharacterTable() map[byte]int
	GoodSuffixTable() []int
}

// Snapshot copies the state of the session and the tables of its engine.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Algorithm: s.algorithm,
		Text:      s.alg.Text(),
		Pattern:   s.alg.Pattern(),
		State:     s.alg.State(),
		Ready:     s.alg.Ready(),
		Offset:    s.alg.PatternOffset(),
		Steps:     s.steps,
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	if snap.Pattern == `` {
		return snap
	}
	if alg, ok := s.alg.(failureTabler); ok {
		snap.Failure = alg.FailureTable()
	}
	if alg, ok := s.alg.(shiftTabler); ok {
		table := alg.BadCharacterTable()
		chars := maps.Keys(table)
		slices.Sort(chars)
		snap.BadCharacter = make([]Shift, len(chars))
		for i, c := range chars {
			snap.BadCharacter[i] = Shift{string(c), table[c]}
		}
		snap.GoodSuffix = alg.GoodSuffixTable()
	}
	if alg, ok := s.alg.(search.Annotator); ok {
		text, pattern := alg.Annotations()
		snap.Annotations = &Annotation{Text: text, Pattern: pattern}
	}
	return snap
}

// Highlight returns the range of text a display should colour: the match on MatchFound, the whole text on NoMatch,
// and the text character compared last while in progress.
func (snap Snapshot) Highlight() (start, end int) {
	switch snap.State {
	case search.MatchFound:
		return snap.Offset, snap.Offset + len(snap.Pattern)
	case search.NoMatch:
		return 0, len(snap.Text)
	}
	if snap.Last == nil {
		return 0, 0
	}
	return snap.Last.Info.TextIndex, snap.Last.Info.TextIndex + 1
}

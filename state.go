package search

import "fmt"

// State describes the progress of a search.
type State int

const (
	InProgress State = iota // more comparisons are needed
	MatchFound              // the pattern was found in the text
	NoMatch                 // the pattern cannot be found, or there is nothing to search
)

var stateNames = [...]string{
	InProgress: `in-progress`,
	MatchFound: `match-found`,
	NoMatch:    `no-match`,
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf(`state(%d)`, int(s))
	}
	return stateNames[s]
}

// Terminal is true for MatchFound and NoMatch.
func (s State) Terminal() bool { return s != InProgress }

// MarshalText implements encoding.TextMarshaler, which is also used by JSON and YAML encoders.
func (s State) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf(`invalid state %d`, int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(p []byte) error {
	for i, name := range stateNames {
		if name == string(p) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf(`invalid state %q`, p)
}

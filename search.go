// Package search describes resumable, single-step substring search algorithms.  Each call to Step performs exactly
// one character comparison, so a driver can replay the progress of an algorithm one comparison at a time.
package search

import (
	"fmt"
	"sort"
)

// Register will register a named algorithm implementation.  Registering the same name twice panics.
func Register(name string, fn func() Interface) {
	_, dup := implementations[name]
	if dup {
		panic(fmt.Errorf(`%w, %q`, errDuplicateAlgorithm{}, name))
	}
	implementations[name] = fn
}

// errDuplicateAlgorithm is returned when an algorithm is registered with a name that is already in use.
type errDuplicateAlgorithm struct{}

// Error implements the error interface by returning a static string, "duplicate algorithm"
func (errDuplicateAlgorithm) Error() string { return "duplicate algorithm" }

// New uses the named implementation to create a new, empty search algorithm.
func New(algorithm string) (Interface, error) {
	fn, ok := implementations[algorithm]
	if !ok {
		return nil, fmt.Errorf(`%w, %q`, ErrUnknownAlgorithm, algorithm)
	}
	return fn(), nil
}

// Algorithms returns the registered algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(implementations))
	for name := range implementations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// implementations maps algorithm names to their factory functions.
var implementations = map[string]func() Interface{}

// ErrUnknownAlgorithm is returned by New when an unknown algorithm is requested.
var ErrUnknownAlgorithm error = errUnknownAlgorithm{}

type errUnknownAlgorithm struct{}

// Error implements the error interface by returning a static string, "unknown algorithm"
func (errUnknownAlgorithm) Error() string { return "unknown algorithm" }

// Interface describes the operations shared by every stepwise matcher.
type Interface interface {
	// Ready is true if both text and pattern are non-empty and the search is still in progress.
	Ready() bool

	// State reports the progress of the search.  It never alters the search.
	State() State

	Text() string
	Pattern() string

	// SetText replaces the text being searched and restarts the search.
	SetText(string)

	// SetPattern replaces the pattern, rebuilds any tables derived from it and restarts the search.
	SetPattern(string)

	// PatternOffset returns the text index at which the pattern should be displayed.
	PatternOffset() int

	// Step performs one character comparison and returns it.  Once the search is over, Step returns the last
	// comparison without doing anything.
	Step() MatchInfo
}

// An Annotator is an Interface that can label each character of the text and pattern with a number taken from
// its preprocessing tables.  A nil slice means that row has no annotations.
type Annotator interface {
	Interface
	Annotations() (text, pattern []int)
}

// MatchInfo describes a single character comparison.
type MatchInfo struct {
	TextIndex    int  `json:"text" yaml:"text"`
	PatternIndex int  `json:"pattern" yaml:"pattern"`
	Match        bool `json:"match" yaml:"match"`
}

func (info MatchInfo) String() string {
	op := `!=`
	if info.Match {
		op = `==`
	}
	return fmt.Sprintf(`text[%d] %s pattern[%d]`, info.TextIndex, op, info.PatternIndex)
}

// Run steps alg until it reaches a terminal state or limit steps have been taken, returning the number of steps
// and the final state.  A limit of zero or less means no limit.
func Run(alg Interface, limit int) (steps int, state State) {
	for state = alg.State(); state == InProgress; state = alg.State() {
		if limit > 0 && steps >= limit {
			break
		}
		alg.Step()
		steps++
	}
	return steps, state
}

// MatchStart returns the text index where alg found the pattern, or -1 if it has not found it.
func MatchStart(alg Interface) int {
	if alg.State() != MatchFound {
		return -1
	}
	return alg.PatternOffset()
}

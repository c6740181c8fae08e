// Package msg describes the protocol used between the NATS client and the stepping worker.
package msg

import (
	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/session"
)

// WorkerRequest is sent to the worker subject to act on a session.  Only one of the pointer fields should be
// non-nil.
type WorkerRequest struct {
	// Session identifies the session.  It may be omitted when opening a session, in which case the worker picks one.
	Session string `json:"session,omitempty"`

	// Open creates a new session with an empty text and pattern.
	Open *OpenRequest `json:"open,omitempty"`

	// Load replaces the text, the pattern, or both, restarting the search.
	Load *LoadRequest `json:"load,omitempty"`

	// Step advances the search.
	Step *StepRequest `json:"step,omitempty"`

	// Snapshot asks for the current state of the session without changing it.
	Snapshot *SnapshotRequest `json:"snapshot,omitempty"`

	// Close discards the session.
	Close *CloseRequest `json:"close,omitempty"`
}

// OpenRequest names the algorithm used by a new session.
type OpenRequest struct {
	Algorithm string `json:"algorithm"`
}

// LoadRequest replaces the text and pattern of a session.  A nil field is left unchanged.
type LoadRequest struct {
	Text    *string `json:"text,omitempty"`
	Pattern *string `json:"pattern,omitempty"`
}

// StepRequest asks for Count steps, which defaults to one.  Stepping stops early once the search is over.
type StepRequest struct {
	Count int `json:"count,omitempty"`
}

// SnapshotRequest is intentionally empty.
type SnapshotRequest struct{}

// CloseRequest is intentionally empty.
type CloseRequest struct{}

// WorkerResponse is sent in reply to a WorkerRequest.  Every successful response carries a snapshot of the session
// after the request was applied.
type WorkerResponse struct {
	// Session matches the session of the request, or the session chosen by the worker for an Open request.
	Session string `json:"session,omitempty"`

	// Steps lists the comparisons made by a Step request.
	Steps []search.MatchInfo `json:"steps,omitempty"`

	// Snapshot describes the session after the request; it is omitted after Close and after most errors.  A Step
	// interrupted by shutdown keeps both Steps and Snapshot.
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`

	// Error is set if the request failed.
	Error *Error `json:"error,omitempty"`
}

// Error is used to indicate that a request failed.
type Error struct {
	Code int    `json:"code,omitempty"`
	Err  string `json:"error"`
}

// Error implements the error interface by returning the Err field, ignoring the Code field.
func (e Error) Error() string {
	return e.Err
}

// Error codes.
const (
	ErrUnknown            = iota // omitted error code, indicates an unknown error
	ErrIllegibleRequest          // request was not a valid JSON object
	ErrInvalidRequest            // request is missing required fields or has invalid values
	ErrUnsupportedCommand        // command was not found
	ErrSessionNotFound           // session was not found, usually because it was closed
	ErrShuttingDown              // worker is shutting down and will not accept new requests
	ErrBusy                      // worker already holds its maximum number of sessions
	ErrUnknownAlgorithm          // the requested algorithm is not registered
	ErrTooLarge                  // text or pattern exceeds the worker limit
)

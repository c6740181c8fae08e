package worker

import (
	"context"
	"strings"
	"testing"

	search "github.com/swdunlop/search-go"
	msg "github.com/swdunlop/search-go/nats/protocol"
)

func TestSessions(t *testing.T) {
	ctx := context.Background()
	ss := NewSessions(2, 8)
	text, pattern := `abcabd`, `abd`

	for _, test := range []struct {
		Name  string
		Req   msg.WorkerRequest
		Code  int // expected error code, or -1 for success
		Steps int
		State search.State
	}{
		{"open", msg.WorkerRequest{Session: `s1`, Open: &msg.OpenRequest{Algorithm: `kmp`}}, -1, 0, search.NoMatch},
		{"duplicate", msg.WorkerRequest{Session: `s1`, Open: &msg.OpenRequest{Algorithm: `kmp`}}, msg.ErrInvalidRequest, 0, 0},
		{"unknownAlgorithm", msg.WorkerRequest{Session: `s2`, Open: &msg.OpenRequest{Algorithm: `zz`}}, msg.ErrUnknownAlgorithm, 0, 0},
		{"load", msg.WorkerRequest{Session: `s1`, Load: &msg.LoadRequest{Text: &text, Pattern: &pattern}}, -1, 0, search.InProgress},
		{"tooLarge", msg.WorkerRequest{Session: `s1`, Load: &msg.LoadRequest{Text: ptr(`abcdefghi`)}}, msg.ErrTooLarge, 0, 0},
		{"step", msg.WorkerRequest{Session: `s1`, Step: &msg.StepRequest{}}, -1, 1, search.InProgress},
		{"stepMany", msg.WorkerRequest{Session: `s1`, Step: &msg.StepRequest{Count: 100}}, -1, 6, search.MatchFound},
		{"stepDone", msg.WorkerRequest{Session: `s1`, Step: &msg.StepRequest{Count: 3}}, -1, 0, search.MatchFound},
		{"snapshot", msg.WorkerRequest{Session: `s1`, Snapshot: &msg.SnapshotRequest{}}, -1, 0, search.MatchFound},
		{"noCommand", msg.WorkerRequest{Session: `s1`}, msg.ErrUnsupportedCommand, 0, 0},
		{"noSession", msg.WorkerRequest{Step: &msg.StepRequest{}}, msg.ErrInvalidRequest, 0, 0},
		{"missing", msg.WorkerRequest{Session: `s9`, Step: &msg.StepRequest{}}, msg.ErrSessionNotFound, 0, 0},
		{"openAnother", msg.WorkerRequest{Open: &msg.OpenRequest{Algorithm: `bm`}}, -1, 0, search.NoMatch},
		{"busy", msg.WorkerRequest{Open: &msg.OpenRequest{Algorithm: `bm`}}, msg.ErrBusy, 0, 0},
		{"close", msg.WorkerRequest{Session: `s1`, Close: &msg.CloseRequest{}}, -1, 0, 0},
		{"closed", msg.WorkerRequest{Session: `s1`, Snapshot: &msg.SnapshotRequest{}}, msg.ErrSessionNotFound, 0, 0},
	} {
		t.Run(test.Name, func(t *testing.T) {
			rsp := ss.Handle(ctx, &test.Req)
			if test.Code >= 0 {
				if rsp.Error == nil || rsp.Error.Code != test.Code {
					t.Fatalf(`got error %+v, want code %d`, rsp.Error, test.Code)
				}
				return
			}
			if rsp.Error != nil {
				t.Fatalf(`unexpected error %v`, rsp.Error)
			}
			if rsp.Session == `` {
				t.Errorf(`response has no session`)
			}
			if len(rsp.Steps) != test.Steps {
				t.Errorf(`got %d steps, want %d`, len(rsp.Steps), test.Steps)
			}
			if test.Req.Close != nil {
				if rsp.Snapshot != nil {
					t.Errorf(`close returned a snapshot`)
				}
				return
			}
			if rsp.Snapshot == nil || rsp.Snapshot.State != test.State {
				t.Errorf(`got snapshot %+v, want state %v`, rsp.Snapshot, test.State)
			}
		})
	}
	if ss.Len() != 1 {
		t.Errorf(`got %d sessions, want 1`, ss.Len())
	}
}

func TestDefaultMaxText(t *testing.T) {
	n := DefaultMaxText()
	if n < 16<<10 || n > 1<<20 {
		t.Errorf(`default text limit %d is out of range`, n)
	}
}

func TestLoadPartial(t *testing.T) {
	ss := NewSessions(0, 0)
	ctx := context.Background()
	ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Open: &msg.OpenRequest{Algorithm: `boyer-moore`}})
	ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Load: &msg.LoadRequest{Pattern: ptr(`example`)}})
	rsp := ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Load: &msg.LoadRequest{Text: ptr(strings.Repeat(`x`, 40) + `example`)}})
	if rsp.Error != nil || rsp.Snapshot.Pattern != `example` || !rsp.Snapshot.Ready {
		t.Fatalf(`got %+v`, rsp)
	}
	rsp = ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Step: &msg.StepRequest{Count: 1000}})
	if rsp.Snapshot.State != search.MatchFound || rsp.Snapshot.Offset != 40 {
		t.Errorf(`got %v at %d`, rsp.Snapshot.State, rsp.Snapshot.Offset)
	}
}

func ptr(s string) *string { return &s }

// stopAfter reports cancellation once it has been asked n times.
type stopAfter struct {
	context.Context
	n int
}

func (ctx *stopAfter) Err() error {
	if ctx.n <= 0 {
		return context.Canceled
	}
	ctx.n--
	return nil
}

func TestStepInterrupted(t *testing.T) {
	ss := NewSessions(0, 0)
	ctx := context.Background()
	text, pattern := `abcabd`, `abd`
	ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Open: &msg.OpenRequest{Algorithm: `kmp`}})
	ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Load: &msg.LoadRequest{Text: &text, Pattern: &pattern}})

	rsp := ss.Handle(&stopAfter{ctx, 2}, &msg.WorkerRequest{Session: `a`, Step: &msg.StepRequest{Count: 100}})
	if rsp.Error == nil || rsp.Error.Code != msg.ErrShuttingDown {
		t.Fatalf(`got error %+v, want code %d`, rsp.Error, msg.ErrShuttingDown)
	}
	if len(rsp.Steps) != 2 {
		t.Errorf(`got %d steps, want the 2 made before the interruption`, len(rsp.Steps))
	}
	if rsp.Snapshot == nil || rsp.Snapshot.Steps != 2 || rsp.Snapshot.State != search.InProgress {
		t.Errorf(`got snapshot %+v`, rsp.Snapshot)
	}

	rsp = ss.Handle(ctx, &msg.WorkerRequest{Session: `a`, Step: &msg.StepRequest{Count: 100}})
	if rsp.Error != nil || len(rsp.Steps) != 5 || rsp.Snapshot.State != search.MatchFound {
		t.Errorf(`resumed with %+v`, rsp)
	}
}

// Package nats steps search sessions held by a remote worker over NATS.  This is useful when the display and the
// engines run in different processes.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/configuration"
	"github.com/swdunlop/search-go/internal/slog"
	"github.com/swdunlop/search-go/nats/internal"
	msg "github.com/swdunlop/search-go/nats/protocol"
	"github.com/swdunlop/search-go/nats/worker"
	"github.com/swdunlop/search-go/session"
)

// NewNATS creates a client using the provided NATS connection and configuration.  If conn is nil, the client dials
// its own connection using the nats_* configuration items, and closes it on Release.
func NewNATS(conn *nats.Conn, cf configuration.Interface) (*Client, error) {
	ct := new(Client)
	ct.options = ClientOptions{
		Options:       internal.Options{URL: nats.DefaultURL, ClientName: `search-client`},
		WorkerSubject: worker.DefaultSubject,
	}
	err := configuration.Unmarshal(&ct.options, cf)
	if err != nil {
		return nil, err
	}
	ct.conn = conn
	if ct.conn == nil {
		ct.conn, err = ct.options.Dial(nats.ErrorHandler(ct.handleNatsError))
		if err != nil {
			return nil, err
		}
		ct.release = ct.conn.Close
	}
	ct.nuid = nuid.New()
	return ct, nil
}

// Client opens sessions on a worker.
type Client struct {
	options ClientOptions
	conn    *nats.Conn
	release func() // used if NewNATS opened the connection
	nuid    *nuid.NUID
}

// ClientOptions describes the options used to create a NATS client.
type ClientOptions struct {
	internal.Options

	// WorkerSubject identifies the NATS subject where requests should be sent.  This defaults to
	// search.worker.default, which matches the worker's default.
	WorkerSubject string `cfg:"worker_subject"`
}

func (ct *Client) handleNatsError(conn *nats.Conn, sub *nats.Subscription, err error) {
	if sub == nil {
		slog.Error(`nats error`, `error`, err)
		return
	}
	slog.Error(`nats error`, `error`, err, `subject`, sub.Subject)
}

// Release closes the NATS connection if NewNATS opened it.
func (ct *Client) Release() {
	if ct.release != nil {
		ct.release()
	}
	ct.conn = nil
}

// Open creates a session for the named algorithm on the worker.
func (ct *Client) Open(ctx context.Context, algorithm string) (*Session, error) {
	s := &Session{ct: ct, id: ct.nuid.Next()}
	_, err := s.request(ctx, &msg.WorkerRequest{Open: &msg.OpenRequest{Algorithm: algorithm}})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// A Session is a remote search session.  The state accessors report the snapshot returned by the most recent
// request, so they never block.
type Session struct {
	ct   *Client
	id   string
	snap session.Snapshot
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) State() search.State        { return s.snap.State }
func (s *Session) Ready() bool                { return s.snap.Ready }
func (s *Session) PatternOffset() int         { return s.snap.Offset }
func (s *Session) Snapshot() session.Snapshot { return s.snap }

func (s *Session) SetText(ctx context.Context, text string) error {
	_, err := s.request(ctx, &msg.WorkerRequest{Load: &msg.LoadRequest{Text: &text}})
	return err
}

func (s *Session) SetPattern(ctx context.Context, pattern string) error {
	_, err := s.request(ctx, &msg.WorkerRequest{Load: &msg.LoadRequest{Pattern: &pattern}})
	return err
}

// Load replaces both the text and the pattern with one request.
func (s *Session) Load(ctx context.Context, text, pattern string) error {
	_, err := s.request(ctx, &msg.WorkerRequest{Load: &msg.LoadRequest{Text: &text, Pattern: &pattern}})
	return err
}

// Step performs one comparison.  Once the search is over, it returns the last comparison again.
func (s *Session) Step(ctx context.Context) (search.MatchInfo, error) {
	steps, err := s.StepN(ctx, 1)
	if err != nil {
		return search.MatchInfo{}, err
	}
	if len(steps) == 0 {
		if s.snap.Last != nil {
			return s.snap.Last.Info, nil
		}
		return search.MatchInfo{}, nil
	}
	return steps[0], nil
}

// StepN performs up to n comparisons, stopping early when the search is over.
func (s *Session) StepN(ctx context.Context, n int) ([]search.MatchInfo, error) {
	rsp, err := s.request(ctx, &msg.WorkerRequest{Step: &msg.StepRequest{Count: n}})
	if rsp == nil {
		return nil, err
	}
	return rsp.Steps, err
}

// Refresh fetches a new snapshot from the worker.
func (s *Session) Refresh(ctx context.Context) (session.Snapshot, error) {
	_, err := s.request(ctx, &msg.WorkerRequest{Snapshot: &msg.SnapshotRequest{}})
	return s.snap, err
}

// Close discards the session on the worker.
func (s *Session) Close(ctx context.Context) error {
	_, err := s.request(ctx, &msg.WorkerRequest{Close: &msg.CloseRequest{}})
	return err
}

func (s *Session) request(ctx context.Context, req *msg.WorkerRequest) (*msg.WorkerResponse, error) {
	if s.ct.conn == nil {
		return nil, fmt.Errorf(`client released`)
	}
	req.Session = s.id
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	slog.From(ctx).Debug(`sending request`, `subject`, s.ct.options.WorkerSubject, `session`, s.id)
	nm, err := s.ct.conn.RequestWithContext(ctx, s.ct.options.WorkerSubject, data)
	if err != nil {
		return nil, err
	}
	var rsp msg.WorkerResponse
	err = json.Unmarshal(nm.Data, &rsp)
	if err != nil {
		return nil, err
	}
	if rsp.Snapshot != nil {
		s.snap = *rsp.Snapshot
	}
	if rsp.Error != nil {
		return &rsp, *rsp.Error
	}
	return &rsp, nil
}

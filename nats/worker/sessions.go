package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nuid"
	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/internal/slog"
	msg "github.com/swdunlop/search-go/nats/protocol"
	"github.com/swdunlop/search-go/session"
)

// NewSessions returns an empty set of sessions limited to maxSessions sessions and maxText bytes of text or pattern.
// Zero disables a limit.
func NewSessions(maxSessions, maxText int) *Sessions {
	return &Sessions{
		sessions:    make(map[string]*session.Session),
		nuid:        nuid.New(),
		maxSessions: maxSessions,
		maxText:     maxText,
	}
}

// Sessions handles protocol requests without any transport.  It is not safe for concurrent use; workers feed it one
// request at a time, which keeps every engine single threaded.
type Sessions struct {
	sessions    map[string]*session.Session
	nuid        *nuid.NUID
	maxSessions int
	maxText     int
}

// Len returns the number of open sessions.
func (ss *Sessions) Len() int { return len(ss.sessions) }

// Handle applies req and returns the response that should be sent back.
func (ss *Sessions) Handle(ctx context.Context, req *msg.WorkerRequest) *msg.WorkerResponse {
	if req.Open != nil {
		return ss.open(ctx, req)
	}
	if req.Session == `` {
		return reject(req.Session, msg.ErrInvalidRequest, `session id is required`)
	}
	s, ok := ss.sessions[req.Session]
	if !ok {
		return reject(req.Session, msg.ErrSessionNotFound, `session not found`)
	}
	log := slog.From(ctx, `session`, req.Session)
	rsp := &msg.WorkerResponse{Session: req.Session}
	switch {
	case req.Load != nil:
		if err := ss.load(s, req.Load); err != nil {
			return reject(req.Session, msg.ErrTooLarge, err.Error())
		}
		log.Debug(`loaded session`, `state`, s.Engine().State())
	case req.Step != nil:
		count := req.Step.Count
		if count <= 0 {
			count = 1
		}
		events, err := s.Run(ctx, count)
		for _, evt := range events {
			rsp.Steps = append(rsp.Steps, evt.Info)
		}
		if err != nil {
			// the engine has moved on, so report the comparisons that were made before the interruption.
			rej := reject(req.Session, msg.ErrShuttingDown, err.Error())
			rej.Steps = rsp.Steps
			snap := s.Snapshot()
			rej.Snapshot = &snap
			return rej
		}
	case req.Snapshot != nil:
		// nothing to do
	case req.Close != nil:
		delete(ss.sessions, req.Session)
		log.Debug(`closed session`, `sessions`, len(ss.sessions))
		return rsp
	default:
		return reject(req.Session, msg.ErrUnsupportedCommand, `command not supported`)
	}
	snap := s.Snapshot()
	rsp.Snapshot = &snap
	return rsp
}

func (ss *Sessions) open(ctx context.Context, req *msg.WorkerRequest) *msg.WorkerResponse {
	id := req.Session
	if id == `` {
		id = ss.nuid.Next()
	}
	if _, dup := ss.sessions[id]; dup {
		return reject(id, msg.ErrInvalidRequest, `session already open`)
	}
	if ss.maxSessions > 0 && len(ss.sessions) >= ss.maxSessions {
		return reject(id, msg.ErrBusy, `too many sessions`)
	}
	s, err := session.New(req.Open.Algorithm)
	switch {
	case errors.Is(err, search.ErrUnknownAlgorithm):
		return reject(id, msg.ErrUnknownAlgorithm, err.Error())
	case err != nil:
		return reject(id, msg.ErrUnknown, err.Error())
	}
	ss.sessions[id] = s
	slog.From(ctx).Debug(`opened session`, `session`, id, `algorithm`, req.Open.Algorithm, `sessions`, len(ss.sessions))
	snap := s.Snapshot()
	return &msg.WorkerResponse{Session: id, Snapshot: &snap}
}

func (ss *Sessions) load(s *session.Session, req *msg.LoadRequest) error {
	for _, str := range []*string{req.Text, req.Pattern} {
		if str != nil && ss.maxText > 0 && len(*str) > ss.maxText {
			return fmt.Errorf(`%d bytes exceeds the limit of %d`, len(*str), ss.maxText)
		}
	}
	switch {
	case req.Text != nil && req.Pattern != nil:
		s.Load(*req.Text, *req.Pattern)
	case req.Text != nil:
		s.SetText(*req.Text)
	case req.Pattern != nil:
		s.SetPattern(*req.Pattern)
	}
	return nil
}

func reject(session string, code int, message string) *msg.WorkerResponse {
	return &msg.WorkerResponse{
		Session: session,
		Error:   &msg.Error{Code: code, Err: message},
	}
}

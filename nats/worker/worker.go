// Package worker serves stepping sessions over NATS request/reply.
package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/pbnjay/memory"
	"github.com/swdunlop/search-go/configuration"
	"github.com/swdunlop/search-go/internal/slog"
	"github.com/swdunlop/search-go/nats/internal"
	msg "github.com/swdunlop/search-go/nats/protocol"
)

// DefaultSubject is the subject used by workers and clients unless configured otherwise.
const DefaultSubject = `search.worker.default`

// Run will run a NATS-based worker with the provided configuration until ctx is done.
func Run(ctx context.Context, cf configuration.Interface, options ...Option) error {
	var w worker
	w.options = Options{
		Options:       internal.Options{URL: nats.DefaultURL, ClientName: `search-worker`},
		WorkerSubject: DefaultSubject,
		MaxSessions:   1024,
		MaxText:       DefaultMaxText(),
	}
	err := configuration.Unmarshal(&w.options, cf)
	if err != nil {
		return err
	}
	for _, opt := range options {
		opt(&w)
		if w.err != nil {
			return w.err
		}
	}
	w.sessions = NewSessions(w.options.MaxSessions, w.options.MaxText)

	if w.conn == nil {
		w.conn, err = w.options.Dial()
		if err != nil {
			return err
		}
		defer w.conn.Close()
	}

	ch := make(chan *nats.Msg, 64)
	slog.From(ctx).Debug(`subscribing to worker subject`, `subject`, w.options.WorkerSubject)
	sub, err := w.conn.ChanQueueSubscribe(w.options.WorkerSubject, `search-worker`, ch)
	if err != nil {
		return err
	}

	unsubscribed := make(chan struct{})
	defer func() { <-unsubscribed }()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(unsubscribed)
		<-ctx.Done()
		err := sub.Unsubscribe()
		if err != nil {
			slog.Warn(`failed to unsubscribe from worker subject`, `subject`, w.options.WorkerSubject, `err`, err)
		}
		close(ch)
	}()

	slog.From(ctx).Info(`worker ready`, `subject`, w.options.WorkerSubject,
		`max_sessions`, w.options.MaxSessions, `max_text`, w.options.MaxText)
	for nm := range ch {
		w.process(ctx, nm)
	}
	return nil
}

// Options describes the configuration options for a NATS-based worker.
type Options struct {
	internal.Options

	// WorkerSubject is the NATS subject to subscribe to, defaults to search.worker.default.
	WorkerSubject string `cfg:"worker_subject"`

	// MaxSessions limits the number of open sessions, defaults to 1024.
	MaxSessions int `cfg:"max_sessions"`

	// MaxText limits the size of a text or pattern in bytes, defaults to DefaultMaxText.
	MaxText int `cfg:"max_text"`
}

// DefaultMaxText scales the text limit with the memory of the host, between 16 KiB and the 1 MiB default NATS
// payload.
func DefaultMaxText() int {
	const lo, hi = 16 << 10, 1 << 20
	n := memory.TotalMemory() / 16384
	switch {
	case n == 0:
		return hi // unknown
	case n < lo:
		return lo
	case n > hi:
		return hi
	}
	return int(n)
}

type worker struct {
	options  Options
	hooks    []func(ctx context.Context, req *msg.WorkerRequest) error
	conn     *nats.Conn
	sessions *Sessions
	err      error
}

// process handles one request at a time, so sessions never see concurrent use.
func (w *worker) process(ctx context.Context, nm *nats.Msg) {
	var req msg.WorkerRequest
	err := json.Unmarshal(nm.Data, &req)
	if err != nil {
		w.respond(ctx, nm.Reply, reject(``, msg.ErrIllegibleRequest, err.Error()))
		return
	}
	if ctx.Err() != nil {
		w.respond(ctx, nm.Reply, reject(req.Session, msg.ErrShuttingDown, `worker shutting down`))
		return
	}
	for _, hook := range w.hooks {
		err := hook(ctx, &req)
		var e msg.Error
		switch {
		case err == nil:
			continue
		case errors.As(err, &e):
			w.respond(ctx, nm.Reply, reject(req.Session, e.Code, e.Err))
		default:
			w.respond(ctx, nm.Reply, reject(req.Session, msg.ErrUnknown, err.Error()))
		}
		return
	}
	w.respond(ctx, nm.Reply, w.sessions.Handle(ctx, &req))
}

func (w *worker) respond(ctx context.Context, subject string, rsp *msg.WorkerResponse) {
	if subject == `` {
		return // nobody is listening
	}
	data, err := json.Marshal(rsp)
	if err != nil {
		panic(err)
	}
	err = w.conn.Publish(subject, data)
	if err != nil {
		slog.From(ctx).Error(`failed to publish response`, `subject`, subject, `err`, err)
	}
}

// An Option is a function that alters a worker's behavior.
type Option func(*worker)

// Hook adds a function that is called before each request is handled.  If it returns an error, the request is
// rejected; a msg.Error keeps its code.
func Hook(hook func(ctx context.Context, req *msg.WorkerRequest) error) Option {
	return func(w *worker) { w.hooks = append(w.hooks, hook) }
}

// Conn sets the NATS connection to use for getting requests and publishing responses.  This is an alternative to
// letting the worker manage its own connection.
func Conn(conn *nats.Conn) Option {
	return func(w *worker) {
		if w.conn != nil {
			w.err = errors.New(`only one NATS connection is used by a worker`)
		}
		w.conn = conn
	}
}

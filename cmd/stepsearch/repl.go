package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/nats"
	"github.com/swdunlop/search-go/session"
)

// A stepper is a search session the REPL can drive, held either in process or by a NATS worker.
type stepper interface {
	SetText(ctx context.Context, text string) error
	SetPattern(ctx context.Context, pattern string) error
	StepN(ctx context.Context, n int) ([]search.MatchInfo, error)
	Snapshot() session.Snapshot
	Close(ctx context.Context) error
}

type opener func(ctx context.Context, algorithm string) (stepper, error)

func openLocal(ctx context.Context, algorithm string) (stepper, error) {
	s, err := session.New(algorithm)
	if err != nil {
		return nil, err
	}
	return localSession{s}, nil
}

type localSession struct{ s *session.Session }

func (ls localSession) SetText(ctx context.Context, text string) error {
	ls.s.SetText(text)
	return nil
}

func (ls localSession) SetPattern(ctx context.Context, pattern string) error {
	ls.s.SetPattern(pattern)
	return nil
}

func (ls localSession) StepN(ctx context.Context, n int) ([]search.MatchInfo, error) {
	events, err := ls.s.Run(ctx, n)
	steps := make([]search.MatchInfo, len(events))
	for i, evt := range events {
		steps[i] = evt.Info
	}
	return steps, err
}

func (ls localSession) Snapshot() session.Snapshot      { return ls.s.Snapshot() }
func (ls localSession) Close(ctx context.Context) error { return nil }

func runClient(ctx context.Context) error {
	cf, opts, err := configure()
	if err != nil {
		return err
	}
	ct, err := nats.NewNATS(nil, cf)
	if err != nil {
		return err
	}
	defer ct.Release()
	return repl(ctx, opts, func(ctx context.Context, algorithm string) (stepper, error) {
		s, err := ct.Open(ctx, algorithm)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func repl(ctx context.Context, opts *options, open opener) error {
	rl, err := readline.New(`> `)
	if err != nil {
		return err
	}
	defer rl.Close()

	r := &replState{w: rl.Stdout(), open: open, algorithm: opts.Algorithm, text: opts.Text, pattern: opts.Pattern}
	err = r.reopen(ctx, opts.Algorithm)
	if err != nil {
		return err
	}
	defer func() { _ = r.s.Close(context.Background()) }()
	_ = render(r.w, r.s.Snapshot())

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		err = r.exec(ctx, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			fmt.Fprintf(r.w, "!! %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

var errQuit = errors.New(`quit`)

type replState struct {
	w         io.Writer
	open      opener
	s         stepper
	algorithm string
	text      string
	pattern   string
}

const replHelp = `commands:
  text <text>          replaces the text and restarts the search
  pattern <pattern>    replaces the pattern and restarts the search
  algorithm <name>     switches the algorithm, keeping the text and pattern
  step [n]             performs one or n comparisons
  run                  steps until the search is over
  tables               lists the preprocessing tables
  reset                restarts the search
  quit                 exits
`

func (r *replState) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), ` `)
	switch strings.ToLower(cmd) {
	case ``:
		return r.step(ctx, 1)
	case `help`, `?`:
		_, err := io.WriteString(r.w, replHelp)
		return err
	case `quit`, `exit`:
		return errQuit
	case `text`:
		r.text = arg
		if err := r.s.SetText(ctx, arg); err != nil {
			return err
		}
	case `pattern`:
		r.pattern = arg
		if err := r.s.SetPattern(ctx, arg); err != nil {
			return err
		}
	case `algorithm`, `alg`:
		if arg == `` {
			_, err := fmt.Fprintf(r.w, "%s (one of %s)\n", r.algorithm, strings.Join(search.Algorithms(), `, `))
			return err
		}
		prev := r.s
		if err := r.reopen(ctx, arg); err != nil {
			return err
		}
		_ = prev.Close(ctx)
	case `step`, `s`:
		n := 1
		if arg != `` {
			var err error
			n, err = strconv.Atoi(arg)
			if err != nil || n < 1 {
				return fmt.Errorf(`expected a positive step count, got %q`, arg)
			}
		}
		return r.step(ctx, n)
	case `run`, `r`:
		if _, err := r.s.StepN(ctx, r.remaining()); err != nil {
			return err
		}
		snap := r.s.Snapshot()
		if err := render(r.w, snap); err != nil {
			return err
		}
		return renderSummary(r.w, snap)
	case `tables`:
		return renderTables(r.w, r.s.Snapshot())
	case `reset`:
		if err := r.s.SetText(ctx, r.text); err != nil {
			return err
		}
	default:
		return fmt.Errorf(`unknown command %q, try help`, cmd)
	}
	return render(r.w, r.s.Snapshot())
}

// reopen replaces the session with a new one for algorithm, loaded with the current text and pattern.
func (r *replState) reopen(ctx context.Context, algorithm string) error {
	s, err := r.open(ctx, algorithm)
	if err != nil {
		return err
	}
	err = s.SetText(ctx, r.text)
	if err == nil {
		err = s.SetPattern(ctx, r.pattern)
	}
	if err != nil {
		_ = s.Close(ctx)
		return err
	}
	r.s, r.algorithm = s, algorithm
	return nil
}

func (r *replState) step(ctx context.Context, n int) error {
	steps, err := r.s.StepN(ctx, n)
	if err != nil {
		return err
	}
	snap := r.s.Snapshot()
	if len(steps) == 0 {
		return renderSummary(r.w, snap)
	}
	if err := render(r.w, snap); err != nil {
		return err
	}
	if snap.State.Terminal() {
		return renderSummary(r.w, snap)
	}
	return nil
}

// remaining bounds a run by the worst case number of comparisons for the loaded text and pattern.
func (r *replState) remaining() int {
	return 4*len(r.text) + len(r.pattern) + 1
}

// Package script runs zygomys batch scripts against a CANDE model. A
// script selects elements and edits them through a small set of builtins;
// it runs on a copy of the model and the copy is handed back only when the
// whole script succeeds.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"candedit/internal/cande"
	"candedit/internal/selection"
	"candedit/internal/synth"
)

// DefaultTimeout bounds a script run when the Runner has none set.
const DefaultTimeout = 5 * time.Second

// Error is a script failure. Err holds the model error that stopped the
// script, if any, for errors.As.
type Error struct {
	Line int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("script line %d: %s", e.Line, e.Msg)
	}
	return "script: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrTimeout is returned when a script runs past its deadline.
var ErrTimeout = errors.New("script timed out")

// Result is the outcome of a successful run.
type Result struct {
	Model    *cande.Model
	Selected []cande.ElementID
	Created  []cande.ElementID
	Value    string // printed value of the last expression
}

// Runner evaluates scripts. The zero value is usable.
type Runner struct {
	Log     *slog.Logger
	Timeout time.Duration
}

type runResult struct {
	res *Result
	err error
}

// Run evaluates src against a clone of m. m itself is never modified.
func (r *Runner) Run(ctx context.Context, m *cande.Model, src string) (*Result, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return wait(ctx, start(m, src, log))
}

// start evaluates src in the background on a copy of m taken before it
// returns, so the caller may change m again once Run gives up waiting.
func start(m *cande.Model, src string, log *slog.Logger) <-chan runResult {
	work := m.Clone()
	ch := make(chan runResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- runResult{err: &Error{Msg: fmt.Sprintf("panic: %v", p)}}
			}
		}()
		res, err := evaluate(work, src, log)
		ch <- runResult{res: res, err: err}
	}()
	return ch
}

func wait(ctx context.Context, ch <-chan runResult) (*Result, error) {
	select {
	case rr := <-ch:
		return rr.res, rr.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

func evaluate(m *cande.Model, src string, log *slog.Logger) (*Result, error) {
	s := &session{m: m, sel: selection.New(), synth: synth.New(log), log: log}
	if strings.TrimSpace(src) == "" {
		return s.result(zygo.SexpNull), nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	s.register(env)

	if err := env.LoadString(preprocess(src)); err != nil {
		return nil, s.fail(err)
	}
	v, err := env.Run()
	if err != nil {
		return nil, s.fail(err)
	}
	log.Debug("script finished", slog.Int("selected", s.sel.Len()), slog.Int("created", len(s.created)))
	return s.result(v), nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// fail converts an interpreter error, attaching the builtin error that
// caused it when there is one.
func (s *session) fail(err error) error {
	msg := strings.TrimSpace(err.Error())
	e := &Error{Msg: msg, Err: s.err}
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if g := p.FindStringSubmatch(msg); g != nil {
			e.Line, _ = strconv.Atoi(g[1])
			e.Msg = strings.TrimSpace(g[2])
			break
		}
	}
	return e
}

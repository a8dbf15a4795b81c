// Package orchestrator runs one upload: classify the payload, resolve the
// candidate providers and try them in order until one succeeds.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zinc-sig/pst/internal/classify"
	"github.com/zinc-sig/pst/internal/registry"
	"github.com/zinc-sig/pst/internal/upload"
)

// Resolver produces the ordered candidate list for a request
type Resolver interface {
	Resolve(size int64, kind upload.Kind, group, provider string) (registry.CandidateList, error)
	HasGroup(name string) bool
}

// Executor runs one provider with retries
type Executor interface {
	Execute(ctx context.Context, adapter upload.Adapter, req *upload.Request, record func(upload.AttemptRecord)) (*upload.Success, error)
}

// TransformFunc rewrites the payload after classification, for example to
// strip metadata from images
type TransformFunc func(c classify.Classification, data []byte) ([]byte, error)

// Input is the raw payload and the caller's options for one run
type Input struct {
	Payload      []byte
	Filename     string // explicit or derived from the input path, may be empty
	ExplicitName bool
	Expires      string
	Provider     string
	Group        string

	// OnAttempt is called after every attempt, in order
	OnAttempt func(upload.AttemptRecord)

	// WrapBody, when set, wraps the body reader of every attempt against
	// the named provider. size is the length of the body after transforms.
	WrapBody func(provider string, size int64) func(io.Reader) io.Reader
}

// Status is the terminal status of a run
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the outcome of one run. It is owned by the caller.
type Result struct {
	Status         Status
	Provider       string
	URL            string
	Duration       time.Duration
	Classification classify.Classification
	Group          string // group used for resolution, empty for default order
	Candidates     []string
	Attempts       []upload.AttemptRecord
	Err            *RunError
}

// Succeeded reports whether the run ended in success
func (r *Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Orchestrator is safe for concurrent runs; each run keeps its own state
type Orchestrator struct {
	resolver  Resolver
	executor  Executor
	deadline  time.Duration
	autoGroup bool
	transform TransformFunc
	now       func() time.Time
	log       *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithDeadline bounds each run; zero means no overall deadline
func WithDeadline(d time.Duration) Option {
	return func(o *Orchestrator) { o.deadline = d }
}

// WithAutoGroup makes runs without a forced provider or group use the
// classifier's suggested group when it is defined
func WithAutoGroup(enabled bool) Option {
	return func(o *Orchestrator) { o.autoGroup = enabled }
}

// WithTransform installs a payload transform applied before resolution
func WithTransform(fn TransformFunc) Option {
	return func(o *Orchestrator) { o.transform = fn }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator
func New(resolver Resolver, executor Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		executor: executor,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs one forward pass over the state machine and always returns
// a result; failures are reported in Result.Err.
func (o *Orchestrator) Run(ctx context.Context, in Input) *Result {
	start := o.now()
	if o.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.deadline)
		defer cancel()
	}

	m := &machine{log: o.log}
	res := &Result{}
	finish := func() *Result {
		res.Duration = o.now().Sub(start)
		if res.Err == nil {
			res.Status = StatusSuccess
			m.advance(StateSuccess, -1)
		} else {
			res.Status = StatusFailure
			m.advance(StateExhausted, -1)
		}
		return res
	}
	fail := func(reason Reason, msg string, err error) *Result {
		res.Err = &RunError{Reason: reason, Message: msg, Err: err}
		return finish()
	}

	prep, rerr := o.prepare(in, m)
	if rerr != nil {
		res.Classification = rerr.class
		res.Err = rerr.err
		return finish()
	}
	res.Classification = prep.class
	res.Group = prep.group
	res.Candidates = prep.candidates.Names()
	req, candidates := prep.req, prep.candidates

	record := func(r upload.AttemptRecord) {
		res.Attempts = append(res.Attempts, r)
		if in.OnAttempt != nil {
			in.OnAttempt(r)
		}
	}

	var failures []providerFailure
	for i := 0; i < candidates.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return fail(interruptReason(err), interruptMessage(err), err)
		}
		adapter := candidates.At(i)
		m.advance(StateAttempting, i)

		attemptReq := req
		if in.WrapBody != nil {
			if wrap := in.WrapBody(adapter.Name(), req.Size()); wrap != nil {
				attemptReq = req.WithBodyWrapper(wrap)
			}
		}

		success, err := o.executor.Execute(ctx, adapter, attemptReq, record)
		if err == nil && success == nil {
			err = upload.NewError(adapter.Name(), upload.ErrRemoteRejected, "provider returned no result", nil)
		}
		if err == nil {
			res.Provider = success.Provider
			if res.Provider == "" {
				res.Provider = adapter.Name()
			}
			res.URL = success.URL
			return finish()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(interruptReason(ctxErr), interruptMessage(ctxErr), ctxErr)
		}
		o.log.Info("provider failed, moving on", "provider", adapter.Name(), "error", err)
		failures = append(failures, providerFailure{provider: adapter.Name(), err: err})
	}

	res.Err = exhausted(failures)
	return finish()
}

type prepared struct {
	class      classify.Classification
	req        *upload.Request
	group      string
	candidates registry.CandidateList
}

type prepareError struct {
	class classify.Classification
	err   *RunError
}

// prepare classifies, transforms and resolves candidates
func (o *Orchestrator) prepare(in Input, m *machine) (*prepared, *prepareError) {
	m.advance(StateClassifying, -1)
	c, err := classify.Classify(in.Payload, in.Filename)
	if err != nil {
		return nil, &prepareError{err: &RunError{Reason: ReasonClassification, Message: "cannot classify input", Err: err}}
	}
	o.log.Debug("classified input", "kind", c.Kind.String(), "filename", c.Filename, "mime", c.MIME, "size", len(in.Payload))

	payload := in.Payload
	if o.transform != nil {
		out, err := o.transform(c, payload)
		if err != nil {
			o.log.Warn("payload transform failed, uploading original bytes", "error", err)
		} else {
			payload = out
		}
	}

	req := upload.NewRequest(upload.RequestParams{
		Payload:      payload,
		Filename:     c.Filename,
		Kind:         c.Kind,
		ExplicitName: in.ExplicitName,
		Expires:      in.Expires,
		Provider:     in.Provider,
		Group:        in.Group,
	})

	m.advance(StateResolving, -1)
	group := in.Group
	if group == "" && in.Provider == "" && o.autoGroup && o.resolver.HasGroup(c.SuggestedGroup) {
		group = c.SuggestedGroup
		o.log.Debug("using suggested group", "group", group)
	}

	candidates, err := o.resolver.Resolve(req.Size(), c.Kind, group, in.Provider)
	if err != nil {
		return nil, &prepareError{class: c, err: &RunError{Reason: ReasonConfig, Message: "cannot resolve providers", Err: err}}
	}
	if candidates.Len() == 0 {
		return nil, &prepareError{class: c, err: &RunError{Reason: ReasonNoCandidates, Message: noCandidatesMessage(req, group)}}
	}
	return &prepared{class: c, req: req, group: group, candidates: candidates}, nil
}

// Plan describes what a run would do without uploading anything
type Plan struct {
	Classification classify.Classification
	Size           int64
	Group          string
	Candidates     []string
}

// Plan classifies the input and resolves candidates without attempting
// any upload
func (o *Orchestrator) Plan(in Input) (*Plan, error) {
	prep, perr := o.prepare(in, &machine{log: o.log})
	if perr != nil {
		return nil, perr.err
	}
	return &Plan{
		Classification: prep.class,
		Size:           prep.req.Size(),
		Group:          prep.group,
		Candidates:     prep.candidates.Names(),
	}, nil
}

func interruptReason(err error) Reason {
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}
	return ReasonDeadline
}

func interruptMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "upload canceled"
	}
	return "overall deadline exceeded"
}

func noCandidatesMessage(req *upload.Request, group string) string {
	scope := "configured providers"
	if group != "" {
		scope = fmt.Sprintf("providers in group %q", group)
	}
	return fmt.Sprintf("no enabled %s accept a %d byte %s payload", scope, req.Size(), req.Kind())
}

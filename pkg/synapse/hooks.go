package synapse

import (
	"context"
	"net/http"
	"time"
)

// Stage is a point in the invocation lifecycle
type Stage string

const (
	StageBuilt      Stage = "built"
	StageDispatched Stage = "dispatched"
	StageSuccess    Stage = "success"
	StageFailed     Stage = "failed"
	StageCompleted  Stage = "completed"
)

// Event is a snapshot of an invocation handed to observers. Observers get
// their own copy, so changing it has no effect on the request.
type Event struct {
	InvocationID string
	Client       string
	Operation    string
	Stage        Stage
	Method       string
	URL          string
	Header       http.Header
	Scope        Scope
	StatusCode   int
	Body         string
	Err          error
	Started      time.Time
	Elapsed      time.Duration
}

// Observer receives lifecycle notifications. Before fires once the request
// is built, After on a success status, Fail on a non-success status, and
// Error for any error raised after the request was built.
type Observer interface {
	Before(ctx context.Context, e Event)
	After(ctx context.Context, e Event)
	Fail(ctx context.Context, e Event)
	Error(ctx context.Context, e Event)
}

// NopObserver implements Observer with no-ops. Embed it to override only
// the hooks you need.
type NopObserver struct{}

func (NopObserver) Before(context.Context, Event) {}
func (NopObserver) After(context.Context, Event)  {}
func (NopObserver) Fail(context.Context, Event)   {}
func (NopObserver) Error(context.Context, Event)  {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnBefore func(context.Context, Event)
	OnAfter  func(context.Context, Event)
	OnFail   func(context.Context, Event)
	OnError  func(context.Context, Event)
}

func (o ObserverFuncs) Before(ctx context.Context, e Event) {
	if o.OnBefore != nil {
		o.OnBefore(ctx, e)
	}
}

func (o ObserverFuncs) After(ctx context.Context, e Event) {
	if o.OnAfter != nil {
		o.OnAfter(ctx, e)
	}
}

func (o ObserverFuncs) Fail(ctx context.Context, e Event) {
	if o.OnFail != nil {
		o.OnFail(ctx, e)
	}
}

func (o ObserverFuncs) Error(ctx context.Context, e Event) {
	if o.OnError != nil {
		o.OnError(ctx, e)
	}
}

// hookSet dispatches method-level observers before interface-level ones
type hookSet []Observer

func (h hookSet) before(ctx context.Context, e Event) {
	for _, o := range h {
		o.Before(ctx, e.copy())
	}
}

func (h hookSet) after(ctx context.Context, e Event) {
	for _, o := range h {
		o.After(ctx, e.copy())
	}
}

func (h hookSet) fail(ctx context.Context, e Event) {
	for _, o := range h {
		o.Fail(ctx, e.copy())
	}
}

func (h hookSet) error(ctx context.Context, e Event) {
	for _, o := range h {
		o.Error(ctx, e.copy())
	}
}

func (e Event) copy() Event {
	e.Header = e.Header.Clone()
	return e
}

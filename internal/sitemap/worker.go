package sitemap

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner produces a sitemap. *Generator implements it.
type Runner interface {
	Generate(ctx context.Context) (Result, error)
}

// Submitter accepts regeneration requests without blocking the caller.
type Submitter interface {
	Submit(reason string) bool
}

// Task is one queued regeneration request.
type Task struct {
	ID          string
	Reason      string
	SubmittedAt time.Time
}

// Outcome is handed to the OnDone callback after every run.
type Outcome struct {
	Task     Task
	Result   Result
	Err      error
	Duration time.Duration
}

// Regenerator runs sitemap generation on a single background goroutine.
// Requests arriving while the buffer is full are dropped: the queued run
// will already see their changes.
type Regenerator struct {
	runner  Runner
	log     Logger
	timeout time.Duration
	tasks   chan Task

	// OnDone receives every outcome. It defaults to logging and must be set
	// before Start.
	OnDone func(Outcome)

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewRegenerator buffers at most buffer pending tasks (minimum 1).
func NewRegenerator(runner Runner, log Logger, timeout time.Duration, buffer int) *Regenerator {
	if runner == nil || log == nil {
		panic("sitemap: nil runner or logger")
	}
	if buffer < 1 {
		buffer = 1
	}
	r := &Regenerator{runner: runner, log: log, timeout: timeout, tasks: make(chan Task, buffer)}
	r.OnDone = r.logOutcome
	return r
}

func (r *Regenerator) logOutcome(o Outcome) {
	if o.Err != nil {
		r.log.Errorf("sitemap regeneration %s (%s) failed after %s: %v", o.Task.ID, o.Task.Reason, o.Duration, o.Err)
		return
	}
	r.log.Infof("sitemap regeneration %s (%s) done in %s: %d urls", o.Task.ID, o.Task.Reason, o.Duration, o.Result.URLs)
}

// Start launches the worker. Values of ctx are kept but its cancellation is
// not: Close decides when the worker stops.
func (r *Regenerator) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	base := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for t := range r.tasks {
			r.run(base, t)
		}
	}()
}

func (r *Regenerator) run(base context.Context, t Task) {
	ctx := base
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, r.timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := r.runner.Generate(ctx)
	o := Outcome{Task: t, Result: res, Err: err, Duration: time.Since(start)}
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorf("sitemap outcome callback panicked: %v", p)
		}
	}()
	r.OnDone(o)
}

// Submit queues a regeneration. It returns false when the request was
// coalesced into an already pending one or the worker is closed.
func (r *Regenerator) Submit(reason string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	t := Task{ID: uuid.NewString(), Reason: reason, SubmittedAt: time.Now().UTC()}
	select {
	case r.tasks <- t:
		return true
	default:
		return false
	}
}

// Close stops accepting tasks, runs the ones still queued and waits for the
// worker to exit.
func (r *Regenerator) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.tasks)
	started := r.started
	r.mu.Unlock()
	if !started {
		return
	}
	r.wg.Wait()
}

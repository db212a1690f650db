package uploader

import (
	"context"
	"sync"
	"time"

	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
)

// PollState is the poller's own lifecycle state.
type PollState int

const (
	PollPending PollState = iota
	PollCompleted
	PollFailed
	PollAbandoned
)

func (s PollState) String() string {
	switch s {
	case PollPending:
		return "pending"
	case PollCompleted:
		return "completed"
	case PollFailed:
		return "failed"
	case PollAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// StatusClient is the subset of the API client the poller needs.
type StatusClient interface {
	TaskStatus(ctx context.Context, taskID string) (string, error)
}

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 10
)

// Poller tracks one processing task until it reaches a terminal state
// or the attempt budget runs out. It mutates the bound UploadResult in
// place and surfaces nothing to the user: an abandoned task simply
// leaves the result pending forever.
//
// Ticks are strictly sequential. The next tick is scheduled from within
// the handler of the current one, never on an independent interval, so
// a slow status response can never overlap the next request.
type Poller struct {
	client      StatusClient
	clk         clock.Clock
	log         logging.Logger
	ctx         context.Context
	taskID      string
	result      *model.UploadResult
	interval    time.Duration
	maxAttempts int

	mu       sync.Mutex
	state    PollState
	attempts int
	started  bool
	done     chan struct{}
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollInterval overrides the tick period.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) { p.maxAttempts = n }
}

// NewPoller binds a poller to result's task. The result must carry a
// non-empty TaskID.
func NewPoller(ctx context.Context, client StatusClient, clk clock.Clock, log logging.Logger, result *model.UploadResult, opts ...PollerOption) *Poller {
	p := &Poller{
		client:      client,
		clk:         clk,
		log:         log.With("task_id", result.TaskID),
		ctx:         ctx,
		taskID:      result.TaskID,
		result:      result,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		state:       PollPending,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start schedules the first tick. Once started, the poller runs to a
// terminal state on its own; there is no external cancellation.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.clk.AfterFunc(p.interval, p.tick)
}

func (p *Poller) tick() {
	p.mu.Lock()
	if p.state != PollPending {
		p.mu.Unlock()
		return
	}
	if p.attempts >= p.maxAttempts {
		p.log.Debug("poll budget exhausted, abandoning task", "attempts", p.attempts)
		p.finishLocked(PollAbandoned)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// Network call happens outside the lock; ticks still cannot
	// overlap because the next one is only scheduled below.
	status, err := p.client.TaskStatus(p.ctx, p.taskID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PollPending {
		return
	}

	if err != nil && IsTransportError(err) {
		p.log.Debug("transport failure during poll, abandoning task", "err", err)
		p.finishLocked(PollAbandoned)
		return
	}

	switch status {
	case "completed":
		p.result.Processing = model.ProcessingCompleted
		p.finishLocked(PollCompleted)
	case "failed":
		p.result.Processing = model.ProcessingFailed
		p.finishLocked(PollFailed)
	default:
		// pending, malformed or a server error all count as one
		// attempt and keep polling.
		p.attempts++
		p.clk.AfterFunc(p.interval, p.tick)
	}
}

// finishLocked moves to a terminal state. Callers hold p.mu.
func (p *Poller) finishLocked(state PollState) {
	p.state = state
	close(p.done)
}

// Done is closed when the poller reaches a terminal state.
func (p *Poller) Done() <-chan struct{} { return p.done }

// State returns the current poller state.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Attempts returns the number of status requests answered without a
// terminal status.
func (p *Poller) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// TaskID returns the bound task.
func (p *Poller) TaskID() string { return p.taskID }

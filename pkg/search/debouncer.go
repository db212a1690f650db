// Package search coalesces rapid query changes into single requests
// against the full-text search endpoint.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
)

// DefaultQuietPeriod is the gap with no query changes required before a
// search fires.
const DefaultQuietPeriod = 500 * time.Millisecond

// Searcher issues the actual search request.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Image, error)
}

// State is a snapshot of the debouncer's visible state.
type State struct {
	Query       string
	Results     []model.Image
	Loading     bool
	HasSearched bool
}

// Debouncer wraps a Searcher with trailing-edge debounce: only the last
// query inside a quiet window triggers a request. Concurrent in-flight
// requests are not sequenced; the most recently resolved response wins,
// even when it belongs to an older query.
type Debouncer struct {
	searcher Searcher
	clk      clock.Clock
	log      logging.Logger
	quiet    time.Duration
	onUpdate func(State)

	mu    sync.Mutex
	timer clock.Timer
	state State
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithQuietPeriod overrides the quiet window.
func WithQuietPeriod(d time.Duration) Option {
	return func(db *Debouncer) { db.quiet = d }
}

// WithLogger sets the logger for absorbed search failures.
func WithLogger(log logging.Logger) Option {
	return func(db *Debouncer) { db.log = log }
}

// WithOnUpdate registers a callback invoked with a state snapshot after
// every visible transition.
func WithOnUpdate(fn func(State)) Option {
	return func(db *Debouncer) { db.onUpdate = fn }
}

// NewDebouncer creates a Debouncer on the given clock.
func NewDebouncer(searcher Searcher, clk clock.Clock, opts ...Option) *Debouncer {
	db := &Debouncer{
		searcher: searcher,
		clk:      clk,
		log:      logging.Nop(),
		quiet:    DefaultQuietPeriod,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// SetQuery registers a query change. An empty (after trimming) query
// short-circuits immediately: results are cleared, hasSearched resets
// and any pending timer is cancelled without ever firing. A non-empty
// query restarts the quiet-period timer; only the last change within
// the window reaches the server.
func (d *Debouncer) SetQuery(ctx context.Context, query string) {
	d.mu.Lock()

	d.state.Query = query
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		d.state.Results = []model.Image{}
		d.state.HasSearched = false
		d.state.Loading = false
		d.notifyLocked()
		d.mu.Unlock()
		return
	}

	d.timer = d.clk.AfterFunc(d.quiet, func() {
		d.run(ctx, trimmed)
	})
	d.mu.Unlock()
}

// run issues a search for query. Failures behave exactly like an empty
// result set; there is no user-visible search error state.
func (d *Debouncer) run(ctx context.Context, query string) {
	d.mu.Lock()
	d.state.Loading = true
	d.state.HasSearched = true
	d.notifyLocked()
	d.mu.Unlock()

	results, err := d.searcher.Search(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.log.Debug("search failed", "query", query, "err", err)
		results = []model.Image{}
	}
	if results == nil {
		results = []model.Image{}
	}
	d.state.Results = results
	d.state.Loading = false
	d.notifyLocked()
}

// State returns a snapshot of the visible state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Debouncer) snapshotLocked() State {
	snapshot := d.state
	snapshot.Results = append([]model.Image(nil), d.state.Results...)
	return snapshot
}

func (d *Debouncer) notifyLocked() {
	if d.onUpdate != nil {
		d.onUpdate(d.snapshotLocked())
	}
}

// Stop cancels any pending timer. In-flight requests are not aborted;
// their responses are still applied when they resolve.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

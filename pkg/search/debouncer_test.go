package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
)

type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]model.Image
	err     error
}

func (r *recordingSearcher) Search(ctx context.Context, query string) ([]model.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	return r.results[query], nil
}

func (r *recordingSearcher) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func TestDebounceCollapsesRapidChanges(t *testing.T) {
	fc := clock.NewFake()
	searcher := &recordingSearcher{results: map[string][]model.Image{
		"cat": {{ImageID: "1", Name: "cat.jpg"}},
	}}
	d := NewDebouncer(searcher, fc)

	ctx := context.Background()
	d.SetQuery(ctx, "c")
	fc.Advance(100 * time.Millisecond)
	d.SetQuery(ctx, "ca")
	fc.Advance(100 * time.Millisecond)
	d.SetQuery(ctx, "cat")
	fc.Advance(600 * time.Millisecond)

	calls := searcher.calls()
	if len(calls) != 1 || calls[0] != "cat" {
		t.Fatalf("expected exactly one search for \"cat\", got %v", calls)
	}

	state := d.State()
	if !state.HasSearched || state.Loading {
		t.Fatalf("unexpected state after search: %+v", state)
	}
	if len(state.Results) != 1 || state.Results[0].Name != "cat.jpg" {
		t.Fatalf("results not stored: %+v", state.Results)
	}
}

func TestDebounceEmptyQueryShortCircuits(t *testing.T) {
	fc := clock.NewFake()
	searcher := &recordingSearcher{}
	d := NewDebouncer(searcher, fc)

	ctx := context.Background()
	for _, q := range []string{"", "   ", "\t\n"} {
		d.SetQuery(ctx, q)
		fc.Advance(time.Second)
	}

	if calls := searcher.calls(); len(calls) != 0 {
		t.Fatalf("empty queries must never hit the network, got %v", calls)
	}
	state := d.State()
	if state.HasSearched || len(state.Results) != 0 {
		t.Fatalf("empty query must clear state: %+v", state)
	}
}

func TestDebounceEmptyQueryCancelsPendingTimer(t *testing.T) {
	fc := clock.NewFake()
	searcher := &recordingSearcher{}
	d := NewDebouncer(searcher, fc)

	ctx := context.Background()
	d.SetQuery(ctx, "cat")
	fc.Advance(200 * time.Millisecond)
	d.SetQuery(ctx, "")
	fc.Advance(2 * time.Second)

	if calls := searcher.calls(); len(calls) != 0 {
		t.Fatalf("cancelled timer still fired: %v", calls)
	}
}

func TestDebounceQueryIsTrimmed(t *testing.T) {
	fc := clock.NewFake()
	searcher := &recordingSearcher{}
	d := NewDebouncer(searcher, fc)

	d.SetQuery(context.Background(), "  cat  ")
	fc.Advance(time.Second)

	calls := searcher.calls()
	if len(calls) != 1 || calls[0] != "cat" {
		t.Fatalf("expected trimmed query, got %v", calls)
	}
}

func TestDebounceFailureBehavesLikeZeroResults(t *testing.T) {
	fc := clock.NewFake()
	searcher := &recordingSearcher{err: errors.New("search backend down")}
	d := NewDebouncer(searcher, fc)

	d.SetQuery(context.Background(), "cat")
	fc.Advance(time.Second)

	state := d.State()
	if !state.HasSearched {
		t.Fatal("a failed search still counts as having searched")
	}
	if state.Loading {
		t.Fatal("loading must clear after failure")
	}
	if state.Results == nil || len(state.Results) != 0 {
		t.Fatalf("failure must store an empty result set, got %+v", state.Results)
	}
}

// blockingSearcher lets the test hold one request in flight while a
// second one resolves.
type blockingSearcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	results map[string][]model.Image
}

func (b *blockingSearcher) Search(ctx context.Context, query string) ([]model.Image, error) {
	b.started <- query
	b.mu.Lock()
	gate := b.gates[query]
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return b.results[query], nil
}

func TestDebounceLastResolvedResponseWins(t *testing.T) {
	// Two requests in flight, resolving out of order: the later
	// resolution wins even though it answers the older query. This
	// pins the known race rather than hiding it.
	fc := clock.NewFake()
	oldGate := make(chan struct{})
	searcher := &blockingSearcher{
		gates:   map[string]chan struct{}{"old": oldGate},
		started: make(chan string, 2),
		results: map[string][]model.Image{
			"old": {{ImageID: "1", Name: "old.jpg"}},
			"new": {{ImageID: "2", Name: "new.jpg"}},
		},
	}
	d := NewDebouncer(searcher, fc)
	ctx := context.Background()

	d.SetQuery(ctx, "old")
	firstFired := make(chan struct{})
	go func() {
		fc.Advance(DefaultQuietPeriod)
		close(firstFired)
	}()
	if got := <-searcher.started; got != "old" {
		t.Fatalf("expected first request for old, got %q", got)
	}

	d.SetQuery(ctx, "new")
	secondFired := make(chan struct{})
	go func() {
		fc.Advance(DefaultQuietPeriod)
		close(secondFired)
	}()
	if got := <-searcher.started; got != "new" {
		t.Fatalf("expected second request for new, got %q", got)
	}
	<-secondFired // "new" resolved and stored

	close(oldGate) // now the stale "old" response lands last
	<-firstFired

	state := d.State()
	if len(state.Results) != 1 || state.Results[0].Name != "old.jpg" {
		t.Fatalf("expected the last-resolved (stale) response to win, got %+v", state.Results)
	}
}

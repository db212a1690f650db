// Package stats reads per-device usage quota counters.
package stats

import (
	"context"
	"strconv"
	"sync"

	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/model"
)

// UsageClient is the subset of the API client the reader needs.
type UsageClient interface {
	MyUploads(ctx context.Context, fingerprint string) (*api.UsageResponse, error)
}

// FingerprintProvider yields the device fingerprint the quota is keyed
// by.
type FingerprintProvider interface {
	Fingerprint() string
}

// Reader fetches quota counters for the current device. Counters start
// as "-" placeholders; a failed refresh keeps the previously displayed
// values and is only logged. Counters the server omits stay "-" without
// failing the rest of the read.
type Reader struct {
	client UsageClient
	device FingerprintProvider
	log    logging.Logger

	mu      sync.Mutex
	current model.UsageStats
}

// NewReader creates a Reader showing placeholders until the first
// successful refresh.
func NewReader(client UsageClient, device FingerprintProvider, log logging.Logger) *Reader {
	if log == nil {
		log = logging.Nop()
	}
	return &Reader{
		client:  client,
		device:  device,
		log:     log,
		current: model.PlaceholderStats(),
	}
}

// Refresh fetches the counters and returns the stats to display. The
// returned value equals the prior one when the fetch fails; stats are
// replaced wholesale, never partially merged.
func (r *Reader) Refresh(ctx context.Context) model.UsageStats {
	resp, err := r.client.MyUploads(ctx, r.device.Fingerprint())
	if err != nil {
		r.log.Warn("failed to refresh usage stats", "err", err)
		return r.Current()
	}

	updated := model.UsageStats{
		UploadsUsed:  counterOrPlaceholder(resp.UploadsUsed),
		Remaining:    counterOrPlaceholder(resp.Remaining),
		TotalUploads: counterOrPlaceholder(resp.TotalUploads),
	}

	r.mu.Lock()
	r.current = updated
	r.mu.Unlock()
	return updated
}

// Current returns the last displayed stats without fetching.
func (r *Reader) Current() model.UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func counterOrPlaceholder(v *int64) string {
	if v == nil {
		return model.StatPlaceholder
	}
	return strconv.FormatInt(*v, 10)
}

// Package device derives and persists the stable per-device
// fingerprint used to attribute upload quota without accounts.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/model"
)

// UserAgent identifies this client to the service and feeds the agent
// signal of the fingerprint.
const UserAgent = "snapdrop-cli/1.1.0"

// ConfigStore is the durable KV surface the fingerprint persists into.
type ConfigStore interface {
	GetConfigValue(key string) ([]byte, error)
	PutConfigValue(key string, value []byte) error
}

// Provider derives the device fingerprint once and then always returns
// the persisted value, even when the underlying signals have changed.
// The stability is intentional: quota attribution must survive driver
// updates, locale changes and terminal resizes.
type Provider struct {
	store   ConfigStore
	collect func() Signals
	log     logging.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithCollector overrides signal gathering, used by tests.
func WithCollector(collect func() Signals) Option {
	return func(p *Provider) { p.collect = collect }
}

// WithLogger sets the logger for silent persistence failures.
func WithLogger(log logging.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// NewProvider creates a Provider. store may be nil, in which case every
// call derives a fresh, unpersisted fingerprint.
func NewProvider(store ConfigStore, opts ...Option) *Provider {
	p := &Provider{
		store:   store,
		collect: CollectSignals,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fingerprint returns the device fingerprint. A persisted value always
// wins over a freshly derived one; storage failures fall back to the
// derived value and are never surfaced to the caller.
func (p *Provider) Fingerprint() string {
	if p.store != nil {
		if stored, err := p.store.GetConfigValue(model.DeviceFingerprintKey); err == nil && len(stored) > 0 {
			return string(stored)
		} else if err != nil {
			p.log.Warn("failed to read persisted fingerprint", "err", err)
		}
	}

	fingerprint := Derive(p.collect())

	if p.store != nil {
		if err := p.store.PutConfigValue(model.DeviceFingerprintKey, []byte(fingerprint)); err != nil {
			p.log.Warn("failed to persist fingerprint", "err", err)
		}
	}

	return fingerprint
}

// Reset removes the persisted fingerprint so the next call derives it
// again from current signals.
func (p *Provider) Reset() error {
	if p.store == nil {
		return nil
	}
	return p.store.PutConfigValue(model.DeviceFingerprintKey, nil)
}

// Derive hashes the signal set into a fixed-length hex fingerprint.
func Derive(signals Signals) string {
	joined := strings.Join(signals.components(), signalDelimiter)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

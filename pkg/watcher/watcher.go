// Package watcher auto-submits images appearing in a watched folder.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
	"github.com/snapdrop/cli/pkg/uploader"
)

// DefaultDebounce is how long a file must stay quiet before submission.
const DefaultDebounce = 5 * time.Second

// ProcessedStore remembers which files the watcher already handled.
type ProcessedStore interface {
	GetProcessedFile(filePath string) (*model.ProcessedFile, error)
	SaveProcessedFile(file *model.ProcessedFile) error
}

// Config wires a Watcher.
type Config struct {
	Path     string // folder to watch
	Debounce time.Duration
	Tags     []string // tags attached to every auto-submission
	Clock    clock.Clock
	Logger   logging.Logger
}

// Watcher watches a folder recursively and submits new images through
// the orchestrator once their writes have settled.
type Watcher struct {
	ctx           context.Context
	orchestrator  *uploader.Orchestrator
	store         ProcessedStore
	cfg           Config
	log           logging.Logger
	fileWatcher   *FileWatcher
	debounceQueue *DebounceQueue

	mu         sync.Mutex
	processing map[string]bool

	// OnVerdict, when set, receives the verdict of every submission.
	OnVerdict func(path string, outcome *uploader.Outcome, err error)
}

// NewWatcher creates a Watcher rooted at cfg.Path.
func NewWatcher(ctx context.Context, orchestrator *uploader.Orchestrator, store ProcessedStore, cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	w := &Watcher{
		ctx:          ctx,
		orchestrator: orchestrator,
		store:        store,
		cfg:          cfg,
		log:          cfg.Logger.With("watch_path", cfg.Path),
		processing:   make(map[string]bool),
	}

	w.debounceQueue = NewDebounceQueue(cfg.Clock, cfg.Debounce)

	fileWatcher, err := NewFileWatcher(w.onFileEvent, w.onNewDirectory)
	if err != nil {
		return nil, err
	}
	w.fileWatcher = fileWatcher

	return w, nil
}

// Start begins watching. It returns immediately; events arrive on
// background goroutines until Stop.
func (w *Watcher) Start() error {
	if err := w.fileWatcher.AddRecursive(w.cfg.Path); err != nil {
		return fmt.Errorf("failed to add watch path: %w", err)
	}
	w.fileWatcher.Start()
	return nil
}

// InitialScan submits images already present in the folder, skipping
// those the journal has seen before.
func (w *Watcher) InitialScan() (int, error) {
	var files []string
	err := filepath.Walk(w.cfg.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !info.IsDir() && uploader.IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("initial scan failed: %w", err)
	}

	submitted := 0
	for _, path := range files {
		if w.alreadyProcessed(path) {
			continue
		}
		w.processFile(path)
		submitted++
	}
	return submitted, nil
}

// Stop shuts down the watcher and cancels pending debounce timers.
func (w *Watcher) Stop() error {
	w.debounceQueue.Stop()
	return w.fileWatcher.Close()
}

func (w *Watcher) onFileEvent(path string) {
	w.debounceQueue.Add(path, w.processFile)
}

func (w *Watcher) onNewDirectory(path string) {
	w.log.Debug("watching new directory", "dir", path)
}

func (w *Watcher) alreadyProcessed(path string) bool {
	if w.store == nil {
		return false
	}
	record, err := w.store.GetProcessedFile(path)
	if err != nil {
		w.log.Warn("failed to read processed record", "path", path, "err", err)
		return false
	}
	return record != nil && record.Status != model.StatusFailed
}

// processFile submits one settled file through the orchestrator and
// journals the verdict.
func (w *Watcher) processFile(path string) {
	w.mu.Lock()
	if w.processing[path] {
		w.mu.Unlock()
		return
	}
	w.processing[path] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.processing, path)
		w.mu.Unlock()
	}()

	if w.alreadyProcessed(path) {
		return
	}

	outcome, err := w.orchestrator.Submit(w.ctx, path, model.UploadMetadata{Tags: w.cfg.Tags})
	w.recordVerdict(path, outcome, err)

	if w.OnVerdict != nil {
		w.OnVerdict(path, outcome, err)
	}
}

func (w *Watcher) recordVerdict(path string, outcome *uploader.Outcome, err error) {
	if w.store == nil {
		return
	}

	record := &model.ProcessedFile{
		FilePath:    path,
		ProcessedAt: w.cfg.Clock.Now().Unix(),
	}
	switch {
	case err != nil:
		record.Status = model.StatusFailed
		record.Error = err.Error()
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			record.Error = apiErr.Message
		}
	case outcome.Kind == uploader.OutcomeDuplicate:
		record.Status = model.StatusDuplicate
		record.FileHash = outcome.Result.FileHash
	default:
		record.Status = model.StatusUploaded
		record.FileHash = outcome.Result.FileHash
	}

	if saveErr := w.store.SaveProcessedFile(record); saveErr != nil {
		w.log.Warn("failed to save processed record", "path", path, "err", saveErr)
	}
}

// Package uploader submits images to the service and tracks their
// post-processing to completion.
package uploader

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
)

// OutcomeKind tags the verdict of a submission.
type OutcomeKind int

const (
	// OutcomeUploaded means the server accepted new content and no
	// processing task was attached.
	OutcomeUploaded OutcomeKind = iota
	// OutcomeProcessing means the server accepted new content and
	// thumbnail generation is tracked by the attached poller.
	OutcomeProcessing
	// OutcomeDuplicate means the content already exists; the result
	// carries the original upload timestamp and no poller is spawned.
	OutcomeDuplicate
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUploaded:
		return "uploaded"
	case OutcomeProcessing:
		return "processing"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one submission. Task is non-nil only
// for OutcomeProcessing.
type Outcome struct {
	Kind    OutcomeKind
	Result  *model.UploadResult
	Task    *Poller
	Capture CaptureInfo
}

// FingerprintProvider yields the device fingerprint for quota
// attribution.
type FingerprintProvider interface {
	Fingerprint() string
}

// StatsRefresher is notified after every accepted submission.
type StatsRefresher interface {
	Refresh(ctx context.Context) model.UsageStats
}

// Journal records submission verdicts locally. Optional.
type Journal interface {
	SaveUploadRecord(record *model.UploadRecord) error
}

// UploadClient is the subset of the API client the orchestrator needs.
type UploadClient interface {
	StatusClient
	Upload(ctx context.Context, req api.UploadRequest) (*model.UploadResult, error)
}

// Orchestrator ties one submission together: validation, the upload
// request, verdict interpretation, poller spawning and the stats
// refresh.
type Orchestrator struct {
	client  UploadClient
	device  FingerprintProvider
	stats   StatsRefresher
	journal Journal
	clk     clock.Clock
	log     logging.Logger

	pollOpts []PollerOption
}

// Config wires an Orchestrator. Stats and Journal may be nil.
type Config struct {
	Client  UploadClient
	Device  FingerprintProvider
	Stats   StatsRefresher
	Journal Journal
	Clock   clock.Clock
	Logger  logging.Logger

	PollerOptions []PollerOption
}

// NewOrchestrator builds an Orchestrator from cfg.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Orchestrator{
		client:   cfg.Client,
		device:   cfg.Device,
		stats:    cfg.Stats,
		journal:  cfg.Journal,
		clk:      cfg.Clock,
		log:      cfg.Logger,
		pollOpts: cfg.PollerOptions,
	}
}

// Submit uploads the file at filePath with the given metadata and
// interprets the server's verdict. Validation failures are reported
// before any network traffic. Each successful or duplicate submission
// triggers exactly one stats refresh; failures trigger none.
func (o *Orchestrator) Submit(ctx context.Context, filePath string, meta model.UploadMetadata) (*Outcome, error) {
	if filePath == "" {
		return nil, api.NewValidationError("no file selected")
	}
	if err := ValidateImageFile(filePath); err != nil {
		return nil, api.NewValidationError(err.Error())
	}

	localHash, err := ComputeFileHash(filePath)
	if err != nil {
		return nil, api.NewValidationError(err.Error())
	}

	capture := ExtractCaptureInfo(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, api.NewValidationError(err.Error())
	}
	defer file.Close()

	fileName := filepath.Base(filePath)
	name := meta.Name
	if name == "" {
		name = fileName
	}

	log := o.log.With("submission", uuid.NewString(), "file", fileName)
	log.Debug("submitting upload", "hash", localHash)

	result, err := o.client.Upload(ctx, api.UploadRequest{
		FileName:    fileName,
		File:        file,
		Name:        name,
		Description: meta.Description,
		Tags:        meta.Tags,
		Fingerprint: o.device.Fingerprint(),
	})
	if err != nil {
		return nil, err
	}

	log.Debug("upload accepted", "duplicate", result.IsDuplicate, "task_id", result.TaskID)

	outcome := &Outcome{Result: result, Capture: capture}
	switch {
	case result.IsDuplicate:
		// The server asserts the content is already fully processed;
		// nothing to track.
		outcome.Kind = OutcomeDuplicate
	case result.TaskID != "":
		result.Processing = model.ProcessingPending
		outcome.Kind = OutcomeProcessing
		outcome.Task = NewPoller(ctx, o.client, o.clk, log, result, o.pollOpts...)
		outcome.Task.Start()
	default:
		outcome.Kind = OutcomeUploaded
	}

	o.journalOutcome(filePath, localHash, capture, result)

	if o.stats != nil {
		o.stats.Refresh(ctx)
	}

	return outcome, nil
}

// journalOutcome records the verdict locally. Failures only degrade the
// local journal and are logged, never surfaced.
func (o *Orchestrator) journalOutcome(filePath, localHash string, capture CaptureInfo, result *model.UploadResult) {
	if o.journal == nil {
		return
	}

	hash := result.FileHash
	if hash == "" {
		hash = localHash
	}
	record := &model.UploadRecord{
		LocalPath:   filePath,
		FileHash:    hash,
		ServerID:    result.ID,
		URL:         result.URL,
		IsDuplicate: result.IsDuplicate,
		TaskID:      result.TaskID,
		UploadedAt:  result.UploadedAt,
		CapturedAt:  capture.CapturedAt,
		Width:       capture.Width,
		Height:      capture.Height,
	}
	if err := o.journal.SaveUploadRecord(record); err != nil {
		o.log.Warn("failed to journal upload", "path", filePath, "err", err)
	}
}

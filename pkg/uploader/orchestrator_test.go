package uploader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg/clock"
	"github.com/snapdrop/cli/pkg/model"
)

type fakeDevice struct{ fp string }

func (f *fakeDevice) Fingerprint() string { return f.fp }

type countingStats struct {
	mu    sync.Mutex
	calls int
}

func (c *countingStats) Refresh(ctx context.Context) model.UsageStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return model.PlaceholderStats()
}

func (c *countingStats) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// uploadServer is a scripted fake of the remote service.
type uploadServer struct {
	mu           sync.Mutex
	uploadBody   map[string]any
	uploadStatus int
	uploadForm   map[string]string
	uploads      int
	statusSeq    []string
	statusCalls  int
}

func (s *uploadServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.uploads++

		if err := r.ParseMultipartForm(32 << 20); err == nil {
			s.uploadForm = map[string]string{}
			for key := range r.MultipartForm.Value {
				s.uploadForm[key] = r.FormValue(key)
			}
		}

		status := s.uploadStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(s.uploadBody)
	})
	mux.HandleFunc("/status/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		status := "pending"
		if s.statusCalls < len(s.statusSeq) {
			status = s.statusSeq[s.statusCalls]
		}
		s.statusCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	})
	return mux
}

func (s *uploadServer) statusCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0644))
	return path
}

func newTestOrchestrator(t *testing.T, server *uploadServer) (*Orchestrator, *countingStats, *clock.Fake) {
	t.Helper()
	ts := httptest.NewServer(server.handler())
	t.Cleanup(ts.Close)

	stats := &countingStats{}
	fc := clock.NewFake()
	o := NewOrchestrator(Config{
		Client: api.NewClient(ts.URL),
		Device: &fakeDevice{fp: "fp-test"},
		Stats:  stats,
		Clock:  fc,
		Logger: logging.Nop(),
	})
	return o, stats, fc
}

func TestSubmitValidationFailureBeforeAnyRequest(t *testing.T) {
	server := &uploadServer{uploadBody: map[string]any{}}
	o, stats, _ := newTestOrchestrator(t, server)

	_, err := o.Submit(context.Background(), "", model.UploadMetadata{})
	require.Error(t, err)
	require.True(t, api.IsKind(err, api.KindValidation))

	_, err = o.Submit(context.Background(), "/nonexistent/photo.jpg", model.UploadMetadata{})
	require.True(t, api.IsKind(err, api.KindValidation))

	require.Equal(t, 0, server.uploads, "validation failures must not reach the network")
	require.Equal(t, 0, stats.count(), "validation failures must not refresh stats")
}

func TestSubmitNewUploadSpawnsPoller(t *testing.T) {
	server := &uploadServer{
		uploadBody: map[string]any{
			"id": "img-1", "filename": "photo.jpg", "file_hash": "abc123",
			"url": "/images/photo.jpg", "is_duplicate": false,
			"task_id": "T1", "uploads_used": 3, "uploaded_at": "2024-06-01T10:00:00",
		},
		statusSeq: []string{"pending", "pending", "pending", "completed"},
	}
	o, stats, fc := newTestOrchestrator(t, server)

	outcome, err := o.Submit(context.Background(), writeTestImage(t), model.UploadMetadata{})
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessing, outcome.Kind)
	require.NotNil(t, outcome.Task)
	require.Equal(t, model.ProcessingPending, outcome.Result.Processing)
	require.Equal(t, 1, stats.count(), "exactly one stats refresh per accepted upload")

	for i := 0; i < 4; i++ {
		fc.Advance(DefaultPollInterval)
	}

	require.Equal(t, PollCompleted, outcome.Task.State())
	require.Equal(t, model.ProcessingCompleted, outcome.Result.Processing)
	require.Equal(t, 4, server.statusCount())
	require.Equal(t, 1, stats.count(), "polling must not trigger further refreshes")
}

func TestSubmitDuplicateSpawnsNoPoller(t *testing.T) {
	server := &uploadServer{
		uploadBody: map[string]any{
			"id": "img-1", "file_hash": "abc123", "is_duplicate": true,
			"task_id": "T9", "uploaded_at": "2024-01-01T00:00:00",
		},
	}
	o, stats, fc := newTestOrchestrator(t, server)

	outcome, err := o.Submit(context.Background(), writeTestImage(t), model.UploadMetadata{})
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, outcome.Kind)
	require.Nil(t, outcome.Task, "duplicates are already processed, no poller")
	require.Equal(t, "2024-01-01T00:00:00", outcome.Result.UploadedAt)
	require.Equal(t, 1, stats.count())

	for i := 0; i < 5; i++ {
		fc.Advance(DefaultPollInterval)
	}
	require.Equal(t, 0, server.statusCount(), "no status requests for duplicates")
}

func TestSubmitNoTaskIDNoPoller(t *testing.T) {
	server := &uploadServer{
		uploadBody: map[string]any{
			"id": "img-1", "file_hash": "abc123", "is_duplicate": false,
		},
	}
	o, stats, fc := newTestOrchestrator(t, server)

	outcome, err := o.Submit(context.Background(), writeTestImage(t), model.UploadMetadata{})
	require.NoError(t, err)
	require.Equal(t, OutcomeUploaded, outcome.Kind)
	require.Nil(t, outcome.Task)
	require.Equal(t, 1, stats.count())

	fc.Advance(10 * DefaultPollInterval)
	require.Equal(t, 0, server.statusCount())
}

func TestSubmitServerErrorUsesDetail(t *testing.T) {
	server := &uploadServer{
		uploadStatus: http.StatusTooManyRequests,
		uploadBody:   map[string]any{"detail": "Upload limit reached"},
	}
	o, stats, _ := newTestOrchestrator(t, server)

	_, err := o.Submit(context.Background(), writeTestImage(t), model.UploadMetadata{})
	require.Error(t, err)
	require.True(t, api.IsKind(err, api.KindServer))
	require.Equal(t, "Upload limit reached", api.UserMessage(err))
	require.Equal(t, 0, stats.count(), "failed submissions must not refresh stats")
}

func TestSubmitNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close() // connection refused from here on

	o := NewOrchestrator(Config{
		Client: api.NewClient(ts.URL),
		Device: &fakeDevice{fp: "fp-test"},
		Clock:  clock.NewFake(),
	})

	_, err := o.Submit(context.Background(), writeTestImage(t), model.UploadMetadata{})
	require.Error(t, err)
	require.True(t, api.IsKind(err, api.KindNetwork))
}

func TestSubmitSendsContractFields(t *testing.T) {
	server := &uploadServer{
		uploadBody: map[string]any{"id": "img-1", "is_duplicate": false},
	}
	o, _, _ := newTestOrchestrator(t, server)

	path := writeTestImage(t)
	_, err := o.Submit(context.Background(), path, model.UploadMetadata{
		Description: "a sunset",
		Tags:        []string{"beach", " beach ", "", "holiday"},
	})
	require.NoError(t, err)

	require.Equal(t, "photo.jpg", server.uploadForm["name"], "name falls back to the file name")
	require.Equal(t, "a sunset", server.uploadForm["description"])
	require.JSONEq(t, `["beach","holiday"]`, server.uploadForm["tags"], "tags are deduplicated and JSON-encoded")
	require.Equal(t, "fp-test", server.uploadForm["device_fingerprint"])
}

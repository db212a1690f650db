package model

import "strings"

// ProcessingState tracks the server-side post-processing (thumbnail
// generation) of an accepted upload. A single enum is used instead of
// independent complete/failed booleans so the impossible combinations
// cannot be represented.
type ProcessingState int

const (
	ProcessingNone ProcessingState = iota // no task attached to this upload
	ProcessingPending
	ProcessingCompleted
	ProcessingFailed
)

func (s ProcessingState) String() string {
	switch s {
	case ProcessingNone:
		return "none"
	case ProcessingPending:
		return "pending"
	case ProcessingCompleted:
		return "completed"
	case ProcessingFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UploadMetadata is the user-supplied metadata attached to a submission.
type UploadMetadata struct {
	Name        string
	Description string
	Tags        []string
}

// UploadResult is the server's response to a successful upload. The
// Processing field is not part of the wire response; it is mutated in
// place by the status poller bound to this result.
type UploadResult struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	FileHash    string `json:"file_hash"`
	URL         string `json:"url"`
	IsDuplicate bool   `json:"is_duplicate"`
	TaskID      string `json:"task_id,omitempty"`
	UploadsUsed int64  `json:"uploads_used"`
	UploadedAt  string `json:"uploaded_at"`

	Processing ProcessingState `json:"-"`
}

// UploadRecord is the local journal entry written after each submission.
// It is a record of the verdict the server returned, never an input to a
// deduplication decision — the duplicate verdict belongs to the server.
type UploadRecord struct {
	LocalPath   string `json:"localPath"`
	FileHash    string `json:"fileHash"`
	ServerID    string `json:"serverID"`
	URL         string `json:"url"`
	IsDuplicate bool   `json:"isDuplicate"`
	TaskID      string `json:"taskID,omitempty"`
	UploadedAt  string `json:"uploadedAt"`
	CapturedAt  int64  `json:"capturedAt,omitempty"` // EXIF capture time, unix seconds
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	RecordedAt  int64  `json:"recordedAt"`
}

// UsageStats holds per-device quota counters as display values. Every
// field starts as the "-" placeholder and stays "-" when the server
// omits it.
type UsageStats struct {
	UploadsUsed  string
	Remaining    string
	TotalUploads string
}

const StatPlaceholder = "-"

// PlaceholderStats returns the stats shown before the first successful
// refresh.
func PlaceholderStats() UsageStats {
	return UsageStats{
		UploadsUsed:  StatPlaceholder,
		Remaining:    StatPlaceholder,
		TotalUploads: StatPlaceholder,
	}
}

// NormalizeTags trims whitespace, drops empty entries and removes
// duplicates while preserving insertion order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

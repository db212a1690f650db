package model

// FileProcessStatus is the watcher's record of what happened to a file.
type FileProcessStatus int

const (
	StatusSubmitted FileProcessStatus = iota
	StatusUploaded
	StatusDuplicate
	StatusFailed
)

func (s FileProcessStatus) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusUploaded:
		return "uploaded"
	case StatusDuplicate:
		return "duplicate"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProcessedFile tracks files already handled by the watcher so a rescan
// does not resubmit them.
type ProcessedFile struct {
	FilePath    string            `json:"filePath"`
	FileHash    string            `json:"fileHash"`
	Status      FileProcessStatus `json:"status"`
	ProcessedAt int64             `json:"processedAt"` // unix seconds
	Error       string            `json:"error,omitempty"`
}

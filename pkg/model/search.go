package model

// Image is a single search hit.
type Image struct {
	ImageID      string   `json:"image_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	UploadedAt   string   `json:"uploaded_at"`
	Hash         string   `json:"hash"`
}

// CorpusStats are the service-wide counters from /stats.
type CorpusStats struct {
	TotalImages     int64   `json:"total_images"`
	UniqueUploaders int64   `json:"unique_uploaders"`
	TotalSizeMB     float64 `json:"total_size_mb"`
	ProcessedImages int64   `json:"processed_images"`
	MaxUploads      int64   `json:"max_uploads_per_ip"`
}

package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type Kind string

const (
	// KindIngest transcribes a video and builds its original subtitle track.
	KindIngest Kind = "ingest"
	// KindTranslate adds one target-language track to an ingested video.
	KindTranslate Kind = "translate"
)

type EnqueueRequest struct {
	Kind      Kind
	Source    string
	DedupeKey string
	Payload   JobPayload
}

// JobPayload carries the inputs for either job kind. Ingest jobs use
// VideoURL or FilePath (plus the optional hint/hash); translate jobs use
// VideoID and TargetLanguage.
type JobPayload struct {
	VideoURL       string `json:"video_url,omitempty"`
	FilePath       string `json:"file_path,omitempty"`
	LanguageHint   string `json:"language_hint,omitempty"`
	ContentHash    string `json:"content_hash,omitempty"`
	VideoID        string `json:"video_id,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

type Job struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Source    string     `json:"source"`
	DedupeKey string     `json:"dedupe_key"`
	Payload   JobPayload `json:"payload"`
	Status    Status     `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

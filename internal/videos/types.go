package videos

import (
	"context"
	"time"
)

// OriginalTrack is the subtitle track built at ingestion time, in the
// language the lecture was spoken in.
type OriginalTrack struct {
	Name              string `json:"name"`
	ClosedCaptionText string `json:"closed_caption_text"`
	ClosedCaptionVtt  string `json:"closed_caption_vtt"`
}

// TranslationTrack is one translated subtitle track on a video record.
type TranslationTrack struct {
	Name             string `json:"name"`
	ClosedCaptionVtt string `json:"closed_caption_vtt"`
}

// Video is a persisted lecture video record.
type Video struct {
	ID           string             `json:"id"`
	URL          string             `json:"url"`
	ProviderID   string             `json:"provider_id"`
	ContentHash  string             `json:"content_hash,omitempty"`
	Original     OriginalTrack      `json:"original_language"`
	Translations []TranslationTrack `json:"translations"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// HasTranslation reports whether a track for the given language name is
// already present.
func (v *Video) HasTranslation(name string) bool {
	for _, track := range v.Translations {
		if track.Name == name {
			return true
		}
	}
	return false
}

// Store persists video records.
type Store interface {
	GetVideoByID(ctx context.Context, id string) (*Video, bool, error)
	GetVideoByContentHash(ctx context.Context, hash string) (*Video, bool, error)
	GetVideoByProviderID(ctx context.Context, providerID string) (*Video, bool, error)
	GetVideoByURL(ctx context.Context, url string) (*Video, bool, error)
	ListVideos(ctx context.Context) ([]*Video, error)
	UpsertVideo(ctx context.Context, video *Video) error
	AddTranslation(ctx context.Context, videoID string, track TranslationTrack) error
}

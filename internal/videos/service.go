package videos

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/yaaintmal/path-ai-sub000/internal/caption"
	"github.com/yaaintmal/path-ai-sub000/internal/transcribe"
	"github.com/yaaintmal/path-ai-sub000/internal/translator"
	"github.com/yaaintmal/path-ai-sub000/internal/webvtt"
	"github.com/yaaintmal/path-ai-sub000/pkg/file"
	"github.com/yaaintmal/path-ai-sub000/pkg/log"
)

// Transcriber produces a normalized transcript for remote or local media.
type Transcriber interface {
	TranscribeURL(ctx context.Context, mediaURL, languageCode string) (*transcribe.Transcript, error)
	TranscribeFile(ctx context.Context, filePath, languageCode string) (*transcribe.Transcript, error)
}

// Translator adds a target-language rendering of a stored subtitle track.
type Translator interface {
	TranslateVttPreserveTimings(ctx context.Context, vtt, targetLanguage, fallbackText string) (translator.Result, error)
}

// Service owns the video record lifecycle: ingestion (transcribe, build
// cues, serialize VTT, persist) and dedup lookup with lazy translation.
type Service struct {
	store      Store
	transcribe Transcriber
	translate  Translator

	group singleflight.Group
}

func NewService(store Store, transcriber Transcriber, translate Translator) *Service {
	return &Service{
		store:      store,
		transcribe: transcriber,
		translate:  translate,
	}
}

// IngestRequest describes one lecture video to ingest. Exactly one of URL
// or FilePath is set.
type IngestRequest struct {
	URL          string
	FilePath     string
	LanguageHint string
	ContentHash  string
}

// FindExistingWithOptionalTranslation locates a previously ingested video
// by content hash, then provider asset ID, then raw URL. A found record
// gets a missing content hash backfilled. When targetLanguage is set and
// the record lacks that track, the translation pipeline runs and the new
// track is appended before returning. Returns found=false when no record
// matches.
func (s *Service) FindExistingWithOptionalTranslation(
	ctx context.Context,
	videoURL string,
	targetLanguage string,
	contentHash string,
) (*Video, bool, error) {
	video, found, err := s.lookup(ctx, videoURL, contentHash)
	if err != nil || !found {
		return nil, false, err
	}

	if video.ContentHash == "" && contentHash != "" {
		video.ContentHash = contentHash
		video.UpdatedAt = time.Now().UTC()
		if err := s.store.UpsertVideo(ctx, video); err != nil {
			return nil, false, fmt.Errorf("backfill content hash: %w", err)
		}
	}

	if targetLanguage == "" {
		return video, true, nil
	}

	name := LanguageName(targetLanguage)
	if video.HasTranslation(name) {
		return video, true, nil
	}

	track, err := s.translateOnce(ctx, video, name)
	if err != nil {
		return nil, false, err
	}
	if !video.HasTranslation(name) {
		video.Translations = append(video.Translations, track)
	}
	return video, true, nil
}

// translateOnce runs the translation pipeline for one video+language,
// collapsing concurrent requests for the same pair into a single call.
func (s *Service) translateOnce(ctx context.Context, video *Video, name string) (TranslationTrack, error) {
	key := video.ID + "|" + name
	result, err, _ := s.group.Do(key, func() (any, error) {
		log.Info("Translating video %s into %s", video.ID, name)
		res, err := s.translate.TranslateVttPreserveTimings(
			ctx,
			video.Original.ClosedCaptionVtt,
			name,
			video.Original.ClosedCaptionText,
		)
		if err != nil {
			return nil, fmt.Errorf("translate video %s into %s: %w", video.ID, name, err)
		}

		track := TranslationTrack{
			Name:             name,
			ClosedCaptionVtt: res.TranslatedVtt,
		}
		if err := s.store.AddTranslation(ctx, video.ID, track); err != nil {
			return nil, fmt.Errorf("persist translation: %w", err)
		}
		return track, nil
	})
	if err != nil {
		return TranslationTrack{}, err
	}
	return result.(TranslationTrack), nil
}

// TranslateVideo adds a target-language track to an ingested video,
// addressed by record ID or delivery URL. Returns the record with the
// track present; an already-existing track is a no-op.
func (s *Service) TranslateVideo(ctx context.Context, videoID, videoURL, targetLanguage string) (*Video, error) {
	if targetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	var video *Video
	var found bool
	var err error
	if videoID != "" {
		video, found, err = s.store.GetVideoByID(ctx, videoID)
	} else {
		video, found, err = s.lookup(ctx, videoURL, "")
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("video not found (id=%q url=%q)", videoID, videoURL)
	}

	name := LanguageName(targetLanguage)
	if video.HasTranslation(name) {
		return video, nil
	}

	track, err := s.translateOnce(ctx, video, name)
	if err != nil {
		return nil, err
	}
	if !video.HasTranslation(name) {
		video.Translations = append(video.Translations, track)
	}
	return video, nil
}

// Ingest transcribes a lecture video and persists its record with the
// original subtitle track. An already-ingested video (by hash, provider
// ID, or URL) is returned as-is without re-transcribing.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*Video, error) {
	if req.URL == "" && req.FilePath == "" {
		return nil, fmt.Errorf("either URL or file path is required")
	}

	contentHash := req.ContentHash
	if contentHash == "" && req.FilePath != "" {
		hash, err := file.Sha256Hex(req.FilePath)
		if err != nil {
			return nil, fmt.Errorf("hash upload: %w", err)
		}
		contentHash = hash
	}

	lookupURL := req.URL
	if lookupURL == "" {
		lookupURL = req.FilePath
	}
	if existing, found, err := s.lookup(ctx, lookupURL, contentHash); err != nil {
		return nil, err
	} else if found {
		log.Info("Video %s already ingested, skipping transcription", existing.ID)
		return existing, nil
	}

	var transcript *transcribe.Transcript
	var err error
	if req.FilePath != "" {
		transcript, err = s.transcribe.TranscribeFile(ctx, req.FilePath, req.LanguageHint)
	} else {
		transcript, err = s.transcribe.TranscribeURL(ctx, req.URL, req.LanguageHint)
	}
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	cues := caption.BuildCues(transcript.WordTimings())
	vtt := webvtt.Serialize(cues)

	now := time.Now().UTC()
	video := &Video{
		ID:          uuid.NewString(),
		URL:         lookupURL,
		ProviderID:  ProviderIDFromURL(lookupURL),
		ContentHash: contentHash,
		Original: OriginalTrack{
			Name:              LanguageName(transcript.LanguageCode),
			ClosedCaptionText: transcript.Text,
			ClosedCaptionVtt:  vtt,
		},
		Translations: []TranslationTrack{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.UpsertVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("persist video: %w", err)
	}
	log.Info("Ingested video %s (%d cues, language %s)", video.ID, len(cues), video.Original.Name)
	return video, nil
}

// List returns all persisted video records.
func (s *Service) List(ctx context.Context) ([]*Video, error) {
	return s.store.ListVideos(ctx)
}

// lookup resolves a record by hash, provider ID, then raw URL.
func (s *Service) lookup(ctx context.Context, videoURL, contentHash string) (*Video, bool, error) {
	if contentHash != "" {
		video, found, err := s.store.GetVideoByContentHash(ctx, contentHash)
		if err != nil {
			return nil, false, fmt.Errorf("lookup by hash: %w", err)
		}
		if found {
			return video, true, nil
		}
	}

	if providerID := ProviderIDFromURL(videoURL); providerID != "" {
		video, found, err := s.store.GetVideoByProviderID(ctx, providerID)
		if err != nil {
			return nil, false, fmt.Errorf("lookup by provider id: %w", err)
		}
		if found {
			return video, true, nil
		}
	}

	video, found, err := s.store.GetVideoByURL(ctx, videoURL)
	if err != nil {
		return nil, false, fmt.Errorf("lookup by url: %w", err)
	}
	return video, found, nil
}

// ProviderIDFromURL extracts the storage provider's asset identifier from
// a delivery URL: the last path segment without its extension. Returns
// empty for URLs with no usable path.
func ProviderIDFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// LanguageName normalizes a language code or name to the English display
// name of the language ("de" → "German"). Unparseable input is returned
// unchanged so free-form names keep working.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

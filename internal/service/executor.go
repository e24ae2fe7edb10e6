package service

import (
	"context"
	"errors"

	"github.com/yaaintmal/path-ai-sub000/internal/jobs"
	"github.com/yaaintmal/path-ai-sub000/internal/transcribe"
	"github.com/yaaintmal/path-ai-sub000/internal/videos"
	"github.com/yaaintmal/path-ai-sub000/pkg/log"
)

// videoPipeline is the slice of videos.Service the executor needs.
type videoPipeline interface {
	Ingest(ctx context.Context, req videos.IngestRequest) (*videos.Video, error)
	TranslateVideo(ctx context.Context, videoID, videoURL, targetLanguage string) (*videos.Video, error)
}

// NewJobExecutor builds the queue executor dispatching on job kind.
func NewJobExecutor(pipeline videoPipeline) jobs.Executor {
	return func(ctx context.Context, job *jobs.Job) error {
		switch job.Kind {
		case jobs.KindIngest:
			return runIngest(ctx, pipeline, job)
		case jobs.KindTranslate:
			return runTranslate(ctx, pipeline, job)
		default:
			return NewError(ErrValidation, "unknown job kind").WithContext("kind", string(job.Kind))
		}
	}
}

func runIngest(ctx context.Context, pipeline videoPipeline, job *jobs.Job) error {
	video, err := pipeline.Ingest(ctx, videos.IngestRequest{
		URL:          job.Payload.VideoURL,
		FilePath:     job.Payload.FilePath,
		LanguageHint: job.Payload.LanguageHint,
		ContentHash:  job.Payload.ContentHash,
	})
	if err != nil {
		var deferred *transcribe.ErrDeferred
		if errors.As(err, &deferred) {
			return WrapError(err, ErrTranscription, "transcript not ready").
				WithContext("request_id", deferred.RequestID)
		}
		return WrapError(err, ErrTranscription, "ingest failed").
			WithContext("url", job.Payload.VideoURL).
			WithContext("file", job.Payload.FilePath)
	}

	log.Info("Job %s ingested video %s", job.ID, video.ID)
	return nil
}

func runTranslate(ctx context.Context, pipeline videoPipeline, job *jobs.Job) error {
	video, err := pipeline.TranslateVideo(
		ctx,
		job.Payload.VideoID,
		job.Payload.VideoURL,
		job.Payload.TargetLanguage,
	)
	if err != nil {
		return WrapError(err, ErrTranslation, "translate failed").
			WithContext("video_id", job.Payload.VideoID).
			WithContext("target", job.Payload.TargetLanguage)
	}

	log.Info("Job %s translated video %s into %s", job.ID, video.ID, job.Payload.TargetLanguage)
	return nil
}

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/yaaintmal/path-ai-sub000/internal/jobs"
	"github.com/yaaintmal/path-ai-sub000/internal/videos"
	"github.com/yaaintmal/path-ai-sub000/pkg/file"
	"github.com/yaaintmal/path-ai-sub000/pkg/icron"
	"github.com/yaaintmal/path-ai-sub000/pkg/log"
)

var mediaExts = []string{".mp4", ".webm", ".mov", ".mkv", ".mp3", ".m4a", ".wav"}

type videoLister interface {
	ListVideos(ctx context.Context) ([]*videos.Video, error)
}

// Sweeper periodically scans the upload directory for new lecture media
// and backfills missing default-language translations, enqueueing the
// corresponding jobs. Overlapping runs collapse via singleflight.
type Sweeper struct {
	uploadDir       string
	cronExpr        string
	targetLanguages []language.Tag

	queue *jobs.Queue
	store videoLister
	cron  *cron.Cron

	lastTriggerTime time.Time
	group           singleflight.Group
}

type SweeperConfig struct {
	UploadDir       string
	CronExpr        string
	TargetLanguages []language.Tag
}

func NewSweeper(cfg SweeperConfig, queue *jobs.Queue, store videoLister, c *cron.Cron) *Sweeper {
	return &Sweeper{
		uploadDir:       cfg.UploadDir,
		cronExpr:        cfg.CronExpr,
		targetLanguages: cfg.TargetLanguages,
		queue:           queue,
		store:           store,
		cron:            c,
	}
}

// Schedule registers the sweep on the cron runner.
func (s *Sweeper) Schedule(ctx context.Context) error {
	log.Info("Scheduling sweeps with cron expression %q", s.cronExpr)

	runFunc := func() {
		_, _, _ = s.group.Do("run", func() (any, error) {
			s.RunOnce(ctx)
			return nil, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

// RunOnce executes both sweeps immediately.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if err := s.sweepUploads(ctx); err != nil {
		log.Error("Upload sweep failed: %v", err)
	}
	if err := s.sweepMissingTranslations(ctx); err != nil {
		log.Error("Translation backlog sweep failed: %v", err)
	}
	s.lastTriggerTime = time.Now()
}

// sweepUploads enqueues ingest jobs for media files dropped into the
// upload directory since the last run.
func (s *Sweeper) sweepUploads(ctx context.Context) error {
	if s.uploadDir == "" {
		return nil
	}
	if _, err := os.Stat(s.uploadDir); os.IsNotExist(err) {
		return fmt.Errorf("upload directory %s does not exist", s.uploadDir)
	}

	startTime, err := s.startTime()
	if err != nil {
		return fmt.Errorf("resolve sweep window: %w", err)
	}
	log.Info("Scanning %s for media files newer than %v", s.uploadDir, startTime)

	recentFiles, err := file.FindRecentAfter(s.uploadDir, startTime)
	if err != nil {
		return fmt.Errorf("scan upload directory: %w", err)
	}

	enqueued := 0
	for _, filePath := range recentFiles {
		if !isMediaFile(strings.ToLower(filepath.Ext(filePath))) {
			continue
		}
		_, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Kind:      jobs.KindIngest,
			Source:    "cron",
			DedupeKey: string(jobs.KindIngest) + "|" + filePath,
			Payload: jobs.JobPayload{
				FilePath: filePath,
			},
		})
		if created {
			enqueued++
		}
	}
	if enqueued > 0 {
		log.Info("Enqueued %d ingest jobs from upload sweep", enqueued)
	}
	return nil
}

// sweepMissingTranslations enqueues translate jobs for every ingested
// video lacking one of the configured default target languages.
func (s *Sweeper) sweepMissingTranslations(ctx context.Context) error {
	if len(s.targetLanguages) == 0 {
		return nil
	}

	all, err := s.store.ListVideos(ctx)
	if err != nil {
		return fmt.Errorf("list videos: %w", err)
	}

	enqueued := 0
	for _, video := range all {
		for _, tag := range s.targetLanguages {
			name := videos.LanguageName(tag.String())
			if video.Original.Name == name || video.HasTranslation(name) {
				continue
			}
			_, created := s.queue.Enqueue(jobs.EnqueueRequest{
				Kind:      jobs.KindTranslate,
				Source:    "cron",
				DedupeKey: string(jobs.KindTranslate) + "|" + video.ID + "|" + name,
				Payload: jobs.JobPayload{
					VideoID:        video.ID,
					TargetLanguage: tag.String(),
				},
			})
			if created {
				enqueued++
			}
		}
	}
	if enqueued > 0 {
		log.Info("Enqueued %d translate jobs from backlog sweep", enqueued)
	}
	return nil
}

// startTime picks the window start for the upload scan: the last actual
// run when known, otherwise the previous cron fire time, capped at one
// week back for schedules that have not fired recently.
func (s *Sweeper) startTime() (time.Time, error) {
	if s.lastTriggerTime.IsZero() {
		cronSchedule, err := icron.GetTriggerInfo(s.cronExpr, time.Now())
		if err != nil {
			return time.Time{}, fmt.Errorf("resolve cron schedule: %w", err)
		}

		if time.Now().Add(-24 * 1 * time.Hour).Before(cronSchedule.Last) {
			return time.Now().Add(-24 * 7 * time.Hour), nil
		}
		return cronSchedule.Last, nil
	}

	return s.lastTriggerTime, nil
}

func isMediaFile(ext string) bool {
	return slices.Contains(mediaExts, ext)
}

package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yaaintmal/path-ai-sub000/internal/jobs"
	"github.com/yaaintmal/path-ai-sub000/internal/videos"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteStore backs both the video catalog and the job queue with a
// single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

const videoColumns = `id, url, provider_id, content_hash, original_name, original_text, original_vtt, created_at, updated_at`

func (s *SQLiteStore) UpsertVideo(ctx context.Context, video *videos.Video) error {
	if video == nil {
		return fmt.Errorf("video is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (`+videoColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			url=excluded.url,
			provider_id=excluded.provider_id,
			content_hash=excluded.content_hash,
			original_name=excluded.original_name,
			original_text=excluded.original_text,
			original_vtt=excluded.original_vtt,
			updated_at=excluded.updated_at`,
		video.ID,
		video.URL,
		video.ProviderID,
		video.ContentHash,
		video.Original.Name,
		video.Original.ClosedCaptionText,
		video.Original.ClosedCaptionVtt,
		video.CreatedAt,
		video.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) GetVideoByID(ctx context.Context, id string) (*videos.Video, bool, error) {
	if strings.TrimSpace(id) == "" {
		return nil, false, nil
	}
	return s.getVideoWhere(ctx, "id = ?", id)
}

func (s *SQLiteStore) GetVideoByContentHash(ctx context.Context, hash string) (*videos.Video, bool, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, false, nil
	}
	return s.getVideoWhere(ctx, "content_hash = ?", hash)
}

func (s *SQLiteStore) GetVideoByProviderID(ctx context.Context, providerID string) (*videos.Video, bool, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, false, nil
	}
	return s.getVideoWhere(ctx, "provider_id = ?", providerID)
}

func (s *SQLiteStore) GetVideoByURL(ctx context.Context, url string) (*videos.Video, bool, error) {
	if strings.TrimSpace(url) == "" {
		return nil, false, nil
	}
	return s.getVideoWhere(ctx, "url = ?", url)
}

func (s *SQLiteStore) getVideoWhere(ctx context.Context, where string, arg any) (*videos.Video, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+videoColumns+` FROM videos WHERE `+where+` LIMIT 1`,
		arg,
	)
	video, err := scanVideo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if err := s.loadTranslations(ctx, video); err != nil {
		return nil, false, err
	}
	return video, true, nil
}

func (s *SQLiteStore) ListVideos(ctx context.Context) ([]*videos.Video, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*videos.Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, video)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, video := range ret {
		if err := s.loadTranslations(ctx, video); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (s *SQLiteStore) AddTranslation(ctx context.Context, videoID string, track videos.TranslationTrack) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO video_translations (video_id, name, vtt, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(video_id, name) DO UPDATE SET
			vtt=excluded.vtt`,
		videoID,
		track.Name,
		track.ClosedCaptionVtt,
		time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) loadTranslations(ctx context.Context, video *videos.Video) error {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, vtt FROM video_translations WHERE video_id = ? ORDER BY created_at ASC`,
		video.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	video.Translations = make([]videos.TranslationTrack, 0)
	for rows.Next() {
		var track videos.TranslationTrack
		if err := rows.Scan(&track.Name, &track.ClosedCaptionVtt); err != nil {
			return err
		}
		video.Translations = append(video.Translations, track)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*videos.Video, error) {
	var video videos.Video
	if err := row.Scan(
		&video.ID,
		&video.URL,
		&video.ProviderID,
		&video.ContentHash,
		&video.Original.Name,
		&video.Original.ClosedCaptionText,
		&video.Original.ClosedCaptionVtt,
		&video.CreatedAt,
		&video.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.Job, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, kind, source, dedupe_key, video_url, file_path, language_hint, content_hash, video_id, target_language, status, error, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.Job, 0)
	for rows.Next() {
		var item jobs.Job
		var kind string
		var status string
		if err := rows.Scan(
			&item.ID,
			&kind,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.VideoURL,
			&item.Payload.FilePath,
			&item.Payload.LanguageHint,
			&item.Payload.ContentHash,
			&item.Payload.VideoID,
			&item.Payload.TargetLanguage,
			&status,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Kind = jobs.Kind(kind)
		item.Status = jobs.Status(status)
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.Job) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, kind, source, dedupe_key, video_url, file_path, language_hint, content_hash, video_id, target_language, status, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind,
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			video_url=excluded.video_url,
			file_path=excluded.file_path,
			language_hint=excluded.language_hint,
			content_hash=excluded.content_hash,
			video_id=excluded.video_id,
			target_language=excluded.target_language,
			status=excluded.status,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		string(job.Kind),
		job.Source,
		job.DedupeKey,
		job.Payload.VideoURL,
		job.Payload.FilePath,
		job.Payload.LanguageHint,
		job.Payload.ContentHash,
		job.Payload.VideoID,
		job.Payload.TargetLanguage,
		string(job.Status),
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

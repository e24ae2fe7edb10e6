package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaaintmal/path-ai-sub000/internal/config"
	"github.com/yaaintmal/path-ai-sub000/internal/jobs"
	"github.com/yaaintmal/path-ai-sub000/internal/videos"
)

type fakeCatalog struct {
	videos  []*videos.Video
	found   *videos.Video
	gotURL  string
	gotLang string
	gotHash string
}

func (f *fakeCatalog) FindExistingWithOptionalTranslation(_ context.Context, url, lang, hash string) (*videos.Video, bool, error) {
	f.gotURL = url
	f.gotLang = lang
	f.gotHash = hash
	if f.found == nil {
		return nil, false, nil
	}
	return f.found, true, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]*videos.Video, error) {
	return f.videos, nil
}

type fakeSettingsStore struct {
	current   config.RuntimeSettings
	updateErr error
}

func (f *fakeSettingsStore) GetRuntimeSettings() (config.RuntimeSettings, error) {
	return f.current, nil
}

func (f *fakeSettingsStore) UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error) {
	if f.updateErr != nil {
		return config.RuntimeSettings{}, f.updateErr
	}
	f.current = next
	return f.current, nil
}

func TestServer_ListVideos(t *testing.T) {
	catalog := &fakeCatalog{videos: []*videos.Video{
		{ID: "vid-1", URL: "https://cdn.example/a.mp4"},
		{ID: "vid-2", URL: "https://cdn.example/b.mp4"},
	}}
	srv := NewServer(catalog, jobs.NewQueue(1, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []*videos.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
}

func TestServer_VideoLookup_PassesParams(t *testing.T) {
	catalog := &fakeCatalog{found: &videos.Video{ID: "vid-1"}}
	srv := NewServer(catalog, jobs.NewQueue(1, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/videos?url=https%3A%2F%2Fcdn.example%2Fa.mp4&lang=de&hash=h1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.example/a.mp4", catalog.gotURL)
	assert.Equal(t, "de", catalog.gotLang)
	assert.Equal(t, "h1", catalog.gotHash)
}

func TestServer_VideoLookup_NotFound(t *testing.T) {
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/videos?url=https%3A%2F%2Fcdn.example%2Fmissing.mp4", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_IngestVideo_EnqueuesJob(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	srv := NewServer(&fakeCatalog{}, queue)

	body := []byte(`{"url":"https://cdn.example/a.mp4","language_hint":"en","content_hash":"h1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var ret struct {
		Created bool      `json:"created"`
		Job     *jobs.Job `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	require.True(t, ret.Created)
	require.NotNil(t, ret.Job)
	assert.Equal(t, jobs.KindIngest, ret.Job.Kind)
	assert.Equal(t, "ingest|https://cdn.example/a.mp4", ret.Job.DedupeKey)
	assert.Equal(t, "en", ret.Job.Payload.LanguageHint)

	// Same URL again: deduplicated.
	req = httptest.NewRequest(http.MethodPost, "/api/videos", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	assert.False(t, ret.Created)
}

func TestServer_IngestVideo_RequiresTarget(t *testing.T) {
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(`{"source":"manual"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateTranslateJob(t *testing.T) {
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil))

	body := []byte(`{"kind":"translate","video_id":"vid-1","target_language":"de"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var ret struct {
		Created bool      `json:"created"`
		Job     *jobs.Job `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	require.True(t, ret.Created)
	assert.Equal(t, jobs.KindTranslate, ret.Job.Kind)
	assert.Equal(t, "translate|vid-1|de", ret.Job.DedupeKey)
}

func TestServer_CreateTranslateJob_RequiresTargetLanguage(t *testing.T) {
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil))

	body := []byte(`{"kind":"translate","video_id":"vid-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateJob_RejectsUnknownKind(t *testing.T) {
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil))

	body := []byte(`{"kind":"mystery","video_url":"https://cdn.example/a.mp4"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_JobDetail(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	job, _ := queue.Enqueue(jobs.EnqueueRequest{
		Kind:      jobs.KindIngest,
		Source:    "manual",
		DedupeKey: "k1",
	})
	srv := NewServer(&fakeCatalog{}, queue)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got jobs.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, job.ID, got.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Settings_GetAndPut(t *testing.T) {
	store := &fakeSettingsStore{current: config.RuntimeSettings{
		LLMAPIURL:       "https://old.example/v1",
		LLMAPIKey:       "old",
		LLMModel:        "old-model",
		CronExpr:        "0 0 * * *",
		TargetLanguages: []string{"de"},
	}}

	var applied *config.RuntimeSettings
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil),
		WithRuntimeSettingsStore(store),
		WithRuntimeSettingsApplier(func(next config.RuntimeSettings) error {
			applied = &next
			return nil
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := []byte(`{"llm_api_url":"https://new.example/v1","llm_api_key":"new","llm_model":"new-model","cron_expr":"*/5 * * * *","target_languages":["fr","ja"]}`)
	req = httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, applied)
	assert.Equal(t, "new-model", applied.LLMModel)
	assert.Equal(t, []string{"fr", "ja"}, store.current.TargetLanguages)
}

func TestServer_Settings_RejectsInvalid(t *testing.T) {
	srv := NewServer(&fakeCatalog{}, jobs.NewQueue(1, nil),
		WithRuntimeSettingsStore(&fakeSettingsStore{}),
	)

	body := []byte(`{"llm_api_url":"https://x/v1","llm_api_key":"k","llm_model":"m","cron_expr":"bad cron"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_JobStream_SendsInitialSnapshot(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	queue.Enqueue(jobs.EnqueueRequest{
		Kind:      jobs.KindIngest,
		Source:    "manual",
		DedupeKey: "k1",
	})
	srv := NewServer(&fakeCatalog{}, queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "data: "))
	assert.Contains(t, rec.Body.String(), `"dedupe_key":"k1"`)
}

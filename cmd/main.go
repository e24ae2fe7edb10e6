package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/yaaintmal/path-ai-sub000/internal/config"
	"github.com/yaaintmal/path-ai-sub000/internal/httpapi"
	"github.com/yaaintmal/path-ai-sub000/internal/jobs"
	"github.com/yaaintmal/path-ai-sub000/internal/llm"
	"github.com/yaaintmal/path-ai-sub000/internal/persistence"
	"github.com/yaaintmal/path-ai-sub000/internal/service"
	"github.com/yaaintmal/path-ai-sub000/internal/transcribe"
	"github.com/yaaintmal/path-ai-sub000/internal/translator"
	"github.com/yaaintmal/path-ai-sub000/internal/videos"
	"github.com/yaaintmal/path-ai-sub000/pkg/log"
)

const jobWorkers = 2

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronRunner interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()
	log.InitLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))

	settingsPath := config.RuntimeSettingsFilePath()
	opts := []config.Option{}
	if settings, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		opts = append(opts, config.WithRuntimeSettings(settings))
	} else if !os.IsNotExist(err) {
		log.Warn("Ignoring unreadable settings file %s: %v", settingsPath, err)
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	app, err := buildApplication(cfg, settingsPath)
	if err != nil {
		log.Fatal("Failed to build application: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWithComponents(ctx, cfg, app.sweeper, app.cron, app.server); err != nil {
		log.Fatal("Server error: %v", err)
	}
}

// runWithComponents starts the sweep schedule and the HTTP server, then
// blocks until the context is cancelled or the server fails.
func runWithComponents(
	ctx context.Context,
	cfg *config.Config,
	sched scheduler,
	cronEngine cronRunner,
	httpSrv httpServer,
) error {
	if err := sched.Schedule(ctx); err != nil {
		return fmt.Errorf("schedule sweeps: %w", err)
	}
	cronEngine.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe(cfg.HTTP.Addr)
	}()
	log.Info("Listening on %s", cfg.HTTP.Addr)

	select {
	case err := <-errCh:
		cronEngine.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown: %v", err)
	}
	cronEngine.Stop()

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type application struct {
	cfg *config.Config

	store     *persistence.SQLiteStore
	queue     *jobs.Queue
	cron      *cron.Cron
	sweeper   *service.Sweeper
	server    *httpapi.Server
	translate *switchableTranslator
}

func buildApplication(cfg *config.Config, settingsPath string) (*application, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store, err := persistence.NewSQLiteStore(cfg.Storage.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sttClient, err := transcribe.NewClient(transcribe.Config{
		APIURL:  cfg.Transcribe.APIURL,
		APIKey:  cfg.Transcribe.APIKey,
		Model:   cfg.Transcribe.Model,
		Timeout: time.Duration(cfg.Transcribe.TimeoutMinutes) * time.Minute,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build transcription client: %w", err)
	}

	translate := &switchableTranslator{}
	if err := translate.rebuild(cfg.LLM); err != nil {
		store.Close()
		return nil, fmt.Errorf("build translator: %w", err)
	}

	catalog := videos.NewService(store, sttClient, translate)

	queue := jobs.NewQueue(jobWorkers, store)
	queue.Start(service.NewJobExecutor(catalog))

	cronEngine := cron.New()
	sweeper := service.NewSweeper(service.SweeperConfig{
		UploadDir:       cfg.Storage.UploadDir,
		CronExpr:        cfg.Translate.CronExpr,
		TargetLanguages: cfg.Translate.TargetLanguages,
	}, queue, store, cronEngine)

	app := &application{
		cfg:       cfg,
		store:     store,
		queue:     queue,
		cron:      cronEngine,
		sweeper:   sweeper,
		translate: translate,
	}

	settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("build settings store: %w", err)
	}

	serverOpts := []httpapi.Option{
		httpapi.WithRuntimeSettingsStore(settingsStore),
		httpapi.WithRuntimeSettingsApplier(app.applyRuntimeSettings),
	}
	if cfg.HTTP.StaticDir != "" {
		serverOpts = append(serverOpts, httpapi.WithUI(cfg.HTTP.StaticDir, true))
	}
	app.server = httpapi.NewServer(catalog, queue, serverOpts...)

	return app, nil
}

// applyRuntimeSettings swaps the translation provider live. Schedule and
// target-language changes are persisted but picked up on the next start,
// since the cron entry is registered once.
func (a *application) applyRuntimeSettings(next config.RuntimeSettings) error {
	llmCfg := a.cfg.LLM
	llmCfg.APIURL = next.LLMAPIURL
	llmCfg.APIKey = next.LLMAPIKey
	llmCfg.Model = next.LLMModel

	if err := a.translate.rebuild(llmCfg); err != nil {
		return err
	}
	if next.CronExpr != a.cfg.Translate.CronExpr {
		log.Warn("Cron expression change to %q takes effect after restart", next.CronExpr)
	}
	log.Info("Applied runtime settings: model %s at %s", next.LLMModel, next.LLMAPIURL)
	return nil
}

func (a *application) Close() {
	a.queue.Stop()
	if err := a.store.Close(); err != nil {
		log.Error("Closing store: %v", err)
	}
}

// switchableTranslator lets the settings endpoint replace the LLM-backed
// translator without restarting in-flight components.
type switchableTranslator struct {
	current atomic.Pointer[translator.CueTranslator]
}

func (s *switchableTranslator) rebuild(llmCfg config.LLMConfig) error {
	client, err := llm.NewClient(&llm.Config{
		APIKey:      llmCfg.APIKey,
		APIURL:      llmCfg.APIURL,
		Model:       llmCfg.Model,
		MaxTokens:   llmCfg.MaxTokens,
		Temperature: llmCfg.Temperature,
		Timeout:     llmCfg.Timeout,
		SiteURL:     llmCfg.SiteURL,
		AppName:     llmCfg.AppName,
	})
	if err != nil {
		return err
	}
	lt := translator.NewLLMTranslator(client)
	s.current.Store(translator.NewCueTranslator(lt, lt))
	return nil
}

func (s *switchableTranslator) TranslateVttPreserveTimings(
	ctx context.Context,
	vtt, targetLanguage, fallbackText string,
) (translator.Result, error) {
	return s.current.Load().TranslateVttPreserveTimings(ctx, vtt, targetLanguage, fallbackText)
}

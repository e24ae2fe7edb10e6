package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yaaintmal/path-ai-sub000/internal/config"
	"github.com/yaaintmal/path-ai-sub000/internal/jobs"
)

// handleVideos serves the video catalog. GET without parameters lists all
// records; GET with ?url= runs the dedup lookup, optionally with ?lang=
// (lazy translation) and ?hash= (content-hash match and backfill). POST
// enqueues an ingest job.
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		videoURL := r.URL.Query().Get("url")
		if videoURL == "" {
			list, err := s.catalog.List(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, list)
			return
		}

		video, found, err := s.catalog.FindExistingWithOptionalTranslation(
			r.Context(),
			videoURL,
			r.URL.Query().Get("lang"),
			r.URL.Query().Get("hash"),
		)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		writeJSON(w, http.StatusOK, video)
	case http.MethodPost:
		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.URL == "" && req.FilePath == "" {
			writeError(w, http.StatusBadRequest, "url or file_path is required")
			return
		}
		if req.Source == "" {
			req.Source = "manual"
		}

		target := req.URL
		if target == "" {
			target = req.FilePath
		}
		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Kind:      jobs.KindIngest,
			Source:    req.Source,
			DedupeKey: string(jobs.KindIngest) + "|" + target,
			Payload: jobs.JobPayload{
				VideoURL:     req.URL,
				FilePath:     req.FilePath,
				LanguageHint: req.LanguageHint,
				ContentHash:  req.ContentHash,
			},
		})
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{
			"created": created,
			"job":     job,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type ingestRequest struct {
	URL          string `json:"url"`
	FilePath     string `json:"file_path"`
	LanguageHint string `json:"language_hint"`
	ContentHash  string `json:"content_hash"`
	Source       string `json:"source"`
}

type enqueueJobRequest struct {
	Kind           string `json:"kind"`
	Source         string `json:"source"`
	DedupeKey      string `json:"dedupe_key"`
	VideoURL       string `json:"video_url"`
	FilePath       string `json:"file_path"`
	LanguageHint   string `json:"language_hint"`
	ContentHash    string `json:"content_hash"`
	VideoID        string `json:"video_id"`
	TargetLanguage string `json:"target_language"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.queue.List())
	case http.MethodPost:
		var req enqueueJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Source == "" {
			req.Source = "manual"
		}

		kind := jobs.Kind(req.Kind)
		switch kind {
		case "", jobs.KindIngest:
			kind = jobs.KindIngest
			if req.VideoURL == "" && req.FilePath == "" {
				writeError(w, http.StatusBadRequest, "video_url or file_path is required")
				return
			}
		case jobs.KindTranslate:
			if req.VideoID == "" && req.VideoURL == "" {
				writeError(w, http.StatusBadRequest, "video_id or video_url is required")
				return
			}
			if req.TargetLanguage == "" {
				writeError(w, http.StatusBadRequest, "target_language is required")
				return
			}
		default:
			writeError(w, http.StatusBadRequest, "unknown job kind")
			return
		}

		if req.DedupeKey == "" {
			req.DedupeKey = dedupeKey(kind, req)
		}

		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Kind:      kind,
			Source:    req.Source,
			DedupeKey: req.DedupeKey,
			Payload: jobs.JobPayload{
				VideoURL:       req.VideoURL,
				FilePath:       req.FilePath,
				LanguageHint:   req.LanguageHint,
				ContentHash:    req.ContentHash,
				VideoID:        req.VideoID,
				TargetLanguage: req.TargetLanguage,
			},
		})
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{
			"created": created,
			"job":     job,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func dedupeKey(kind jobs.Kind, req enqueueJobRequest) string {
	switch kind {
	case jobs.KindTranslate:
		subject := req.VideoID
		if subject == "" {
			subject = req.VideoURL
		}
		return string(kind) + "|" + subject + "|" + req.TargetLanguage
	default:
		target := req.VideoURL
		if target == "" {
			target = req.FilePath
		}
		return string(kind) + "|" + target
	}
}

func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	id = strings.TrimSuffix(id, "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	job, ok := s.queue.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

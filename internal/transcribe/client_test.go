package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{APIURL: "http://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = NewClient(Config{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API URL")
}

func TestTranscribeURL_SendsHintAndAuth(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]any{"text": "hello", "language_code": "en"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIURL: srv.URL, APIKey: "secret", Model: "scribe_v2"})
	require.NoError(t, err)

	tr, err := client.TranscribeURL(context.Background(), "https://cdn.example/v.mp4", "de")
	require.NoError(t, err)
	assert.Equal(t, "hello", tr.Text)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "https://cdn.example/v.mp4", gotPayload["url"])
	assert.Equal(t, "scribe_v2", gotPayload["model_id"])
	assert.Equal(t, "de", gotPayload["language_code"])
}

func TestTranscribeURL_AutoHintOmitted(t *testing.T) {
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]any{"text": "hello", "language_code": "en"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = client.TranscribeURL(context.Background(), "https://cdn.example/v.mp4", "auto")
	require.NoError(t, err)
	_, hinted := gotPayload["language_code"]
	assert.False(t, hinted)
}

func TestTranscribeURL_UpstreamFailureSurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = client.TranscribeURL(context.Background(), "https://cdn.example/v.mp4", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTranscribeFile_UploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecture.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake media bytes"), 0o644))

	var gotContentType, gotFilename, gotModel string
	var gotFileBytes []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model_id")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotFileBytes = buf[:n]
		json.NewEncoder(w).Encode(map[string]any{"text": "ok", "language_code": "en"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIURL: srv.URL, APIKey: "secret", Model: "scribe_v2"})
	require.NoError(t, err)

	tr, err := client.TranscribeFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", tr.Text)
	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "lecture.mp4", gotFilename)
	assert.Equal(t, "scribe_v2", gotModel)
	assert.Equal(t, "fake media bytes", string(gotFileBytes))
}

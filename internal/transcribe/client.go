package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the speech-to-text collaborator settings.
type Config struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("transcription API URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("transcription API key is required")
	}
	return nil
}

// Client talks to an external speech-to-text service. Media reaches the
// service either as a multipart file upload or as a URL the service
// fetches itself.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Minute
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// TranscribeURL asks the service to fetch and transcribe a remote media
// URL. languageCode is an optional hint; empty or "auto" means detect.
func (c *Client) TranscribeURL(ctx context.Context, mediaURL, languageCode string) (*Transcript, error) {
	payload := map[string]string{
		"url":      mediaURL,
		"model_id": c.config.Model,
	}
	if languageCode != "" && !strings.EqualFold(languageCode, "auto") {
		payload["language_code"] = languageCode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// TranscribeFile uploads a local media file as multipart form data. The
// body is streamed through a pipe so large lecture recordings are never
// buffered in memory.
func (c *Client) TranscribeFile(ctx context.Context, filePath, languageCode string) (*Transcript, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer mw.Close()

		if err := mw.WriteField("model_id", c.config.Model); err != nil {
			errCh <- err
			return
		}
		if languageCode != "" && !strings.EqualFold(languageCode, "auto") {
			if err := mw.WriteField("language_code", languageCode); err != nil {
				errCh <- err
				return
			}
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filePath)))
		h.Set("Content-Type", mimeFromExt(filepath.Ext(filePath)))
		part, err := mw.CreatePart(h)
		if err != nil {
			errCh <- err
			return
		}

		if _, err := io.Copy(part, f); err != nil {
			errCh <- err
			return
		}

		errCh <- nil
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, pr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	transcript, err := c.do(req)

	if writeErr := <-errCh; writeErr != nil {
		return nil, fmt.Errorf("multipart write error: %w", writeErr)
	}
	return transcript, err
}

func (c *Client) do(req *http.Request) (*Transcript, error) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcription API returned status %d: %s", resp.StatusCode, string(body))
	}

	return Normalize(body)
}

func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mp3"
	case ".m4a":
		return "audio/m4a"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".aac":
		return "audio/aac"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/mov"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

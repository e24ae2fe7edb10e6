package transcribe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/yaaintmal/path-ai-sub000/pkg/log"
)

// ErrDeferred reports that the provider accepted the request but the
// transcript is still being produced. Callers should re-enqueue rather
// than treat this as a failure.
type ErrDeferred struct {
	RequestID string
	Status    string
}

func (e *ErrDeferred) Error() string {
	return fmt.Sprintf("transcript deferred (request_id=%s status=%s)", e.RequestID, e.Status)
}

// ErrUnrecognizedShape reports a response body that matches none of the
// known transcript shapes.
type ErrUnrecognizedShape struct {
	Body string
}

func (e *ErrUnrecognizedShape) Error() string {
	preview := e.Body
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return fmt.Sprintf("unrecognized transcript response shape: %s", preview)
}

// Normalize decodes a speech-to-text response body and reduces whichever
// shape it carries to a canonical Transcript. Three shapes are known:
//
//   - plain:     {text, language_code, words}
//   - segmented: {transcripts: [{text, language_code, words}, ...]}
//   - deferred:  {request_id, status}
//
// A deferred response returns *ErrDeferred; anything else that fits no
// shape returns *ErrUnrecognizedShape.
func Normalize(body []byte) (*Transcript, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ErrUnrecognizedShape{Body: string(body)}
	}

	switch {
	case raw.Text != "" || len(raw.Words) > 0:
		return finalize(&Transcript{
			Text:         raw.Text,
			LanguageCode: raw.LanguageCode,
			Words:        raw.Words,
		}), nil

	case len(raw.Transcripts) > 0:
		return finalize(mergeSegments(raw.Transcripts)), nil

	case raw.RequestID != "" || raw.Status != "":
		return nil, &ErrDeferred{RequestID: raw.RequestID, Status: raw.Status}

	default:
		return nil, &ErrUnrecognizedShape{Body: string(body)}
	}
}

// mergeSegments concatenates channel/chunk transcripts in order. The
// first segment carrying a language code wins.
func mergeSegments(segments []transcriptSegment) *Transcript {
	merged := &Transcript{}
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			texts = append(texts, seg.Text)
		}
		if merged.LanguageCode == "" && seg.LanguageCode != "" {
			merged.LanguageCode = seg.LanguageCode
		}
		merged.Words = append(merged.Words, seg.Words...)
	}
	merged.Text = strings.Join(texts, " ")
	return merged
}

// finalize fills a missing language code by detecting it from the
// transcript text.
func finalize(t *Transcript) *Transcript {
	if t.LanguageCode == "" && t.Text != "" {
		info := whatlanggo.Detect(t.Text)
		if info.IsReliable() {
			t.LanguageCode = info.Lang.Iso6391()
			log.Debug("Detected transcript language %q from text", t.LanguageCode)
		}
	}
	return t
}

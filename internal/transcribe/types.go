package transcribe

import "github.com/yaaintmal/path-ai-sub000/internal/caption"

// Word is a single recognized token from the speech-to-text response.
// Start/End are pointers because some providers omit timings for
// punctuation or audio-event tokens.
type Word struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Type  string   `json:"type,omitempty"` // "word", "spacing", "audio_event"
}

// rawResponse covers every response shape the collaborator is known to
// return. Which fields are populated determines the shape; see Normalize.
type rawResponse struct {
	Text         string `json:"text,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	Words        []Word `json:"words,omitempty"`

	// Segmented shape: one entry per audio channel or chunk.
	Transcripts []transcriptSegment `json:"transcripts,omitempty"`

	// Deferred shape: the provider accepted the job but the transcript
	// is not ready yet.
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

type transcriptSegment struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code,omitempty"`
	Words        []Word `json:"words,omitempty"`
}

// Transcript is the canonical result every response shape normalizes to.
type Transcript struct {
	Text         string
	LanguageCode string
	Words        []Word
}

// WordTimings converts the transcript words into the cue builder's input
// shape.
func (t *Transcript) WordTimings() []caption.WordTiming {
	timings := make([]caption.WordTiming, len(t.Words))
	for i, w := range t.Words {
		timings[i] = caption.WordTiming{
			Text:  w.Text,
			Start: w.Start,
			End:   w.End,
			Type:  w.Type,
		}
	}
	return timings
}

package translator

import (
	"context"

	"github.com/yaaintmal/path-ai-sub000/internal/caption"
)

// LineTranslator translates a batch of subtitle lines. Implementations are
// asked to preserve line count and order, but callers must not rely on
// that: the upstream model is free to misbehave, which is why results go
// through Reconcile before use.
type LineTranslator interface {
	TranslateLines(
		ctx context.Context,
		lines []string,
		targetLanguage string,
	) ([]string, error)
}

// TextTranslator translates an arbitrary text blob. Used only on the
// no-timing fallback path when a video has no parseable subtitle track.
type TextTranslator interface {
	TranslateText(
		ctx context.Context,
		text string,
		targetLanguage string,
	) (string, error)
}

// Result bundles the artifacts derived from one translation pass.
type Result struct {
	TranslatedCues []caption.Cue `json:"translated_cues"`
	TranslatedText string        `json:"translated_text"`
	TranslatedVtt  string        `json:"translated_vtt"`
}

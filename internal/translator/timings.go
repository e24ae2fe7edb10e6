package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaaintmal/path-ai-sub000/internal/caption"
	"github.com/yaaintmal/path-ai-sub000/internal/webvtt"
	"github.com/yaaintmal/path-ai-sub000/pkg/log"
)

// CueTranslator translates cue sequences while preserving their count and
// timings. Only cue text may change between input and output; start/end
// values are copied positionally from the source cues.
type CueTranslator struct {
	lines LineTranslator
	text  TextTranslator
}

func NewCueTranslator(lines LineTranslator, text TextTranslator) *CueTranslator {
	return &CueTranslator{
		lines: lines,
		text:  text,
	}
}

// TranslateCuesPreserveTimings translates each cue's text into the target
// language. The output cue sequence has the same length as the input and
// identical timings at every index. An empty input short-circuits to empty
// results without a network call.
func (t *CueTranslator) TranslateCuesPreserveTimings(
	ctx context.Context,
	cues []caption.Cue,
	targetLanguage string,
) (Result, error) {
	if len(cues) == 0 {
		return Result{
			TranslatedCues: []caption.Cue{},
			TranslatedText: "",
			TranslatedVtt:  "",
		}, nil
	}

	originals := make([]string, len(cues))
	for i, cue := range cues {
		originals[i] = cue.Text
	}

	translated, err := t.lines.TranslateLines(ctx, originals, targetLanguage)
	if err != nil {
		return Result{}, fmt.Errorf("translate cue lines: %w", err)
	}

	if len(translated) != len(cues) {
		log.Warn("Translation returned %d lines for %d cues, reconciling", len(translated), len(cues))
	}
	reconciled := Reconcile(len(cues), translated, originals)

	translatedCues := make([]caption.Cue, len(cues))
	texts := make([]string, len(cues))
	for i, cue := range cues {
		text := reconciled[i]
		translatedCues[i] = caption.Cue{
			Start: cue.Start,
			End:   cue.End,
			Text:  text,
		}
		texts[i] = text
	}

	return Result{
		TranslatedCues: translatedCues,
		TranslatedText: strings.Join(texts, " "),
		TranslatedVtt:  webvtt.Serialize(translatedCues),
	}, nil
}

// TranslateVttPreserveTimings parses a stored WebVTT document and runs the
// timing-preserving translation over its cues. When the document yields no
// cues (a video ingested without word-level timing) it falls back to a
// plain-text translation of fallbackText and returns an empty VTT.
func (t *CueTranslator) TranslateVttPreserveTimings(
	ctx context.Context,
	vtt string,
	targetLanguage string,
	fallbackText string,
) (Result, error) {
	cues := webvtt.Parse(vtt)
	if len(cues) > 0 {
		return t.TranslateCuesPreserveTimings(ctx, cues, targetLanguage)
	}

	log.Info("No cues found in subtitle track, translating plain text fallback")
	translated, err := t.text.TranslateText(ctx, fallbackText, targetLanguage)
	if err != nil {
		return Result{}, fmt.Errorf("translate fallback text: %w", err)
	}
	return Result{
		TranslatedCues: []caption.Cue{},
		TranslatedText: translated,
		TranslatedVtt:  "",
	}, nil
}

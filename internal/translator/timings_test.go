package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaaintmal/path-ai-sub000/internal/caption"
	"github.com/yaaintmal/path-ai-sub000/internal/webvtt"
)

type fakeLineTranslator struct {
	calls     int
	gotLines  []string
	gotLang   string
	respLines []string
	err       error
}

func (f *fakeLineTranslator) TranslateLines(_ context.Context, lines []string, lang string) ([]string, error) {
	f.calls++
	f.gotLines = lines
	f.gotLang = lang
	if f.err != nil {
		return nil, f.err
	}
	return f.respLines, nil
}

type fakeTextTranslator struct {
	calls    int
	gotText  string
	respText string
	err      error
}

func (f *fakeTextTranslator) TranslateText(_ context.Context, text string, _ string) (string, error) {
	f.calls++
	f.gotText = text
	if f.err != nil {
		return "", f.err
	}
	return f.respText, nil
}

func sampleCues() []caption.Cue {
	return []caption.Cue{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
	}
}

func TestTranslateCues_EmptyShortCircuits(t *testing.T) {
	lines := &fakeLineTranslator{}
	text := &fakeTextTranslator{}
	tr := NewCueTranslator(lines, text)

	res, err := tr.TranslateCuesPreserveTimings(context.Background(), nil, "de")
	require.NoError(t, err)
	assert.Empty(t, res.TranslatedCues)
	assert.Equal(t, "", res.TranslatedText)
	assert.Equal(t, "", res.TranslatedVtt)
	assert.Zero(t, lines.calls, "no network call expected for empty input")
	assert.Zero(t, text.calls)
}

func TestTranslateCues_CountAndTimingPreserved(t *testing.T) {
	lines := &fakeLineTranslator{respLines: []string{"A", "B"}}
	tr := NewCueTranslator(lines, &fakeTextTranslator{})

	cues := sampleCues()
	res, err := tr.TranslateCuesPreserveTimings(context.Background(), cues, "de")
	require.NoError(t, err)

	require.Len(t, res.TranslatedCues, len(cues))
	for i := range cues {
		assert.Equal(t, cues[i].Start, res.TranslatedCues[i].Start, "cue %d start", i)
		assert.Equal(t, cues[i].End, res.TranslatedCues[i].End, "cue %d end", i)
	}
	assert.Equal(t, "A", res.TranslatedCues[0].Text)
	assert.Equal(t, "B", res.TranslatedCues[1].Text)
	assert.Equal(t, "A B", res.TranslatedText)
	assert.Equal(t, webvtt.Serialize(res.TranslatedCues), res.TranslatedVtt)

	assert.Equal(t, 1, lines.calls)
	assert.Equal(t, []string{"a", "b"}, lines.gotLines)
	assert.Equal(t, "de", lines.gotLang)
}

func TestTranslateCues_ShortResponseFallsBackToOriginal(t *testing.T) {
	// Upstream returned a single line for two cues: the second cue keeps
	// its original text.
	lines := &fakeLineTranslator{respLines: []string{"A"}}
	tr := NewCueTranslator(lines, &fakeTextTranslator{})

	res, err := tr.TranslateCuesPreserveTimings(context.Background(), sampleCues(), "de")
	require.NoError(t, err)
	require.Len(t, res.TranslatedCues, 2)
	assert.Equal(t, "A", res.TranslatedCues[0].Text)
	assert.Equal(t, "b", res.TranslatedCues[1].Text)
}

func TestTranslateCues_LongResponseTruncated(t *testing.T) {
	lines := &fakeLineTranslator{respLines: []string{"A", "B", "C", "D"}}
	tr := NewCueTranslator(lines, &fakeTextTranslator{})

	res, err := tr.TranslateCuesPreserveTimings(context.Background(), sampleCues(), "de")
	require.NoError(t, err)
	require.Len(t, res.TranslatedCues, 2)
	assert.Equal(t, "A", res.TranslatedCues[0].Text)
	assert.Equal(t, "B", res.TranslatedCues[1].Text)
}

func TestTranslateCues_UpstreamErrorSurfaces(t *testing.T) {
	lines := &fakeLineTranslator{err: errors.New("API request failed with status 502")}
	tr := NewCueTranslator(lines, &fakeTextTranslator{})

	_, err := tr.TranslateCuesPreserveTimings(context.Background(), sampleCues(), "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTranslateVtt_ParsesAndTranslates(t *testing.T) {
	vtt := webvtt.Serialize(sampleCues())
	lines := &fakeLineTranslator{respLines: []string{"A", "B"}}
	text := &fakeTextTranslator{}
	tr := NewCueTranslator(lines, text)

	res, err := tr.TranslateVttPreserveTimings(context.Background(), vtt, "de", "fallback")
	require.NoError(t, err)
	require.Len(t, res.TranslatedCues, 2)
	assert.Zero(t, text.calls, "plain-text fallback must not run when cues parse")
}

func TestTranslateVtt_NoCuesUsesPlainFallback(t *testing.T) {
	lines := &fakeLineTranslator{}
	text := &fakeTextTranslator{respText: "übersetzt"}
	tr := NewCueTranslator(lines, text)

	res, err := tr.TranslateVttPreserveTimings(context.Background(), "", "de", "original transcript")
	require.NoError(t, err)
	assert.Empty(t, res.TranslatedCues)
	assert.Equal(t, "übersetzt", res.TranslatedText)
	assert.Equal(t, "", res.TranslatedVtt)
	assert.Zero(t, lines.calls)
	assert.Equal(t, 1, text.calls)
	assert.Equal(t, "original transcript", text.gotText)
}

func TestBuildLinePrompt_Contract(t *testing.T) {
	prompt := buildLinePrompt(7, "German")
	assert.Contains(t, prompt, "German")
	assert.Contains(t, prompt, "exactly 7 lines")
	assert.Contains(t, prompt, "blank line")
	assert.True(t, strings.Contains(prompt, "Do not add numbering"))
}

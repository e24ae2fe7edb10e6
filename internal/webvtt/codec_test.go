package webvtt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaaintmal/path-ai-sub000/internal/caption"
)

func TestSerialize_Empty(t *testing.T) {
	assert.Equal(t, "", Serialize(nil))
	assert.Equal(t, "", Serialize([]caption.Cue{}))
}

func TestSerialize_SingleCue(t *testing.T) {
	out := Serialize([]caption.Cue{
		{Start: 3661.25, End: 3661.5, Text: "x"},
	})
	assert.Equal(t, "WEBVTT\n\n1\n01:01:01.250 --> 01:01:01.500\nx\n\n", out)
}

func TestSerialize_RenumbersContiguously(t *testing.T) {
	out := Serialize([]caption.Cue{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 2, End: 3, Text: "c"},
	})
	lines := strings.Split(out, "\n")
	assert.Equal(t, "WEBVTT", lines[0])
	assert.Equal(t, "1", lines[2])
	assert.Equal(t, "2", lines[6])
	assert.Equal(t, "3", lines[10])
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{1, "00:00:01.000"},
		{61.5, "00:01:01.500"},
		{3661.25, "01:01:01.250"},
		{0.0014, "00:00:00.001"},
		{0.9996, "00:00:01.000"}, // millisecond round carries into seconds
		{90000, "25:00:00.000"},  // hours are not clamped to 24
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestParse_Basic(t *testing.T) {
	cues := Parse("WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\nHi\n\n")
	require.Len(t, cues, 1)
	assert.Equal(t, 1.0, cues[0].Start)
	assert.Equal(t, 2.0, cues[0].End)
	assert.Equal(t, "Hi", cues[0].Text)
}

func TestParse_MultilineTextJoinedWithSpaces(t *testing.T) {
	vtt := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:03.000\nfirst line\nsecond line\n\n"
	cues := Parse(vtt)
	require.Len(t, cues, 1)
	assert.Equal(t, "first line second line", cues[0].Text)
}

func TestParse_ToleratesMissingSequenceNumbers(t *testing.T) {
	vtt := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\na\n\n00:00:01.000 --> 00:00:02.000\nb\n\n"
	cues := Parse(vtt)
	require.Len(t, cues, 2)
	assert.Equal(t, "a", cues[0].Text)
	assert.Equal(t, "b", cues[1].Text)
}

func TestParse_CRLF(t *testing.T) {
	vtt := "WEBVTT\r\n\r\n1\r\n00:00:01.000 --> 00:00:02.000\r\nHi\r\n\r\n"
	cues := Parse(vtt)
	require.Len(t, cues, 1)
	assert.Equal(t, "Hi", cues[0].Text)
}

func TestParse_GarbageNeverErrors(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("not a vtt document\nat all\n"))
	assert.Empty(t, Parse("WEBVTT\n\nNOTE nothing here\n"))
}

func TestRoundTrip(t *testing.T) {
	in := []caption.Cue{
		{Start: 0, End: 1.5, Text: "Welcome to the course."},
		{Start: 1.5, End: 6.25, Text: "Today we cover timing."},
		{Start: 3661.25, End: 3661.5, Text: "x"},
		{Start: 7200, End: 7203.5, Text: "late cue"},
	}
	out := Parse(Serialize(in))
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Start, out[i].Start, "cue %d start", i)
		assert.Equal(t, in[i].End, out[i].End, "cue %d end", i)
		assert.Equal(t, in[i].Text, out[i].Text, "cue %d text", i)
	}
}

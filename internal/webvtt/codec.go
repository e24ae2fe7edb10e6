// Package webvtt serializes cue sequences to the WebVTT text format and
// parses them back. The round trip is exact for documents this codec
// produced; externally authored VTT is parsed best-effort.
package webvtt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yaaintmal/path-ai-sub000/internal/caption"
)

// timingLine matches "HH:MM:SS.mmm --> HH:MM:SS.mmm" with fixed-width
// minute/second/millisecond groups. Hours may exceed two digits.
var timingLine = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})$`)

// Serialize renders cues as a WebVTT document. An empty cue sequence
// yields an empty string with no header, so callers must not treat a
// non-empty result as the only signal that cues exist.
func Serialize(cues []caption.Cue) string {
	if len(cues) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(cue.Start), FormatTimestamp(cue.End))
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Parse scans a WebVTT document for timing lines and collects each cue's
// following non-blank lines as its text, joined with single spaces.
// Sequence numbers and unrecognized lines are skipped; Parse never fails.
// A document with no recognizable cues parses to an empty sequence.
func Parse(vtt string) []caption.Cue {
	lines := strings.Split(strings.ReplaceAll(vtt, "\r\n", "\n"), "\n")

	var cues []caption.Cue
	for i := 0; i < len(lines); i++ {
		m := timingLine.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}

		start := timestampSeconds(m[1], m[2], m[3], m[4])
		end := timestampSeconds(m[5], m[6], m[7], m[8])

		var text []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			text = append(text, strings.TrimSpace(lines[i]))
		}

		cues = append(cues, caption.Cue{
			Start: start,
			End:   end,
			Text:  strings.Join(text, " "),
		})
	}
	return cues
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm. The whole-second part
// is floored and milliseconds are rounded from the fractional remainder;
// a round up to 1000ms carries into the seconds field to keep the groups
// fixed width. Hours are not clamped to 24.
func FormatTimestamp(seconds float64) string {
	whole := int(math.Floor(seconds))
	ms := int(math.Round((seconds - math.Floor(seconds)) * 1000))
	if ms == 1000 {
		ms = 0
		whole++
	}

	h := whole / 3600
	m := (whole % 3600) / 60
	s := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func timestampSeconds(hours, minutes, seconds, millis string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000
}

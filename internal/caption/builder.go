package caption

import (
	"regexp"
	"strings"
)

// MaxCueDuration is the longest span a cue may cover before the next word
// is pushed into a fresh cue.
const MaxCueDuration = 6.0

var sentenceBoundary = regexp.MustCompile(`[.!?]`)

// cueAccumulator carries the in-progress cue while folding over the word
// sequence.
type cueAccumulator struct {
	start   float64
	end     float64
	buffer  []string
	emitted []Cue
}

// closeAndStart flushes the accumulating cue and begins a new one at the
// given word. Shared by the mid-loop trigger and the final flush so the
// emit-if-nonempty rule lives in one place.
func (a *cueAccumulator) closeAndStart(w *WordTiming) {
	text := strings.TrimSpace(strings.Join(a.buffer, ""))
	if text != "" {
		a.emitted = append(a.emitted, Cue{Start: a.start, End: a.end, Text: text})
	}
	if w != nil {
		a.start = *w.Start
		a.end = *w.End
		a.buffer = []string{w.Text}
	}
}

// BuildCues segments a flat sequence of timed word tokens into subtitle
// cues. A new cue opens before a word when admitting it would stretch the
// current cue past MaxCueDuration, or when the accumulated text already
// ends a sentence. Tokens are joined with no separator: the recognizer's
// tokens carry their own leading spacing.
func BuildCues(words []WordTiming) []Cue {
	timed := make([]WordTiming, 0, len(words))
	for _, w := range words {
		// Tokens without timings cannot be placed on the timeline.
		if w.Start == nil || w.End == nil {
			continue
		}
		timed = append(timed, w)
	}
	if len(timed) == 0 {
		return nil
	}

	first := timed[0]
	acc := cueAccumulator{
		start:  *first.Start,
		end:    *first.End,
		buffer: []string{first.Text},
	}

	for i := 1; i < len(timed); i++ {
		w := timed[i]
		if *w.End-acc.start > MaxCueDuration || endsSentence(acc.buffer) {
			acc.closeAndStart(&w)
		} else {
			acc.buffer = append(acc.buffer, w.Text)
			acc.end = *w.End
		}
	}
	acc.closeAndStart(nil)

	return acc.emitted
}

// endsSentence reports whether the last buffered token contains sentence
// punctuation. The match is anywhere in the token, so a token like "3.14"
// triggers a break too; that mirrors how transcripts attach trailing
// punctuation to words.
func endsSentence(buffer []string) bool {
	if len(buffer) == 0 {
		return false
	}
	return sentenceBoundary.MatchString(buffer[len(buffer)-1])
}

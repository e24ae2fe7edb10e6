package caption

// WordTiming is one recognized spoken token from a speech-to-text result.
// Start and End are seconds from the beginning of the media; a nil value
// means the recognizer could not place the token on the timeline.
type WordTiming struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Type  string   `json:"type,omitempty"` // e.g. "word", "spacing"
}

// Cue is a single subtitle display unit.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

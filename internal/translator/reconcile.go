package translator

// Reconcile forces a translation response to exactly expectedLen lines.
// The upstream collaborator is instructed to preserve line count but is
// not guaranteed to: a short response is padded with the original
// (untranslated) text at each missing trailing index, and a long response
// is truncated from the end. Pure so it can be tested without any HTTP
// mocking.
func Reconcile(expectedLen int, lines []string, originals []string) []string {
	if expectedLen < 0 {
		expectedLen = 0
	}

	ret := make([]string, expectedLen)
	for i := 0; i < expectedLen; i++ {
		if i < len(lines) {
			ret[i] = lines[i]
			continue
		}
		if i < len(originals) {
			ret[i] = originals[i]
		}
	}
	return ret
}

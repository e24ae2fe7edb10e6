package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile_ExactMatch(t *testing.T) {
	got := Reconcile(2, []string{"A", "B"}, []string{"a", "b"})
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestReconcile_PadsShortfallWithOriginals(t *testing.T) {
	got := Reconcile(3, []string{"A"}, []string{"a", "b", "c"})
	assert.Equal(t, []string{"A", "b", "c"}, got)
}

func TestReconcile_PaddingIsPositional(t *testing.T) {
	// Missing trailing lines take the original text at the same index,
	// never shifted and never blank.
	got := Reconcile(4, []string{"eins", "zwei"}, []string{"one", "two", "three", "four"})
	assert.Equal(t, []string{"eins", "zwei", "three", "four"}, got)
}

func TestReconcile_TruncatesExcess(t *testing.T) {
	got := Reconcile(2, []string{"A", "B", "C", "D"}, []string{"a", "b"})
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestReconcile_ZeroExpected(t *testing.T) {
	assert.Empty(t, Reconcile(0, []string{"A"}, nil))
	assert.Empty(t, Reconcile(-1, nil, nil))
}

func TestReconcile_BlankLinesSurvive(t *testing.T) {
	got := Reconcile(3, []string{"A", "", "C"}, []string{"a", "", "c"})
	assert.Equal(t, []string{"A", "", "C"}, got)
}

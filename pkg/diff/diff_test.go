package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnified(t *testing.T) {
	original := "line one\nline two\nline three\n"
	modified := "line one\nline 2\nline three\n"

	out := Unified(original, modified, "src/main.rs")

	assert.Contains(t, out, "--- a/src/main.rs")
	assert.Contains(t, out, "+++ b/src/main.rs")
	assert.Contains(t, out, "-line two")
	assert.Contains(t, out, "+line 2")
}

func TestUnifiedNoChanges(t *testing.T) {
	out := Unified("same\n", "same\n", "f.go")
	assert.NotContains(t, out, "-same")
	assert.NotContains(t, out, "+same")
}

func TestSummarize(t *testing.T) {
	original := "a\nb\nc\n"
	modified := "a\nB\nc\nd\n"

	s := Summarize(original, modified)
	assert.Equal(t, 1, s.FilesChanged)
	assert.Equal(t, 2, s.Insertions)
	assert.Equal(t, 1, s.Deletions)
}

func TestSummarizeUnchanged(t *testing.T) {
	s := Summarize("same\n", "same\n")
	assert.Equal(t, 0, s.FilesChanged)
	assert.Equal(t, 0, s.Insertions)
	assert.Equal(t, 0, s.Deletions)
}

func TestSummaryMergeAndString(t *testing.T) {
	a := Summary{FilesChanged: 1, Insertions: 2, Deletions: 1}
	b := Summary{FilesChanged: 1, Insertions: 3, Deletions: 0}
	a.Merge(b)

	assert.Equal(t, "2 file(s) changed, 5 insertions(+), 1 deletions(-)", a.String())
}

// Package diff renders unified diffs and change summaries for refactoring
// previews.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified returns a unified diff between original and modified content,
// labeled a/<path> and b/<path>.
func Unified(original, modified, path string) string {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}

	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		// SplitLines never produces input difflib rejects; keep the preview
		// usable regardless.
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n(diff unavailable: %v)\n", path, path, err)
	}
	return out
}

// Summary counts inserted and deleted lines across one or more diffs.
type Summary struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// Summarize computes a Summary for a single original/modified pair.
func Summarize(original, modified string) Summary {
	matcher := difflib.NewMatcher(difflib.SplitLines(original), difflib.SplitLines(modified))

	var s Summary
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			s.Deletions += op.I2 - op.I1
			s.Insertions += op.J2 - op.J1
		case 'd':
			s.Deletions += op.I2 - op.I1
		case 'i':
			s.Insertions += op.J2 - op.J1
		}
	}
	if s.Insertions > 0 || s.Deletions > 0 {
		s.FilesChanged = 1
	}
	return s
}

// Merge folds another summary into s.
func (s *Summary) Merge(other Summary) {
	s.FilesChanged += other.FilesChanged
	s.Insertions += other.Insertions
	s.Deletions += other.Deletions
}

// String renders the summary in git's shortstat style.
func (s Summary) String() string {
	return fmt.Sprintf("%d file(s) changed, %d insertions(+), %d deletions(-)",
		s.FilesChanged, s.Insertions, s.Deletions)
}

// Colorized returns a unified diff with ANSI colors for terminal display.
func Colorized(original, modified, path string) string {
	const (
		red   = "\x1b[31m"
		green = "\x1b[32m"
		cyan  = "\x1b[36m"
		reset = "\x1b[0m"
	)

	var b strings.Builder
	for _, line := range strings.SplitAfter(Unified(original, modified, path), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			b.WriteString(cyan + strings.TrimSuffix(line, "\n") + reset + "\n")
		case strings.HasPrefix(line, "-"):
			b.WriteString(red + strings.TrimSuffix(line, "\n") + reset + "\n")
		case strings.HasPrefix(line, "+"):
			b.WriteString(green + strings.TrimSuffix(line, "\n") + reset + "\n")
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

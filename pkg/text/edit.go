package text

import "sort"

// Edit is a single range replacement against one file's buffer.
type Edit struct {
	FilePath string `json:"file_path"`
	Range    Range  `json:"range"`
	NewText  string `json:"new_text"`
}

// NewEdit creates a replacement edit.
func NewEdit(filePath string, r Range, newText string) Edit {
	return Edit{FilePath: filePath, Range: r, NewText: newText}
}

// Insert creates an edit that inserts text at a single position.
func Insert(filePath string, pos Position, newText string) Edit {
	return Edit{FilePath: filePath, Range: Range{Start: pos, End: pos}, NewText: newText}
}

// Delete creates an edit that removes the text covered by r.
func Delete(filePath string, r Range) Edit {
	return Edit{FilePath: filePath, Range: r}
}

// SortDescending orders edits strictly descending by (start line, start
// character). Applying edits in this order means earlier splices never shift
// the offsets of edits still pending, which is the correctness invariant the
// whole engine rests on.
func SortDescending(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i].Range.Start, edits[j].Range.Start
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Character > b.Character
	})
}

// ApplyEdits splices a batch of edits into source bottom-to-top and returns
// the resulting buffer.
//
// Each edit's range is converted to byte offsets against the current buffer.
// An edit whose offsets fail the start <= end <= len check is skipped rather
// than erroring. Overlapping edits within one batch are unsupported and may
// produce corrupt output.
func ApplyEdits(source string, edits []Edit) string {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	SortDescending(ordered)

	result := source
	for _, edit := range ordered {
		start := PositionToOffset(result, edit.Range.Start)
		end := PositionToOffset(result, edit.Range.End)

		if start > end || end > len(result) {
			continue
		}
		result = result[:start] + edit.NewText + result[end:]
	}
	return result
}

// Package text provides the position model and the ordered edit application
// engine shared by every refactoring operation.
package text

import "strings"

// Position is a zero-indexed (line, character) location in a text buffer.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is a half-open [Start, End) span. A Range is only meaningful against
// the buffer content it was computed from.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewRange builds a Range from start/end line and character coordinates.
func NewRange(startLine, startChar, endLine, endChar uint32) Range {
	return Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}

// Contains reports whether pos falls inside the range (inclusive start,
// exclusive end on the final line).
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character && r.Start.Line != r.End.Line {
		return false
	}
	if r.Start.Line == r.End.Line && pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// ContainsLine reports whether the given line falls within the range's lines.
func (r Range) ContainsLine(line uint32) bool {
	return line >= r.Start.Line && line <= r.End.Line
}

// PositionToOffset converts a Position to a byte offset in source.
//
// Out-of-range input never panics: Character is clamped to the line length,
// and a Line past EOF clamps to len(source).
func PositionToOffset(source string, pos Position) int {
	offset := 0
	line := uint32(0)

	for _, lineText := range strings.Split(source, "\n") {
		if line == pos.Line {
			ch := int(pos.Character)
			if ch > len(lineText) {
				ch = len(lineText)
			}
			offset += ch
			if offset > len(source) {
				offset = len(source)
			}
			return offset
		}
		offset += len(lineText) + 1 // +1 for the newline
		line++
	}

	if offset > len(source) {
		offset = len(source)
	}
	return offset
}

// OffsetToPosition converts a byte offset back to a Position, scanning
// characters and tracking newlines. Offsets past EOF map to the final
// position.
func OffsetToPosition(source string, offset int) Position {
	var line, character uint32

	for i, ch := range []byte(source) {
		if i >= offset {
			break
		}
		if ch == '\n' {
			line++
			character = 0
		} else {
			character++
		}
	}

	return Position{Line: line, Character: character}
}

// Slice returns the text covered by r in source.
func Slice(source string, r Range) string {
	start := PositionToOffset(source, r.Start)
	end := PositionToOffset(source, r.End)
	if start > end {
		return ""
	}
	return source[start:end]
}

// LineAt returns the content of the given zero-indexed line, without its
// trailing newline. Lines past EOF return the empty string.
func LineAt(source string, line uint32) string {
	lines := strings.Split(source, "\n")
	if int(line) >= len(lines) {
		return ""
	}
	return lines[line]
}

// Indentation returns the leading whitespace of the given line.
func Indentation(source string, line uint32) string {
	text := LineAt(source, line)
	end := 0
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[:end]
}

// LineCount returns the number of lines in source ("" counts as one).
func LineCount(source string) int {
	return strings.Count(source, "\n") + 1
}

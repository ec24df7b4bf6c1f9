package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEditsSingle(t *testing.T) {
	source := "fn main() {\n    let x = 1 + 2;\n}"
	edits := []Edit{
		NewEdit("test.rs", NewRange(1, 12, 1, 17), "sum"),
	}

	result := ApplyEdits(source, edits)
	assert.Equal(t, "fn main() {\n    let x = sum;\n}", result)
}

func TestApplyEditsDescendingOrder(t *testing.T) {
	source := "aaa\nbbb\nccc\nddd"

	// Supplied top-to-bottom; the engine must reorder bottom-to-top so the
	// upper edit's offsets stay valid.
	edits := []Edit{
		NewEdit("f", NewRange(0, 0, 0, 3), "AAAAAA"),
		NewEdit("f", NewRange(2, 0, 2, 3), "CCCCCC"),
	}

	result := ApplyEdits(source, edits)
	assert.Equal(t, "AAAAAA\nbbb\nCCCCCC\nddd", result)
}

func TestApplyEditsEqualsManualBottomUp(t *testing.T) {
	source := "one\ntwo\nthree\nfour\nfive"
	edits := []Edit{
		NewEdit("f", NewRange(1, 0, 1, 3), "TWO"),
		NewEdit("f", NewRange(3, 0, 3, 4), "FOUR"),
		NewEdit("f", NewRange(4, 0, 4, 4), "FIVE"),
	}

	engine := ApplyEdits(source, edits)

	// Manual application from highest line to lowest.
	manual := source
	for i := len(edits) - 1; i >= 0; i-- {
		start := PositionToOffset(manual, edits[i].Range.Start)
		end := PositionToOffset(manual, edits[i].Range.End)
		manual = manual[:start] + edits[i].NewText + manual[end:]
	}

	assert.Equal(t, manual, engine)
}

func TestApplyEditsSkipsOutOfBounds(t *testing.T) {
	source := "short"
	edits := []Edit{
		// End clamps to the line length, so this still applies.
		NewEdit("f", NewRange(0, 0, 0, 5), "long"),
	}
	assert.Equal(t, "long", ApplyEdits(source, edits))

	// A range that converts to start > end is dropped silently.
	inverted := []Edit{
		{FilePath: "f", Range: Range{Start: Position{Line: 0, Character: 4}, End: Position{Line: 0, Character: 1}}, NewText: "x"},
	}
	assert.Equal(t, "short", ApplyEdits(source, inverted))
}

func TestApplyEditsInsertAndDelete(t *testing.T) {
	source := "hello world"

	result := ApplyEdits(source, []Edit{Insert("f", Position{Line: 0, Character: 5}, ",")})
	assert.Equal(t, "hello, world", result)

	result = ApplyEdits(source, []Edit{Delete("f", NewRange(0, 5, 0, 11))})
	assert.Equal(t, "hello", result)
}

func TestApplyEditsDoesNotMutateInput(t *testing.T) {
	edits := []Edit{
		NewEdit("f", NewRange(0, 0, 0, 1), "x"),
		NewEdit("f", NewRange(1, 0, 1, 1), "y"),
	}
	_ = ApplyEdits("ab\ncd", edits)

	// Caller's slice order is preserved; the engine sorts a copy.
	require.Equal(t, uint32(0), edits[0].Range.Start.Line)
	require.Equal(t, uint32(1), edits[1].Range.Start.Line)
}

func TestSortDescending(t *testing.T) {
	edits := []Edit{
		NewEdit("f", NewRange(1, 5, 1, 6), ""),
		NewEdit("f", NewRange(3, 0, 3, 1), ""),
		NewEdit("f", NewRange(1, 9, 1, 10), ""),
	}
	SortDescending(edits)

	assert.Equal(t, uint32(3), edits[0].Range.Start.Line)
	assert.Equal(t, uint32(9), edits[1].Range.Start.Character)
	assert.Equal(t, uint32(5), edits[2].Range.Start.Character)
}

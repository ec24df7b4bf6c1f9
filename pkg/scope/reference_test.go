package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/refract/pkg/text"
)

func TestConfidenceOrdering(t *testing.T) {
	assert.True(t, ConfidenceNone < ConfidenceLow)
	assert.True(t, ConfidenceLow < ConfidenceMedium)
	assert.True(t, ConfidenceMedium < ConfidenceHigh)
	assert.True(t, ConfidenceHigh < ConfidenceCertain)
}

func TestScoreCandidate(t *testing.T) {
	binding := NewBinding("process", KindFunction, "a.rs", text.NewRange(0, 0, 2, 1))

	sameFileCall := Reference{Name: "process", File: "a.rs", Kind: RefCall}
	assert.Equal(t, ConfidenceHigh, ScoreCandidate(sameFileCall, binding))

	crossFileCall := Reference{Name: "process", File: "b.rs", Kind: RefCall}
	assert.Equal(t, ConfidenceLow, ScoreCandidate(crossFileCall, binding))
	assert.Equal(t, ConfidenceMedium, ScoreCandidate(crossFileCall, binding.Exported()))

	// A call reference against a struct is a kind mismatch.
	structBinding := NewBinding("process", KindStruct, "a.rs", text.NewRange(0, 0, 2, 1))
	assert.Equal(t, ConfidenceLow, ScoreCandidate(sameFileCall, structBinding))
}

func TestReferenceIndexExcludesDefinition(t *testing.T) {
	binding := NewBinding("helper", KindFunction, "a.rs", text.NewRange(2, 0, 4, 1))

	idx := NewReferenceIndex()
	// Occurrence inside the definition range: excluded.
	idx.Add(Reference{Name: "helper", File: "a.rs", Range: text.NewRange(2, 3, 2, 9)})
	// Genuine usage below the definition.
	idx.Add(Reference{Name: "helper", File: "a.rs", Range: text.NewRange(8, 4, 8, 10), Kind: RefCall})
	// Unrelated name.
	idx.Add(Reference{Name: "other", File: "a.rs", Range: text.NewRange(9, 0, 9, 5)})

	refs := idx.ReferencesTo(binding)
	assert.Len(t, refs, 1)
	assert.Equal(t, uint32(8), refs[0].Range.Start.Line)
	assert.Equal(t, ConfidenceHigh, refs[0].Confidence)
}

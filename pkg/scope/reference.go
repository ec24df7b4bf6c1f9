package scope

import "github.com/gnana997/refract/pkg/text"

// ReferenceKind classifies how an identifier occurrence is used.
type ReferenceKind int

const (
	RefRead ReferenceKind = iota
	RefWrite
	RefCall
	RefTypeUse
)

// String returns the lowercase name of the reference kind.
func (k ReferenceKind) String() string {
	switch k {
	case RefRead:
		return "read"
	case RefWrite:
		return "write"
	case RefCall:
		return "call"
	case RefTypeUse:
		return "type_use"
	default:
		return "unknown"
	}
}

// ResolutionConfidence grades how likely a textual match actually refers to
// the candidate binding. Matching is identifier-text equality with no type or
// scope disambiguation, so unrelated same-named bindings are conflated; this
// marker exists precisely to flag that.
type ResolutionConfidence int

const (
	ConfidenceNone ResolutionConfidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceCertain
)

// String returns the lowercase name of the confidence level.
func (c ResolutionConfidence) String() string {
	switch c {
	case ConfidenceNone:
		return "none"
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	case ConfidenceCertain:
		return "certain"
	default:
		return "unknown"
	}
}

// Reference is a textual occurrence of an identifier matched against a
// binding's name.
type Reference struct {
	Name       string               `json:"name"`
	File       string               `json:"file"`
	Range      text.Range           `json:"range"`
	Kind       ReferenceKind        `json:"kind"`
	Confidence ResolutionConfidence `json:"confidence"`
}

// ReferenceIndex accumulates references across analyzed files and resolves
// them against bindings.
type ReferenceIndex struct {
	refs   []Reference
	byName map[string][]int
}

// NewReferenceIndex creates an empty index.
func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{byName: make(map[string][]int)}
}

// Add records a reference.
func (ri *ReferenceIndex) Add(ref Reference) {
	ri.byName[ref.Name] = append(ri.byName[ref.Name], len(ri.refs))
	ri.refs = append(ri.refs, ref)
}

// ReferencesTo returns every reference whose text equals the binding's name,
// excluding occurrences inside the binding's own definition range.
func (ri *ReferenceIndex) ReferencesTo(b Binding) []Reference {
	idxs := ri.byName[b.Name]
	var out []Reference
	for _, i := range idxs {
		ref := ri.refs[i]
		if ref.File == b.File && b.DefinitionRange.ContainsLine(ref.Range.Start.Line) {
			continue
		}
		ref.Confidence = ScoreCandidate(ref, b)
		out = append(out, ref)
	}
	return out
}

// All returns every recorded reference.
func (ri *ReferenceIndex) All() []Reference {
	return ri.refs
}

// Len returns the number of recorded references.
func (ri *ReferenceIndex) Len() int {
	return len(ri.refs)
}

// ScoreCandidate grades a reference against a candidate binding.
//
// Same-file matches with a compatible kind score High; cross-file matches
// against an exported binding score Medium; anything else is Low. The scale
// never reaches Certain because resolution is name-only.
func ScoreCandidate(ref Reference, b Binding) ResolutionConfidence {
	sameFile := ref.File == b.File
	kindMatch := kindCompatible(ref.Kind, b.Kind)

	switch {
	case sameFile && kindMatch:
		return ConfidenceHigh
	case !sameFile && kindMatch && b.IsExported:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// kindCompatible reports whether a reference kind plausibly targets a
// binding kind.
func kindCompatible(ref ReferenceKind, kind BindingKind) bool {
	switch ref {
	case RefCall:
		return kind == KindFunction || kind == KindMethod
	case RefTypeUse:
		switch kind {
		case KindStruct, KindClass, KindInterface, KindEnum, KindTrait, KindTypeAlias:
			return true
		}
		return false
	default:
		// Reads and writes can target anything nameable.
		return true
	}
}

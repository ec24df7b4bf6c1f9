package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/refract/pkg/text"
)

func TestUsageInfoAggregation(t *testing.T) {
	b := NewBinding("parse", KindFunction, "a.rs", text.NewRange(0, 0, 2, 1))
	info := NewUsageInfo(b)

	info.AddUsage(Reference{Name: "parse", File: "a.rs", Kind: RefCall})
	info.AddUsage(Reference{Name: "parse", File: "b.rs", Kind: RefCall})
	info.AddUsage(Reference{Name: "parse", File: "b.rs", Kind: RefRead})

	assert.Equal(t, 3, info.Count())
	assert.Equal(t, 2, info.CountByKind(RefCall))
	assert.Equal(t, []string{"a.rs", "b.rs"}, info.UsedInFiles())
	assert.False(t, info.IsInternalOnly())
	assert.False(t, info.IsDead())
}

func TestUsageInfoInternalOnly(t *testing.T) {
	b := NewBinding("helper", KindFunction, "a.rs", text.NewRange(0, 0, 0, 10))
	info := NewUsageInfo(b)
	assert.True(t, info.IsInternalOnly())

	info.AddUsage(Reference{Name: "helper", File: "a.rs"})
	assert.True(t, info.IsInternalOnly())
}

func TestUsageInfoDead(t *testing.T) {
	dead := NewUsageInfo(NewBinding("unused", KindVariable, "a.rs", text.NewRange(1, 4, 1, 10)))
	assert.True(t, dead.IsDead())

	// Leading underscore suppresses the dead-code flag.
	marked := NewUsageInfo(NewBinding("_unused", KindVariable, "a.rs", text.NewRange(1, 4, 1, 11)))
	assert.False(t, marked.IsDead())
}

func TestDeadCodeConfidence(t *testing.T) {
	assert.Equal(t, "low", DeadCodeConfidence(NewBinding("f", KindFunction, "a.rs", text.Range{}).Exported()))
	assert.Equal(t, "medium", DeadCodeConfidence(NewBinding("p", KindParameter, "a.rs", text.Range{})))
	assert.Equal(t, "high", DeadCodeConfidence(NewBinding("v", KindVariable, "a.rs", text.Range{})))
}

func TestCheckSafeDelete(t *testing.T) {
	b := NewBinding("used_func", KindFunction, "a.rs", text.NewRange(0, 0, 0, 18))

	clean := NewUsageInfo(b)
	result := CheckSafeDelete(clean)
	assert.True(t, result.CanDelete)

	blocked := NewUsageInfo(b)
	blocked.AddUsage(Reference{Name: "used_func", File: "a.rs", Kind: RefCall})
	result = CheckSafeDelete(blocked)
	assert.False(t, result.CanDelete)
	assert.Equal(t, "Binding 'used_func' has 1 usage(s) in 1 file(s)", result.Reason)
	assert.Len(t, result.Blockers, 1)
}

package scope

import (
	"fmt"
	"sort"
)

// UsageInfo aggregates the recorded usages of one binding.
type UsageInfo struct {
	Binding Binding
	Usages  []Reference

	byKind      map[ReferenceKind]int
	usedInFiles map[string]struct{}
}

// NewUsageInfo creates an empty usage record for a binding.
func NewUsageInfo(b Binding) *UsageInfo {
	return &UsageInfo{
		Binding:     b,
		byKind:      make(map[ReferenceKind]int),
		usedInFiles: make(map[string]struct{}),
	}
}

// AddUsage records one reference as a usage of the binding.
func (u *UsageInfo) AddUsage(ref Reference) {
	u.Usages = append(u.Usages, ref)
	u.byKind[ref.Kind]++
	u.usedInFiles[ref.File] = struct{}{}
}

// Count returns the total number of recorded usages.
func (u *UsageInfo) Count() int {
	return len(u.Usages)
}

// CountByKind returns the number of usages of the given kind.
func (u *UsageInfo) CountByKind(kind ReferenceKind) int {
	return u.byKind[kind]
}

// UsedInFiles returns the sorted list of files containing usages.
func (u *UsageInfo) UsedInFiles() []string {
	files := make([]string, 0, len(u.usedInFiles))
	for f := range u.usedInFiles {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// IsInternalOnly reports whether every usage is in the binding's own file.
func (u *UsageInfo) IsInternalOnly() bool {
	if len(u.usedInFiles) == 0 {
		return true
	}
	if len(u.usedInFiles) > 1 {
		return false
	}
	_, ok := u.usedInFiles[u.Binding.File]
	return ok
}

// IsDead reports whether the binding is dead code: zero recorded usages and
// no leading-underscore privacy marker.
func (u *UsageInfo) IsDead() bool {
	return len(u.Usages) == 0 && !u.Binding.IsPrivateByConvention()
}

// DeadBinding is one dead-code finding with a confidence grade. Exported
// bindings may be used outside the analyzed set, so they grade low;
// parameters are often intentionally unused, so they grade medium.
type DeadBinding struct {
	Binding    Binding `json:"binding"`
	Confidence string  `json:"confidence"`
}

// SafeDeleteResult is the outcome of a deletability check.
type SafeDeleteResult struct {
	CanDelete bool        `json:"can_delete"`
	Reason    string      `json:"reason"`
	Blockers  []Reference `json:"blockers,omitempty"`
}

// DeadCodeConfidence grades a dead-code finding for a binding.
func DeadCodeConfidence(b Binding) string {
	switch {
	case b.IsExported:
		return "low"
	case b.Kind == KindParameter:
		return "medium"
	default:
		return "high"
	}
}

// CheckSafeDelete evaluates whether a binding can be deleted given its
// usages.
func CheckSafeDelete(u *UsageInfo) SafeDeleteResult {
	if u.Count() == 0 {
		return SafeDeleteResult{
			CanDelete: true,
			Reason:    fmt.Sprintf("Binding '%s' has no usages", u.Binding.Name),
		}
	}

	return SafeDeleteResult{
		CanDelete: false,
		Reason: fmt.Sprintf("Binding '%s' has %d usage(s) in %d file(s)",
			u.Binding.Name, u.Count(), len(u.usedInFiles)),
		Blockers: u.Usages,
	}
}

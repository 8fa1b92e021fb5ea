package model

import "time"

// Filter is a partial predicate over task fields. Each optional scalar
// field carries an explicit was-set flag so that "never mentioned" is
// distinguishable from "constrained to the zero value". FullDescription
// holds the original, un-mutated input the filter was built from and
// doubles as its display label.
type Filter struct {
	Project  string
	Status   Status
	Priority Priority
	// Due is parsed from input but never activated: DidSetDue stays false,
	// so a due constraint is carried but does not match. Known limitation.
	Due *time.Time

	DidSetProject  bool
	DidSetStatus   bool
	DidSetPriority bool
	DidSetDue      bool

	IncludedTags []string
	ExcludedTags []string

	FullDescription string
}

// IsValid reports whether at least one field was explicitly set. A filter
// with nothing set matches nothing and must be rejected before persistence.
func (f Filter) IsValid() bool {
	return f.DidSetProject || f.DidSetStatus || f.DidSetPriority || f.DidSetDue ||
		len(f.IncludedTags) > 0 || len(f.ExcludedTags) > 0
}

// IsDefault reports whether f is exactly the built-in "all pending" filter.
func (f Filter) IsDefault() bool {
	return f.DidSetStatus && f.Status == StatusPending &&
		!f.DidSetProject && !f.DidSetPriority && !f.DidSetDue &&
		len(f.IncludedTags) == 0 && len(f.ExcludedTags) == 0
}

// DefaultFilter is the built-in fallback selecting all pending tasks. It
// is used whenever no saved filter is selected or the selected one has
// been deleted.
func DefaultFilter() Filter {
	return Filter{
		Status:          StatusPending,
		DidSetStatus:    true,
		FullDescription: "status:pending",
	}
}

// IncludesTag reports whether name is in the inclusion list.
func (f Filter) IncludesTag(name string) bool {
	for _, n := range f.IncludedTags {
		if n == name {
			return true
		}
	}
	return false
}

// ExcludesTag reports whether name is in the exclusion list.
func (f Filter) ExcludesTag(name string) bool {
	for _, n := range f.ExcludedTags {
		if n == name {
			return true
		}
	}
	return false
}

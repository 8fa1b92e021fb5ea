// Package parse turns free-form task input into structured task drafts and
// filter predicates. Directives (prio:, project:, due:, status:, +tag,
// -tag) may appear anywhere in the input in any order; whatever text
// remains after extraction is the task description.
package parse

import (
	"regexp"
	"strings"
)

const (
	MarkerPriority = "prio:"
	MarkerProject  = "project:"
	MarkerDue      = "due:"
	MarkerStatus   = "status:"
	MarkerInclude  = "+"
	MarkerExclude  = "-"
)

// CreationMarkers is the directive vocabulary offered when composing a
// task; FilterMarkers is the vocabulary when authoring a filter.
var (
	CreationMarkers = []string{MarkerPriority, MarkerProject, MarkerDue, MarkerInclude}
	FilterMarkers   = []string{MarkerPriority, MarkerProject, MarkerStatus, MarkerInclude, MarkerExclude}
)

var (
	// A directive value ends where whitespace followed by another known
	// marker begins. Markers embedded mid-word are not boundaries.
	creationBoundary = regexp.MustCompile(`\s(?:prio:|project:|due:|\+|-)`)
	filterBoundary   = regexp.MustCompile(`\s(?:prio:|project:|due:|status:|\+|-)`)

	markerPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, m := range []string{MarkerPriority, MarkerProject, MarkerDue, MarkerStatus, MarkerInclude, MarkerExclude} {
		markerPatterns[m] = regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(m))
	}
}

func boundary(filterContext bool) *regexp.Regexp {
	if filterContext {
		return filterBoundary
	}
	return creationBoundary
}

// ExtractValue locates the first occurrence of marker in *input, takes
// everything after it up to the next recognized directive boundary, removes
// the consumed span from *input, and returns the trimmed value. The second
// return is false when the marker is absent.
func ExtractValue(marker string, input *string, filterContext bool) (string, bool) {
	re, ok := markerPatterns[marker]
	if !ok {
		return "", false
	}
	loc := re.FindStringIndex(*input)
	if loc == nil {
		return "", false
	}

	rest := (*input)[loc[1]:]
	end := len(rest)
	if b := boundary(filterContext).FindStringIndex(rest); b != nil {
		end = b[0]
	}
	value := strings.TrimSpace(rest[:end])
	*input = (*input)[:loc[0]] + rest[end:]
	return value, true
}

// ExtractTag extracts the next +tag or -tag from *input. Unlike keyword
// directive values, a tag name runs only to the next whitespace; names
// cannot contain whitespace anyway.
func ExtractTag(symbol string, input *string) (string, bool) {
	re, ok := markerPatterns[symbol]
	if !ok {
		return "", false
	}
	loc := re.FindStringIndex(*input)
	if loc == nil {
		return "", false
	}

	rest := (*input)[loc[1]:]
	end := len(rest)
	if i := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }); i >= 0 {
		end = i
	}
	name := strings.TrimSpace(rest[:end])
	*input = (*input)[:loc[0]] + rest[end:]
	return name, true
}

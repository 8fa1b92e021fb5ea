// Package suggest computes autocomplete candidates for task and filter
// input. Suggestions are a pure function of the current input and surface;
// the only state consulted is the session tag cache.
package suggest

import (
	"strings"
	"unicode"

	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/parse"
)

// Surface identifies the parsing context the input belongs to, which
// determines the directive vocabulary on offer.
type Surface string

const (
	SurfaceCreation   Surface = "creation"
	SurfaceFilter     Surface = "filter"
	SurfacePrio       Surface = "prio"
	SurfaceStatus     Surface = "status"
	SurfaceTagInclude Surface = "tagInclude"
	SurfaceTagExclude Surface = "tagExclude"
)

var (
	prioValues   = []string{"H", "M", "L"}
	statusValues = []string{string(model.StatusPending), string(model.StatusCompleted), string(model.StatusDeleted)}
)

type Engine struct {
	cache *TagCache
}

func NewEngine(cache *TagCache) *Engine {
	if cache == nil {
		cache = NewTagCache(nil)
	}
	return &Engine{cache: cache}
}

// Cache exposes the engine's tag cache so call sites can feed newly
// created tags into it and invalidate it after external tag mutations.
func (e *Engine) Cache() *TagCache {
	return e.cache
}

// Suggestions returns an ordered, deduplicated list of completion
// candidates for the input on the given surface. It is recomputed from
// scratch on every call.
func (e *Engine) Suggestions(input string, surface Surface) []string {
	if input == "" {
		// The creation surface stays quiet until something is typed.
		if surface == SurfaceCreation {
			return nil
		}
		return e.vocabulary(surface)
	}

	if endsWithSpace(input) {
		return e.markersNotPresent(input, surface)
	}

	last := lastToken(input)

	// A fully typed marker switches to that marker's value list.
	switch last {
	case parse.MarkerPriority:
		return append([]string(nil), prioValues...)
	case parse.MarkerStatus:
		if surface == SurfaceFilter {
			return append([]string(nil), statusValues...)
		}
	case parse.MarkerInclude, parse.MarkerExclude:
		return e.tagNames(surface, "")
	}

	if strings.ContainsAny(input, "+-") {
		name := strings.TrimLeft(last, "+-")
		return e.tagNames(surface, name)
	}

	switch surface {
	case SurfacePrio:
		return prefixMatches(prioValues, last)
	case SurfaceStatus:
		return prefixMatches(statusValues, last)
	case SurfaceTagInclude, SurfaceTagExclude:
		return e.tagNames(surface, last)
	}

	return e.markerPrefixMatches(input, last, surface)
}

func (e *Engine) vocabulary(surface Surface) []string {
	switch surface {
	case SurfaceCreation:
		return append([]string(nil), parse.CreationMarkers...)
	case SurfaceFilter:
		return append([]string(nil), parse.FilterMarkers...)
	case SurfacePrio:
		return append([]string(nil), prioValues...)
	case SurfaceStatus:
		return append([]string(nil), statusValues...)
	case SurfaceTagInclude, SurfaceTagExclude:
		return e.tagNames(surface, "")
	default:
		return nil
	}
}

func (e *Engine) markers(surface Surface) []string {
	switch surface {
	case SurfaceFilter:
		return parse.FilterMarkers
	default:
		return parse.CreationMarkers
	}
}

// markersNotPresent offers every marker the input does not already use.
// Tag markers are always offered; a task can carry any number of tags.
func (e *Engine) markersNotPresent(input string, surface Surface) []string {
	out := make([]string, 0, 5)
	for _, m := range e.markers(surface) {
		if isTagMarker(m) || !strings.Contains(input, m) {
			out = append(out, m)
		}
	}
	return dedup(out)
}

// markerPrefixMatches offers markers starting with (but not equal to) the
// trailing partial token, skipping markers already used elsewhere.
func (e *Engine) markerPrefixMatches(input, prefix string, surface Surface) []string {
	out := make([]string, 0, 5)
	for _, m := range e.markers(surface) {
		if !isTagMarker(m) && strings.Contains(strings.TrimSuffix(input, prefix), m) {
			continue
		}
		if m != prefix && strings.HasPrefix(m, prefix) {
			out = append(out, m)
		}
	}
	return dedup(out)
}

// tagNames returns cached tag names containing the fragment. Synthetic
// (all-uppercase, system-reserved) names are hidden everywhere except the
// filter surface, where excluding a synthetic tag is legitimate.
func (e *Engine) tagNames(surface Surface, fragment string) []string {
	includeSynthetic := surface == SurfaceFilter
	out := make([]string, 0)
	for _, name := range e.cache.Names() {
		if !includeSynthetic && (model.Tag{Name: name}).IsSynthetic() {
			continue
		}
		if fragment != "" && !strings.Contains(name, fragment) {
			continue
		}
		out = append(out, name)
	}
	return dedup(out)
}

// ApplyCompletion merges a chosen suggestion into the current text. Tag
// completions are closed with a trailing space so typing can continue;
// marker completions are left open for the value that follows.
func ApplyCompletion(text, suggestion string) string {
	if text == "" || endsWithSpace(text) {
		return text + suggestion
	}

	last := lastToken(text)
	if isMarker(last) {
		return text + suggestion
	}

	if idx := lastTagSymbol(text); idx >= 0 && !isTagMarker(suggestion) {
		return text[:idx+1] + suggestion + " "
	}

	return text[:len(text)-len(last)] + suggestion
}

func isMarker(token string) bool {
	for _, m := range parse.FilterMarkers {
		if token == m {
			return true
		}
	}
	return token == parse.MarkerDue
}

func isTagMarker(m string) bool {
	return m == parse.MarkerInclude || m == parse.MarkerExclude
}

func lastTagSymbol(text string) int {
	plus := strings.LastIndex(text, parse.MarkerInclude)
	minus := strings.LastIndex(text, parse.MarkerExclude)
	if minus > plus {
		return minus
	}
	return plus
}

func lastToken(input string) string {
	fields := strings.FieldsFunc(input, unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func endsWithSpace(input string) bool {
	if input == "" {
		return false
	}
	return unicode.IsSpace(rune(input[len(input)-1]))
}

func prefixMatches(values []string, prefix string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != prefix && strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}

func dedup(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Package dates resolves free-text date phrases into absolute timestamps.
package dates

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Resolver turns a natural-language date phrase into an absolute time.
// Implementations must be deterministic for a given phrase and reference
// time, and return nil for unparseable input; the caller drops the due
// directive silently in that case.
type Resolver interface {
	Resolve(phrase string, now time.Time) *time.Time
}

// NaturalResolver resolves phrases like "tomorrow 5pm" or "next friday"
// using the when parser with English and common rules.
type NaturalResolver struct {
	parser *when.Parser
}

func NewNaturalResolver() *NaturalResolver {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalResolver{parser: w}
}

func (r *NaturalResolver) Resolve(phrase string, now time.Time) *time.Time {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil
	}
	result, err := r.parser.Parse(phrase, now)
	if err != nil || result == nil {
		return nil
	}
	t := result.Time
	return &t
}

// FixedResolver resolves every non-empty phrase to the same time. It is a
// test double for code that only needs a deterministic resolver.
type FixedResolver struct {
	At time.Time
}

func (r FixedResolver) Resolve(phrase string, now time.Time) *time.Time {
	if strings.TrimSpace(phrase) == "" {
		return nil
	}
	t := r.At
	return &t
}

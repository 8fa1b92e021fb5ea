package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskvault/internal/dates"
	"github.com/sandeepkv93/taskvault/internal/model"
)

// TagFactory mints or reuses a tag for a name. Implementations backed by
// the tag store return the existing tag when the name is already known.
type TagFactory func(name string) model.Tag

func defaultTagFactory(name string) model.Tag {
	return model.Tag{Name: name}
}

// ParseTask builds a task draft from free-form input. Invalid priority
// values and unresolvable due phrases are dropped silently; an invalid tag
// name is a build error. The remaining trimmed text becomes the
// description, which may be empty — whether that is acceptable is the
// caller's call.
//
// The returned task carries no uuid; the store assigns one at creation.
func ParseTask(input string, now time.Time, resolver dates.Resolver, factory TagFactory) (model.Task, error) {
	if factory == nil {
		factory = defaultTagFactory
	}

	working := input
	task := model.Task{Status: model.StatusPending}

	if v, ok := ExtractValue(MarkerPriority, &working, false); ok {
		task.Priority = model.PriorityFromDirective(v)
	}
	if v, ok := ExtractValue(MarkerProject, &working, false); ok && v != "" {
		task.Project = v
	}
	if v, ok := ExtractValue(MarkerDue, &working, false); ok && resolver != nil {
		task.Due = resolver.Resolve(v, now)
	}

	for {
		name, ok := ExtractTag(MarkerInclude, &working)
		if !ok {
			break
		}
		if name == "" {
			continue
		}
		tag := factory(name)
		if !tag.IsValid() {
			return model.Task{}, &ParseError{Code: ErrCodeInvalidTag, Message: fmt.Sprintf("invalid tag name: %q", name)}
		}
		task.AddTag(tag)
	}

	task.Description = strings.TrimSpace(working)
	return task, nil
}

// ParseFilter builds a filter predicate from free-form input, operating in
// filter context (status: recognized, -tag exclusion allowed). Each
// successfully extracted field sets both the value and its was-set flag.
// The raw input is preserved un-mutated as FullDescription.
//
// The due phrase is parsed and carried on the filter but its was-set flag
// is never raised, so it does not constrain matching.
func ParseFilter(input string, now time.Time, resolver dates.Resolver) (model.Filter, error) {
	working := input
	filter := model.Filter{FullDescription: input}

	if v, ok := ExtractValue(MarkerPriority, &working, true); ok {
		if p := model.PriorityFromDirective(v); p != model.PriorityNone {
			filter.Priority = p
			filter.DidSetPriority = true
		}
	}
	if v, ok := ExtractValue(MarkerProject, &working, true); ok && v != "" {
		filter.Project = v
		filter.DidSetProject = true
	}
	if v, ok := ExtractValue(MarkerDue, &working, true); ok && resolver != nil {
		filter.Due = resolver.Resolve(v, now)
	}
	if v, ok := ExtractValue(MarkerStatus, &working, true); ok {
		if s := model.Status(strings.ToLower(v)); s.IsValid() {
			filter.Status = s
			filter.DidSetStatus = true
		}
	}

	for {
		name, ok := ExtractTag(MarkerInclude, &working)
		if !ok {
			break
		}
		if name == "" {
			continue
		}
		if !(model.Tag{Name: name}).IsValid() {
			return model.Filter{}, &ParseError{Code: ErrCodeInvalidTag, Message: fmt.Sprintf("invalid tag name: %q", name)}
		}
		if !filter.IncludesTag(name) {
			filter.IncludedTags = append(filter.IncludedTags, name)
		}
	}
	for {
		name, ok := ExtractTag(MarkerExclude, &working)
		if !ok {
			break
		}
		if name == "" {
			continue
		}
		if !(model.Tag{Name: name}).IsValid() {
			return model.Filter{}, &ParseError{Code: ErrCodeInvalidTag, Message: fmt.Sprintf("invalid tag name: %q", name)}
		}
		if !filter.ExcludesTag(name) {
			filter.ExcludedTags = append(filter.ExcludedTags, name)
		}
	}

	return filter, nil
}

// ValidateFilter rejects filters with no explicitly set field.
func ValidateFilter(f model.Filter) error {
	if !f.IsValid() {
		return &ParseError{Code: ErrCodeInvalidFilter, Message: "filter must set at least one field"}
	}
	return nil
}

// ValidateDescription rejects empty descriptions ahead of persistence.
func ValidateDescription(t model.Task) error {
	if strings.TrimSpace(t.Description) == "" {
		return &ParseError{Code: ErrCodeEmptyDescription, Message: "task description is empty"}
	}
	return nil
}

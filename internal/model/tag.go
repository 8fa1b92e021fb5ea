package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidTagName = errors.New("model: invalid tag name")

// Tag is a shared entity referenced by name from tasks and filters.
type Tag struct {
	Name string
}

// reserved characters that may not appear anywhere in a tag name.
const tagReservedChars = "+-*/(<>^!%=~"

// IsValid reports whether the tag name is acceptable for user tags: no
// whitespace, none of the operator characters, no leading digit, and no
// colon after the first character.
func (t Tag) IsValid() bool {
	if t.Name == "" {
		return false
	}
	for i, r := range t.Name {
		if unicode.IsSpace(r) {
			return false
		}
		if strings.ContainsRune(tagReservedChars, r) {
			return false
		}
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if i > 0 && r == ':' {
			return false
		}
	}
	return true
}

// IsSynthetic reports whether the tag is system-reserved. Synthetic tags
// have names made up entirely of uppercase letters and are read-only to
// the user; call sites enforce that, not the tag itself.
func (t Tag) IsSynthetic() bool {
	if t.Name == "" {
		return false
	}
	for _, r := range t.Name {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func (t Tag) Validate() error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTagName, t.Name)
	}
	return nil
}

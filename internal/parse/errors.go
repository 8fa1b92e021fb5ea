package parse

import "fmt"

type ErrorCode string

const (
	ErrCodeInvalidTag       ErrorCode = "invalid_tag"
	ErrCodeInvalidFilter    ErrorCode = "invalid_filter"
	ErrCodeEmptyDescription ErrorCode = "empty_description"
)

// ParseError is raised synchronously at build time; it never reaches
// storage. The message is suitable for direct display.
type ParseError struct {
	Code    ErrorCode
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

package flowchart

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	ErrCodeNotFound       = "FLOWCHART_NOT_FOUND"
	ErrCodeDuplicateName  = "FLOWCHART_DUPLICATE_NAME"
	ErrCodeNotInitialized = "FLOWCHART_NOT_INITIALIZED"
	ErrCodeValidation     = "FLOWCHART_VALIDATION_FAILED"
)

var (
	// ErrNotFound marks a lookup or clone whose target is absent by name.
	ErrNotFound = errors.New("entity not found", errors.CategoryBadInput).
			WithTextCode(ErrCodeNotFound)
	// ErrDuplicateName marks a container insertion collision.
	ErrDuplicateName = errors.New("duplicate entity name", errors.CategoryConflict).
				WithTextCode(ErrCodeDuplicateName)
	// ErrNotInitialized marks field-path translation before field metadata was bound.
	ErrNotInitialized = errors.New("entity fields are not initialized", errors.CategoryHandler).
				WithTextCode(ErrCodeNotInitialized)
	// ErrValidation marks malformed construction options or definitions.
	ErrValidation = errors.New("validation error", errors.CategoryValidation).
			WithTextCode(ErrCodeValidation)
)

func newError(base *errors.Error, message string, metadata map[string]any) *errors.Error {
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

func notFound(kind Kind, name string) *errors.Error {
	return newError(ErrNotFound, kind.String()+" not found: "+name, map[string]any{
		"kind": kind.String(),
		"name": name,
	})
}

func duplicateName(kind Kind, field, value string) *errors.Error {
	return newError(ErrDuplicateName, kind.String()+" with "+field+" "+value+" already exists", map[string]any{
		"kind":  kind.String(),
		"field": field,
		"value": value,
	})
}

func validationError(message string, metadata map[string]any) *errors.Error {
	return newError(ErrValidation, message, metadata)
}

// ErrorCode returns the text code carried by err, or an empty string.
func ErrorCode(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

func IsNotFound(err error) bool       { return ErrorCode(err) == ErrCodeNotFound }
func IsDuplicateName(err error) bool  { return ErrorCode(err) == ErrCodeDuplicateName }
func IsNotInitialized(err error) bool { return ErrorCode(err) == ErrCodeNotInitialized }
func IsValidation(err error) bool     { return ErrorCode(err) == ErrCodeValidation }

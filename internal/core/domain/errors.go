package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmptyKnowledgeBase = errors.New("empty knowledge base")
	ErrNoMatch            = errors.New("no similar posts found")
	ErrConnectivity       = errors.New("backend unreachable")
	ErrGeneration         = errors.New("generation failed")
	ErrDuplicateID        = errors.New("duplicate post id")
	ErrMissingPlaceholder = errors.New("missing template placeholder")
	ErrInvalidTemplate    = errors.New("invalid template")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrPostNotFound       = errors.New("post not found")
)

// FailureMarker prefixes every user-facing error string.
const FailureMarker = "❌"

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// detailError carries a message meant to be shown to the user as-is.
type detailError struct {
	msg string
}

func (e *detailError) Error() string { return e.msg }

// NewValidationError builds an ErrValidation whose detail is shown verbatim to the user.
func NewValidationError(operation, msg string) error {
	return WrapError(ErrValidation, operation, &detailError{msg: msg})
}

// GenerationError reports a failed call to a text-generation backend.
type GenerationError struct {
	Backend BackendID
	Model   string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return "generation error"
	}
	cause := "unknown cause"
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return fmt.Sprintf("backend %s model %s: %s", e.Backend, e.Model, cause)
}

// Unwrap exposes the cause and ErrGeneration unless the cause is a connectivity failure.
func (e *GenerationError) Unwrap() []error {
	if e == nil || e.Cause == nil {
		return []error{ErrGeneration}
	}
	if errors.Is(e.Cause, ErrConnectivity) {
		return []error{e.Cause}
	}
	return []error{ErrGeneration, e.Cause}
}

// UserMessage renders err as the marker-prefixed string shown by the UI layer.
// title names the failed action for errors that carry no fixed wording.
func UserMessage(err error, title string) string {
	if err == nil {
		return ""
	}
	switch {
	case IsKind(err, ErrValidation):
		var detail *detailError
		if errors.As(err, &detail) {
			return fmt.Sprintf("%s **Error:** %s", FailureMarker, detail.msg)
		}
		return fmt.Sprintf("%s **Error:** %s", FailureMarker, err.Error())
	case IsKind(err, ErrEmptyKnowledgeBase):
		return FailureMarker + " **Error:** No posts in the database. Please upload some sample posts first."
	case IsKind(err, ErrNoMatch):
		return FailureMarker + " **Error:** Unable to find similar posts in the database."
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Error"
	}
	return fmt.Sprintf("%s **%s:** %s", FailureMarker, title, err.Error())
}

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// HasField reports whether fld is among the violated fields.
func (err ValidationError) HasField(fld string) bool {
	for _, f := range err.Fields {
		if f.Field == fld {
			return true
		}
	}
	return false
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func (err NotFoundError) Error() string {
	return err.Resource + " not found"
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidStatusError is returned when a requested status is outside the submission lifecycle.
type InvalidStatusError struct {
	Value string
}

func (err InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", err.Value)
}

// UnauthorizedReviewError is returned when a reviewer does not own the reviewed submission.
type UnauthorizedReviewError struct {
	SubmissionID string
}

func (err UnauthorizedReviewError) Error() string {
	return "submission " + err.SubmissionID + " does not belong to the reviewer"
}

// NotificationError reports a failed notification dispatch.
// It is a warning: the write that triggered the notification has already been committed.
type NotificationError struct {
	Kind TemplateKind
	Err  error
}

func (err NotificationError) Error() string {
	return fmt.Sprintf("%s notification could not be delivered: %v", err.Kind, err.Err)
}

func (err NotificationError) Unwrap() error { return err.Err }

func IsNotificationFailure(err error) bool {
	var nErr *NotificationError
	return errors.As(err, &nErr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

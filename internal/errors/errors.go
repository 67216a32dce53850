package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeNotARepository ErrorType = "NOT_A_REPOSITORY"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeIsDirectory    ErrorType = "IS_DIRECTORY"
	ErrorTypeAlreadyExists  ErrorType = "ALREADY_EXISTS"
	ErrorTypeEmptyState     ErrorType = "EMPTY_STATE"
	ErrorTypeSelfReference  ErrorType = "SELF_REFERENCE"
	ErrorTypeIOFailure      ErrorType = "IO_FAILURE"
)

// Sentinels for errors.Is. Matching compares the Type only.
var (
	ErrNotARepository = &Error{Type: ErrorTypeNotARepository, Message: "not a vcs repository"}
	ErrNotFound       = &Error{Type: ErrorTypeNotFound, Message: "not found"}
	ErrIsDirectory    = &Error{Type: ErrorTypeIsDirectory, Message: "is a directory"}
	ErrAlreadyExists  = &Error{Type: ErrorTypeAlreadyExists, Message: "already exists"}
	ErrEmptyState     = &Error{Type: ErrorTypeEmptyState, Message: "empty state"}
	ErrSelfReference  = &Error{Type: ErrorTypeSelfReference, Message: "self reference"}
	ErrIOFailure      = &Error{Type: ErrorTypeIOFailure, Message: "i/o failure"}
)

type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newf(t ErrorType, format string, args ...any) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

func NotARepository(root string) *Error {
	return newf(ErrorTypeNotARepository, "not a vcs repository: %s", root)
}

func NotFound(format string, args ...any) *Error {
	return newf(ErrorTypeNotFound, format, args...)
}

func IsDirectory(path string) *Error {
	return newf(ErrorTypeIsDirectory, "%s: is a directory", path)
}

func AlreadyExists(format string, args ...any) *Error {
	return newf(ErrorTypeAlreadyExists, format, args...)
}

func EmptyState(format string, args ...any) *Error {
	return newf(ErrorTypeEmptyState, format, args...)
}

func SelfReference(format string, args ...any) *Error {
	return newf(ErrorTypeSelfReference, format, args...)
}

// IOFailure wraps an underlying storage error. A nil err yields nil.
func IOFailure(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stderrors.As(err, &typed) {
		return err
	}
	return &Error{
		Type:    ErrorTypeIOFailure,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// TypeOf returns the type of the first *Error in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ""
}

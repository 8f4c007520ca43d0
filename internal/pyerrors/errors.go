// Package pyerrors carries structured error information across package
// boundaries the way internal/core/errors does in the teacher project:
// a stable code plus freeform context, instead of ad hoc fmt.Errorf chains.
package pyerrors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	CodeParseFailed   ErrorCode = "PARSE_FAILED"
	CodeNotSupported  ErrorCode = "NOT_SUPPORTED"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
)

const (
	CtxPath = "path"
	CtxRule = "rule"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func New(code ErrorCode, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(code ErrorCode, msg string, err error) *DomainError {
	return &DomainError{Code: code, Message: msg, Err: err}
}

func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

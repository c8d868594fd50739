package errors

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes reported by the CLI for each error class.
const (
	ExitCodeFailure   = 1
	ExitCodeUsage     = 2
	ExitCodeInput     = 3
	ExitCodeOutput    = 4
	ExitCodeInterrupt = 130
)

var (
	ErrMalformedRecord  = NewError("MALFORMED_RECORD", "malformed log record", ExitCodeInput)
	ErrMissingTimestamp = NewError("MISSING_TIMESTAMP", "message lacks its GPS time fields", ExitCodeInput)
	ErrUnclassifiedKind = NewError("UNCLASSIFIED_KIND", "message kind has no time classification", ExitCodeFailure)
	ErrIO               = NewError("IO_ERROR", "log file i/o failed", ExitCodeOutput)
	ErrValidation       = NewError("VALIDATION_ERROR", "validation failed", ExitCodeUsage)
	ErrPublish          = NewError("PUBLISH_ERROR", "failed to publish record", ExitCodeOutput)
	ErrInternal         = NewError("INTERNAL_ERROR", "internal error", ExitCodeFailure)
)

type Error struct {
	Code     string
	Message  string
	ExitCode int
	Details  map[string]interface{}
	Cause    error
}

func NewError(code, message string, exitCode int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
		Details:  make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that sentinel comparisons survive WithCause/WithDetail copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	err.Details = details
	return &err
}

func IsMalformedRecord(err error) bool {
	return hasCode(err, ErrMalformedRecord.Code)
}

func IsMissingTimestamp(err error) bool {
	return hasCode(err, ErrMissingTimestamp.Code)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrValidation.Code)
}

func IsIO(err error) bool {
	return hasCode(err, ErrIO.Code)
}

func hasCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ToExitCode maps err to the process exit status.
func ToExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return ExitCodeInterrupt
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitCodeFailure
}

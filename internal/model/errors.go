package model

import "fmt"

// Error kinds. Compare with errors.Is; every error returned by this module
// that belongs to one of these kinds matches the corresponding sentinel.
var (
	ErrFormatMismatch     = &Error{Code: "format_mismatch", Message: "file format mismatch"}
	ErrUnsupportedVersion = &Error{Code: "unsupported_version", Message: "unsupported file version"}
	ErrUnsupportedDepth   = &Error{Code: "unsupported_depth", Message: "unsupported depth"}
	ErrUnsupportedFeature = &Error{Code: "unsupported_feature", Message: "unsupported feature"}
	ErrInvalidFrame       = &Error{Code: "invalid_frame", Message: "invalid frame"}
	ErrOutOfRange         = &Error{Code: "out_of_range", Message: "value out of range"}
	ErrNotFound           = &Error{Code: "not_found", Message: "not found"}
	ErrTruncated          = &Error{Code: "truncated", Message: "unexpected end of data"}
)

// Error represents a fenixconv error
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Errorf returns an error of the given kind with a formatted message.
func Errorf(kind *Error, format string, args ...any) error {
	return &Error{Code: kind.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind caused by err.
func Wrap(kind *Error, err error, format string, args ...any) error {
	return &Error{Code: kind.Code, Message: fmt.Sprintf(format, args...), Cause: err}
}

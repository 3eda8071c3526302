// Package errors defines the coded errors shared by every structio layer.
//
// The codec reports four kinds of failure:
//   - UNSUPPORTED_VERSION when the version byte matches no known layout
//   - CAPACITY_OVERFLOW when a count does not fit the field width of the target version
//   - MISSING_DATA when a flag or index promises data that is not there
//   - INVALID_DATA for malformed bytes such as bad UTF-8 or a truncated stream
//
// A block link that points past the block list is not an error: the indexer
// drops it.
//
// The other codes belong to the file, cache, store and HTTP plumbing.
//
//	err := errors.New(errors.ErrCodeCapacity, "block %d: %d connections (max %d)", i, n, limit)
//	if errors.IsCodec(err) {
//	    // the input or the requested version is at fault
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is the machine-readable category of an [Error].
type Code string

const (
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"
	ErrCodeCapacity           Code = "CAPACITY_OVERFLOW"
	ErrCodeMissingData        Code = "MISSING_DATA"
	ErrCodeInvalidData        Code = "INVALID_DATA"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var codecCodes = map[Code]bool{
	ErrCodeUnsupportedVersion: true,
	ErrCodeCapacity:           true,
	ErrCodeMissingData:        true,
	ErrCodeInvalidData:        true,
}

// Error carries a [Code], a message for people and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" or "CODE: message: cause". A cause that
// is an *Error with the same code is shown without repeating it.
func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	switch c, ok := e.Cause.(*Error); {
	case ok && c.Code == e.Code:
		s += ": " + UserMessage(c)
	case e.Cause != nil:
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is [New] with a cause that stays reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func find(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// GetCode returns the code of the outermost [*Error] in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e := find(err); e != nil {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost [*Error] in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// IsCodec reports whether err carries one of the four codec codes.
func IsCodec(err error) bool {
	return codecCodes[GetCode(err)]
}

// UserMessage joins the messages along err's chain and leaves the codes out.
func UserMessage(err error) string {
	e := find(err)
	switch {
	case e == nil:
		return err.Error()
	case e.Cause == nil:
		return e.Message
	default:
		return e.Message + ": " + UserMessage(e.Cause)
	}
}

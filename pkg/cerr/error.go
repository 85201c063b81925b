package cerr

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/kazz187/pomofocus/pkg/clog"
)

// Error is a failure with a caller-facing Code and Msg. Err and Stack are
// only ever logged.
type Error struct {
	Code  Code
	Msg   string
	Err   error
	Stack string
}

func NewError(code Code, msg string, underlying error) *Error {
	e := &Error{Code: code, Msg: msg, Err: underlying}
	if clog.LevelForCode(code.ConnectCode()) >= slog.LevelError {
		e.Stack = stack()
	}
	return e
}

func stack() string {
	buf := make([]byte, 2048)
	return string(buf[:runtime.Stack(buf, false)])
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code of the first *Error in err's chain, or Unknown.
func CodeOf(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return Unknown
}

func IsCode(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// Message returns the caller-facing message of err, or "unknown error" when
// err carries no *Error.
func Message(err error) string {
	if e, ok := asError(err); ok {
		return e.Msg
	}
	return "unknown error"
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

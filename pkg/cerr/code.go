package cerr

import (
	"net/http"

	"connectrpc.com/connect"
)

// Code classifies an Error. Values share their numbering with connect.Code
// so the two convert directly.
type Code int

const (
	OK                 = Code(0)
	Canceled           = Code(connect.CodeCanceled)
	Unknown            = Code(connect.CodeUnknown)
	InvalidArgument    = Code(connect.CodeInvalidArgument)
	DeadlineExceeded   = Code(connect.CodeDeadlineExceeded)
	NotFound           = Code(connect.CodeNotFound)
	AlreadyExists      = Code(connect.CodeAlreadyExists)
	PermissionDenied   = Code(connect.CodePermissionDenied)
	FailedPrecondition = Code(connect.CodeFailedPrecondition)
	Internal           = Code(connect.CodeInternal)
	Unavailable        = Code(connect.CodeUnavailable)
	Unauthenticated    = Code(connect.CodeUnauthenticated)
)

var httpStatusByCode = map[Code]int{
	OK:                 http.StatusOK,
	Canceled:           499,
	InvalidArgument:    http.StatusBadRequest,
	DeadlineExceeded:   http.StatusGatewayTimeout,
	NotFound:           http.StatusNotFound,
	AlreadyExists:      http.StatusConflict,
	PermissionDenied:   http.StatusForbidden,
	FailedPrecondition: http.StatusPreconditionFailed,
	Unavailable:        http.StatusServiceUnavailable,
	Unauthenticated:    http.StatusUnauthorized,
}

// String is the snake_case name used in JSON error bodies, e.g.
// "invalid_argument".
func (c Code) String() string {
	if c == OK {
		return "ok"
	}
	return c.ConnectCode().String()
}

func (c Code) ConnectCode() connect.Code {
	return connect.Code(c)
}

// HTTPCode is the response status for c. Anything unmapped is a 500.
func (c Code) HTTPCode() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

package clog

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
)

// StatusClientClosed is the non-standard status recorded when the client
// went away before the response was written.
const StatusClientClosed = 499

// LevelForStatus picks the access log level for an HTTP status.
func LevelForStatus(status int) slog.Level {
	switch {
	case status == StatusClientClosed, status < http.StatusBadRequest:
		return slog.LevelInfo
	case status < http.StatusInternalServerError:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// LevelForCode decides how loudly a failure with the given code is logged.
// Caller mistakes stay at info; server-side faults are errors.
func LevelForCode(code connect.Code) slog.Level {
	switch code {
	case connect.CodeCanceled,
		connect.CodeInvalidArgument,
		connect.CodeDeadlineExceeded,
		connect.CodeNotFound,
		connect.CodeAlreadyExists,
		connect.CodePermissionDenied,
		connect.CodeFailedPrecondition,
		connect.CodeUnauthenticated:
		return slog.LevelInfo
	}
	return slog.LevelError
}

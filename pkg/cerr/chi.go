package cerr

import (
	"context"
	"encoding/json"
	"net/http"
)

// outcome is what a handler under NewJSONResponseChiMiddleware reports.
type outcome struct {
	status   int
	response any
	err      error
}

type outcomeKey struct{}

func outcomeFrom(ctx context.Context) *outcome {
	out, _ := ctx.Value(outcomeKey{}).(*outcome)
	return out
}

func SetJSONResponse(ctx context.Context, response any) {
	SetJSONResponseWithStatus(ctx, http.StatusOK, response)
}

func SetJSONResponseWithStatus(ctx context.Context, status int, response any) {
	if out := outcomeFrom(ctx); out != nil {
		out.status, out.response = status, response
	}
}

func SetJSONError(ctx context.Context, err error) {
	if out := outcomeFrom(ctx); out != nil {
		out.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewJSONResponseChiMiddleware lets handlers report a result through
// SetJSONResponse/SetJSONError and renders it once the handler returns.
func NewJSONResponseChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			out := &outcome{}
			ctx := context.WithValue(r.Context(), outcomeKey{}, out)
			next.ServeHTTP(rw, r.WithContext(ctx))
			render(ctx, rw, out)
		})
	}
}

// DecodeJSON reads the request body into v. A malformed body is reported as
// InvalidArgument with the message "Invalid request".
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewError(InvalidArgument, "Invalid request", err)
	}
	return nil
}

// WriteJSONError renders err immediately, for code that rejects a request
// outside NewJSONResponseChiMiddleware.
func WriteJSONError(ctx context.Context, rw http.ResponseWriter, err error) {
	render(ctx, rw, &outcome{err: err})
}

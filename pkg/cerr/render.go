package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazz187/pomofocus/pkg/clog"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// render writes the outcome a handler recorded: the response on success,
// otherwise err as an errorBody with the status of its Code.
func render(ctx context.Context, rw http.ResponseWriter, out *outcome) {
	if out.err == nil {
		status := out.status
		if status == 0 {
			status = http.StatusOK
		}
		body, err := encode(out.response)
		if err != nil {
			renderError(ctx, rw, NewError(Internal, "server error", err))
			return
		}
		write(ctx, rw, status, body)
		return
	}

	if errors.Is(out.err, context.Canceled) {
		renderError(ctx, rw, NewError(Canceled, "connection closed", out.err))
		return
	}
	clog.AddError(ctx, out.err)
	e, ok := asError(out.err)
	if !ok {
		e = NewError(Unknown, "unknown error", out.err)
	}
	if e.Stack != "" {
		clog.AddStack(ctx, e.Stack)
	}
	renderError(ctx, rw, e)
}

func renderError(ctx context.Context, rw http.ResponseWriter, e *Error) {
	body, err := encode(errorBody{Code: e.Code.String(), Message: e.Msg})
	if err != nil {
		body = []byte(`{"code":"internal","message":"server error"}` + "\n")
	}
	write(ctx, rw, e.Code.HTTPCode(), body)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write(ctx context.Context, rw http.ResponseWriter, status int, body []byte) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(body); err != nil {
		clog.AddError(ctx, err)
	}
}

package cerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/pkg/storage"
)

func TestCode(t *testing.T) {
	tests := []struct {
		code   Code
		name   string
		status int
	}{
		{OK, "ok", http.StatusOK},
		{InvalidArgument, "invalid_argument", http.StatusBadRequest},
		{Unauthenticated, "unauthenticated", http.StatusUnauthorized},
		{NotFound, "not_found", http.StatusNotFound},
		{AlreadyExists, "already_exists", http.StatusConflict},
		{Internal, "internal", http.StatusInternalServerError},
		{Unknown, "unknown", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.code.String())
			assert.Equal(t, tt.status, tt.code.HTTPCode())
		})
	}
}

func TestErrorChain(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("saving: %w", NewError(Internal, "failed to write task", base))

	assert.ErrorIs(t, err, base)
	assert.True(t, IsCode(err, Internal))
	assert.False(t, IsCode(err, NotFound))
	assert.Equal(t, Internal, CodeOf(err))
	assert.Equal(t, "failed to write task", Message(err))

	assert.Equal(t, Unknown, CodeOf(base))
	assert.Equal(t, "unknown error", Message(base))

	assert.NotEmpty(t, NewError(Internal, "x", nil).Stack)
	assert.Empty(t, NewError(InvalidArgument, "x", nil).Stack)
}

func TestWrapErrors(t *testing.T) {
	assert.True(t, IsCode(WrapStorageReadError("task", storage.ErrNotFound), NotFound))
	assert.True(t, IsCode(WrapStorageReadError("task", errors.New("io")), Internal))
	assert.True(t, IsCode(WrapStorageDeleteError("task", storage.ErrNotFound), NotFound))
	assert.True(t, IsCode(WrapDatabaseError("get", "task", sql.ErrNoRows), NotFound))

	err := WrapDatabaseError("insert", "task", errors.New("locked"))
	assert.True(t, IsCode(err, Internal))
	assert.Equal(t, "failed to insert task", Message(err))
}

func serveJSON(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewJSONResponseChiMiddleware()(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestJSONResponseMiddleware(t *testing.T) {
	rec := serveJSON(func(w http.ResponseWriter, r *http.Request) {
		SetJSONResponseWithStatus(r.Context(), http.StatusCreated, map[string]bool{"success": true})
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = serveJSON(func(w http.ResponseWriter, r *http.Request) {
		SetNewJSONError(r.Context(), InvalidArgument, "Message is required", nil)
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":"invalid_argument","message":"Message is required"}`, rec.Body.String())

	rec = serveJSON(func(w http.ResponseWriter, r *http.Request) {
		SetJSONError(r.Context(), errors.New("raw"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"unknown","message":"unknown error"}`, rec.Body.String())

	rec = serveJSON(func(w http.ResponseWriter, r *http.Request) {
		SetJSONError(r.Context(), fmt.Errorf("llm: %w", context.Canceled))
	})
	assert.Equal(t, 499, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Message string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Message":"hi"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "hi", v.Message)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(r, &v)
	assert.True(t, IsCode(err, InvalidArgument))
	assert.Equal(t, "Invalid request", Message(err))
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(context.Background(), rec, NewError(Unauthenticated, "Unauthorized", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":"unauthenticated","message":"Unauthorized"}`, rec.Body.String())
}

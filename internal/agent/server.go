// Package agent serves the endpoint external automation uses to create
// tasks on behalf of a user.
package agent

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/lifecycle"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

const TokenHeader = "X-Agent-Token"

type Server struct {
	env       *config.AgentEnv
	lifecycle *lifecycle.Manager
}

func NewServer(env *config.AgentEnv, lifecycle *lifecycle.Manager) *Server {
	return &Server{env: env, lifecycle: lifecycle}
}

type CreateTaskRequest struct {
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	UserEmail          string             `json:"userEmail"`
	UserName           string             `json:"userName"`
	EstimatedPomodoros task.PomodoroCount `json:"estimatedPomodoros"`
}

type CreateTaskResponse struct {
	Success bool       `json:"success"`
	Task    *task.Task `json:"task"`
}

func (s *Server) Register(r chi.Router) {
	r.With(corsHeaders).Options("/agent/create-task", s.handleOptions)
	r.With(corsHeaders).Post("/agent/create-task", s.handleCreateTask)
}

// corsHeaders marks every agent response as callable from any origin, with
// or without an Origin header on the request.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), map[string]bool{"ok": true})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.env.AgentToken == "" {
		return true
	}
	provided := r.Header.Get(TokenHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.env.AgentToken)) == 1
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.authorized(r) {
		cerr.SetNewJSONError(ctx, cerr.Unauthenticated, "Unauthorized", nil)
		return
	}

	var req CreateTaskRequest
	if err := cerr.DecodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	email := user.NormalizeEmail(req.UserEmail)
	name := user.NormalizeName(req.UserName)
	if strings.TrimSpace(req.Title) == "" || email == "" || name == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "Missing required fields: title, userEmail, userName", nil)
		return
	}

	// a failed upsert does not block task creation
	if _, err := s.lifecycle.EnsureUser(ctx, email, name); err != nil {
		slog.WarnContext(ctx, "failed to upsert user", "email", email, "error", err)
	}

	t, err := s.lifecycle.CreateTask(ctx, req.Title, req.Description, req.EstimatedPomodoros.Int(), email)
	if err != nil {
		cerr.SetJSONError(ctx, storeFailure(err))
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, &CreateTaskResponse{Success: true, Task: t})
}

// storeFailure reports an internal store error with the store's own message,
// which agents log as the reason the task was not created.
func storeFailure(err error) error {
	var e *cerr.Error
	if !errors.As(err, &e) || e.Code != cerr.Internal || e.Err == nil {
		return err
	}
	return cerr.NewError(cerr.Internal, e.Err.Error(), err)
}

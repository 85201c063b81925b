package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/pomofocus/internal/user"
	"github.com/kazz187/pomofocus/pkg/cerr"
)

// Server exposes read access to tasks. Writes go through the lifecycle
// manager.
type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

type ListTasksResponse struct {
	Tasks []*Task `json:"tasks"`
}

type GetTaskResponse struct {
	Task *Task `json:"task"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/tasks", s.handleList)
	r.Get("/tasks/{id}", s.handleGet)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := user.NormalizeEmail(r.URL.Query().Get("userEmail"))
	if email == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "userEmail is required", nil)
		return
	}
	tasks, err := s.repo.ListByOwner(ctx, email)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	cerr.SetJSONResponse(ctx, &ListTasksResponse{Tasks: tasks})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &GetTaskResponse{Task: t})
}

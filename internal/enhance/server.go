package enhance

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/pomofocus/pkg/cerr"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

type HTTPRequest struct {
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserEmail   string `json:"userEmail"`
}

type EnhancedTask struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
	Reasoning          string `json:"reasoning"`
}

type HTTPResponse struct {
	Success      bool          `json:"success"`
	EnhancedTask *EnhancedTask `json:"enhancedTask"`
	Timestamp    time.Time     `json:"timestamp"`
}

func (s *Server) Register(r chi.Router) {
	r.Post("/enhance-task", s.handleEnhance)
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req HTTPRequest
	if err := cerr.DecodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	res, err := s.service.Enhance(ctx, Request{
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		UserEmail:   req.UserEmail,
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &HTTPResponse{
		Success: true,
		EnhancedTask: &EnhancedTask{
			ID:                 res.Task.ID,
			Title:              res.Task.Title,
			Description:        res.Task.Description,
			EstimatedPomodoros: res.Task.EstimatedPomodoros,
			Reasoning:          res.Suggestion.Reasoning,
		},
		Timestamp: time.Now().UTC(),
	})
}

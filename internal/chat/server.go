package chat

import (
	"net/http"
	"strings"
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

type Request struct {
	Message             string `json:"message"`
	ConversationHistory []Turn `json:"conversationHistory"`
}

type Response struct {
	Response      string         `json:"response"`
	SuggestedTask *SuggestedTask `json:"suggestedTask"`
	Timestamp     time.Time      `json:"timestamp"`
}

func (s *Server) Register(r chi.Router) {
	r.Post("/chat", s.handleChat)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req Request
	if err := cerr.DecodeJSON(r, &req); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "Message is required", nil)
		return
	}

	reply, err := s.service.Reply(ctx, req.Message, req.ConversationHistory)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "Internal server error", err)
		return
	}
	cerr.SetJSONResponse(ctx, &Response{
		Response:      reply.Text,
		SuggestedTask: reply.SuggestedTask,
		Timestamp:     time.Now().UTC(),
	})
}

package internal

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/pomofocus/internal/agent"
	"github.com/kazz187/pomofocus/internal/chat"
	"github.com/kazz187/pomofocus/internal/config"
	"github.com/kazz187/pomofocus/internal/enhance"
	"github.com/kazz187/pomofocus/internal/event"
	"github.com/kazz187/pomofocus/internal/task"
	"github.com/kazz187/pomofocus/pkg/cerr"
	"github.com/kazz187/pomofocus/pkg/clog"
)

type Server struct {
	server        *http.Server
	env           *config.Env
	agentServer   *agent.Server
	chatServer    *chat.Server
	enhanceServer *enhance.Server
	taskServer    *task.Server
	eventServer   *event.Server
}

func NewServer(
	env *config.Env,
	agentServer *agent.Server,
	chatServer *chat.Server,
	enhanceServer *enhance.Server,
	taskServer *task.Server,
	eventServer *event.Server,
) *Server {
	return &Server{
		env:           env,
		agentServer:   agentServer,
		chatServer:    chatServer,
		enhanceServer: enhanceServer,
		taskServer:    taskServer,
		eventServer:   eventServer,
	}
}

// Handler builds the complete HTTP handler: the /api routes, health checks
// and the CORS and h2c wrappers.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.RequestID,
			clog.SlogChiMiddleware(),
		)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.WriteJSONError(r.Context(), w, cerr.NewError(cerr.NotFound, "not found", nil))
		})

		// The agent endpoint carries its own shared secret.
		r.Group(func(r chi.Router) {
			r.Use(cerr.NewJSONResponseChiMiddleware())
			s.agentServer.Register(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyMiddleware)
			r.Group(func(r chi.Router) {
				r.Use(cerr.NewJSONResponseChiMiddleware())
				s.chatServer.Register(r)
				s.enhanceServer.Register(r)
				s.taskServer.Register(r)
			})
			s.eventServer.Register(r)
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker()))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", agent.TokenHeader, "X-API-Key", "Authorization"},
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(mux), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request, so cancelling it also ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// apiKeyMiddleware requires X-API-Key or a bearer token matching API_KEY.
// It is a no-op when no key is configured.
func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := s.env.BaseEnv.APIKey
		if want == "" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(want)) != 1 {
			cerr.WriteJSONError(r.Context(), w, cerr.NewError(cerr.Unauthenticated, "unauthorized", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

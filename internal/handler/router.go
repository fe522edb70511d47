package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	conversationHandler "github.com/mindguard/backend/internal/handler/conversation"
	predictHandler "github.com/mindguard/backend/internal/handler/predict"
	streamHandler "github.com/mindguard/backend/internal/handler/stream"
	middlewarePkg "github.com/mindguard/backend/internal/middleware"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(predict *predictHandler.Handler, conversation *conversationHandler.Handler, stream *streamHandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		predict.RegisterRoutes(api)
		conversation.RegisterRoutes(api)
		stream.RegisterRoutes(api)
	})

	return r
}

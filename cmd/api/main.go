package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindguard/backend/internal/config"
	"github.com/mindguard/backend/internal/handler"
	conversationHandler "github.com/mindguard/backend/internal/handler/conversation"
	predictHandler "github.com/mindguard/backend/internal/handler/predict"
	streamHandler "github.com/mindguard/backend/internal/handler/stream"
	"github.com/mindguard/backend/internal/service/classifier"
	"github.com/mindguard/backend/internal/service/conversation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	httpClassifier := classifier.NewHTTPClient(cfg.Classifier.BaseURL, cfg.Classifier.Timeout)
	if !cfg.Classifier.Configured() {
		log.Println("warning: API_BASE_URL not set, /api/predict will report a configuration error")
	}

	// Conversations use the LLM classifier when ark credentials are present,
	// the upstream HTTP classifier otherwise.
	var chatClassifier classifier.Client = httpClassifier
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing with the HTTP classifier only")
		} else if llm, err := classifier.NewLLMClassifier(ctx, chatModel); err != nil {
			log.Printf("warning: failed to initialize LLM classifier: %v", err)
		} else {
			chatClassifier = llm
			log.Println("LLM classifier enabled")
		}
	}

	store := conversation.NewStore(chatClassifier)

	router := handler.NewRouter(
		predictHandler.New(httpClassifier),
		conversationHandler.New(store),
		streamHandler.New(chatClassifier),
	)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MindGuard backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

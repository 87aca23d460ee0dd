package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"github.com/thisisjofrank/LLM-GM-Practice/ai"
	"github.com/thisisjofrank/LLM-GM-Practice/domain"
	"github.com/thisisjofrank/LLM-GM-Practice/observability"
	"github.com/thisisjofrank/LLM-GM-Practice/runtime"
	"github.com/thisisjofrank/LLM-GM-Practice/server"
	"github.com/thisisjofrank/LLM-GM-Practice/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes.
func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Responder stack: live Gemini when a key is present, canned
	// otherwise, with rate-limit fallback either way.
	seed := time.Now().UnixNano()
	if config.CannedSeed != nil {
		seed = *config.CannedSeed
	}
	canned, err := ai.NewCanned(seed)
	if err != nil {
		return fmt.Errorf("canned responder: %w", err)
	}

	var primary domain.Responder
	provider := "canned"
	if config.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(ctx, ai.GeminiConfig{
			APIKey:      config.GeminiAPIKey,
			Model:       config.GeminiModel,
			MaxTokens:   int32(config.MaxTokens),
			Temperature: float32(config.Temperature),
		})
		if err != nil {
			return fmt.Errorf("gemini responder: %w", err)
		}
		defer gemini.Close()
		primary = gemini
		provider = "gemini"
	}
	responder := ai.NewResilient(log, provider, primary, canned)
	log.Info("Responder initialized", "provider", provider, "api_key", config.GeminiAPIKey != "")

	// Turn resolution core and its surroundings.
	registry := runtime.NewRegistry()
	core := runtime.NewCore(log, registry, responder)
	notifier := runtime.NewNotifier(log, config.StreamBuffer)
	service := services.NewGameService(core, notifier)

	monitor, err := observability.NewMonitor(log, gameCounts{registry: registry, notifier: notifier})
	if err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}

	api := server.New(log, service, responder, monitor, config.MessagePacing)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: api.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("GM chat server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// gameCounts adapts the runtime to the monitor's narrow view.
type gameCounts struct {
	registry *runtime.Registry
	notifier *runtime.Notifier
}

func (g gameCounts) Count() int       { return g.registry.Count() }
func (g gameCounts) ActiveGames() int { return len(g.registry.ActiveGames()) }
func (g gameCounts) Subscribers() int { return g.notifier.SubscriberCount() }

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

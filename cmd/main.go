package main

import (
	"chatline/auth"
	"chatline/internal"
	"chatline/moderation"
	"chatline/observability"
	"chatline/repositories"
	"chatline/runtime"
	"chatline/runtime/workers"
	"chatline/services"
	"chatline/transport/ratelimiter"
	"chatline/transport/rest"
	"chatline/transport/ws"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	auth.SetSigningKey(config.AuthSigningKey)

	// 2. Storage (BadgerDB + Bluge search index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation
	censorRune, err := config.CensorRune()
	if err != nil {
		return err
	}
	censored, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, censorRune, log)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}
	log.Info("Moderation dictionaries loaded",
		"languages", censored.Languages, "words", len(censored.Words))

	// 4. Runtime core
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry()
	userRepository := repositories.NewUserRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	requestRepository := repositories.NewFriendRequestRepository(db)
	searchIndex := repositories.NewSearchIndex(blugeWriter, log)

	coordinator := runtime.NewCoordinator(
		log, registry, messageRepository, searchIndex, &moderator, monitoring,
	)

	// 5. Services & Transport
	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	profileService := services.NewProfileService(userRepository)
	friendService := services.NewFriendService(userRepository, requestRepository, coordinator)
	conversationService := services.NewConversationService(userRepository, messageRepository, searchIndex)

	limiter := ratelimiter.New(config.RateLimitPerSecond, config.RateLimitBurst, config.RateLimitIdleTTL)
	wsHandler := ws.NewHandler(log, coordinator, monitoring, limiter, config.Origins(), config.BufferSize)
	restHandler := rest.NewHandler(
		log, authService, profileService, friendService, conversationService,
		monitoring, wsHandler, config.Origins(),
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewReporterWorker(log, monitoring, config.ReportInterval))
	go sup.Run(ctx)

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.ChatMapper, func() map[string]any {
			stats := monitoring.GetLatest()
			return map[string]any{
				"online_users":  stats.OnlineUsers,
				"messages_sent": stats.MessagesSent,
				"uptime_s":      stats.UptimeSeconds,
			}
		})
		log.Info("Debug inspection server started", "port", config.DebugPort)
	}

	// 8. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           restHandler.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

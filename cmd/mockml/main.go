package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"example.com/trip-dashboard/backend/internal/ai"
	"example.com/trip-dashboard/backend/internal/config"
	"example.com/trip-dashboard/backend/internal/logging"
	"example.com/trip-dashboard/backend/internal/mockml"
	"example.com/trip-dashboard/backend/internal/server"
)

var (
	flagHost string
	flagPort int
)

var rootCmd = &cobra.Command{
	Use:   "mockml",
	Short: "Mock ML server for the trip dashboard",
	Long:  "Serves chatbot, trip prediction and bill processing endpoints with canned data, optionally answering chat through an LLM provider.",
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&flagHost, "host", "", "Listen host (default MOCK_ML_HOST or 0.0.0.0)")
	rootCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Listen port (default MOCK_ML_PORT or 5000)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadMock()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		if flagPort <= 0 {
			return fmt.Errorf("--port must be greater than 0")
		}
		cfg.Server.Port = flagPort
	}

	logger := logging.Setup(cfg.Env)

	client, err := ai.NewClient(ai.Settings{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		Timeout:   cfg.AI.Timeout,
		MaxTokens: cfg.AI.MaxOutputTokens,
	})
	if err != nil {
		return err
	}

	var assistant mockml.Assistant
	if a := ai.NewAssistant(client); a != nil {
		assistant = a
		logger.Info("mock chatbot uses llm provider", slog.String("provider", cfg.AI.Provider), slog.String("model", cfg.AI.Model))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(server.RequestLogger(logger))
	mockml.NewHandler(assistant).Register(e)

	httpServer := server.NewHTTPServer(cfg.Server, e)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock ml server started", slog.String("addr", httpServer.Addr))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("mock ml server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// Command mcp-toolbox runs the toolbox gateway over one of its two transport
// bindings: a stdio pipe session or the HTTP/SSE push server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mcptoolbox/mcp-toolbox-go/internal/logctx"
	"github.com/mcptoolbox/mcp-toolbox-go/mcp"
	"github.com/mcptoolbox/mcp-toolbox-go/stdio"
	"github.com/mcptoolbox/mcp-toolbox-go/streaminghttp"
	"github.com/mcptoolbox/mcp-toolbox-go/toolbox"
	"github.com/mcptoolbox/mcp-toolbox-go/toolbox/tools"
)

const version = "1.0.0"

type config struct {
	Addr            string        `env:"MCP_TOOLBOX_ADDR,default=:8000"`
	LogLevel        string        `env:"MCP_TOOLBOX_LOG_LEVEL,default=info"`
	LogFormat       string        `env:"MCP_TOOLBOX_LOG_FORMAT,default=text"`
	KeepAlive       time.Duration `env:"MCP_TOOLBOX_SSE_KEEPALIVE,default=30s"`
	ShutdownTimeout time.Duration `env:"MCP_TOOLBOX_SHUTDOWN_TIMEOUT,default=10s"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mcp-toolbox",
		Short:         "Schema-described tool gateway speaking JSON-RPC over stdio or HTTP/SSE",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newStdioCmd(), newHTTPCmd())
	return root
}

func newStdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve one JSON-RPC session over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// stdout is reserved for protocol frames; everything else is stderr.
			log := newLogger(cfg)

			disp, err := newDispatcher(log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			h := stdio.NewHandler(disp, stdio.WithLogger(log))
			log.Info("server.start", slog.String("transport", "stdio"))
			if err := h.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newHTTPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "http",
		Short: "Serve the HTTP/SSE push transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			disp, err := newDispatcher(log)
			if err != nil {
				return err
			}

			handler := streaminghttp.NewHandler(disp,
				streaminghttp.WithLogger(log),
				streaminghttp.WithKeepAliveInterval(cfg.KeepAlive),
			)
			srv := &http.Server{Addr: cfg.Addr, Handler: handler}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info("server.start", slog.String("transport", "http"), slog.String("addr", cfg.Addr))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info("server.shutdown")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func loadConfig() (*config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	var cfg config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config from env: %w", err)
	}
	return &cfg, nil
}

func newLogger(cfg *config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		inner = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		inner = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(logctx.Handler{Handler: inner})
}

func newDispatcher(log *slog.Logger) (*toolbox.Dispatcher, error) {
	reg, err := tools.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}
	return toolbox.NewDispatcher(reg,
		toolbox.WithLogger(log),
		toolbox.WithServerInfo(mcp.ImplementationInfo{Name: "mcp-toolbox", Version: version}),
	), nil
}

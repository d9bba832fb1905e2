package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"flowboard/internal/config"
	"flowboard/internal/handler"
	"flowboard/internal/hub"
	"flowboard/internal/repository/sqlite"
	"flowboard/internal/service"
	"flowboard/internal/watcher"
	"flowboard/internal/workspace"
)

type serveOpts struct {
	addr  string
	db    string
	watch string
}

func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas HTTP server",
		Long: `Run the canvas HTTP server.

The server exposes the node, edge, selection, viewport and arrangement API
under /api and streams canvas events over SSE at /events. With --watch the
given workflow file is imported at startup and re-imported on every change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if opts.db != "" {
				cfg.Database.Path = opts.db
			}
			return runServe(ctx, cfg, opts.watch, loggerFromContext(ctx))
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite database path (overrides config)")
	cmd.Flags().StringVar(&opts.watch, "watch", "", "workflow file to import and keep in sync")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, watchPath string, logger *log.Logger) error {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", "path", cfg.Database.Path)

	eventBus := service.NewEventBus()

	sseHub := hub.New(logger.WithPrefix("hub"))
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	defer eventBus.Unsubscribe(events)
	go func() {
		for {
			select {
			case e := <-events:
				sseHub.Broadcast(e)
			case <-ctx.Done():
				return
			}
		}
	}()

	svc := service.NewCanvasService(repo, eventBus, cfg.LayoutOptions(), logger.WithPrefix("canvas"))

	if watchPath != "" {
		if err := importFile(ctx, svc, watchPath); err != nil {
			return err
		}
		wlog := logger.WithPrefix("watch")
		w := watcher.New(watchPath, func() {
			if err := importFile(ctx, svc, watchPath); err != nil {
				wlog.Error("reimport failed", "path", watchPath, "err", err)
			}
		}, wlog)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				wlog.Error("watcher stopped", "err", err)
			}
		}()
	}

	router := handler.NewRouter(
		handler.NewCanvasHandler(svc, logger),
		handler.NewWorkspaceHandler(workspace.NewDirectoryPicker(), cfg.Workspace.DefaultDirectory, logger),
		sseHub,
		logger.WithPrefix("http"),
	)

	// No WriteTimeout: /events streams for the life of the connection.
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout.Duration(),
		IdleTimeout: 60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// importFile replaces the canvas with the workflow stored at path.
func importFile(ctx context.Context, svc *service.CanvasService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open workflow: %w", err)
	}
	defer f.Close()

	if _, err := svc.ImportWorkflow(ctx, formatForPath(path), f); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return nil
}

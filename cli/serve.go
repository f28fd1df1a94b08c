package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/daemon"
	devotel "github.com/quartzlabs/devtools/otel"
	"github.com/quartzlabs/devtools/persist"
	"github.com/quartzlabs/devtools/tools"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon HTTP server",
		RunE:  runServe,
	}

	cmd.Flags().IntP("port", "p", 8080, "Listen port")
	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	cmd.Flags().String("sqlite-path", "", "Path to SQLite database (default: ~/.devtools/devtools.db)")
	cmd.Flags().String("config", "", "Path to devtools.yaml config")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 60*time.Second, "HTTP write timeout")
	cmd.Flags().Duration("schedule-poll", 5*time.Second, "Schedule poll interval")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	schedulePoll, _ := cmd.Flags().GetDuration("schedule-poll")
	explicitConfigPath, _ := cmd.Flags().GetString("config")

	logger := slog.Default()

	otelShutdown, err := devotel.Setup(cmd.Context(), "devtools-daemon")
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		_ = otelShutdown(context.Background())
	}()

	metricsHandler, err := devotel.NewMetricsHandler(
		otelapi.GetMeterProvider().Meter("devtools/dispatch"),
	)
	if err != nil {
		return fmt.Errorf("initializing dispatch metrics: %w", err)
	}
	tracingHandler := devotel.NewTracingHandler(
		otelapi.GetTracerProvider().Tracer("devtools/dispatch"),
	)

	reg := devtools.NewRegistry()
	state := devtools.NewState()
	tools.RegisterBuiltins(reg, state)

	dispatcher, err := devtools.NewDispatcher(devtools.DispatcherConfig{
		Registry: reg,
		State:    state,
		Emitter:  devtools.MultiEmitter(metricsHandler.Handle, tracingHandler.Handle),
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	dsn, err := resolveServeSQLiteDSN(cmd)
	if err != nil {
		return err
	}
	store, err := persist.NewSQLiteStore(persist.SQLiteStoreConfig{DSN: dsn})
	if err != nil {
		return fmt.Errorf("opening sqlite snapshot store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	daemonServer, err := daemon.NewServer(daemon.ServerConfig{
		Dispatcher: dispatcher,
		Registry:   reg,
		Store:      store,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating daemon server: %w", err)
	}

	if err := daemonServer.RestoreFromStore(cmd.Context()); err != nil {
		return fmt.Errorf("restoring snapshots: %w", err)
	}

	var cfg daemon.Config
	configPath, found, err := daemon.DiscoverConfigPath(explicitConfigPath)
	if err != nil {
		return err
	}
	if found {
		cfg, err = daemon.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading startup config: %w", err)
		}
		// Declarative seeds win over restored snapshots.
		if err := daemonServer.ApplyConfig(cfg); err != nil {
			return fmt.Errorf("seeding tools from config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded config from %s\n", configPath)
	}
	if err := daemonServer.SyncToStore(cmd.Context()); err != nil {
		return fmt.Errorf("syncing snapshots: %w", err)
	}

	scheduler, err := daemon.NewScheduler(daemon.SchedulerConfig{
		Dispatcher:   dispatcher,
		Schedules:    cfg.Schedules,
		PollInterval: schedulePoll,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Server.Host != "" {
		host = cfg.Server.Host
	}
	if cfg.Server.Port != 0 {
		port = cfg.Server.Port
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      daemonServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "devtools daemon listening on %s\n", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func resolveServeSQLiteDSN(cmd *cobra.Command) (string, error) {
	sqlitePath, _ := cmd.Flags().GetString("sqlite-path")
	if dsn := strings.TrimSpace(sqlitePath); dsn != "" {
		return dsn, nil
	}
	dsn, err := persist.DefaultSQLitePath()
	if err != nil {
		return "", exitError(exitRuntime, "resolving sqlite path: %v", err)
	}
	return dsn, nil
}

// Command noodles-server is a demo entrypoint wiring a noodles.Server
// with a "ping" starting state, plus an optional auxiliary byte-server.
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

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/noodles-go/noodles/pkg/byteserver"
	"github.com/noodles-go/noodles/pkg/dispatch"
	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/noodles"
	"github.com/noodles-go/noodles/pkg/scene"
	"github.com/noodles-go/noodles/pkg/telemetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "noodles-server",
		Short:         "A NOODLES collaborative scene protocol server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		port         uint16
		bytePort     int
		byteDir      string
		jsonDumpPath string
		metricsPort  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the NOODLES websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, bytePort, byteDir, jsonDumpPath, metricsPort)
		},
	}

	cmd.Flags().Uint16VarP(&port, "port", "p", 50000, "websocket listen port")
	cmd.Flags().IntVar(&bytePort, "byte-port", 8081, "auxiliary byte-server listen port (0 disables it)")
	cmd.Flags().StringVar(&byteDir, "byte-dir", "./noodles-buffers", "directory the byte-server serves buffer bytes from")
	cmd.Flags().StringVar(&jsonDumpPath, "json-dump", "", "write the startup snapshot to this path as JSON (debug aid)")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 9090, "Prometheus /metrics listen port (0 disables it)")

	return cmd
}

func newLogger() *slog.Logger {
	if isTTY(os.Stderr) {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func runServe(port uint16, bytePort int, byteDir, jsonDumpPath string, metricsPort int) error {
	log := newLogger()
	slog.SetDefault(log)

	metrics := telemetry.New()
	_, tracer, err := telemetry.NewTracerProvider()
	if err != nil {
		return fmt.Errorf("noodles-server: tracer provider: %w", err)
	}

	cfg := noodles.DefaultConfig()
	cfg.Port = port
	cfg.JSONDumpPath = jsonDumpPath
	cfg.Logger = log
	cfg.Metrics = metrics
	cfg.Tracer = tracer
	cfg.StartingState = []noodles.StartingComponent{
		{
			Kind:    noodleid.KindMethod,
			Name:    "ping",
			Payload: scene.Method{Name: "ping"},
			Handler: func(ctx dispatch.HandlerContext, args []any) (any, error) {
				return "pong", nil
			},
		},
	}

	server, err := noodles.New(cfg)
	if err != nil {
		return fmt.Errorf("noodles-server: build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	if bytePort > 0 {
		store, err := byteserver.NewDiskStore(byteDir, fmt.Sprintf("http://localhost:%d/buffers/", bytePort))
		if err != nil {
			return fmt.Errorf("noodles-server: byte-server store: %w", err)
		}
		bs := byteserver.NewServer(byteserver.Config{Port: bytePort, Logger: log}, store)
		go func() { errCh <- bs.Start(ctx) }()
	}

	if metricsPort > 0 {
		go func() { errCh <- serveMetrics(ctx, metricsPort) }()
	}

	log.Info("starting noodles server", "port", port)
	go func() { errCh <- server.Run(ctx) }()

	select {
	case <-ctx.Done():
		<-errCh
		return nil
	case err := <-errCh:
		stop()
		return err
	}
}

func serveMetrics(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

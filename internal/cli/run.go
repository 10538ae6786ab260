package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/engine"
	"github.com/rcliao/vcwatch/internal/host"
	"github.com/rcliao/vcwatch/internal/logging"
	"github.com/rcliao/vcwatch/internal/metrics"
	"github.com/rcliao/vcwatch/internal/notify"
)

type runSummary struct {
	Toasts        int      `json:"toasts"`
	ToastsDropped int      `json:"toasts_dropped"`
	Alerts        int      `json:"alerts"`
	Tracked       []string `json:"tracked"`
	OpenAlerts    []string `json:"open_alerts"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch a live event feed",
		Long: "Start watching. Frames are read as newline-delimited JSON from --feed (a file, or - for stdin) " +
			"or from a websocket at --ws. Runs until the feed ends or the process is interrupted. " +
			"SIGHUP reloads the tracked set from the database.",
		Run: runRun,
	}

	cmd.Flags().String("feed", "", "Replay frames from a file, or - for stdin")
	cmd.Flags().String("ws", "", "Websocket feed URL (default: feed.url from config)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (default: metrics.addr from config)")

	RootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	if err := watch(cmd); err != nil {
		exitErr("run", err)
	}
}

// watch runs until the feed ends or the process is signalled. Errors are
// returned so deferred cleanup runs before exit.
func watch(cmd *cobra.Command) error {
	feedPath, _ := cmd.Flags().GetString("feed")
	wsURL, _ := cmd.Flags().GetString("ws")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg := loadConfig()
	if wsURL == "" {
		wsURL = cfg.Feed.URL
	}
	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}
	if feedPath == "" && wsURL == "" {
		feedPath = "-"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	console := notify.NewConsole(os.Stdout, logger, notify.ConsoleOptions{ToastsPerMinute: cfg.Notify.ToastPerMinute})
	counter := &notify.Counter{}
	notifier := notify.Multi{console, counter}

	m := metrics.New()
	a := openApp(cmd, cfg, appOptions{logger: logger, notifier: notifier, metrics: m})
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, m, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	bus := host.NewBus()
	shell := host.NewShell(a.engine, bus, notifier, logger)
	if err := shell.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer shell.Stop(context.Background())
	go reloadOnHangup(ctx, shell, logger)

	feed := host.NewFeed(a.dir, bus, logger, m)
	if wsURL != "" && feedPath == "" {
		err = feed.Stream(ctx, wsURL, cfg.Feed.HandshakeTimeout)
	} else {
		err = replay(ctx, feed, feedPath)
	}
	shell.Stop(context.Background())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("feed: %w", err)
	}

	snap := a.engine.Snapshot()
	printJSON(runSummary{
		Toasts:        counter.Toasts(),
		ToastsDropped: console.Dropped(),
		Alerts:        counter.Modals(),
		Tracked:       snap.Tracked,
		OpenAlerts:    snap.OpenAlerts,
	})
	return nil
}

// reloadOnHangup re-reads the tracked set on SIGHUP, so track/untrack/replace
// run from another shell apply to a live watcher.
func reloadOnHangup(ctx context.Context, shell *host.Shell, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			err := shell.Do(func(e *engine.Engine) error { return e.ReloadTracked(ctx) })
			if err != nil {
				logger.Error("Failed to reload tracked users", zap.Error(err))
				continue
			}
			logger.Info("Reloaded tracked users")
		}
	}
}

func replay(ctx context.Context, feed *host.Feed, path string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return feed.Replay(ctx, r)
}

func serveMetrics(addr string, m *metrics.Metrics, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// Package cli implements the vcwatch CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/vcwatch/internal/config"
	"github.com/rcliao/vcwatch/internal/engine"
	"github.com/rcliao/vcwatch/internal/host"
	"github.com/rcliao/vcwatch/internal/metrics"
	"github.com/rcliao/vcwatch/internal/notify"
	"github.com/rcliao/vcwatch/internal/store"
)

var (
	configPath string
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "vcwatch",
	Short: "Watch tracked users' presence and voice channels",
	Long:  "Logs status changes and voice channel joins, moves and leaves for a set of tracked users, and alerts when two of them share a channel. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $VCWATCH_CONFIG or ~/.vcwatch/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $VCWATCH_DB or ~/.vcwatch/vcwatch.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig resolves settings; --db wins over env and file.
func loadConfig() *config.Config {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	return cfg
}

// app is everything a command needs to drive the engine.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.SQLiteStore
	dir     *host.Directory
	metrics *metrics.Metrics
	engine  *engine.Engine
}

type appOptions struct {
	logger   *zap.Logger
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

// openApp opens the store and builds a loaded engine over an empty directory.
func openApp(cmd *cobra.Command, cfg *config.Config, opts appOptions) *app {
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}

	s, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		exitErr("open store", err)
	}

	policy, err := engine.ParseResetPolicy(cfg.Engine.ResetPolicy)
	if err != nil {
		s.Close()
		exitErr("config", err)
	}

	dir := host.NewDirectory()
	e, err := engine.New(engine.Deps{
		Identities: dir,
		Presence:   dir,
		Voice:      dir,
		Channels:   dir,
		Store:      s,
		Notifier:   opts.notifier,
		Logger:     opts.logger,
		Metrics:    opts.metrics,
	}, engine.Options{
		Namespace:    cfg.Store.Namespace,
		LogCapacity:  cfg.Engine.LogCapacity,
		ResetPolicy:  policy,
		ToastTimeout: cfg.Notify.ToastTimeout,
	})
	if err != nil {
		s.Close()
		if errors.Is(err, engine.ErrMissingCollaborator) && opts.notifier != nil {
			opts.notifier.Toast(cmd.Context(), notify.Toast{Message: host.AppName + ": missing core modules", Kind: notify.KindError})
		}
		exitErr("start engine", err)
	}
	if err := e.Load(cmd.Context()); err != nil {
		s.Close()
		exitErr("load state", err)
	}

	return &app{cfg: cfg, logger: opts.logger, store: s, dir: dir, metrics: opts.metrics, engine: e}
}

func (a *app) Close() {
	a.store.Close()
}

// argOrSelected returns args[0], falling back to the selected identity.
func (a *app) argOrSelected(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.engine.Registry().Selected()
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

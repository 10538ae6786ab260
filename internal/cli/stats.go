package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/vcwatch/internal/engine"
	"github.com/rcliao/vcwatch/internal/store"
)

type statsView struct {
	*store.Stats
	Tracked     int                `json:"tracked"`
	LoggedUsers int                `json:"logged_users"`
	ResetPolicy engine.ResetPolicy `json:"reset_policy"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	st, err := a.store.Stats(cmd.Context(), a.cfg.Store.Path)
	if err != nil {
		exitErr("stats", err)
	}

	printJSON(statsView{
		Stats:       st,
		Tracked:     len(a.engine.Registry().Tracked()),
		LoggedUsers: len(a.engine.Log().Export()),
		ResetPolicy: a.engine.Policy(),
	})
}

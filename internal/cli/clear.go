package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear [id]",
		Short: "Clear a user's event log",
		Long:  "Clear a user's event log. Defaults to the selected user. Tracking is unchanged.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runClear,
	}

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	id := a.argOrSelected(args)
	if id == "" {
		exitErr("clear", fmt.Errorf("no user given and none selected"))
	}
	if err := a.engine.Log().Clear(cmd.Context(), id); err != nil {
		exitErr("clear", err)
	}
	printJSON(map[string]any{"cleared": id})
}

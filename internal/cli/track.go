package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type trackedView struct {
	Tracked  []string `json:"tracked"`
	Selected string   `json:"selected"`
}

func init() {
	trackCmd := &cobra.Command{
		Use:   "track <id>...",
		Short: "Start tracking users",
		Args:  cobra.MinimumNArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { runSetTracked(cmd, args, true) },
	}
	untrackCmd := &cobra.Command{
		Use:   "untrack <id>...",
		Short: "Stop tracking users and forget their logs",
		Args:  cobra.MinimumNArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { runSetTracked(cmd, args, false) },
	}

	RootCmd.AddCommand(trackCmd, untrackCmd)
}

func runSetTracked(cmd *cobra.Command, args []string, tracked bool) {
	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	for _, id := range args {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := a.engine.SetTracked(cmd.Context(), id, tracked); err != nil {
			exitErr(cmd.Name(), err)
		}
	}
	printTracked(a)
}

func printTracked(a *app) {
	reg := a.engine.Registry()
	if formatFlag == "text" {
		for _, id := range reg.Tracked() {
			marker := " "
			if id == reg.Selected() {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, id)
		}
		return
	}
	printJSON(trackedView{Tracked: reg.Tracked(), Selected: reg.Selected()})
}

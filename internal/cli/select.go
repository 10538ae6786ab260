package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "select [id]",
		Short: "Select the user whose log is shown by default",
		Long:  "Select the user whose log is shown by default. Without an id the selection is cleared.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSelect,
	}

	RootCmd.AddCommand(cmd)
}

func runSelect(cmd *cobra.Command, args []string) {
	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	var id string
	if len(args) > 0 {
		id = args[0]
	}
	if err := a.engine.Select(cmd.Context(), id); err != nil {
		exitErr("select", err)
	}
	printTracked(a)
}

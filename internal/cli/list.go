package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked users and the selection",
		Run:   runList,
	}

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	printTracked(a)
}

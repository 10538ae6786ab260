package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log [id]",
		Short: "Show a user's event log",
		Long:  "Show a user's event log, oldest first. Defaults to the selected user.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runLog,
	}

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	id := a.argOrSelected(args)
	if formatFlag == "text" || id == "" {
		fmt.Println(a.engine.Log().Text(id))
		return
	}

	b, err := a.engine.Log().ExportIdentityJSON(id)
	if err != nil {
		exitErr("log", err)
	}
	fmt.Println(string(b))
}

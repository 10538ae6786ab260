package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export event logs as JSON",
		Long:  "Export every user's event log as a JSON object of id to rendered lines. Use --id for a single user.",
		Run:   runExport,
	}

	cmd.Flags().String("id", "", "Export only this user")
	cmd.Flags().StringP("out", "o", "", "Write to file instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	out, _ := cmd.Flags().GetString("out")

	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	var (
		b   []byte
		err error
	)
	if id != "" {
		b, err = a.engine.Log().ExportIdentityJSON(id)
	} else {
		b, err = a.engine.Log().ExportJSON()
	}
	if err != nil {
		exitErr("export", err)
	}

	if out == "" {
		fmt.Println(string(b))
		return
	}
	if err := os.WriteFile(out, append(b, '\n'), 0o644); err != nil {
		exitErr("write export", err)
	}
	fmt.Fprintf(os.Stderr, "logs exported as JSON to %s\n", out)
}

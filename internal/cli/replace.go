package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace the tracked set",
		Long:  "Replace the tracked set with the user ids read from stdin, one per line. Users no longer listed are untracked and their logs dropped.",
		Run:   runReplace,
	}

	RootCmd.AddCommand(cmd)
}

func runReplace(cmd *cobra.Command, args []string) {
	ids, err := readIDs(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	a := openApp(cmd, loadConfig(), appOptions{})
	defer a.Close()

	if err := a.engine.Replace(cmd.Context(), ids); err != nil {
		exitErr("replace", err)
	}
	printTracked(a)
}

// readIDs returns the non-blank, trimmed lines of r.
func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/internal/core"
)

// schemasCmd lists the registered entities and their columns.
var schemasCmd = &cobra.Command{
	Use:   "schemas [entity]",
	Short: "show the columns each entity accepts",
	Example: `  $ weaveops schemas
  $ weaveops schemas ledger`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchemas,
}

func init() {
	schemasCmd.SilenceUsage = true
}

func runSchemas(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		schema, err := core.Lookup(args[0])
		if err != nil {
			ui.PrintUserError(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprint(out, ui.Schema(schema))
		return nil
	}

	for i, schema := range core.All() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, ui.Schema(schema))
	}
	return nil
}

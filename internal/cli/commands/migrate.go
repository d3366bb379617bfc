package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/migrations"
)

// migrateCmd creates the import tables
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "create or upgrade the database tables",
	Example: `  $ weaveops migrate`,
	Args:    cobra.NoArgs,
	RunE:    runMigrate,
}

func init() {
	migrateCmd.SilenceUsage = true
}

func runMigrate(cmd *cobra.Command, args []string) error {
	rt, _, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	applied, err := migrations.Apply(cmd.Context(), rt.Pool)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), "%v", err)
		return fmt.Errorf("migrate failed")
	}
	if len(applied) == 0 {
		ui.PrintInfo(cmd.ErrOrStderr(), "Database is up to date")
		return nil
	}
	for _, name := range applied {
		ui.PrintSuccess(cmd.ErrOrStderr(), "Applied %s", name)
	}
	return nil
}

package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/internal/core"
)

var (
	runsTenant string
	runsRole   string
)

// importsCmd lists a tenant's import runs
var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "list recent imports for a tenant",
	Example: `  $ weaveops imports --tenant surat`,
	Args:    cobra.NoArgs,
	RunE:    runImports,
}

// rollbackCmd deletes the rows created by one import
var rollbackCmd = &cobra.Command{
	Use:   "rollback <import-id>",
	Short: "delete every record created by an import",
	Long: `Delete every record created by one import run and mark the run rolled back.

Updates are not recorded as runs and cannot be rolled back.`,
	Example: `  $ weaveops imports --tenant surat
  $ weaveops rollback --tenant surat 3f9a1c2b-...`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

func init() {
	for _, c := range []*cobra.Command{importsCmd, rollbackCmd} {
		c.Flags().StringVarP(&runsTenant, "tenant", "t", "", "Tenant that owns the imports")
		c.Flags().StringVar(&runsRole, "role", string(core.RoleAdmin), "Role to act as")
		c.SilenceUsage = true
	}
}

func runImports(cmd *cobra.Command, args []string) error {
	actor, err := cliActor(runsTenant, "", runsRole)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), "%v", err)
		return err
	}

	rt, _, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	runs, err := rt.Service.ListRuns(cmd.Context(), actor)
	if err != nil {
		ui.PrintUserError(cmd.ErrOrStderr(), err)
		return fmt.Errorf("list imports failed")
	}
	if len(runs) == 0 {
		ui.PrintInfo(cmd.ErrOrStderr(), "No imports found for tenant %s", actor.Tenant)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENTITY\tFILE\tSTATUS\tIMPORTED\tTOTAL\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Entity, r.FileName, r.Status, r.Imported, r.Total, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runRollback(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	importID := strings.TrimSpace(args[0])

	actor, err := cliActor(runsTenant, "", runsRole)
	if err != nil {
		ui.PrintError(stderr, "%v", err)
		return err
	}

	rt, _, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.Service.Rollback(cmd.Context(), actor, importID)
	switch {
	case errors.Is(err, core.ErrAlreadyRolledBack):
		ui.PrintWarning(stderr, "Import %s was already rolled back", importID)
		return nil
	case err != nil:
		ui.PrintUserError(stderr, err)
		return fmt.Errorf("rollback failed")
	}

	ui.PrintSuccess(stderr, "Rolled back %s: removed %d %s records", res.ImportID, res.RowsDeleted, res.Entity)
	return nil
}

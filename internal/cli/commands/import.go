package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/internal/core"
)

var (
	importEntity    string
	importTenant    string
	importFile      string
	importOperation string
	importRole      string
	importUser      string
	importAllErrors bool
)

// importCmd is the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "import a CSV file into one entity",
	Long: `Import a CSV file into ledgers, users, products or inventory.

Every row is validated the same way the dashboard validates uploads. Rows that
fail validation or duplicate an existing record are reported and skipped; the
rest are written in batches.

Operations:
  • import  - insert new records (default)
  • update  - patch existing records matched on their unique key`,
	Example: `  # Import ledgers
  $ weaveops import --entity ledger --tenant surat --file ledgers.csv

  # Patch inventory quantities
  $ weaveops import -e inventory -t surat -f stock.csv --operation update`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importEntity, "entity", "e", "", "Entity to import (ledger, user, product, inventory)")
	importCmd.Flags().StringVarP(&importTenant, "tenant", "t", "", "Tenant the records belong to")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the CSV file")
	importCmd.Flags().StringVar(&importOperation, "operation", "import", "import or update")
	importCmd.Flags().StringVar(&importRole, "role", string(core.RoleAdmin), "Role to act as")
	importCmd.Flags().StringVar(&importUser, "user", "", "User recorded on the import (default cli)")
	importCmd.Flags().BoolVar(&importAllErrors, "all-errors", false, "List every row error instead of the first 20")

	_ = importCmd.MarkFlagRequired("entity")
	_ = importCmd.MarkFlagRequired("file")

	importCmd.SilenceUsage = true
}

func runImport(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()

	kind, err := core.ParseEntityKind(importEntity)
	if err != nil {
		ui.PrintUserError(stderr, err)
		return err
	}
	op, err := core.ParseOperation(importOperation)
	if err != nil {
		ui.PrintError(stderr, "%v", err)
		return err
	}
	actor, err := cliActor(importTenant, importUser, importRole)
	if err != nil {
		ui.PrintError(stderr, "%v", err)
		return err
	}

	f, err := os.Open(importFile)
	if err != nil {
		ui.PrintError(stderr, "failed to open file: %v", err)
		return fmt.Errorf("open %s: %w", importFile, err)
	}
	defer f.Close()

	rt, cfg, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if cfg.Import.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Import.Timeout)
		defer cancel()
	}

	ui.PrintInfo(stderr, "Importing %s into %s for tenant %s...", filepath.Base(importFile), kind, actor.Tenant)

	summary, err := rt.Service.Import(ctx, core.ImportRequest{
		Actor:     actor,
		Entity:    kind,
		FileName:  filepath.Base(importFile),
		Body:      f,
		Operation: op,
	})
	if err != nil {
		ui.PrintUserError(stderr, err)
		return fmt.Errorf("import failed")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.ImportSummary(summary))

	limit := 20
	if importAllErrors {
		limit = 0
	}
	ui.PrintRowErrors(out, summary.Messages(), limit)

	if summary.Imported == 0 && summary.TotalRows > 0 {
		return fmt.Errorf("no rows imported")
	}
	return nil
}

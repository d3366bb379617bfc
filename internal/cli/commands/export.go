package commands

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/internal/core"
)

var (
	exportEntity string
	exportTenant string
	exportFormat string
	exportOut    string
	exportSearch string
	exportRole   string
	exportWhere  []string
)

// exportCmd is the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "export one entity to CSV or Excel",
	Long: `Export a tenant's records of one entity.

The file is written to the current directory as <table>-export-<date>.<format>
unless --out names another path. Use --out - to write to stdout.`,
	Example: `  # Export every ledger
  $ weaveops export --entity ledger --tenant surat

  # Ledgers in Surat, as Excel
  $ weaveops export -e ledger -t surat --where city=Surat --format xlsx

  # Pipe a search result
  $ weaveops export -e product -t surat --search saree --out - | head`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportEntity, "entity", "e", "", "Entity to export (ledger, user, product, inventory)")
	exportCmd.Flags().StringVarP(&exportTenant, "tenant", "t", "", "Tenant whose records are exported")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(core.FormatCSV), "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path, - for stdout")
	exportCmd.Flags().StringVarP(&exportSearch, "search", "s", "", "Substring matched against the entity's search columns")
	exportCmd.Flags().StringSliceVar(&exportWhere, "where", nil, "Equality filter on a filter column, e.g. city=Surat")
	exportCmd.Flags().StringVar(&exportRole, "role", string(core.RoleAdmin), "Role to act as")

	_ = exportCmd.MarkFlagRequired("entity")

	exportCmd.SilenceUsage = true
}

func runExport(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()

	schema, err := core.Lookup(exportEntity)
	if err != nil {
		ui.PrintUserError(stderr, err)
		return err
	}
	format := core.ExportFormat(strings.ToLower(strings.TrimSpace(exportFormat)))
	if format != core.FormatCSV && format != core.FormatXLSX {
		ui.PrintError(stderr, "invalid format: %s", exportFormat)
		return fmt.Errorf("format must be one of: csv, xlsx")
	}
	actor, err := cliActor(exportTenant, "", exportRole)
	if err != nil {
		ui.PrintError(stderr, "%v", err)
		return err
	}
	params, err := exportParams(schema)
	if err != nil {
		ui.PrintError(stderr, "%v", err)
		return err
	}

	rt, _, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	var buf bytes.Buffer
	n, err := rt.Service.Export(cmd.Context(), &buf, actor, schema.Kind, params, format)
	if err != nil {
		ui.PrintUserError(stderr, err)
		return fmt.Errorf("export failed")
	}

	if exportOut == "-" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}

	path := exportOut
	if path == "" {
		path = core.ExportFileName(schema, format, time.Now())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		ui.PrintError(stderr, "failed to write file: %v", err)
		return fmt.Errorf("write %s: %w", path, err)
	}

	ui.PrintSuccess(stderr, "Exported %d %s to %s", n, schema.Table, path)
	return nil
}

// exportParams turns --search and --where into export filters. Only the
// entity's filter columns are accepted in --where.
func exportParams(schema *core.RecordSchema) (core.ExportParams, error) {
	params := core.ExportParams{
		Search: strings.TrimSpace(exportSearch),
		Equals: make(map[string]string),
	}
	for _, w := range exportWhere {
		field, value, ok := strings.Cut(w, "=")
		field = strings.ToLower(strings.TrimSpace(field))
		if !ok || field == "" {
			return core.ExportParams{}, fmt.Errorf("invalid --where %q: expected column=value", w)
		}
		if !slices.Contains(schema.FilterFields, field) {
			return core.ExportParams{}, fmt.Errorf("cannot filter %s on %q (filter columns: %s)",
				schema.Kind, field, strings.Join(schema.FilterFields, ", "))
		}
		params.Equals[field] = strings.TrimSpace(value)
	}
	return params, nil
}

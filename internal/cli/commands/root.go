package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/bootstrap"
	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/internal/config"
	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/JonMunkholm/weaveops/internal/logging"
)

const version = "0.1.0"

const connectTimeout = 15 * time.Second

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "weaveops",
	Short:   "Bulk CSV import and export for the textile ops dashboard",
	Version: version,
	Long: `A command-line tool for loading ledgers, users, products and inventory
from CSV files and exporting them again. It talks to the same database as
the dashboard and applies the same validation rules.`,
	Example: `  # Create the tables
  $ weaveops migrate

  # Import ledgers for a tenant
  $ weaveops import --entity ledger --tenant surat --file ledgers.csv

  # Update stock levels from a partial sheet
  $ weaveops import --entity inventory --tenant surat --file stock.csv --operation update

  # Export products to Excel
  $ weaveops export --entity product --tenant surat --format xlsx

  # Show the columns each entity accepts
  $ weaveops schemas`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(schemasCmd)
	rootCmd.AddCommand(importsCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

func formatVersion() string {
	return fmt.Sprintf("weaveops version %s\n", version)
}

// openRuntime loads configuration from the environment and connects to the
// database. Logs go to stderr so exports can be piped from stdout.
func openRuntime(cmd *cobra.Command) (*bootstrap.Runtime, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), "failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()

	rt, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), "failed to connect: %v", err)
		return nil, nil, fmt.Errorf("connect failed")
	}
	return rt, cfg, nil
}

// cliActor builds the actor a command runs as. The user defaults to "cli".
func cliActor(tenant, user, role string) (core.Actor, error) {
	if tenant == "" {
		return core.Actor{}, fmt.Errorf("--tenant is required")
	}
	r, err := core.ParseRole(role)
	if err != nil {
		return core.Actor{}, err
	}
	if user == "" {
		user = "cli"
	}
	return core.Actor{Tenant: tenant, UserID: user, Role: r}, nil
}

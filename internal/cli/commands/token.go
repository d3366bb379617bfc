package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/weaveops/internal/cli/ui"
	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/JonMunkholm/weaveops/internal/web/middleware"
)

var (
	tokenTenant string
	tokenUser   string
	tokenRole   string
	tokenTTL    time.Duration
	tokenSecret string
)

// tokenCmd signs an API token for local testing
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "sign an API bearer token",
	Long: `Sign an HS256 bearer token for the HTTP API with JWT_SECRET.

The token carries the tenant, user and role the API acts as.`,
	Example: `  $ weaveops token --tenant surat --user u-17 --role accountant
  $ curl -H "Authorization: Bearer $(weaveops token -t surat)" localhost:8080/api/schemas`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenTenant, "tenant", "t", "", "Tenant claim")
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User claim (default cli)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(core.RoleAdmin), "Role claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Signing key (default $JWT_SECRET)")

	tokenCmd.SilenceUsage = true
}

func runToken(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()

	actor, err := cliActor(tokenTenant, tokenUser, tokenRole)
	if err != nil {
		ui.PrintError(stderr, "%v", err)
		return err
	}

	secret := tokenSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		ui.PrintError(stderr, "no signing key: set JWT_SECRET or pass --secret")
		return fmt.Errorf("signing key required")
	}
	if tokenTTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	token, err := middleware.IssueToken([]byte(secret), actor, tokenTTL)
	if err != nil {
		ui.PrintError(stderr, "failed to sign token: %v", err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

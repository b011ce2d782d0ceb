package cli

import (
	"fmt"
	"os"

	"github.com/rickyarm/kit-gmail/internal/api/middleware"
	"github.com/rickyarm/kit-gmail/internal/config"
	"github.com/rickyarm/kit-gmail/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	cfg           *config.Config
	apiKeyManager *middleware.APIKeyManager
	logService    *services.LogService
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kit-gmail",
	Short: "Gmail cleanup and contact analysis toolkit",
	Long: `kit-gmail classifies mailbox messages, scores contacts and cleans up
old mail through the Gmail API.

Examples:
  kit-gmail auth                    # authorize Gmail API access
  kit-gmail cleanup --days 90       # organize mail older than 90 days
  kit-gmail contacts stats          # show contact population statistics
  kit-gmail contacts search bank    # search contacts by address or name
  kit-gmail summarize --days 7      # AI summary of the last week
  kit-gmail key show                # show the current API key`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config

	var err error
	apiKeyManager, err = middleware.NewAPIKeyManager(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize API key manager: %v\n", err)
		os.Exit(1)
	}

	logService = services.NewLogServiceWithLevel(db, cfg.LogLevel)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(summarizeCmd)
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rickyarm/kit-gmail/internal/database/models"
	"github.com/rickyarm/kit-gmail/internal/gmail"
	"github.com/rickyarm/kit-gmail/internal/processor"
	"github.com/spf13/cobra"
)

var (
	cleanupDays    int
	cleanupDelete  bool
	cleanupArchive bool
)

// cleanupCmd runs one mailbox cleanup pass
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up old mailbox messages",
	Long: `Process messages older than the given number of days: delete junk,
archive non-critical mail and file receipts and mailing lists under labels.`,
	Run: func(cmd *cobra.Command, args []string) {
		service, err := gmail.NewService(context.Background(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		proc := processor.NewEmailProcessor(classifierConfig())
		manager := gmail.NewManager(service, proc, cfg.MaxEmailBatchSize)

		stats, err := manager.CleanupMailbox(cleanupDays, cleanupDelete, cleanupArchive)
		if err != nil {
			logService.Error(models.LogModuleCleanup, "cleanup", err.Error(), nil)
			fmt.Fprintf(os.Stderr, "Error: cleanup failed: %v\n", err)
			os.Exit(1)
		}
		logService.Info(models.LogModuleCleanup, "cleanup", "mailbox cleanup completed", stats)

		fmt.Printf("Processed: %d\n", stats.Processed)
		fmt.Printf("Deleted:   %d\n", stats.Deleted)
		fmt.Printf("Archived:  %d\n", stats.Archived)
		fmt.Printf("Organized: %d\n", stats.Organized)
		fmt.Printf("Skipped:   %d\n", stats.Skipped)
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 90, "process messages older than this many days")
	cleanupCmd.Flags().BoolVar(&cleanupDelete, "delete-junk", false, "permanently delete junk messages")
	cleanupCmd.Flags().BoolVar(&cleanupArchive, "archive", false, "archive non-critical messages")
}

// classifierConfig builds the classifier keyword lists from the
// application configuration
func classifierConfig() processor.ClassifierConfig {
	return processor.ClassifierConfig{
		ReceiptKeywords: cfg.ReceiptKeywords,
		JunkKeywords:    cfg.JunkKeywords,
		CriticalSenders: cfg.CriticalSenders,
	}
}

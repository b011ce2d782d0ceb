package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rickyarm/kit-gmail/internal/functions/ai"
	"github.com/rickyarm/kit-gmail/internal/gmail"
	"github.com/rickyarm/kit-gmail/internal/processor"
	"github.com/spf13/cobra"
)

var (
	summarizeDays int
	summarizeMax  int64
)

// summarizeCmd produces an AI summary of recent mail
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize recent mail with the configured AI provider",
	Run: func(cmd *cobra.Command, args []string) {
		client := ai.NewClient()
		client.Configure(cfg.AIProvider, cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
		if !client.IsConfigured() {
			fmt.Fprintln(os.Stderr, "Error: AI provider not configured, set KIT_GMAIL_AI_API_KEY")
			os.Exit(1)
		}

		service, err := gmail.NewService(context.Background(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		proc := processor.NewEmailProcessor(classifierConfig())
		manager := gmail.NewManager(service, proc, cfg.MaxEmailBatchSize)

		query := fmt.Sprintf("newer_than:%dd", summarizeDays)
		emails, err := manager.FetchProcessedEmails(query, summarizeMax)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to fetch messages: %v\n", err)
			os.Exit(1)
		}
		if len(emails) == 0 {
			fmt.Println("No messages found in the requested window.")
			return
		}

		summary, err := client.SummarizeEmails(emails, summarizeDays)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: summarization failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(summary)
	},
}

func init() {
	summarizeCmd.Flags().IntVar(&summarizeDays, "days", 7, "summarize messages newer than this many days")
	summarizeCmd.Flags().Int64Var(&summarizeMax, "max", 200, "maximum number of messages to summarize")
}

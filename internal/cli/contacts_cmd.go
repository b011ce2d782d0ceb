package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rickyarm/kit-gmail/internal/contacts"
	"github.com/rickyarm/kit-gmail/internal/database/models"
	"github.com/rickyarm/kit-gmail/internal/gmail"
	"github.com/rickyarm/kit-gmail/internal/processor"
	"github.com/spf13/cobra"
)

var (
	analyzeDays int
	analyzeMax  int64
	listLimit   int
)

// contactsCmd represents the contacts command group
var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Contact analysis and queries",
	Long:  `Analyze mailbox contacts and query the resulting population.`,
}

// contactsAnalyzeCmd ingests recent mail into the contact population
var contactsAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze recent mail and update contacts",
	Run: func(cmd *cobra.Command, args []string) {
		service, err := gmail.NewService(context.Background(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		proc := processor.NewEmailProcessor(classifierConfig())
		gmailManager := gmail.NewManager(service, proc, cfg.MaxEmailBatchSize)

		query := fmt.Sprintf("newer_than:%dd", analyzeDays)
		emails, err := gmailManager.FetchProcessedEmails(query, analyzeMax)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to fetch messages: %v\n", err)
			os.Exit(1)
		}

		manager := loadedContactManager()
		stats, err := manager.AnalyzeEmails(emails)
		if err != nil {
			logService.Error(models.LogModuleContacts, "analyze", err.Error(), nil)
			fmt.Fprintf(os.Stderr, "Error: analysis failed: %v\n", err)
			os.Exit(1)
		}
		logService.Info(models.LogModuleContacts, "analyze", "contact analysis completed", stats)

		fmt.Printf("Emails processed:  %d\n", stats.EmailsProcessed)
		fmt.Printf("New contacts:      %d\n", stats.NewContacts)
		fmt.Printf("Updated contacts:  %d\n", stats.UpdatedContacts)
		fmt.Printf("Frequent contacts: %d\n", stats.FrequentContacts)
		fmt.Printf("Spam contacts:     %d\n", stats.SpamContacts)
	},
}

// contactsStatsCmd prints population statistics
var contactsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show contact population statistics",
	Run: func(cmd *cobra.Command, args []string) {
		stats := loadedContactManager().GetContactStats()

		fmt.Printf("Total contacts:     %d\n", stats.TotalContacts)
		fmt.Printf("Frequent contacts:  %d\n", stats.FrequentContacts)
		fmt.Printf("Important contacts: %d\n", stats.ImportantContacts)
		fmt.Printf("Spam contacts:      %d\n", stats.SpamContacts)
		fmt.Printf("Automated contacts: %d\n", stats.AutomatedContacts)
		fmt.Printf("Total emails:       %d\n", stats.TotalEmails)
		fmt.Printf("Avg per contact:    %.1f\n", stats.AvgEmailsPerContact)
		if len(stats.TopDomains) > 0 {
			fmt.Println("Top domains:")
			for domain, count := range stats.TopDomains {
				fmt.Printf("  %s: %d\n", domain, count)
			}
		}
	},
}

// contactsFrequentCmd lists frequent contacts
var contactsFrequentCmd = &cobra.Command{
	Use:   "frequent",
	Short: "List frequent contacts",
	Run: func(cmd *cobra.Command, args []string) {
		printContacts(loadedContactManager().FrequentContacts(listLimit))
	},
}

// contactsSpamCmd lists spam contacts
var contactsSpamCmd = &cobra.Command{
	Use:   "spam",
	Short: "List spam contacts",
	Run: func(cmd *cobra.Command, args []string) {
		printContacts(loadedContactManager().SpamContacts())
	},
}

// contactsImportantCmd lists important contacts
var contactsImportantCmd = &cobra.Command{
	Use:   "important",
	Short: "List important contacts",
	Run: func(cmd *cobra.Command, args []string) {
		printContacts(loadedContactManager().ImportantContacts())
	},
}

// contactsSearchCmd searches contacts by address or name
var contactsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search contacts by address or name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printContacts(loadedContactManager().FindContacts(args[0]))
	},
}

// contactsSuggestionsCmd prints contact-management suggestions
var contactsSuggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "Show contact-management suggestions",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadedContactManager().GetSuggestions()

		printEmailList("Contacts to block", s.ContactsToBlock)
		printEmailList("Contacts to whitelist", s.ContactsToWhitelist)
		printEmailList("Potential duplicates", s.PotentialDuplicates)
		printEmailList("Inactive contacts", s.InactiveContacts)
	},
}

// loadedContactManager builds a contact manager with the persisted
// population loaded
func loadedContactManager() *contacts.Manager {
	manager := contacts.NewManager(db)
	if err := manager.LoadContacts(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load contacts: %v\n", err)
		os.Exit(1)
	}
	return manager
}

func printContacts(list []*contacts.Contact) {
	if len(list) == 0 {
		fmt.Println("No contacts found.")
		return
	}
	for _, c := range list {
		name := c.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%-40s %-25s emails=%d sent=%d received=%d\n",
			c.Email, name, c.EmailCount, c.SentCount, c.ReceivedCount)
	}
}

func printEmailList(title string, emails []string) {
	fmt.Printf("%s (%d):\n", title, len(emails))
	for _, e := range emails {
		fmt.Printf("  %s\n", e)
	}
}

func init() {
	contactsAnalyzeCmd.Flags().IntVar(&analyzeDays, "days", 30, "analyze messages newer than this many days")
	contactsAnalyzeCmd.Flags().Int64Var(&analyzeMax, "max", 500, "maximum number of messages to analyze")
	contactsFrequentCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum contacts to list")

	contactsCmd.AddCommand(contactsAnalyzeCmd)
	contactsCmd.AddCommand(contactsStatsCmd)
	contactsCmd.AddCommand(contactsFrequentCmd)
	contactsCmd.AddCommand(contactsSpamCmd)
	contactsCmd.AddCommand(contactsImportantCmd)
	contactsCmd.AddCommand(contactsSearchCmd)
	contactsCmd.AddCommand(contactsSuggestionsCmd)
}

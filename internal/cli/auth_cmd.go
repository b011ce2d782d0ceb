package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rickyarm/kit-gmail/internal/gmail"
	"github.com/spf13/cobra"
)

// authCmd walks the user through the Gmail OAuth consent flow
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail API access",
	Long: `Print the Google consent URL, then exchange the authorization code
for a token cached in the data directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		oauthCfg, err := gmail.OAuthConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Visit this URL and authorize access:")
		fmt.Println(gmail.AuthURL(oauthCfg))
		fmt.Println()
		fmt.Print("Paste the authorization code: ")

		reader := bufio.NewReader(os.Stdin)
		code, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input: %v\n", err)
			os.Exit(1)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			fmt.Fprintln(os.Stderr, "Error: empty authorization code")
			os.Exit(1)
		}

		if _, err := gmail.Exchange(context.Background(), oauthCfg, code, cfg.TokenPath()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: token exchange failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Authorization complete. Token saved to", cfg.TokenPath())
	},
}

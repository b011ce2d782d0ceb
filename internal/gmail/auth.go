package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rickyarm/kit-gmail/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

var (
	// ErrNotConfigured indicates Gmail OAuth credentials are missing
	ErrNotConfigured = errors.New("gmail client not configured")
	// ErrNoToken indicates no cached OAuth token exists
	ErrNoToken = errors.New("no cached gmail token, run auth first")
)

// OAuthConfig builds the OAuth2 config for the Gmail API from the
// application configuration
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client id or secret", ErrNotConfigured)
	}
	return &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailModifyScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// AuthURL returns the consent URL to visit for an offline-access code
func AuthURL(oauthCfg *oauth2.Config) string {
	return oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and caches it
func Exchange(ctx context.Context, oauthCfg *oauth2.Config, code, tokenPath string) (*oauth2.Token, error) {
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := saveToken(tokenPath, token); err != nil {
		return nil, err
	}
	return token, nil
}

// NewService creates a Gmail API service from the cached token
func NewService(ctx context.Context, cfg *config.Config) (*gmail.Service, error) {
	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := tokenFromFile(cfg.TokenPath())
	if err != nil {
		return nil, ErrNoToken
	}

	client := oauthCfg.Client(ctx, token)
	return gmail.NewService(ctx, option.WithHTTPClient(client))
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

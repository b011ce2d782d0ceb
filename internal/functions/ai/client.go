package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rickyarm/kit-gmail/internal/processor"
)

var (
	// ErrNotConfigured indicates the AI client is not configured
	ErrNotConfigured = errors.New("AI client not configured")
	// ErrAPICallFailed indicates the AI API call failed
	ErrAPICallFailed = errors.New("AI API call failed")
	// ErrInvalidResponse indicates an invalid response from the AI API
	ErrInvalidResponse = errors.New("invalid AI API response")
)

// Provider represents an AI provider
type Provider string

const (
	// ProviderOpenAI represents OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic represents Anthropic Claude API
	ProviderAnthropic Provider = "anthropic"
	// ProviderCustom represents a custom API endpoint
	ProviderCustom Provider = "custom"
)

// Client talks to an LLM provider to summarize classified email batches.
// No classification logic lives here; it only consumes ProcessedEmail
// records the core already produced.
type Client struct {
	provider   Provider
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	configured bool
}

// NewClient creates a new AI Client instance
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configure configures the AI client with provider settings
func (c *Client) Configure(provider, apiKey, model, baseURL string) {
	c.provider = Provider(strings.ToLower(provider))
	c.apiKey = apiKey
	c.model = model
	c.configured = apiKey != ""

	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return
	}

	switch c.provider {
	case ProviderAnthropic:
		c.baseURL = "https://api.anthropic.com/v1"
		if c.model == "" {
			c.model = "claude-3-5-haiku-20241022"
		}
	case ProviderOpenAI:
		c.baseURL = "https://api.openai.com/v1"
		if c.model == "" {
			c.model = "gpt-4o-mini"
		}
	default:
		c.provider = ProviderOpenAI
		c.baseURL = "https://api.openai.com/v1"
		if c.model == "" {
			c.model = "gpt-4o-mini"
		}
	}
}

// IsConfigured returns whether the client is configured
func (c *Client) IsConfigured() bool {
	return c.configured && c.apiKey != ""
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// sendChatRequest sends a chat completion request to the AI API
func (c *Client) sendChatRequest(messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0.3,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	switch c.provider {
	case ProviderAnthropic:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPICallFailed, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}

// SummarizeEmails generates a free-text summary of a classified email
// batch covering the given number of days
func (c *Client) SummarizeEmails(emails []*processor.ProcessedEmail, days int) (string, error) {
	context := PrepareEmailContext(emails, days)
	prompt := fmt.Sprintf(`Please analyze and summarize the following %d emails from the past %d days.

Provide a summary that includes:
1. Overview: total emails and key statistics
2. Important/Critical items that need attention
3. Receipts and financial updates
4. Communication highlights
5. Mailing lists and newsletters
6. Cleanup opportunities: junk emails and unsubscribe suggestions

Format the summary with headers and bullet points. Focus on actionable insights.`, len(emails), days)

	messages := []ChatMessage{
		{Role: "system", Content: "You are an expert email analyst. Provide clear, concise summaries."},
		{Role: "user", Content: prompt + "\n\nContext:\n" + context},
	}
	return c.sendChatRequest(messages)
}

// PrepareEmailContext renders a classified email batch into the textual
// context handed to the LLM, grouped by category with at most ten
// entries per group
func PrepareEmailContext(emails []*processor.ProcessedEmail, days int) string {
	categories := []string{"critical", "receipts", "junk", "mailing_lists", "personal", "business"}
	grouped := make(map[string][]*processor.ProcessedEmail)

	for _, email := range emails {
		switch {
		case email.IsCritical:
			grouped["critical"] = append(grouped["critical"], email)
		case email.IsReceipt:
			grouped["receipts"] = append(grouped["receipts"], email)
		case email.IsJunk:
			grouped["junk"] = append(grouped["junk"], email)
		case email.IsMailingList:
			grouped["mailing_lists"] = append(grouped["mailing_lists"], email)
		case email.SenderName != "":
			grouped["personal"] = append(grouped["personal"], email)
		default:
			grouped["business"] = append(grouped["business"], email)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Email Summary for %d days (%d total emails):\n", days, len(emails))

	for _, category := range categories {
		list := grouped[category]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s EMAILS (%d):\n", strings.ToUpper(category), len(list))
		for i, email := range list {
			if i >= 10 { // keep the context inside token limits
				fmt.Fprintf(&b, "   ... and %d more emails\n", len(list)-10)
				break
			}
			sender := email.SenderName
			if sender == "" {
				sender = "Unknown"
			}
			fmt.Fprintf(&b, "%d. %s - %s <%s> (%s)\n", i+1, email.Subject, sender, email.Sender, email.Date.Format("2006-01-02"))
			if snippet := snippetOf(email.BodyText); snippet != "" {
				fmt.Fprintf(&b, "   Preview: %s\n", snippet)
			}
		}
	}

	return b.String()
}

// snippetOf returns the first 200 bytes of the body text
func snippetOf(body string) string {
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}

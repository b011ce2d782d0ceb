package processor

import (
	"fmt"
	"regexp"
	"strings"
)

// Classification thresholds
const (
	// JunkThreshold is the junk score above which a message is flagged junk
	JunkThreshold = 0.7
	// ReceiptThreshold is the receipt score above which a message is flagged a receipt
	ReceiptThreshold = 0.6
)

// Fixed content patterns, compiled once
var (
	unsubscribePattern = regexp.MustCompile(`(?i)unsubscribe|opt.?out|remove.*list`)
	receiptPattern     = regexp.MustCompile(`(?i)receipt|invoice|order\s*#|purchase|payment|confirmation`)
	promotionalPattern = regexp.MustCompile(`(?i)sale|deal|offer|discount|promotion|coupon|special`)
	moneyPattern       = regexp.MustCompile(`(?i)\$\d+\.\d{2}|\d+\.\d{2}\s*(usd|eur|gbp)`)
	orderNumberPattern = regexp.MustCompile(`(?i)order\s*#?\s*\d+|confirmation\s*#?\s*\d+`)
	newsletterPattern  = regexp.MustCompile(`(?i)newsletter|bulletin|digest`)

	criticalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)urgent`),
		regexp.MustCompile(`(?i)important`),
		regexp.MustCompile(`(?i)security\s+alert`),
		regexp.MustCompile(`(?i)account\s+suspended`),
		regexp.MustCompile(`(?i)verify\s+account`),
		regexp.MustCompile(`(?i)tax\s+notice`),
		regexp.MustCompile(`(?i)legal\s+notice`),
	}

	automatedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)do\s+not\s+reply`),
		regexp.MustCompile(`(?i)noreply`),
		regexp.MustCompile(`(?i)automated\s+message`),
		regexp.MustCompile(`(?i)auto.*generated`),
	}

	unsubscribeAnchorPattern = regexp.MustCompile(`(?i)<a[^>]*href=["']([^"']*unsubscribe[^"']*)["'][^>]*>`)
	unsubscribeURLPattern    = regexp.MustCompile(`(?i)https?://\S*unsubscribe\S*`)
)

// Header names checked for mailing list detection, in priority order
var listHeaderNames = []string{"List-Id", "List-Unsubscribe", "Mailing-List", "X-Mailing-List"}

// Header names whose presence marks a message as automated
var automatedHeaderNames = []string{"X-Auto-Response-Suppress", "Auto-Submitted", "X-Autoreply"}

// Sender-domain substrings that raise the junk score
var junkSenderIndicators = []string{"noreply", "marketing", "promo"}

// ClassifierConfig carries the comma-separated keyword lists consumed
// at construction. Empty strings yield empty sets.
type ClassifierConfig struct {
	ReceiptKeywords string
	JunkKeywords    string
	CriticalSenders string
}

// Classifier applies deterministic scoring rules to normalized emails.
// Keyword sets are parsed once at construction and never mutated.
type Classifier struct {
	receiptKeywords map[string]bool
	junkKeywords    map[string]bool
	criticalSenders map[string]bool
}

// NewClassifier creates a new Classifier from the given keyword configuration
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{
		receiptKeywords: ParseKeywords(cfg.ReceiptKeywords),
		junkKeywords:    ParseKeywords(cfg.JunkKeywords),
		criticalSenders: ParseKeywords(cfg.CriticalSenders),
	}
}

// ParseKeywords parses a comma-separated keyword list into a lower-cased set
func ParseKeywords(list string) map[string]bool {
	keywords := make(map[string]bool)
	if list == "" {
		return keywords
	}
	for _, kw := range strings.Split(list, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords[kw] = true
		}
	}
	return keywords
}

// JunkScore is the junk score breakdown for one message
type JunkScore struct {
	Total            float64
	KeywordScore     float64
	PromotionalScore float64
	UnsubscribeScore float64
	EmphasisScore    float64
	SenderScore      float64
}

// ReceiptScore is the receipt score breakdown for one message
type ReceiptScore struct {
	Total        float64
	KeywordScore float64
	PatternScore float64
	MoneyScore   float64
	OrderScore   float64
}

// Classify sets the classification flags, derived metadata and confidence
// score on a normalized email. It mutates the record in place and returns it
// for convenience. Missing headers or content degrade to empty values;
// classification never fails.
func (c *Classifier) Classify(email *ProcessedEmail, headers map[string]string) *ProcessedEmail {
	content := strings.ToLower(email.Subject + " " + email.BodyText)
	senderLower := strings.ToLower(email.Sender)

	var notes []string

	// Junk
	junkScore := c.CalculateJunkScore(email, content)
	if junkScore.Total > JunkThreshold {
		email.IsJunk = true
		notes = append(notes, fmt.Sprintf("junk_score: %.2f", junkScore.Total))
	}

	// Promotional, independent of the junk threshold
	if promotionalPattern.MatchString(content) || email.HasLabel("promotion") {
		email.IsPromotional = true
		notes = append(notes, "promotional_pattern")
	}

	// Receipt
	receiptScore := c.CalculateReceiptScore(content)
	if receiptScore.Total > ReceiptThreshold {
		email.IsReceipt = true
		email.Merchant = extractMerchantName(email)
		notes = append(notes, fmt.Sprintf("receipt_score: %.2f", receiptScore.Total))
	}

	// Mailing list
	if listName := detectMailingList(headers, content); listName != "" {
		email.IsMailingList = true
		email.ListName = listName
		notes = append(notes, fmt.Sprintf("mailing_list: %s", listName))
	}

	// Critical
	if c.isCriticalSender(senderLower) || hasCriticalKeywords(content) {
		email.IsCritical = true
		notes = append(notes, "critical_sender_or_keywords")
	}

	// Automated
	if isAutomatedMessage(headers, content) {
		email.IsAutomated = true
		notes = append(notes, "automated_message")
	}

	// Unsubscribe link, HTML body preferred
	source := email.BodyHTML
	if source == "" {
		source = email.BodyText
	}
	email.UnsubscribeLink = ExtractUnsubscribeLink(source)

	email.ConfidenceScore = minFloat(1.0, float64(len(notes))*0.2)
	email.ProcessingNotes = notes

	return email
}

// CalculateJunkScore calculates the junk score breakdown for a message.
// Each signal is capped before summing and the total is clamped to [0, 1].
func (c *Classifier) CalculateJunkScore(email *ProcessedEmail, content string) JunkScore {
	score := JunkScore{}

	// Distinct junk keyword hits, 0.1 each up to 0.5
	matches := countKeywordHits(content, c.junkKeywords)
	score.KeywordScore = minFloat(0.5, float64(matches)*0.1)

	if promotionalPattern.MatchString(content) {
		score.PromotionalScore = 0.3
	}

	if unsubscribePattern.MatchString(content) {
		score.UnsubscribeScore = 0.2
	}

	if strings.Count(content, "!") > 3 {
		score.EmphasisScore = 0.1
	}

	domain := senderDomain(email.Sender)
	for _, indicator := range junkSenderIndicators {
		if strings.Contains(domain, indicator) {
			score.SenderScore = 0.2
			break
		}
	}

	score.Total = minFloat(1.0, score.KeywordScore+score.PromotionalScore+
		score.UnsubscribeScore+score.EmphasisScore+score.SenderScore)
	return score
}

// CalculateReceiptScore calculates the receipt score breakdown for a message
func (c *Classifier) CalculateReceiptScore(content string) ReceiptScore {
	score := ReceiptScore{}

	// Receipt keyword hits, 0.2 each up to 0.6
	matches := countKeywordHits(content, c.receiptKeywords)
	score.KeywordScore = minFloat(0.6, float64(matches)*0.2)

	if receiptPattern.MatchString(content) {
		score.PatternScore = 0.3
	}

	if moneyPattern.MatchString(content) {
		score.MoneyScore = 0.2
	}

	if orderNumberPattern.MatchString(content) {
		score.OrderScore = 0.2
	}

	score.Total = minFloat(1.0, score.KeywordScore+score.PatternScore+
		score.MoneyScore+score.OrderScore)
	return score
}

// detectMailingList checks the standard list headers in priority order,
// then falls back to a newsletter content pattern. Returns the list name,
// or an empty string when the message carries no list signal.
func detectMailingList(headers map[string]string, content string) string {
	for _, name := range listHeaderNames {
		value, ok := headers[name]
		if !ok {
			continue
		}
		if m := angleAddrPattern.FindStringSubmatch(value); m != nil {
			return m[1]
		}
		if fields := strings.Fields(value); len(fields) > 0 {
			return fields[0]
		}
		return value
	}

	if newsletterPattern.MatchString(content) {
		return "newsletter"
	}
	return ""
}

// isCriticalSender checks the sender address against the configured
// critical-sender substrings
func (c *Classifier) isCriticalSender(sender string) bool {
	for kw := range c.criticalSenders {
		if strings.Contains(sender, kw) {
			return true
		}
	}
	return false
}

// hasCriticalKeywords checks for urgency, security and legal patterns
func hasCriticalKeywords(content string) bool {
	for _, pattern := range criticalPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}

// isAutomatedMessage detects automated messages from headers or content
func isAutomatedMessage(headers map[string]string, content string) bool {
	for _, name := range automatedHeaderNames {
		if _, ok := headers[name]; ok {
			return true
		}
	}
	for _, pattern := range automatedPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}

// extractMerchantName derives the merchant for a receipt: the sender display
// name when present, else the first segment of the sender domain, capitalized
func extractMerchantName(email *ProcessedEmail) string {
	if email.SenderName != "" {
		return email.SenderName
	}

	parts := strings.Split(email.Sender, "@")
	if len(parts) != 2 {
		return ""
	}
	segment := strings.Split(parts[1], ".")[0]
	return capitalize(segment)
}

// ExtractUnsubscribeLink finds the first unsubscribe URL in the content,
// preferring an HTML anchor href over a bare URL
func ExtractUnsubscribeLink(content string) string {
	if content == "" {
		return ""
	}
	if m := unsubscribeAnchorPattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return unsubscribeURLPattern.FindString(content)
}

// countKeywordHits counts distinct keywords contained in the text
func countKeywordHits(text string, keywords map[string]bool) int {
	count := 0
	for kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

// senderDomain returns the lower-cased part after the last @
func senderDomain(sender string) string {
	parts := strings.Split(sender, "@")
	return strings.ToLower(parts[len(parts)-1])
}

// capitalize upper-cases the first byte of an ASCII word
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// minFloat returns the minimum of two float64 values
func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

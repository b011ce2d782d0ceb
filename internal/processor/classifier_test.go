package processor

import (
	"strings"
	"testing"
	"time"
)

func newTestClassifier() *Classifier {
	return NewClassifier(ClassifierConfig{
		ReceiptKeywords: "receipt,invoice,order,purchase,payment",
		JunkKeywords:    "unsubscribe,promotion,deal,offer,sale",
		CriticalSenders: "bank,insurance,government,tax",
	})
}

func testEmail(subject, body, sender string) *ProcessedEmail {
	return &ProcessedEmail{
		MessageID: "test",
		Subject:   subject,
		BodyText:  body,
		Sender:    sender,
		Date:      time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestClassifyPromotionalBlast(t *testing.T) {
	c := newTestClassifier()
	email := testEmail(
		"50% OFF SALE!!!! Limited time offer",
		"Click here to unsubscribe from future deals",
		"promo@marketing.example.com",
	)

	c.Classify(email, map[string]string{})

	if !email.IsJunk {
		t.Error("expected promotional blast to be junk")
	}
	if !email.IsPromotional {
		t.Error("expected promotional flag")
	}
	if email.IsReceipt {
		t.Error("did not expect receipt flag")
	}
	if email.IsCritical {
		t.Error("did not expect critical flag")
	}

	if len(email.ProcessingNotes) != 2 {
		t.Fatalf("expected 2 notes, got %v", email.ProcessingNotes)
	}
	if !strings.HasPrefix(email.ProcessingNotes[0], "junk_score: ") {
		t.Errorf("expected junk note first, got %q", email.ProcessingNotes[0])
	}
	if email.ProcessingNotes[1] != "promotional_pattern" {
		t.Errorf("expected promotional note second, got %q", email.ProcessingNotes[1])
	}
	if email.ConfidenceScore != 0.4 {
		t.Errorf("expected confidence 0.4, got %.2f", email.ConfidenceScore)
	}
}

func TestClassifyOrderConfirmation(t *testing.T) {
	c := newTestClassifier()
	email := testEmail(
		"Your order #48213 has been confirmed",
		"Total: $29.99. Thank you for your purchase.",
		"orders@shop.example.com",
	)

	c.Classify(email, map[string]string{})

	if !email.IsReceipt {
		t.Fatal("expected receipt flag")
	}
	if email.IsJunk {
		t.Error("did not expect junk flag")
	}
	if email.Merchant != "Shop" {
		t.Errorf("expected merchant Shop, got %q", email.Merchant)
	}
}

func TestMerchantPrefersSenderName(t *testing.T) {
	c := newTestClassifier()
	email := testEmail(
		"Payment receipt for invoice #991",
		"Amount due: $10.00, payment received.",
		"billing@acme.example.com",
	)
	email.SenderName = "Acme Billing"

	c.Classify(email, map[string]string{})

	if !email.IsReceipt {
		t.Fatal("expected receipt flag")
	}
	if email.Merchant != "Acme Billing" {
		t.Errorf("expected merchant from display name, got %q", email.Merchant)
	}
}

func TestJunkScoreBreakdown(t *testing.T) {
	c := newTestClassifier()
	email := testEmail("", "", "promo@marketing.example.com")
	content := "50% off sale!!!! limited time offer click here to unsubscribe from future deals"

	score := c.CalculateJunkScore(email, content)

	// sale, offer, deal, unsubscribe hit: 4 * 0.1
	if score.KeywordScore != 0.4 {
		t.Errorf("keyword score = %.2f, want 0.40", score.KeywordScore)
	}
	if score.PromotionalScore != 0.3 {
		t.Errorf("promotional score = %.2f, want 0.30", score.PromotionalScore)
	}
	if score.UnsubscribeScore != 0.2 {
		t.Errorf("unsubscribe score = %.2f, want 0.20", score.UnsubscribeScore)
	}
	if score.EmphasisScore != 0.1 {
		t.Errorf("emphasis score = %.2f, want 0.10", score.EmphasisScore)
	}
	if score.SenderScore != 0.2 {
		t.Errorf("sender score = %.2f, want 0.20", score.SenderScore)
	}
	if score.Total != 1.0 {
		t.Errorf("total clamps to 1.0, got %.2f", score.Total)
	}
}

func TestReceiptScoreBreakdown(t *testing.T) {
	c := newTestClassifier()
	content := "your order #48213 has been confirmed total: $29.99. thank you for your purchase."

	score := c.CalculateReceiptScore(content)

	// order, purchase hit: 2 * 0.2
	if score.KeywordScore != 0.4 {
		t.Errorf("keyword score = %.2f, want 0.40", score.KeywordScore)
	}
	if score.PatternScore != 0.3 {
		t.Errorf("pattern score = %.2f, want 0.30", score.PatternScore)
	}
	if score.MoneyScore != 0.2 {
		t.Errorf("money score = %.2f, want 0.20", score.MoneyScore)
	}
	if score.OrderScore != 0.2 {
		t.Errorf("order score = %.2f, want 0.20", score.OrderScore)
	}
	if score.Total != 1.0 {
		t.Errorf("total clamps to 1.0, got %.2f", score.Total)
	}
}

func TestMailingListHeaderPriority(t *testing.T) {
	headers := map[string]string{
		"List-Id":          "Weekly News <news.lists.example.com>",
		"List-Unsubscribe": "<https://lists.example.com/unsub>",
	}

	name := detectMailingList(headers, "")
	if name != "news.lists.example.com" {
		t.Errorf("expected List-Id to win, got %q", name)
	}

	// Without List-Id the next header in order is used
	delete(headers, "List-Id")
	name = detectMailingList(headers, "")
	if name != "https://lists.example.com/unsub" {
		t.Errorf("expected List-Unsubscribe value, got %q", name)
	}

	// No headers at all falls back to the content pattern
	name = detectMailingList(map[string]string{}, "our monthly newsletter is here")
	if name != "newsletter" {
		t.Errorf("expected newsletter fallback, got %q", name)
	}

	if detectMailingList(map[string]string{}, "plain personal mail") != "" {
		t.Error("expected no list name for plain mail")
	}
}

func TestClassifyMailingList(t *testing.T) {
	c := newTestClassifier()
	email := testEmail("This week in Go", "articles and links", "digest@lists.example.com")
	headers := map[string]string{"List-Id": "<golang-weekly.lists.example.com>"}

	c.Classify(email, headers)

	if !email.IsMailingList {
		t.Fatal("expected mailing list flag")
	}
	if email.ListName != "golang-weekly.lists.example.com" {
		t.Errorf("unexpected list name %q", email.ListName)
	}
}

func TestClassifyPromotionLabel(t *testing.T) {
	c := newTestClassifier()
	email := testEmail("Catalog update", "new items this month", "shop@store.example.com")
	email.Labels = []string{"promotion"}

	c.Classify(email, map[string]string{})

	if !email.IsPromotional {
		t.Error("expected promotional flag from label")
	}
}

func TestClassifyCriticalSender(t *testing.T) {
	c := newTestClassifier()
	email := testEmail("Statement available", "your monthly statement is ready", "alerts@mybank.com")

	c.Classify(email, map[string]string{})

	if !email.IsCritical {
		t.Error("expected critical flag for bank sender")
	}
}

func TestClassifyCriticalKeywords(t *testing.T) {
	c := newTestClassifier()
	email := testEmail("Security alert on your account", "we noticed a new sign-in", "help@somewhere.example.com")

	c.Classify(email, map[string]string{})

	if !email.IsCritical {
		t.Error("expected critical flag for security alert content")
	}
}

func TestClassifyAutomated(t *testing.T) {
	c := newTestClassifier()

	byHeader := testEmail("Out of office", "I will reply next week", "colleague@corp.example.com")
	c.Classify(byHeader, map[string]string{"Auto-Submitted": "auto-replied"})
	if !byHeader.IsAutomated {
		t.Error("expected automated flag from header")
	}

	byContent := testEmail("Welcome", "this is an automated message, do not reply", "system@corp.example.com")
	c.Classify(byContent, map[string]string{})
	if !byContent.IsAutomated {
		t.Error("expected automated flag from content")
	}
}

func TestExtractUnsubscribeLink(t *testing.T) {
	html := `<html><a href="https://example.com/unsubscribe?id=1">Unsubscribe</a></html>`
	if got := ExtractUnsubscribeLink(html); got != "https://example.com/unsubscribe?id=1" {
		t.Errorf("anchor link = %q", got)
	}

	text := "to stop these emails visit https://example.com/unsubscribe/abc today"
	if got := ExtractUnsubscribeLink(text); got != "https://example.com/unsubscribe/abc" {
		t.Errorf("bare link = %q", got)
	}

	if ExtractUnsubscribeLink("no links here") != "" {
		t.Error("expected empty link")
	}
}

func TestClassifyPrefersHTMLUnsubscribeLink(t *testing.T) {
	c := newTestClassifier()
	email := testEmail("News", "visit https://example.com/unsubscribe/text", "news@lists.example.com")
	email.BodyHTML = `<a href="https://example.com/unsubscribe/html">Unsubscribe</a>`

	c.Classify(email, map[string]string{})

	if email.UnsubscribeLink != "https://example.com/unsubscribe/html" {
		t.Errorf("expected html link preferred, got %q", email.UnsubscribeLink)
	}
}

func TestParseKeywords(t *testing.T) {
	keywords := ParseKeywords(" Receipt, INVOICE ,, order ")
	want := []string{"receipt", "invoice", "order"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %d keywords, got %d", len(want), len(keywords))
	}
	for _, kw := range want {
		if !keywords[kw] {
			t.Errorf("missing keyword %q", kw)
		}
	}
	if len(ParseKeywords("")) != 0 {
		t.Error("empty list should yield empty set")
	}
}

func TestConfidenceTracksNoteCount(t *testing.T) {
	c := newTestClassifier()

	neutral := testEmail("lunch tomorrow?", "see you at noon", "friend@example.com")
	c.Classify(neutral, map[string]string{})
	if len(neutral.ProcessingNotes) != 0 || neutral.ConfidenceScore != 0 {
		t.Errorf("neutral mail: notes=%v confidence=%.2f", neutral.ProcessingNotes, neutral.ConfidenceScore)
	}

	busy := testEmail(
		"URGENT: 50% off sale!!!! order #123 confirmation receipt",
		"payment of $10.00 received. unsubscribe from this newsletter. this is an automated message do not reply. special offer deal purchase invoice",
		"noreply@promo.example.com",
	)
	c.Classify(busy, map[string]string{"List-Id": "<deals.example.com>"})

	if len(busy.ProcessingNotes) != 6 {
		t.Fatalf("expected 6 notes, got %v", busy.ProcessingNotes)
	}
	if busy.ConfidenceScore != 1.0 {
		t.Errorf("confidence caps at 1.0, got %.2f", busy.ConfidenceScore)
	}
}

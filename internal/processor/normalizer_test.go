package processor

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func header(name, value string) *gmail.MessagePartHeader {
	return &gmail.MessagePartHeader{Name: name, Value: value}
}

func TestNormalizeRejectsInvalidMessage(t *testing.T) {
	n := NewNormalizer()

	if _, err := n.Normalize(nil); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage for nil message, got %v", err)
	}
	if _, err := n.Normalize(&gmail.Message{}); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage for missing id, got %v", err)
	}
}

func TestNormalizeMissingDateUsesFallbackClock(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := NewNormalizer()
	n.Now = func() time.Time { return fixed }

	msg := &gmail.Message{
		Id: "m1",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				header("From", "bob@example.com"),
				header("Subject", "hello"),
			},
		},
	}

	email, err := n.Normalize(msg)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !email.Date.Equal(fixed) {
		t.Errorf("expected fallback date %v, got %v", fixed, email.Date)
	}
	if email.Date.IsZero() {
		t.Error("date must never be zero")
	}
}

func TestParseFromHeader(t *testing.T) {
	tests := []struct {
		from     string
		wantAddr string
		wantName string
	}{
		{`"Amazon" <no-reply@amazon.com>`, "no-reply@amazon.com", "Amazon"},
		{`Alice Smith <alice@example.com>`, "alice@example.com", "Alice Smith"},
		{`bob@example.com`, "bob@example.com", ""},
		{``, "", ""},
	}

	for _, tt := range tests {
		addr, name := parseFromHeader(tt.from)
		if addr != tt.wantAddr || name != tt.wantName {
			t.Errorf("parseFromHeader(%q) = (%q, %q), want (%q, %q)",
				tt.from, addr, name, tt.wantAddr, tt.wantName)
		}
	}
}

func TestExtractRecipientsDropsInvalidAddresses(t *testing.T) {
	headers := map[string]string{
		"To": "Alice <alice@example.com>, not-an-address, carol@example.com",
		"Cc": "Dave <dave@corp.example.org>",
	}

	recipients := extractRecipients(headers)
	want := []string{"alice@example.com", "carol@example.com", "dave@corp.example.org"}
	if len(recipients) != len(want) {
		t.Fatalf("expected %d recipients, got %d: %v", len(want), len(recipients), recipients)
	}
	for i, addr := range want {
		if recipients[i] != addr {
			t.Errorf("recipient[%d] = %q, want %q", i, recipients[i], addr)
		}
	}
}

func TestParseDateStripsTimezoneComment(t *testing.T) {
	n := NewNormalizer()
	n.Now = func() time.Time { return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC) }

	parsed := n.parseDate("Tue, 03 Mar 2020 10:00:00 +0000 (UTC)")
	if parsed.Year() != 2020 || parsed.Month() != time.March {
		t.Errorf("expected March 2020, got %v", parsed)
	}

	// Garbage falls back to the clock, never zero
	fallback := n.parseDate("not a date at all")
	if fallback.Year() != 2000 {
		t.Errorf("expected fallback year 2000, got %v", fallback)
	}
}

func TestNormalizeWalksNestedMultipart(t *testing.T) {
	n := NewNormalizer()
	msg := &gmail.Message{
		Id:       "m2",
		ThreadId: "t2",
		LabelIds: []string{"INBOX"},
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				header("From", "Shop <orders@shop.example.com>"),
				header("Subject", "Your order"),
				header("Date", "Mon, 02 Jan 2023 15:04:05 -0700"),
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{
							MimeType: "text/plain",
							Body:     &gmail.MessagePartBody{Data: b64("Thanks for your order.")},
						},
						{
							MimeType: "text/html",
							Body:     &gmail.MessagePartBody{Data: b64("<p>Thanks</p>")},
						},
					},
				},
				{
					MimeType: "application/pdf",
					Filename: "invoice.pdf",
					Body:     &gmail.MessagePartBody{Size: 1024, AttachmentId: "att-1"},
				},
			},
		},
	}

	email, err := n.Normalize(msg)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if email.BodyText != "Thanks for your order." {
		t.Errorf("unexpected body text: %q", email.BodyText)
	}
	if email.BodyHTML != "<p>Thanks</p>" {
		t.Errorf("unexpected body html: %q", email.BodyHTML)
	}
	if email.Sender != "orders@shop.example.com" || email.SenderName != "Shop" {
		t.Errorf("unexpected sender: %q / %q", email.Sender, email.SenderName)
	}
	if len(email.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(email.Attachments))
	}
	att := email.Attachments[0]
	if att.Filename != "invoice.pdf" || att.Size != 1024 || att.AttachmentID != "att-1" {
		t.Errorf("unexpected attachment: %+v", att)
	}
}

func TestDecodeBodyData(t *testing.T) {
	// Unpadded URL-safe base64 must decode via the raw fallback
	raw := base64.RawURLEncoding.EncodeToString([]byte("hello"))
	decoded, err := decodeBodyData(raw)
	if err != nil || decoded != "hello" {
		t.Errorf("raw decode = (%q, %v), want (hello, nil)", decoded, err)
	}

	if _, err := decodeBodyData("!!!not base64!!!"); !errors.Is(err, ErrBodyDecodeFailed) {
		t.Errorf("expected ErrBodyDecodeFailed, got %v", err)
	}
}

func TestNormalizeSurfacesBodyDecodeFailure(t *testing.T) {
	n := NewNormalizer()
	msg := &gmail.Message{
		Id: "m3",
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: "!!!not base64!!!"},
		},
	}

	if _, err := n.Normalize(msg); !errors.Is(err, ErrBodyDecodeFailed) {
		t.Errorf("expected ErrBodyDecodeFailed, got %v", err)
	}
}

func TestValidEmailAddress(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@sub.domain.example.com"}
	invalid := []string{"", "plainstring", "@nodomain.com", "user@", "user@nodot"}

	for _, addr := range valid {
		if !ValidEmailAddress(addr) {
			t.Errorf("expected %q to be valid", addr)
		}
	}
	for _, addr := range invalid {
		if ValidEmailAddress(addr) {
			t.Errorf("expected %q to be invalid", addr)
		}
	}
}

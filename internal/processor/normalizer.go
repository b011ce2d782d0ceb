package processor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

var (
	// ErrInvalidMessage indicates the raw message is missing required fields
	ErrInvalidMessage = errors.New("invalid raw message")
	// ErrBodyDecodeFailed indicates a message part payload could not be decoded
	ErrBodyDecodeFailed = errors.New("body decode failed")
)

var (
	fromHeaderPattern = regexp.MustCompile(`^(.+?)\s*<(.+)>$`)
	angleAddrPattern  = regexp.MustCompile(`<(.+?)>`)
	emailAddrPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
)

// Date layouts observed in Gmail Date headers, tried in order
var dateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// Normalizer converts raw Gmail API messages into ProcessedEmail records.
// Classification flags are left at their defaults; Classifier sets them.
type Normalizer struct {
	// Now supplies the fallback timestamp for unparseable dates.
	// Injectable so tests can pin it.
	Now func() time.Time
}

// NewNormalizer creates a new Normalizer instance
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize converts a raw Gmail API message into a ProcessedEmail.
// A decode failure on a body part is surfaced so the batch driver can
// skip the message; all other malformed input degrades to defaults.
func (n *Normalizer) Normalize(msg *gmail.Message) (*ProcessedEmail, error) {
	if msg == nil || msg.Id == "" {
		return nil, fmt.Errorf("%w: missing message id", ErrInvalidMessage)
	}

	headers := ExtractHeaders(msg)
	sender, senderName := parseFromHeader(headers["From"])

	bodyText, bodyHTML, err := n.extractBody(msg.Payload)
	if err != nil {
		return nil, err
	}

	return &ProcessedEmail{
		MessageID:   msg.Id,
		ThreadID:    msg.ThreadId,
		Subject:     headers["Subject"],
		Sender:      sender,
		SenderName:  senderName,
		Recipients:  extractRecipients(headers),
		Date:        n.parseDate(headers["Date"]),
		BodyText:    bodyText,
		BodyHTML:    bodyHTML,
		Attachments: extractAttachments(msg.Payload),
		Labels:      msg.LabelIds,
	}, nil
}

// ExtractHeaders flattens the payload header list into a map.
// Last write wins for duplicate header names.
func ExtractHeaders(msg *gmail.Message) map[string]string {
	headers := make(map[string]string)
	if msg == nil || msg.Payload == nil {
		return headers
	}
	for _, h := range msg.Payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}

// parseFromHeader splits a From header into address and optional display name.
// "Name <addr>" yields (addr, Name) with surrounding quotes stripped; a bare
// value yields (value, "").
func parseFromHeader(from string) (string, string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	if m := fromHeaderPattern.FindStringSubmatch(from); m != nil {
		name := strings.Trim(m[1], ` "`)
		return strings.TrimSpace(m[2]), name
	}
	return from, ""
}

// extractRecipients collects validated addresses from To, Cc and Bcc headers
func extractRecipients(headers map[string]string) []string {
	var recipients []string
	for _, name := range []string{"To", "Cc", "Bcc"} {
		if value, ok := headers[name]; ok {
			recipients = append(recipients, parseEmailList(value)...)
		}
	}
	return recipients
}

// parseEmailList parses a comma-separated address list, extracting the
// bracketed address where present. Invalid addresses are dropped, never fatal.
func parseEmailList(list string) []string {
	var emails []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		addr := part
		if m := angleAddrPattern.FindStringSubmatch(part); m != nil {
			addr = m[1]
		}
		if ValidEmailAddress(addr) {
			emails = append(emails, addr)
		}
	}
	return emails
}

// ValidEmailAddress reports whether addr is a syntactically well-formed
// email address with a dotted domain
func ValidEmailAddress(addr string) bool {
	return emailAddrPattern.MatchString(addr)
}

// parseDate parses an email Date header. Any failure substitutes the
// current timestamp; the result is never zero.
func (n *Normalizer) parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return n.Now()
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	// Retry with a trailing "(TZ)" comment stripped
	if openParen := strings.LastIndex(value, " ("); openParen != -1 {
		if closeParen := strings.LastIndex(value, ")"); closeParen > openParen {
			stripped := strings.TrimSpace(value[:openParen] + value[closeParen+1:])
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, stripped); err == nil {
					return t
				}
			}
		}
	}

	return n.Now()
}

// extractBody walks the part tree one nesting level deep, concatenating
// every text/plain part and capturing the first text/html part
func (n *Normalizer) extractBody(payload *gmail.MessagePart) (string, string, error) {
	if payload == nil {
		return "", "", nil
	}

	var bodyText strings.Builder
	var bodyHTML string

	extract := func(part *gmail.MessagePart) error {
		if part == nil || part.Body == nil || part.Body.Data == "" {
			return nil
		}
		switch part.MimeType {
		case "text/plain":
			data, err := decodeBodyData(part.Body.Data)
			if err != nil {
				return err
			}
			bodyText.WriteString(data)
		case "text/html":
			if bodyHTML == "" {
				data, err := decodeBodyData(part.Body.Data)
				if err != nil {
					return err
				}
				bodyHTML = data
			}
		}
		return nil
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if len(part.Parts) > 0 { // nested multipart
				for _, subpart := range part.Parts {
					if err := extract(subpart); err != nil {
						return "", "", err
					}
				}
			} else if err := extract(part); err != nil {
				return "", "", err
			}
		}
	} else if err := extract(payload); err != nil {
		return "", "", err
	}

	return strings.TrimSpace(bodyText.String()), bodyHTML, nil
}

// decodeBodyData decodes URL-safe base64 part data, padded or not
func decodeBodyData(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBodyDecodeFailed, err)
		}
	}
	return string(decoded), nil
}

// extractAttachments collects attachment descriptors from any part
// carrying a filename, using the same one-level-deep walk as extractBody
func extractAttachments(payload *gmail.MessagePart) []Attachment {
	if payload == nil {
		return nil
	}

	var attachments []Attachment
	collect := func(part *gmail.MessagePart) {
		if part == nil || part.Filename == "" {
			return
		}
		att := Attachment{
			Filename: part.Filename,
			MimeType: part.MimeType,
		}
		if part.Body != nil {
			att.Size = part.Body.Size
			att.AttachmentID = part.Body.AttachmentId
		}
		attachments = append(attachments, att)
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if len(part.Parts) > 0 {
				for _, subpart := range part.Parts {
					collect(subpart)
				}
			} else {
				collect(part)
			}
		}
	} else {
		collect(payload)
	}

	return attachments
}

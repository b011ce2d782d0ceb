package processor

import (
	"time"
)

// Attachment describes one attachment carried by a message part
type Attachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachment_id,omitempty"`
}

// ProcessedEmail is the structured representation of one mail message.
// Normalize fills the envelope and content fields; Classify sets the
// classification flags and derived metadata exactly once afterwards.
type ProcessedEmail struct {
	MessageID  string       `json:"message_id"`
	ThreadID   string       `json:"thread_id"`
	Subject    string       `json:"subject"`
	Sender     string       `json:"sender"`
	SenderName string       `json:"sender_name,omitempty"`
	Recipients []string     `json:"recipients"`
	Date       time.Time    `json:"date"`
	BodyText   string       `json:"body_text"`
	BodyHTML   string       `json:"body_html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Labels     []string     `json:"labels,omitempty"`

	// Classification flags, independent and not mutually exclusive
	IsJunk        bool `json:"is_junk"`
	IsCritical    bool `json:"is_critical"`
	IsReceipt     bool `json:"is_receipt"`
	IsMailingList bool `json:"is_mailing_list"`
	IsPromotional bool `json:"is_promotional"`
	IsSocial      bool `json:"is_social"`
	IsAutomated   bool `json:"is_automated"`

	// Derived metadata
	Merchant        string   `json:"merchant,omitempty"`
	ListName        string   `json:"list_name,omitempty"`
	UnsubscribeLink string   `json:"unsubscribe_link,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
	ProcessingNotes []string `json:"processing_notes,omitempty"`
}

// HasLabel reports whether the message carried the given label id at fetch time
func (e *ProcessedEmail) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

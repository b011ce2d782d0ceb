package contacts

import (
	"time"
)

const (
	// MaxSubjectsInMemory caps the recent-subjects list held per contact
	MaxSubjectsInMemory = 50
	// MaxSubjectsPersisted caps the subjects written per contact, kept by frequency
	MaxSubjectsPersisted = 20
	// MaxSubjectLength truncates stored subject lines
	MaxSubjectLength = 100
)

// Contact aggregates statistics and classification for one email address
// across all observed messages. Keyed by lower-cased address.
type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`

	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	EmailCount    int       `json:"email_count"`
	SentCount     int       `json:"sent_count"`
	ReceivedCount int       `json:"received_count"`

	// Classification, recomputed by the population pass. IsSpam and
	// IsAutomated are also set monotonically from individual emails.
	IsFrequent     bool `json:"is_frequent"`
	IsImportant    bool `json:"is_important"`
	IsSpam         bool `json:"is_spam"`
	IsAutomated    bool `json:"is_automated"`
	IsSubscription bool `json:"is_subscription"`

	Domains          map[string]bool `json:"domains"`
	SubjectsSeen     []string        `json:"subjects_seen,omitempty"`
	LabelsAssociated map[string]bool `json:"labels_associated,omitempty"`

	ConfidenceScore float64  `json:"confidence_score"`
	Notes           []string `json:"notes,omitempty"`
}

// NewContact creates a contact first observed on the given date
func NewContact(email string, seen time.Time) *Contact {
	return &Contact{
		Email:            email,
		FirstSeen:        seen,
		LastSeen:         seen,
		Domains:          make(map[string]bool),
		LabelsAssociated: make(map[string]bool),
	}
}

// DomainList returns the contact's domains as a slice
func (c *Contact) DomainList() []string {
	domains := make([]string, 0, len(c.Domains))
	for d := range c.Domains {
		domains = append(domains, d)
	}
	return domains
}

// LabelList returns the contact's associated labels as a slice
func (c *Contact) LabelList() []string {
	labels := make([]string, 0, len(c.LabelsAssociated))
	for l := range c.LabelsAssociated {
		labels = append(labels, l)
	}
	return labels
}

// correspondenceDays returns the whole days between first and last sighting
func (c *Contact) correspondenceDays() int {
	if c.FirstSeen.IsZero() || c.LastSeen.IsZero() {
		return 0
	}
	return int(c.LastSeen.Sub(c.FirstSeen).Hours() / 24)
}

package models

import (
	"time"
)

// Contact is the persisted row for one email address, mirroring the
// in-memory contact aggregate. Domains and recent subjects live in the
// child tables below and are reassembled on load.
type Contact struct {
	Email           string    `gorm:"primaryKey;size:255" json:"email"`
	Name            string    `gorm:"size:255" json:"name"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `gorm:"index" json:"last_seen"`
	EmailCount      int       `gorm:"default:0" json:"email_count"`
	SentCount       int       `gorm:"default:0" json:"sent_count"`
	ReceivedCount   int       `gorm:"default:0" json:"received_count"`
	IsFrequent      bool      `gorm:"default:false" json:"is_frequent"`
	IsImportant     bool      `gorm:"default:false" json:"is_important"`
	IsSpam          bool      `gorm:"default:false" json:"is_spam"`
	IsAutomated     bool      `gorm:"default:false" json:"is_automated"`
	IsSubscription  bool      `gorm:"default:false" json:"is_subscription"`
	ConfidenceScore float64   `gorm:"default:0" json:"confidence_score"`
	Notes           string    `gorm:"type:text" json:"notes"` // "; " joined rule names
	Labels          string    `gorm:"type:text" json:"labels"` // "; " joined label ids
}

// ContactDomain is one domain variant seen for a contact
type ContactDomain struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ContactEmail string `gorm:"index;size:255;not null" json:"contact_email"`
	Domain       string `gorm:"size:255;not null" json:"domain"`
}

// ContactSubject is one recent subject line seen for a contact,
// capped at the top 20 by observed count when persisted
type ContactSubject struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ContactEmail string `gorm:"index;size:255;not null" json:"contact_email"`
	Subject      string `gorm:"size:500" json:"subject"`
	SeenCount    int    `gorm:"default:1" json:"seen_count"`
}

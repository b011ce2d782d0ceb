package contacts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickyarm/kit-gmail/internal/processor"
	"gorm.io/gorm"
)

// Classification thresholds for the population pass
const (
	// FrequentFloor is the minimum frequent-contact threshold
	FrequentFloor = 10.0
	// ImportanceThreshold marks a contact important
	ImportanceThreshold = 0.6
	// SpamThreshold marks a contact as spam
	SpamThreshold = 0.7
	// BlockSuggestionThreshold suggests blocking a contact
	BlockSuggestionThreshold = 0.8
	// WhitelistSuggestionThreshold suggests whitelisting a contact
	WhitelistSuggestionThreshold = 0.7
	// InactiveDays is the age in days past which a contact counts as inactive
	InactiveDays = 365
)

// Domain substrings treated as professional for importance scoring
var professionalDomains = []string{"gov", "edu", "org", "bank", "insurance", "legal", "medical"}

// Domain substrings treated as spam indicators
var spamDomains = []string{"noreply", "marketing", "promo", "newsletter", "deals"}

// Label ids whose presence raises the contact spam score
var promoLabels = []string{"PROMOTIONS", "SPAM", "JUNK"}

// Stats summarizes one aggregation batch
type Stats struct {
	EmailsProcessed  int `json:"emails_processed"`
	NewContacts      int `json:"new_contacts"`
	UpdatedContacts  int `json:"updated_contacts"`
	FrequentContacts int `json:"frequent_contacts"`
	SpamContacts     int `json:"spam_contacts"`
}

// Manager folds classified emails into the contact map and reclassifies
// the population after each batch. All aggregation is in-memory and
// single-writer; only persistence touches the database.
type Manager struct {
	db       *gorm.DB
	contacts map[string]*Contact

	// Now supplies the reference time for inactivity checks.
	// Injectable so tests can pin it.
	Now func() time.Time
}

// NewManager creates a new contact Manager backed by the given database
func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:       db,
		contacts: make(map[string]*Contact),
		Now:      time.Now,
	}
}

// AnalyzeEmails ingests a batch of classified emails, reclassifies the
// whole contact population and persists the result. Persistence errors
// are surfaced to the caller; aggregation itself cannot fail.
func (m *Manager) AnalyzeEmails(emails []*processor.ProcessedEmail) (*Stats, error) {
	stats := &Stats{}

	for _, email := range emails {
		stats.EmailsProcessed++

		if email.Sender != "" {
			m.tally(stats, m.updateContactFromEmail(email, true, email.Sender))
		}
		for _, recipient := range email.Recipients {
			m.tally(stats, m.updateContactFromEmail(email, false, recipient))
		}
	}

	m.Reclassify()

	for _, contact := range m.contacts {
		if contact.IsFrequent {
			stats.FrequentContacts++
		}
		if contact.IsSpam {
			stats.SpamContacts++
		}
	}

	if err := m.SaveContacts(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (m *Manager) tally(stats *Stats, created bool) {
	if created {
		stats.NewContacts++
	} else {
		stats.UpdatedContacts++
	}
}

// updateContactFromEmail applies one email to one contact and reports
// whether the contact was newly created
func (m *Manager) updateContactFromEmail(email *processor.ProcessedEmail, isSender bool, addr string) bool {
	key := strings.ToLower(strings.TrimSpace(addr))

	contact, ok := m.contacts[key]
	created := !ok
	if created {
		contact = NewContact(key, email.Date)
		m.contacts[key] = contact
	}

	if email.Date.After(contact.LastSeen) {
		contact.LastSeen = email.Date
	}
	if email.Date.Before(contact.FirstSeen) {
		contact.FirstSeen = email.Date
	}

	// Display name is write-once, taken from the first sender sighting
	if contact.Name == "" && isSender && email.SenderName != "" {
		contact.Name = email.SenderName
	}

	contact.EmailCount++
	// Directionality is relative to the mailbox owner: mail from the
	// contact was received, mail to the contact was sent.
	if isSender {
		contact.ReceivedCount++
	} else {
		contact.SentCount++
	}

	if at := strings.LastIndex(key, "@"); at != -1 {
		contact.Domains[key[at+1:]] = true
	}

	if len(contact.SubjectsSeen) < MaxSubjectsInMemory {
		contact.SubjectsSeen = append(contact.SubjectsSeen, truncate(email.Subject, MaxSubjectLength))
	}

	for _, label := range email.Labels {
		contact.LabelsAssociated[label] = true
	}

	// Monotonic flags, never cleared once set
	if email.IsJunk {
		contact.IsSpam = true
	}
	if email.IsAutomated {
		contact.IsAutomated = true
	}
	if email.IsMailingList {
		contact.IsSubscription = true
	}

	return created
}

// Reclassify is the population pass: thresholds depend on statistics over
// the whole contact set, so it runs once per batch after all updates.
// Reapplying it with no new emails ingested yields identical flags.
func (m *Manager) Reclassify() {
	if len(m.contacts) == 0 {
		return
	}

	total := 0
	for _, contact := range m.contacts {
		total += contact.EmailCount
	}
	avg := float64(total) / float64(len(m.contacts))
	frequentThreshold := maxFloat(FrequentFloor, avg*1.5)

	for _, contact := range m.contacts {
		var factors []string

		if float64(contact.EmailCount) >= frequentThreshold {
			contact.IsFrequent = true
			factors = append(factors, fmt.Sprintf("frequent_emails: %d", contact.EmailCount))
		}

		importance := CalculateImportanceScore(contact)
		if importance.Total > ImportanceThreshold {
			contact.IsImportant = true
			factors = append(factors, fmt.Sprintf("importance_score: %.2f", importance.Total))
		}

		spam := CalculateSpamScore(contact)
		if spam.Total > SpamThreshold {
			contact.IsSpam = true
			factors = append(factors, fmt.Sprintf("spam_score: %.2f", spam.Total))
		}

		contact.ConfidenceScore = minFloat(1.0, float64(len(factors))*0.3)
		contact.Notes = factors
	}
}

// ImportanceScore is the importance score breakdown for one contact
type ImportanceScore struct {
	Total              float64
	VolumeScore        float64
	BidirectionalScore float64
	DomainScore        float64
	TenureScore        float64
	HumanScore         float64
}

// CalculateImportanceScore scores how likely a contact is to matter to the
// mailbox owner. Each signal is independent; the total is clamped to [0, 1].
func CalculateImportanceScore(c *Contact) ImportanceScore {
	score := ImportanceScore{}

	if c.EmailCount > 20 {
		score.VolumeScore = 0.3
	}

	if c.SentCount > 0 && c.ReceivedCount > 0 {
		score.BidirectionalScore = 0.4
	}

	if anyDomainContains(c.Domains, professionalDomains) {
		score.DomainScore = 0.3
	}

	if c.correspondenceDays() > InactiveDays {
		score.TenureScore = 0.2
	}

	if !c.IsAutomated {
		score.HumanScore = 0.1
	}

	score.Total = minFloat(1.0, score.VolumeScore+score.BidirectionalScore+
		score.DomainScore+score.TenureScore+score.HumanScore)
	return score
}

// SpamScore is the spam score breakdown for one contact
type SpamScore struct {
	Total          float64
	OneWayScore    float64
	DomainScore    float64
	NameScore      float64
	AutomatedScore float64
	LabelScore     float64
}

// CalculateSpamScore scores how likely a contact is bulk or unwanted mail
func CalculateSpamScore(c *Contact) SpamScore {
	score := SpamScore{}

	// High volume with no mail ever sent back
	if c.EmailCount > 10 && c.SentCount == 0 {
		score.OneWayScore = 0.4
	}

	if anyDomainContains(c.Domains, spamDomains) {
		score.DomainScore = 0.3
	}

	name := strings.ToLower(c.Name)
	if name == "" || name == "noreply" || name == "no-reply" {
		score.NameScore = 0.2
	}

	if c.IsAutomated {
		score.AutomatedScore = 0.3
	}

	for _, label := range promoLabels {
		if c.LabelsAssociated[label] {
			score.LabelScore = 0.4
			break
		}
	}

	score.Total = minFloat(1.0, score.OneWayScore+score.DomainScore+
		score.NameScore+score.AutomatedScore+score.LabelScore)
	return score
}

// ContactStats summarizes the current contact population
type ContactStats struct {
	TotalContacts       int            `json:"total_contacts"`
	FrequentContacts    int            `json:"frequent_contacts"`
	ImportantContacts   int            `json:"important_contacts"`
	SpamContacts        int            `json:"spam_contacts"`
	AutomatedContacts   int            `json:"automated_contacts"`
	TotalEmails         int            `json:"total_emails"`
	AvgEmailsPerContact float64        `json:"avg_emails_per_contact"`
	TopDomains          map[string]int `json:"top_domains"`
}

// GetContactStats returns comprehensive statistics over the contact map
func (m *Manager) GetContactStats() ContactStats {
	stats := ContactStats{TopDomains: make(map[string]int)}
	stats.TotalContacts = len(m.contacts)
	if stats.TotalContacts == 0 {
		return stats
	}

	domainCounts := make(map[string]int)
	for _, contact := range m.contacts {
		if contact.IsFrequent {
			stats.FrequentContacts++
		}
		if contact.IsImportant {
			stats.ImportantContacts++
		}
		if contact.IsSpam {
			stats.SpamContacts++
		}
		if contact.IsAutomated {
			stats.AutomatedContacts++
		}
		stats.TotalEmails += contact.EmailCount
		for domain := range contact.Domains {
			domainCounts[domain]++
		}
	}
	stats.AvgEmailsPerContact = float64(stats.TotalEmails) / float64(stats.TotalContacts)
	stats.TopDomains = topDomains(domainCounts, 10)

	return stats
}

// FrequentContacts returns frequent contacts, most active first
func (m *Manager) FrequentContacts(limit int) []*Contact {
	var frequent []*Contact
	for _, contact := range m.contacts {
		if contact.IsFrequent {
			frequent = append(frequent, contact)
		}
	}
	sortByActivity(frequent)
	if limit > 0 && len(frequent) > limit {
		frequent = frequent[:limit]
	}
	return frequent
}

// SpamContacts returns contacts identified as spam
func (m *Manager) SpamContacts() []*Contact {
	var spam []*Contact
	for _, contact := range m.contacts {
		if contact.IsSpam {
			spam = append(spam, contact)
		}
	}
	sortByActivity(spam)
	return spam
}

// ImportantContacts returns contacts marked as important
func (m *Manager) ImportantContacts() []*Contact {
	var important []*Contact
	for _, contact := range m.contacts {
		if contact.IsImportant {
			important = append(important, contact)
		}
	}
	sortByActivity(important)
	return important
}

// FindContacts searches contacts by address or name substring,
// case-insensitive, most active first
func (m *Manager) FindContacts(query string) []*Contact {
	query = strings.ToLower(query)
	var matches []*Contact
	for _, contact := range m.contacts {
		if strings.Contains(strings.ToLower(contact.Email), query) ||
			(contact.Name != "" && strings.Contains(strings.ToLower(contact.Name), query)) {
			matches = append(matches, contact)
		}
	}
	sortByActivity(matches)
	return matches
}

// Count returns the number of contacts currently held
func (m *Manager) Count() int {
	return len(m.contacts)
}

// Get returns the contact for an address, or nil
func (m *Manager) Get(email string) *Contact {
	return m.contacts[strings.ToLower(email)]
}

// Suggestions groups contact-management action candidates
type Suggestions struct {
	ContactsToBlock     []string `json:"contacts_to_block"`
	ContactsToWhitelist []string `json:"contacts_to_whitelist"`
	PotentialDuplicates []string `json:"potential_duplicates"`
	InactiveContacts    []string `json:"inactive_contacts"`
}

// GetSuggestions derives contact-management suggestions from the
// current population
func (m *Manager) GetSuggestions() *Suggestions {
	suggestions := &Suggestions{}

	nameToEmails := make(map[string][]string)
	cutoff := m.Now().AddDate(0, 0, -InactiveDays)

	for _, contact := range m.sortedContacts() {
		if CalculateSpamScore(contact).Total > BlockSuggestionThreshold {
			suggestions.ContactsToBlock = append(suggestions.ContactsToBlock, contact.Email)
		}

		if !contact.IsImportant && CalculateImportanceScore(contact).Total > WhitelistSuggestionThreshold {
			suggestions.ContactsToWhitelist = append(suggestions.ContactsToWhitelist, contact.Email)
		}

		if contact.Name != "" {
			name := strings.ToLower(contact.Name)
			nameToEmails[name] = append(nameToEmails[name], contact.Email)
		}

		if !contact.LastSeen.IsZero() && contact.LastSeen.Before(cutoff) && !contact.IsImportant {
			suggestions.InactiveContacts = append(suggestions.InactiveContacts, contact.Email)
		}
	}

	var names []string
	for name, emails := range nameToEmails {
		if len(emails) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		suggestions.PotentialDuplicates = append(suggestions.PotentialDuplicates, nameToEmails[name]...)
	}

	return suggestions
}

// sortedContacts returns all contacts ordered by address for
// deterministic iteration
func (m *Manager) sortedContacts() []*Contact {
	all := make([]*Contact, 0, len(m.contacts))
	for _, contact := range m.contacts {
		all = append(all, contact)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return all
}

// sortByActivity orders contacts by email count descending,
// breaking ties by address
func sortByActivity(contacts []*Contact) {
	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].EmailCount != contacts[j].EmailCount {
			return contacts[i].EmailCount > contacts[j].EmailCount
		}
		return contacts[i].Email < contacts[j].Email
	})
}

// topDomains keeps the n most common domains
func topDomains(counts map[string]int, n int) map[string]int {
	type domainCount struct {
		domain string
		count  int
	}
	all := make([]domainCount, 0, len(counts))
	for domain, count := range counts {
		all = append(all, domainCount{domain, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].domain < all[j].domain
	})
	if len(all) > n {
		all = all[:n]
	}
	top := make(map[string]int, len(all))
	for _, dc := range all {
		top[dc.domain] = dc.count
	}
	return top
}

// anyDomainContains reports whether any domain contains any of the keywords
func anyDomainContains(domains map[string]bool, keywords []string) bool {
	for domain := range domains {
		for _, keyword := range keywords {
			if strings.Contains(domain, keyword) {
				return true
			}
		}
	}
	return false
}

// truncate shortens s to at most n bytes
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

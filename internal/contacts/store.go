package contacts

import (
	"sort"
	"strings"

	"github.com/rickyarm/kit-gmail/internal/database/models"
	"gorm.io/gorm"
)

// SaveContacts persists the whole contact map, replacing the previous
// snapshot. Domains and subjects go to their child tables; subjects keep
// the top MaxSubjectsPersisted by observed count.
func (m *Manager) SaveContacts() error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM contact_subjects").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM contact_domains").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM contacts").Error; err != nil {
			return err
		}

		for _, contact := range m.sortedContacts() {
			row := models.Contact{
				Email:           contact.Email,
				Name:            contact.Name,
				FirstSeen:       contact.FirstSeen,
				LastSeen:        contact.LastSeen,
				EmailCount:      contact.EmailCount,
				SentCount:       contact.SentCount,
				ReceivedCount:   contact.ReceivedCount,
				IsFrequent:      contact.IsFrequent,
				IsImportant:     contact.IsImportant,
				IsSpam:          contact.IsSpam,
				IsAutomated:     contact.IsAutomated,
				IsSubscription:  contact.IsSubscription,
				ConfidenceScore: contact.ConfidenceScore,
				Notes:           strings.Join(contact.Notes, "; "),
				Labels:          strings.Join(sortedKeys(contact.LabelsAssociated), "; "),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			for _, domain := range sortedKeys(contact.Domains) {
				if err := tx.Create(&models.ContactDomain{
					ContactEmail: contact.Email,
					Domain:       domain,
				}).Error; err != nil {
					return err
				}
			}

			for _, sc := range topSubjects(contact.SubjectsSeen, MaxSubjectsPersisted) {
				if err := tx.Create(&models.ContactSubject{
					ContactEmail: contact.Email,
					Subject:      sc.subject,
					SeenCount:    sc.count,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadContacts rebuilds the in-memory contact map from the persisted
// snapshot, replacing whatever is currently held
func (m *Manager) LoadContacts() error {
	var rows []models.Contact
	if err := m.db.Find(&rows).Error; err != nil {
		return err
	}

	contacts := make(map[string]*Contact, len(rows))
	for _, row := range rows {
		contact := &Contact{
			Email:            row.Email,
			Name:             row.Name,
			FirstSeen:        row.FirstSeen,
			LastSeen:         row.LastSeen,
			EmailCount:       row.EmailCount,
			SentCount:        row.SentCount,
			ReceivedCount:    row.ReceivedCount,
			IsFrequent:       row.IsFrequent,
			IsImportant:      row.IsImportant,
			IsSpam:           row.IsSpam,
			IsAutomated:      row.IsAutomated,
			IsSubscription:   row.IsSubscription,
			ConfidenceScore:  row.ConfidenceScore,
			Notes:            splitJoined(row.Notes),
			Domains:          make(map[string]bool),
			LabelsAssociated: make(map[string]bool),
		}
		for _, label := range splitJoined(row.Labels) {
			contact.LabelsAssociated[label] = true
		}

		var domains []models.ContactDomain
		if err := m.db.Where("contact_email = ?", row.Email).Find(&domains).Error; err != nil {
			return err
		}
		for _, d := range domains {
			contact.Domains[d.Domain] = true
		}

		var subjects []models.ContactSubject
		if err := m.db.Where("contact_email = ?", row.Email).Find(&subjects).Error; err != nil {
			return err
		}
		for _, s := range subjects {
			contact.SubjectsSeen = append(contact.SubjectsSeen, s.Subject)
		}

		contacts[contact.Email] = contact
	}

	m.contacts = contacts
	return nil
}

type subjectCount struct {
	subject string
	count   int
}

// topSubjects counts occurrences and keeps the n most frequent subjects
func topSubjects(subjects []string, n int) []subjectCount {
	counts := make(map[string]int)
	for _, s := range subjects {
		counts[s]++
	}

	all := make([]subjectCount, 0, len(counts))
	for s, c := range counts {
		all = append(all, subjectCount{s, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].subject < all[j].subject
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// sortedKeys returns the keys of a set in sorted order
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitJoined splits a "; " joined column back into its parts
func splitJoined(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, "; ")
}

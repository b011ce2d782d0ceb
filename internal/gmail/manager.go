package gmail

import (
	"fmt"
	"log"

	"github.com/rickyarm/kit-gmail/internal/processor"
	"google.golang.org/api/gmail/v1"
)

const userID = "me"

// Manager drives mailbox operations against the Gmail API. All decision
// logic lives in the processor; the manager only fetches messages and
// issues label, delete and archive commands keyed by message id.
type Manager struct {
	service   *gmail.Service
	processor *processor.EmailProcessor
	batchSize int

	labelIDs map[string]string // label name -> id cache
}

// NewManager creates a new Manager over an authenticated Gmail service
func NewManager(service *gmail.Service, proc *processor.EmailProcessor, batchSize int) *Manager {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Manager{
		service:   service,
		processor: proc,
		batchSize: batchSize,
		labelIDs:  make(map[string]string),
	}
}

// CleanupStats summarizes one cleanup run
type CleanupStats struct {
	Processed int `json:"processed"`
	Deleted   int `json:"deleted"`
	Archived  int `json:"archived"`
	Organized int `json:"organized"`
	Skipped   int `json:"skipped"`
}

// GetMessages lists message ids matching a query, paging until maxResults
func (m *Manager) GetMessages(query string, maxResults int64, labelIDs []string) ([]*gmail.Message, error) {
	var messages []*gmail.Message
	pageToken := ""

	for int64(len(messages)) < maxResults {
		call := m.service.Users.Messages.List(userID).Q(query).
			MaxResults(minInt64(100, maxResults-int64(len(messages))))
		if len(labelIDs) > 0 {
			call = call.LabelIds(labelIDs...)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		if len(res.Messages) == 0 {
			break
		}

		messages = append(messages, res.Messages...)
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.Printf("Retrieved %d messages", len(messages))
	return messages, nil
}

// GetMessageDetails fetches one message in full format
func (m *Manager) GetMessageDetails(messageID string) (*gmail.Message, error) {
	msg, err := m.service.Users.Messages.Get(userID, messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}
	return msg, nil
}

// BatchGetMessages fetches full details for many messages. A failed fetch
// is logged and skipped, never fatal to the batch.
func (m *Manager) BatchGetMessages(messageIDs []string) []*gmail.Message {
	messages := make([]*gmail.Message, 0, len(messageIDs))
	for i := 0; i < len(messageIDs); i += m.batchSize {
		end := i + m.batchSize
		if end > len(messageIDs) {
			end = len(messageIDs)
		}
		for _, id := range messageIDs[i:end] {
			msg, err := m.GetMessageDetails(id)
			if err != nil {
				log.Printf("Warning: failed to get message %s: %v", id, err)
				continue
			}
			messages = append(messages, msg)
		}
	}
	return messages
}

// FetchProcessedEmails lists, fetches and classifies messages matching a
// query. Messages that fail to normalize are logged and skipped.
func (m *Manager) FetchProcessedEmails(query string, maxResults int64) ([]*processor.ProcessedEmail, error) {
	stubs, err := m.GetMessages(query, maxResults, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stubs))
	for _, s := range stubs {
		ids = append(ids, s.Id)
	}

	var emails []*processor.ProcessedEmail
	for _, msg := range m.BatchGetMessages(ids) {
		email, err := m.processor.ProcessMessage(msg)
		if err != nil {
			log.Printf("Warning: failed to process message %s: %v", msg.Id, err)
			continue
		}
		emails = append(emails, email)
	}
	return emails, nil
}

// CleanupMailbox processes messages older than daysOld and deletes junk,
// archives non-critical mail and organizes the rest under labels
func (m *Manager) CleanupMailbox(daysOld int, deleteJunk, archiveOld bool) (*CleanupStats, error) {
	log.Printf("Starting mailbox cleanup (days_old=%d)", daysOld)
	stats := &CleanupStats{}

	query := fmt.Sprintf("older_than:%dd", daysOld)
	stubs, err := m.GetMessages(query, 1000, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stubs))
	for _, s := range stubs {
		ids = append(ids, s.Id)
	}

	for _, msg := range m.BatchGetMessages(ids) {
		stats.Processed++

		email, err := m.processor.ProcessMessage(msg)
		if err != nil {
			log.Printf("Warning: skipping message %s: %v", msg.Id, err)
			stats.Skipped++
			continue
		}

		if deleteJunk && email.IsJunk {
			if err := m.DeleteMessage(msg.Id); err != nil {
				log.Printf("Warning: failed to delete message %s: %v", msg.Id, err)
			} else {
				stats.Deleted++
			}
			continue
		}

		if archiveOld && !email.IsCritical {
			if err := m.ArchiveMessage(msg.Id); err != nil {
				log.Printf("Warning: failed to archive message %s: %v", msg.Id, err)
			} else {
				stats.Archived++
			}
		}

		if err := m.OrganizeMessage(msg.Id, email); err != nil {
			log.Printf("Warning: failed to organize message %s: %v", msg.Id, err)
		} else {
			stats.Organized++
		}
	}

	log.Printf("Mailbox cleanup completed: %+v", stats)
	return stats, nil
}

// OrganizeMessage applies labels derived from the classification flags
func (m *Manager) OrganizeMessage(messageID string, email *processor.ProcessedEmail) error {
	var labelsToAdd []string

	if email.IsReceipt {
		labelsToAdd = append(labelsToAdd, "Receipts")
		if email.Merchant != "" {
			labelsToAdd = append(labelsToAdd, "Receipts/"+email.Merchant)
		}
	}

	if email.IsMailingList {
		labelsToAdd = append(labelsToAdd, "Mailing Lists")
		if email.ListName != "" {
			labelsToAdd = append(labelsToAdd, "Lists/"+email.ListName)
		}
	}

	if email.IsCritical {
		labelsToAdd = append(labelsToAdd, "Important")
	}

	if len(labelsToAdd) == 0 {
		return nil
	}
	return m.ModifyMessageLabels(messageID, labelsToAdd, nil)
}

// ModifyMessageLabels adds and removes labels on a message by name
func (m *Manager) ModifyMessageLabels(messageID string, addLabels, removeLabels []string) error {
	if len(addLabels) == 0 && len(removeLabels) == 0 {
		return nil
	}

	var addIDs, removeIDs []string
	for _, name := range addLabels {
		id, err := m.getOrCreateLabel(name)
		if err != nil {
			return err
		}
		addIDs = append(addIDs, id)
	}
	for _, name := range removeLabels {
		if id, ok := m.labelIDs[name]; ok {
			removeIDs = append(removeIDs, id)
		}
	}

	_, err := m.service.Users.Messages.Modify(userID, messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addIDs,
		RemoveLabelIds: removeIDs,
	}).Do()
	if err != nil {
		return fmt.Errorf("modify labels for %s: %w", messageID, err)
	}
	return nil
}

// getOrCreateLabel resolves a label name to its id, creating the label
// on first use
func (m *Manager) getOrCreateLabel(name string) (string, error) {
	if id, ok := m.labelIDs[name]; ok {
		return id, nil
	}

	labels, err := m.service.Users.Labels.List(userID).Do()
	if err != nil {
		return "", fmt.Errorf("list labels: %w", err)
	}
	for _, label := range labels.Labels {
		m.labelIDs[label.Name] = label.Id
	}
	if id, ok := m.labelIDs[name]; ok {
		return id, nil
	}

	created, err := m.service.Users.Labels.Create(userID, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Do()
	if err != nil {
		return "", fmt.Errorf("create label %s: %w", name, err)
	}

	log.Printf("Created new label: %s", name)
	m.labelIDs[name] = created.Id
	return created.Id, nil
}

// DeleteMessage permanently deletes a message
func (m *Manager) DeleteMessage(messageID string) error {
	if err := m.service.Users.Messages.Delete(userID, messageID).Do(); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, err)
	}
	return nil
}

// ArchiveMessage removes a message from the inbox
func (m *Manager) ArchiveMessage(messageID string) error {
	_, err := m.service.Users.Messages.Modify(userID, messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"INBOX"},
	}).Do()
	if err != nil {
		return fmt.Errorf("archive message %s: %w", messageID, err)
	}
	return nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

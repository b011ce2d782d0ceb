package processor

import (
	"google.golang.org/api/gmail/v1"
)

// EmailProcessor normalizes and classifies raw Gmail API messages.
// Both stages are pure transformations over already-fetched data; the
// processor performs no I/O and holds no locks.
type EmailProcessor struct {
	normalizer *Normalizer
	classifier *Classifier
}

// NewEmailProcessor creates a new EmailProcessor with the given
// classifier configuration
func NewEmailProcessor(cfg ClassifierConfig) *EmailProcessor {
	return &EmailProcessor{
		normalizer: NewNormalizer(),
		classifier: NewClassifier(cfg),
	}
}

// ProcessMessage converts a raw message into a fully classified
// ProcessedEmail. A decode failure is returned to the caller, which is
// expected to skip the message and continue with the rest of the batch.
func (p *EmailProcessor) ProcessMessage(msg *gmail.Message) (*ProcessedEmail, error) {
	email, err := p.normalizer.Normalize(msg)
	if err != nil {
		return nil, err
	}

	headers := ExtractHeaders(msg)
	return p.classifier.Classify(email, headers), nil
}

// Normalizer returns the underlying normalizer
func (p *EmailProcessor) Normalizer() *Normalizer {
	return p.normalizer
}

// Classifier returns the underlying classifier
func (p *EmailProcessor) Classifier() *Classifier {
	return p.classifier
}

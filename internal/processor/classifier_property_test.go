package processor

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any message content, classification scores stay inside [0, 1],
// repeated classification of the same input yields the same flags, and
// the confidence score tracks the number of recorded notes.

func propertyEmailGen() gopter.Gen {
	subjectGen := gen.SliceOfN(30, gen.AlphaChar()).Map(func(chars []rune) string {
		return string(chars)
	})
	bodyGen := gen.SliceOfN(120, gen.AlphaChar()).Map(func(chars []rune) string {
		return string(chars)
	})
	senderGen := gen.SliceOfN(10, gen.AlphaLowerChar()).Map(func(chars []rune) string {
		return string(chars) + "@example.com"
	})
	return gopter.CombineGens(subjectGen, bodyGen, senderGen).Map(func(values []interface{}) *ProcessedEmail {
		return &ProcessedEmail{
			MessageID: "prop",
			Subject:   values[0].(string),
			BodyText:  values[1].(string),
			Sender:    values[2].(string),
			Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	})
}

func TestProperty_ScoresBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	c := newTestClassifier()

	properties.Property("junk_score_bounded", prop.ForAll(
		func(email *ProcessedEmail) bool {
			content := email.Subject + " " + email.BodyText
			score := c.CalculateJunkScore(email, content)
			return score.Total >= 0 && score.Total <= 1
		},
		propertyEmailGen(),
	))

	properties.Property("receipt_score_bounded", prop.ForAll(
		func(email *ProcessedEmail) bool {
			score := c.CalculateReceiptScore(email.Subject + " " + email.BodyText)
			return score.Total >= 0 && score.Total <= 1
		},
		propertyEmailGen(),
	))

	properties.Property("confidence_bounded", prop.ForAll(
		func(email *ProcessedEmail) bool {
			c.Classify(email, map[string]string{})
			return email.ConfidenceScore >= 0 && email.ConfidenceScore <= 1
		},
		propertyEmailGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_ClassificationDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	c := newTestClassifier()

	properties.Property("same_input_same_flags", prop.ForAll(
		func(email *ProcessedEmail) bool {
			copy1 := *email
			copy2 := *email
			c.Classify(&copy1, map[string]string{})
			c.Classify(&copy2, map[string]string{})

			return copy1.IsJunk == copy2.IsJunk &&
				copy1.IsPromotional == copy2.IsPromotional &&
				copy1.IsReceipt == copy2.IsReceipt &&
				copy1.IsMailingList == copy2.IsMailingList &&
				copy1.IsCritical == copy2.IsCritical &&
				copy1.IsAutomated == copy2.IsAutomated &&
				copy1.ConfidenceScore == copy2.ConfidenceScore
		},
		propertyEmailGen(),
	))

	properties.Property("confidence_tracks_notes", prop.ForAll(
		func(email *ProcessedEmail) bool {
			c.Classify(email, map[string]string{})
			expected := float64(len(email.ProcessingNotes)) * 0.2
			if expected > 1.0 {
				expected = 1.0
			}
			return email.ConfidenceScore == expected
		},
		propertyEmailGen(),
	))

	properties.TestingRun(t)
}

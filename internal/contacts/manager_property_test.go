package contacts

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any contact population, classification scores stay inside [0, 1],
// the population pass is idempotent, and the confidence score tracks the
// number of recorded factors.

func propertyContactGen() gopter.Gen {
	emailGen := gen.SliceOfN(8, gen.AlphaLowerChar()).Map(func(chars []rune) string {
		return string(chars) + "@example.com"
	})
	countGen := gen.IntRange(0, 100)
	sentGen := gen.IntRange(0, 50)
	automatedGen := gen.Bool()

	return gopter.CombineGens(emailGen, countGen, sentGen, automatedGen).Map(func(values []interface{}) *Contact {
		email := values[0].(string)
		count := values[1].(int)
		sent := values[2].(int)
		if sent > count {
			sent = count
		}

		c := NewContact(email, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
		c.LastSeen = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c.EmailCount = count
		c.SentCount = sent
		c.ReceivedCount = count - sent
		c.IsAutomated = values[3].(bool)
		if at := strings.LastIndex(email, "@"); at != -1 {
			c.Domains[email[at+1:]] = true
		}
		return c
	})
}

func TestProperty_ContactScoresBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("importance_score_bounded", prop.ForAll(
		func(c *Contact) bool {
			score := CalculateImportanceScore(c)
			return score.Total >= 0 && score.Total <= 1
		},
		propertyContactGen(),
	))

	properties.Property("spam_score_bounded", prop.ForAll(
		func(c *Contact) bool {
			score := CalculateSpamScore(c)
			return score.Total >= 0 && score.Total <= 1
		},
		propertyContactGen(),
	))

	properties.Property("scores_deterministic", prop.ForAll(
		func(c *Contact) bool {
			return CalculateImportanceScore(c) == CalculateImportanceScore(c) &&
				CalculateSpamScore(c) == CalculateSpamScore(c)
		},
		propertyContactGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_ReclassifyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	populationGen := gen.SliceOfN(5, propertyContactGen())

	properties.Property("second_pass_changes_nothing", prop.ForAll(
		func(population []*Contact) bool {
			m := NewManager(nil)
			for _, c := range population {
				m.contacts[c.Email] = c
			}

			m.Reclassify()

			type snapshot struct {
				frequent, important, spam bool
				confidence                float64
				notes                     string
			}
			before := make(map[string]snapshot)
			for email, c := range m.contacts {
				before[email] = snapshot{c.IsFrequent, c.IsImportant, c.IsSpam, c.ConfidenceScore, strings.Join(c.Notes, "|")}
			}

			m.Reclassify()

			for email, c := range m.contacts {
				after := snapshot{c.IsFrequent, c.IsImportant, c.IsSpam, c.ConfidenceScore, strings.Join(c.Notes, "|")}
				if after != before[email] {
					return false
				}
			}
			return true
		},
		populationGen,
	))

	properties.Property("confidence_tracks_factors", prop.ForAll(
		func(population []*Contact) bool {
			m := NewManager(nil)
			for _, c := range population {
				m.contacts[c.Email] = c
			}

			m.Reclassify()

			for _, c := range m.contacts {
				expected := float64(len(c.Notes)) * 0.3
				if expected > 1.0 {
					expected = 1.0
				}
				if c.ConfidenceScore != expected {
					return false
				}
			}
			return true
		},
		populationGen,
	))

	properties.TestingRun(t)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Country is a flag card: immutable reference data shared by every game mode.
// Name and Code are unique across the catalog.
type Country struct {
	ID        uuid.UUID
	Code      string // ISO 3166-1 alpha-2, upper-case
	Name      string
	FlagEmoji string
	FlagImage string // image reference (path or URL), may be empty
	Aliases   []string
	CreatedAt time.Time
}

// AcceptedAnswers returns the normalized canonical name plus all normalized
// aliases. Matching against this set is case-insensitive exact matching.
func (c *Country) AcceptedAnswers() []string {
	answers := make([]string, 0, len(c.Aliases)+1)
	answers = append(answers, NormalizeAnswer(c.Name))
	for _, alias := range c.Aliases {
		answers = append(answers, NormalizeAnswer(alias))
	}
	return answers
}

package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RaceInfo is the race metadata shown to prediction agents
type RaceInfo struct {
	ID         uuid.UUID `json:"id"`
	VenueCode  string    `json:"venue_code,omitempty"`
	VenueName  string    `json:"venue_name" validate:"required"`
	RaceDate   string    `json:"race_date" validate:"required,datetime=2006-01-02"`
	RaceNumber int       `json:"race_number" validate:"min=1,max=12"`
	Title      string    `json:"title,omitempty"`
	Grade      string    `json:"grade,omitempty"`
}

// DisplayTitle returns the race title, falling back to "Race <n>"
func (r RaceInfo) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return fmt.Sprintf("Race %d", r.RaceNumber)
}

// RaceCard is a race together with its ordered entrant list
type RaceCard struct {
	Race     RaceInfo  `json:"race"`
	Entrants []Entrant `json:"entrants" validate:"dive"`
}

var entrantValidator = validator.New()

// ValidateEntrants checks the preconditions the prediction engine relies on:
// a non-empty list, valid per-entrant fields and unique positions.
func ValidateEntrants(entrants []Entrant) error {
	if len(entrants) == 0 {
		return ErrNoEntrants
	}

	seen := make(map[int]bool, len(entrants))
	for i := range entrants {
		if err := entrantValidator.Struct(&entrants[i]); err != nil {
			return fmt.Errorf("%w: entrant %d: %v", ErrInvalidEntrant, i, err)
		}
		if seen[entrants[i].Position] {
			return fmt.Errorf("%w: %d", ErrDuplicatePosition, entrants[i].Position)
		}
		seen[entrants[i].Position] = true
	}
	return nil
}

// ValidateRaceCard checks a race card before it is handed to the engine
func ValidateRaceCard(c *RaceCard) error {
	if c == nil {
		return ErrInvalidRace
	}
	return c.Validate()
}

// Validate checks race metadata and the entrant list
func (c *RaceCard) Validate() error {
	if err := entrantValidator.Struct(&c.Race); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRace, err)
	}
	return ValidateEntrants(c.Entrants)
}

package models

import "errors"

// Custom errors
var (
	ErrNoEntrants        = errors.New("race has no entrants")
	ErrDuplicatePosition = errors.New("duplicate entrant position")
	ErrInvalidEntrant    = errors.New("invalid entrant")
	ErrInvalidRace       = errors.New("invalid race metadata")
)

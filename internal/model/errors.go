package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrIdentityNotFound = errors.New("identity not found")
	ErrIdentityDeleted  = errors.New("identity is deleted")

	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNotFinished = errors.New("game is not finished")

	// Rating errors
	ErrNoRatedPlayers = errors.New("game has no players with resolved identities")
	ErrInvalidPage    = errors.New("page and limit must be positive")
)

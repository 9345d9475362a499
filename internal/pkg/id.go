package pkg

import "github.com/google/uuid"

// GenerateGameID returns a random game identifier.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateNewSessionID returns a random session identifier used as the player ID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

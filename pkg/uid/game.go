package uid

import "github.com/google/uuid"

// GenerateGameID returns a random (v4) identifier for a game session.
func GenerateGameID() string {
	return uuid.NewString()
}

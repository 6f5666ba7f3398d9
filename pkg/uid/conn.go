package uid

import "github.com/google/uuid"

// GenerateConnID returns a time-ordered (v7) identifier for a websocket
// connection, so connection ids in logs sort by when they were opened.
func GenerateConnID() string {
	return uuid.Must(uuid.NewV7()).String()
}

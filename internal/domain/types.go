package domain

// Cell is a grid value: 0 is empty, 1..PieceCount is a piece color.
type Cell int

const Empty Cell = 0

const (
	DefaultCols   = 5
	DefaultRows   = 5
	StartingLives = 3

	// points per line per block, before the multiplier
	PointsPerBlock = 10
	PointsPerLevel = 1000
)

// Coordinate addresses a single grid cell.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// to represent the session lifecycle
type GameStatus string

const (
	StatusNotStarted GameStatus = "not_started"
	StatusRunning    GameStatus = "running"
	StatusGameOver   GameStatus = "game_over"
)

// reason a session ended, persisted with the game record
const (
	ReasonTimeout   = "timeout"
	ReasonAbandoned = "abandoned"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrOutOfRange       Error = "coordinate out of range"
	ErrInvalidPlacement Error = "piece cannot be placed there"
	ErrInvalidPiece     Error = "unknown piece index"
	ErrInvalidRotation  Error = "rotation must be 1 or 3 quarter turns"
	ErrSupplyInvariant  Error = "piece supply must hold exactly two pieces"
	ErrSupplyStarted    Error = "piece supply already started"
	ErrNotRunning       Error = "game is not running"
	ErrAlreadyStarted   Error = "game already started"

	ErrInvalidName       Error = "name must be 1-32 characters without ':'"
	ErrInvalidScoreToken Error = "invalid or expired score token"
	ErrAlreadySubmitted  Error = "score already submitted for this game"
	ErrNotHighScore      Error = "score does not qualify for the high-score table"
)

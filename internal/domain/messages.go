package domain

// ClientMessage is a command sent by the player over the websocket.
type ClientMessage struct {
	Type  string `json:"type"` // start, place, rotate, swap, hint, state, shutdown
	Name  string `json:"name,omitempty"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Turns int    `json:"turns,omitempty"`

	Difficulty string `json:"difficulty,omitempty"` // hint strength: easy, medium, hard
}

// PieceView is the wire form of a piece.
type PieceView struct {
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Color  int     `json:"color"`
	Blocks [][]int `json:"blocks"`
}

func NewPieceView(p Piece) PieceView {
	return PieceView{
		Index:  p.Index(),
		Name:   p.Name(),
		Color:  int(p.Color()),
		Blocks: p.Blocks(),
	}
}

type ServerMessage struct {
	Type        string       `json:"type"`
	Message     string       `json:"message,omitempty"`
	GameID      string       `json:"gameId,omitempty"`
	Status      GameStatus   `json:"status,omitempty"`
	Sound       string       `json:"sound,omitempty"`
	Cols        int          `json:"cols,omitempty"`
	Rows        int          `json:"rows,omitempty"`
	X           *int         `json:"x,omitempty"`
	Y           *int         `json:"y,omitempty"`
	Turns       *int         `json:"turns,omitempty"`
	Current     *PieceView   `json:"current,omitempty"`
	Next        *PieceView   `json:"next,omitempty"`
	Coordinates []Coordinate `json:"coordinates,omitempty"`
	Board       [][]int      `json:"board,omitempty"`
	Scoreboard  *Scoreboard  `json:"scoreboard,omitempty"`
	Lines       int          `json:"lines,omitempty"`
	Blocks      int          `json:"blocks,omitempty"`
	Lives       *int         `json:"lives,omitempty"`
	DelayMillis int          `json:"delayMs,omitempty"`
	FinalScore  *int         `json:"finalScore,omitempty"`
	ScoreToken  string       `json:"scoreToken,omitempty"`
	HighScore   *bool        `json:"highScore,omitempty"`
}

package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
	"github.com/iamasit07/tetrecs/backend/internal/service/bot"
	"github.com/iamasit07/tetrecs/backend/internal/service/game"
	"github.com/iamasit07/tetrecs/backend/pkg/uid"
)

// ScoreService is what the game-over path needs from the high-score table.
type ScoreService interface {
	IssueToken(gameID string, score int) (string, error)
	IsHighScore(ctx context.Context, score int) (bool, error)
}

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Scores         ScoreService
	Upgrader       websocket.Upgrader
}

// NewHandler builds the input-actor endpoint. An empty allowedOrigins accepts any origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, scores ScoreService, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Scores:         scores,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades the request; the connection then drives at most
// one game session at a time.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn)
}

// player is the per-connection state owned by the read loop.
type player struct {
	connID  string
	session *game.GameSession
}

func (h *Handler) handleConnection(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	p := &player{connID: uid.GenerateConnID()}
	h.ConnManager.AddConnection(p.connID, conn)
	log.Printf("[WS] Connection %s opened", p.connID)

	done := make(chan struct{})
	go h.keepAlive(conn, done)

	defer func() {
		close(done)
		log.Printf("[WS] Connection %s closed", p.connID)
		if p.session != nil {
			h.SessionManager.RemoveSession(p.session.GameID)
		}
		h.ConnManager.RemoveConnectionIfMatching(p.connID, conn)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Client disconnected unexpectedly: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format: %v", err)
			h.ConnManager.SendError(p.connID, "invalid message format")
			continue
		}

		h.processMessage(p, msg)
	}
}

// keep-alive pinger; WriteControl may run alongside WriteJSON
func (h *Handler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(p *player, msg domain.ClientMessage) {
	if msg.Type == "start" {
		h.startGame(p, msg.Name)
		return
	}

	if p.session == nil {
		h.ConnManager.SendError(p.connID, "no game in progress")
		return
	}
	gs := p.session

	var err error
	switch msg.Type {
	case "place":
		_, err = gs.Place(msg.X, msg.Y)

	case "rotate":
		turns := msg.Turns
		if turns == 0 {
			turns = 1
		}
		err = gs.Rotate(turns)

	case "swap":
		err = gs.Swap()

	case "state":
		h.ConnManager.SendMessage(p.connID, stateMessage(gs.Snapshot()))

	case "hint":
		err = h.sendHint(p.connID, gs.Snapshot(), msg.Difficulty)

	case "shutdown":
		h.SessionManager.RemoveSession(gs.GameID)
		p.session = nil
		h.ConnManager.SendMessage(p.connID, domain.ServerMessage{Type: "shutdown", GameID: gs.GameID})

	default:
		h.ConnManager.SendError(p.connID, "unknown message type")
	}

	if err != nil {
		h.ConnManager.SendError(p.connID, err.Error())
	}
}

func (h *Handler) startGame(p *player, rawName string) {
	if p.session != nil {
		if !p.session.IsFinished() {
			h.ConnManager.SendError(p.connID, "game already in progress")
			return
		}
		h.SessionManager.RemoveSession(p.session.GameID)
		p.session = nil
	}

	name, ok := domain.NormalizeName(rawName)
	if !ok {
		h.ConnManager.SendError(p.connID, domain.ErrInvalidName.Error())
		return
	}

	gs := h.SessionManager.CreateSession(name)
	gs.SetListeners(h.listenersFor(p.connID, gs.GameID))
	p.session = gs

	snap := gs.Snapshot()
	h.ConnManager.SendMessage(p.connID, domain.ServerMessage{
		Type:       "game_start",
		GameID:     gs.GameID,
		Cols:       snap.Cols,
		Rows:       snap.Rows,
		Scoreboard: &snap.Scoreboard,
	})

	if err := gs.Start(); err != nil {
		h.ConnManager.SendError(p.connID, err.Error())
	}
}

// listenersFor translates session events into server messages. They run under
// the session lock, so nothing here may call back into the session.
func (h *Handler) listenersFor(connID, gameID string) game.Listeners {
	send := func(msg domain.ServerMessage) {
		msg.GameID = gameID
		if err := h.ConnManager.SendMessage(connID, msg); err != nil {
			log.Printf("[WS] Failed to send %s to %s: %v", msg.Type, connID, err)
		}
	}

	return game.Listeners{
		PiecesChanged: func(current, next domain.Piece) {
			cur, nxt := domain.NewPieceView(current), domain.NewPieceView(next)
			send(domain.ServerMessage{Type: "pieces_changed", Current: &cur, Next: &nxt})
		},
		LinesCleared: func(coords []domain.Coordinate) {
			if len(coords) == 0 {
				return
			}
			send(domain.ServerMessage{Type: "lines_cleared", Coordinates: coords})
		},
		Placed: func(x, y int, result game.TurnResult) {
			board := result.Scoreboard
			send(domain.ServerMessage{
				Type:       "placed",
				X:          &x,
				Y:          &y,
				Lines:      result.Lines,
				Blocks:     result.Blocks,
				Board:      result.Board,
				Scoreboard: &board,
			})
		},
		PlacementRejected: func(x, y int) {
			send(domain.ServerMessage{Type: "rejected", Message: domain.ErrInvalidPlacement.Error(), X: &x, Y: &y})
		},
		LifeLost: func(lives int) {
			send(domain.ServerMessage{Type: "life_lost", Lives: &lives})
		},
		CountdownRestarted: func(delay time.Duration) {
			send(domain.ServerMessage{Type: "countdown", DelayMillis: int(delay.Milliseconds())})
		},
		Sound: func(cue game.SoundCue) {
			send(domain.ServerMessage{Type: "sound", Sound: string(cue)})
		},
		GameOver: func(final domain.Scoreboard) {
			// the score lookup may hit the database; keep it off the session lock
			go h.sendGameOver(connID, gameID, final)
		},
	}
}

func (h *Handler) sendGameOver(connID, gameID string, final domain.Scoreboard) {
	msg := domain.ServerMessage{
		Type:       "game_over",
		GameID:     gameID,
		Scoreboard: &final,
		FinalScore: &final.Score,
	}

	if h.Scores != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		high, err := h.Scores.IsHighScore(ctx, final.Score)
		if err != nil {
			log.Printf("[WS] High score check failed for game %s: %v", gameID, err)
		}
		msg.HighScore = &high

		if high {
			token, err := h.Scores.IssueToken(gameID, final.Score)
			if err != nil {
				log.Printf("[WS] Failed to issue score token for game %s: %v", gameID, err)
			}
			msg.ScoreToken = token
		}
	}

	if err := h.ConnManager.SendMessage(connID, msg); err != nil {
		log.Printf("[WS] Failed to send game_over to %s: %v", connID, err)
	}
}

// sendHint suggests a placement for the current piece from a snapshot, so the
// search never holds the session lock.
func (h *Handler) sendHint(connID string, snap game.Snapshot, difficulty string) error {
	if snap.Status != domain.StatusRunning || snap.Current == nil {
		return domain.ErrNotRunning
	}

	grid := domain.NewGridFromInts(snap.Board)
	move, ok := bot.SuggestPlacement(grid, *snap.Current, *snap.Next, difficulty)
	if !ok {
		return h.ConnManager.SendMessage(connID, domain.ServerMessage{
			Type:    "hint",
			GameID:  snap.GameID,
			Message: "no legal placement",
		})
	}

	return h.ConnManager.SendMessage(connID, domain.ServerMessage{
		Type:   "hint",
		GameID: snap.GameID,
		X:      &move.X,
		Y:      &move.Y,
		Turns:  &move.Turns,
		Lines:  move.Lines,
		Blocks: move.Blocks,
	})
}

func stateMessage(snap game.Snapshot) domain.ServerMessage {
	msg := domain.ServerMessage{
		Type:        "state",
		GameID:      snap.GameID,
		Status:      snap.Status,
		Cols:        snap.Cols,
		Rows:        snap.Rows,
		Board:       snap.Board,
		Scoreboard:  &snap.Scoreboard,
		DelayMillis: int(snap.TimerDelay.Milliseconds()),
	}
	if snap.Current != nil {
		cur, nxt := domain.NewPieceView(*snap.Current), domain.NewPieceView(*snap.Next)
		msg.Current = &cur
		msg.Next = &nxt
	}
	return msg
}

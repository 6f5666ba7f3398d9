package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
	"github.com/iamasit07/tetrecs/backend/internal/metrics"
	"github.com/iamasit07/tetrecs/backend/pkg/uid"
)

type GameRepository interface {
	SaveGame(ctx context.Context, record domain.GameRecord) error
}

// Options configures a new session. Zero values fall back to defaults.
type Options struct {
	Cols          int
	Rows          int
	StartingLives int
	Source        domain.PieceSource
	Scheduler     Scheduler
	Delay         func(level int) time.Duration // defaults to domain.TimerDelay in ms
	Repo          GameRepository
}

func defaultDelay(level int) time.Duration {
	return time.Duration(domain.TimerDelay(level)) * time.Millisecond
}

// GameSession is one running game. Every exported method is a critical
// section on mu; the countdown callback takes the same lock.
type GameSession struct {
	GameID       string
	PlayerName   string
	CreatedAt    time.Time
	FinishedAt   time.Time
	LastActivity time.Time
	Reason       string

	mu            sync.Mutex
	status        domain.GameStatus
	grid          *domain.Grid
	supply        *domain.PieceSupply
	board         domain.Scoreboard
	countdown     countdown
	listeners     Listeners
	delay         func(level int) time.Duration
	startingLives int
	linesCleared  int
	piecesPlayed  int
	repo          GameRepository
}

func NewGameSession(playerName string, opts Options) *GameSession {
	if opts.Cols <= 0 {
		opts.Cols = domain.DefaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = domain.DefaultRows
	}
	// zero is the unset Options value; config rejects it before it gets here
	if opts.StartingLives <= 0 {
		opts.StartingLives = domain.StartingLives
	}
	if opts.Source == nil {
		opts.Source = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SystemScheduler
	}
	if opts.Delay == nil {
		opts.Delay = defaultDelay
	}

	now := time.Now()
	return &GameSession{
		GameID:        uid.GenerateGameID(),
		PlayerName:    playerName,
		CreatedAt:     now,
		LastActivity:  now,
		status:        domain.StatusNotStarted,
		grid:          domain.NewGrid(opts.Cols, opts.Rows),
		supply:        domain.NewPieceSupply(opts.Source),
		board:         domain.NewScoreboard(opts.StartingLives),
		countdown:     countdown{scheduler: opts.Scheduler},
		delay:         opts.Delay,
		startingLives: opts.StartingLives,
		repo:          opts.Repo,
	}
}

// SetListeners replaces every handler at once.
func (gs *GameSession) SetListeners(l Listeners) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.listeners = l
}

func (gs *GameSession) SetOnPiecesChanged(fn func(current, next domain.Piece)) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.listeners.PiecesChanged = fn
}

func (gs *GameSession) SetOnLinesCleared(fn func(coords []domain.Coordinate)) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.listeners.LinesCleared = fn
}

func (gs *GameSession) SetOnLifeLost(fn func(lives int)) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.listeners.LifeLost = fn
}

func (gs *GameSession) SetOnGameOver(fn func(final domain.Scoreboard)) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.listeners.GameOver = fn
}

// Start deals the first two pieces and arms the first countdown.
func (gs *GameSession) Start() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.status != domain.StatusNotStarted {
		return domain.ErrAlreadyStarted
	}

	gs.grid.Reset()
	if err := gs.supply.Start(); err != nil {
		return err
	}
	gs.board = domain.NewScoreboard(gs.startingLives)
	gs.status = domain.StatusRunning
	gs.LastActivity = time.Now()

	log.Printf("[GAME] Starting game %s for %s (%dx%d)", gs.GameID, gs.PlayerName, gs.grid.Cols(), gs.grid.Rows())

	gs.restartCountdown()
	gs.listeners.piecesChanged(gs.supply.Current(), gs.supply.Next())
	return nil
}

// Place tries to play the current piece centred on (x, y). A blocked
// placement is not an error: it returns false and signals the rejection.
func (gs *GameSession) Place(x, y int) (bool, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.status != domain.StatusRunning {
		return false, domain.ErrNotRunning
	}
	gs.LastActivity = time.Now()

	current := gs.supply.Current()
	if !gs.grid.CanPlace(current, x, y) {
		metrics.Placements.WithLabelValues("rejected").Inc()
		gs.listeners.placementRejected(x, y)
		gs.listeners.sound(SoundFail)
		return false, nil
	}

	// the old deadline must be dead before the grid changes
	gs.countdown.cancel()

	gs.grid.Place(current, x, y)
	gs.piecesPlayed++
	_, newCurrent, newNext := gs.supply.Advance()
	metrics.Placements.WithLabelValues("placed").Inc()

	result := gs.settleLines()

	gs.restartCountdown()
	gs.listeners.piecesChanged(newCurrent, newNext)
	gs.listeners.placed(x, y, result)
	gs.listeners.sound(SoundPlace)
	return true, nil
}

// settleLines clears every full row and column and scores the turn.
func (gs *GameSession) settleLines() TurnResult {
	lc := domain.FindLines(gs.grid)

	gs.listeners.linesCleared(lc.Coordinates)
	if lc.Blocks() > 0 {
		gs.listeners.sound(SoundClear)
		log.Printf("[GAME] Game %s cleared rows %v cols %v (%d blocks)", gs.GameID, lc.Rows, lc.Cols, lc.Blocks())
	}

	gs.grid.Clear(lc.Coordinates)
	gained := gs.board.ApplyTurn(lc.Lines(), lc.Blocks())
	gs.linesCleared += lc.Lines()
	metrics.LinesCleared.Add(float64(lc.Lines()))

	return TurnResult{
		Lines:      lc.Lines(),
		Blocks:     lc.Blocks(),
		Gained:     gained,
		Scoreboard: gs.board,
		Board:      gs.grid.IntCells(),
	}
}

// Rotate turns the current piece 1 (clockwise) or 3 (counterclockwise)
// quarter turns. The countdown keeps running.
func (gs *GameSession) Rotate(quarterTurns int) error {
	if quarterTurns != 1 && quarterTurns != 3 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRotation, quarterTurns)
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.status != domain.StatusRunning {
		return domain.ErrNotRunning
	}
	gs.LastActivity = time.Now()

	gs.supply.ReplaceCurrent(gs.supply.Current().Rotated(quarterTurns))
	gs.listeners.piecesChanged(gs.supply.Current(), gs.supply.Next())
	gs.listeners.sound(SoundRotate)
	return nil
}

// Swap exchanges the current and next pieces. The countdown keeps running.
func (gs *GameSession) Swap() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.status != domain.StatusRunning {
		return domain.ErrNotRunning
	}
	gs.LastActivity = time.Now()

	gs.supply.Swap()
	gs.listeners.piecesChanged(gs.supply.Current(), gs.supply.Next())
	gs.listeners.sound(SoundRotate)
	return nil
}

// Shutdown abandons the session: the countdown is cancelled and the game
// ends without losing a life or firing the game-over listener.
func (gs *GameSession) Shutdown() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.status == domain.StatusGameOver {
		return
	}
	wasRunning := gs.status == domain.StatusRunning

	gs.countdown.cancel()
	gs.status = domain.StatusGameOver
	log.Printf("[GAME] Game %s shut down by request", gs.GameID)

	if wasRunning {
		gs.finishLocked(domain.ReasonAbandoned)
	} else {
		gs.FinishedAt = time.Now()
		gs.Reason = domain.ReasonAbandoned
	}
}

func (gs *GameSession) restartCountdown() {
	delay := gs.delay(gs.board.Level)
	gs.countdown.start(delay, gs.expire)
	gs.listeners.countdownRestarted(delay)
}

// expire runs on the scheduler's goroutine when a countdown runs out.
func (gs *GameSession) expire(generation uint64) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.status != domain.StatusRunning || !gs.countdown.isCurrent(generation) {
		metrics.StaleCountdowns.Inc()
		log.Printf("[COUNTDOWN] Discarding stale countdown %d for game %s", generation, gs.GameID)
		return
	}
	gs.countdown.pending = false

	if gs.board.Lives-1 < 0 {
		gs.countdown.cancel()
		gs.status = domain.StatusGameOver
		log.Printf("[COUNTDOWN] Game %s over with score %d", gs.GameID, gs.board.Score)
		gs.finishLocked(domain.ReasonTimeout)
		gs.listeners.gameOver(gs.board)
		gs.listeners.sound(SoundGameOver)
		return
	}

	discarded := gs.supply.DiscardCurrent()
	lives := gs.board.LoseLife()
	metrics.LivesLost.Inc()
	log.Printf("[COUNTDOWN] Game %s discarded %s, %d lives left", gs.GameID, discarded, lives)

	gs.restartCountdown()
	gs.listeners.piecesChanged(gs.supply.Current(), gs.supply.Next())
	gs.listeners.lifeLost(lives)
	gs.listeners.sound(SoundLifeLost)
}

// finishLocked records the end of a game. Caller must hold mu.
func (gs *GameSession) finishLocked(reason string) {
	gs.FinishedAt = time.Now()
	gs.Reason = reason
	metrics.GamesEnded.WithLabelValues(reason).Inc()

	if gs.repo == nil {
		return
	}
	gs.saveGameAsync(domain.GameRecord{
		GameID:       gs.GameID,
		PlayerName:   gs.PlayerName,
		Score:        gs.board.Score,
		Level:        gs.board.Level,
		LinesCleared: gs.linesCleared,
		PiecesPlayed: gs.piecesPlayed,
		Reason:       reason,
		CreatedAt:    gs.CreatedAt,
		FinishedAt:   gs.FinishedAt,
		BoardState:   gs.grid.IntCells(),
	})
}

// Saves game data in background so the game_over path never blocks on the database
func (gs *GameSession) saveGameAsync(record domain.GameRecord) {
	repo := gs.repo
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repo.SaveGame(ctx, record); err != nil {
			log.Printf("[GAME] Error saving game %s: %v", record.GameID, err)
		} else {
			log.Printf("[GAME] Game %s saved successfully", record.GameID)
		}
	}()
}

// Snapshot is a detached copy of session state.
type Snapshot struct {
	GameID           string
	Status           domain.GameStatus
	Cols             int
	Rows             int
	Board            [][]int
	Current          *domain.Piece
	Next             *domain.Piece
	Scoreboard       domain.Scoreboard
	TimerDelay       time.Duration
	CountdownPending bool
	LinesCleared     int
	PiecesPlayed     int
}

func (gs *GameSession) Snapshot() Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	snap := Snapshot{
		GameID:           gs.GameID,
		Status:           gs.status,
		Cols:             gs.grid.Cols(),
		Rows:             gs.grid.Rows(),
		Board:            gs.grid.IntCells(),
		Scoreboard:       gs.board,
		TimerDelay:       gs.delay(gs.board.Level),
		CountdownPending: gs.countdown.pending,
		LinesCleared:     gs.linesCleared,
		PiecesPlayed:     gs.piecesPlayed,
	}
	if gs.supply.Len() == 2 {
		current, next := gs.supply.Current(), gs.supply.Next()
		snap.Current = &current
		snap.Next = &next
	}
	return snap
}

func (gs *GameSession) Status() domain.GameStatus {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.status
}

func (gs *GameSession) IsFinished() bool {
	return gs.Status() == domain.StatusGameOver
}

// TimerDelay is the countdown length at the current level.
func (gs *GameSession) TimerDelay() time.Duration {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.delay(gs.board.Level)
}

func (gs *GameSession) TimerDelaySeconds() float64 {
	return gs.TimerDelay().Seconds()
}

// activity returns the last command time, the finish time and whether the game is over.
func (gs *GameSession) activity() (lastActivity, finishedAt time.Time, finished bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.LastActivity, gs.FinishedAt, gs.status == domain.StatusGameOver
}

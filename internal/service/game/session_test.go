package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/tetrecs/backend/internal/domain"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// fakeScheduler records timers; tests fire them by hand, including stopped
// ones, to play a callback that was already in flight.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) timer(i int) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i]
}

func (s *fakeScheduler) last() *fakeTimer {
	return s.timer(s.count() - 1)
}

type sequenceSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

func (s *sequenceSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v % n
}

type piecePair struct {
	current, next int
}

type recorder struct {
	mu         sync.Mutex
	pieces     []piecePair
	cleared    [][]domain.Coordinate
	lives      []int
	gameOvers  []domain.Scoreboard
	placed     []TurnResult
	rejected   []domain.Coordinate
	countdowns []time.Duration
	sounds     []SoundCue
}

func (r *recorder) listeners() Listeners {
	return Listeners{
		PiecesChanged: func(current, next domain.Piece) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.pieces = append(r.pieces, piecePair{current.Index(), next.Index()})
		},
		LinesCleared: func(coords []domain.Coordinate) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.cleared = append(r.cleared, coords)
		},
		LifeLost: func(lives int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.lives = append(r.lives, lives)
		},
		GameOver: func(final domain.Scoreboard) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.gameOvers = append(r.gameOvers, final)
		},
		Placed: func(x, y int, result TurnResult) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.placed = append(r.placed, result)
		},
		PlacementRejected: func(x, y int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.rejected = append(r.rejected, domain.Coordinate{X: x, Y: y})
		},
		CountdownRestarted: func(delay time.Duration) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.countdowns = append(r.countdowns, delay)
		},
		Sound: func(cue SoundCue) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.sounds = append(r.sounds, cue)
		},
	}
}

func (r *recorder) livesLost() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.lives...)
}

func (r *recorder) gameOverCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gameOvers)
}

func newTestSession(t *testing.T, pieces ...int) (*GameSession, *fakeScheduler, *recorder) {
	t.Helper()
	sched := &fakeScheduler{}
	rec := &recorder{}
	gs := NewGameSession("tester", Options{
		Source:    &sequenceSource{values: pieces},
		Scheduler: sched,
	})
	gs.SetListeners(rec.listeners())
	require.NoError(t, gs.Start())
	return gs, sched, rec
}

func TestStartInitialState(t *testing.T) {
	gs, sched, rec := newTestSession(t, 0, 3)

	snap := gs.Snapshot()
	assert.Equal(t, domain.StatusRunning, snap.Status)
	assert.Equal(t, domain.Scoreboard{Score: 0, Level: 0, Multiplier: 1, Lives: 3}, snap.Scoreboard)
	assert.True(t, snap.CountdownPending)
	assert.Equal(t, 12*time.Second, snap.TimerDelay)
	assert.Equal(t, 12.0, gs.TimerDelaySeconds())
	require.NotNil(t, snap.Current)
	assert.Equal(t, 0, snap.Current.Index())
	assert.Equal(t, 3, snap.Next.Index())

	require.Equal(t, 1, sched.count())
	assert.Equal(t, 12*time.Second, sched.last().delay)
	assert.Equal(t, []piecePair{{0, 3}}, rec.pieces)
	assert.Equal(t, []time.Duration{12 * time.Second}, rec.countdowns)

	assert.ErrorIs(t, gs.Start(), domain.ErrAlreadyStarted)
}

func TestCommandsBeforeStart(t *testing.T) {
	gs := NewGameSession("early", Options{Scheduler: &fakeScheduler{}})

	_, err := gs.Place(2, 2)
	assert.ErrorIs(t, err, domain.ErrNotRunning)
	assert.ErrorIs(t, gs.Rotate(1), domain.ErrNotRunning)
	assert.ErrorIs(t, gs.Swap(), domain.ErrNotRunning)
	assert.Nil(t, gs.Snapshot().Current)
}

func TestPlaceRejectedLeavesStateAlone(t *testing.T) {
	gs, sched, rec := newTestSession(t, 0, 3)

	// the line reaches one cell left of its anchor
	ok, err := gs.Place(0, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	snap := gs.Snapshot()
	assert.Equal(t, make([][]int, 5), nilRows(snap.Board))
	assert.Equal(t, 0, snap.Current.Index())
	assert.Equal(t, 0, snap.PiecesPlayed)

	require.Equal(t, 1, sched.count())
	assert.False(t, sched.last().stopped)
	assert.Equal(t, []domain.Coordinate{{X: 0, Y: 0}}, rec.rejected)
	assert.Equal(t, []SoundCue{SoundFail}, rec.sounds)
	assert.Empty(t, rec.placed)
}

// nilRows maps an all-empty board to nil rows so it compares against make([][]int, n).
func nilRows(board [][]int) [][]int {
	out := make([][]int, len(board))
	for y, row := range board {
		for _, v := range row {
			if v != 0 {
				out[y] = row
				break
			}
		}
	}
	return out
}

func TestPlaceClearsFullRow(t *testing.T) {
	gs, sched, rec := newTestSession(t, 0, 3, 5)
	require.NoError(t, gs.grid.Set(0, 2, 9))
	require.NoError(t, gs.grid.Set(1, 2, 9))

	ok, err := gs.Place(3, 2)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, rec.placed, 1)
	result := rec.placed[0]
	assert.Equal(t, 1, result.Lines)
	assert.Equal(t, 5, result.Blocks)
	assert.Equal(t, 50, result.Gained)
	assert.Equal(t, domain.Scoreboard{Score: 50, Level: 0, Multiplier: 2, Lives: 3}, result.Scoreboard)
	assert.Equal(t, make([][]int, 5), nilRows(result.Board))

	require.Len(t, rec.cleared, 1)
	assert.Len(t, rec.cleared[0], 5)
	for _, c := range rec.cleared[0] {
		assert.Equal(t, 2, c.Y)
	}

	snap := gs.Snapshot()
	assert.Equal(t, make([][]int, 5), nilRows(snap.Board))
	assert.Equal(t, 1, snap.LinesCleared)
	assert.Equal(t, 1, snap.PiecesPlayed)

	// old countdown cancelled, new one armed at the post-settlement level
	require.Equal(t, 2, sched.count())
	assert.True(t, sched.timer(0).stopped)
	assert.False(t, sched.timer(1).stopped)
	assert.Equal(t, 12*time.Second, sched.timer(1).delay)

	assert.Equal(t, []piecePair{{0, 3}, {3, 5}}, rec.pieces)
	assert.Equal(t, []SoundCue{SoundClear, SoundPlace}, rec.sounds)
}

func TestPlaceWithoutClearResetsMultiplier(t *testing.T) {
	gs, _, rec := newTestSession(t, 3, 3)
	gs.board.Multiplier = 3

	ok, err := gs.Place(2, 2)
	require.NoError(t, err)
	require.True(t, ok)

	snap := gs.Snapshot()
	assert.Equal(t, 1, snap.Scoreboard.Multiplier)
	assert.Equal(t, 0, snap.Scoreboard.Score)
	assert.Equal(t, 4, snap.Board[2][2])

	// the clear notification fires even when nothing cleared
	require.Len(t, rec.cleared, 1)
	assert.Empty(t, rec.cleared[0])
}

func TestPlaceCornerCountsBlockOnce(t *testing.T) {
	gs, _, rec := newTestSession(t, 3, 3)
	for x := 0; x < 4; x++ {
		require.NoError(t, gs.grid.Set(x, 0, 1))
	}
	for y := 1; y < 5; y++ {
		require.NoError(t, gs.grid.Set(4, y, 1))
	}

	ok, err := gs.Place(4, 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, rec.placed, 1)
	assert.Equal(t, 2, rec.placed[0].Lines)
	assert.Equal(t, 9, rec.placed[0].Blocks)
	assert.Equal(t, 2*9*10, rec.placed[0].Gained)
}

func TestLevelShortensNextCountdown(t *testing.T) {
	gs, sched, _ := newTestSession(t, 0, 0)
	gs.board.Score = 1990
	require.NoError(t, gs.grid.Set(0, 2, 1))
	require.NoError(t, gs.grid.Set(1, 2, 1))

	ok, err := gs.Place(3, 2)
	require.NoError(t, err)
	require.True(t, ok)

	snap := gs.Snapshot()
	assert.Equal(t, 2040, snap.Scoreboard.Score)
	assert.Equal(t, 2, snap.Scoreboard.Level)
	assert.Equal(t, 11*time.Second, sched.last().delay)
}

func TestRotateKeepsCountdown(t *testing.T) {
	gs, sched, rec := newTestSession(t, 0, 3)

	require.NoError(t, gs.Rotate(1))
	snap := gs.Snapshot()
	assert.Equal(t, domain.MustPiece(0).Rotated(1), *snap.Current)

	require.NoError(t, gs.Rotate(3))
	assert.Equal(t, domain.MustPiece(0), *gs.Snapshot().Current)

	assert.ErrorIs(t, gs.Rotate(2), domain.ErrInvalidRotation)
	assert.ErrorIs(t, gs.Rotate(0), domain.ErrInvalidRotation)

	require.Equal(t, 1, sched.count())
	assert.False(t, sched.last().stopped)
	assert.Len(t, rec.pieces, 3)
	assert.Equal(t, []SoundCue{SoundRotate, SoundRotate}, rec.sounds)
}

func TestSwap(t *testing.T) {
	gs, sched, rec := newTestSession(t, 0, 3)

	require.NoError(t, gs.Swap())
	snap := gs.Snapshot()
	assert.Equal(t, 3, snap.Current.Index())
	assert.Equal(t, 0, snap.Next.Index())
	assert.Equal(t, []piecePair{{0, 3}, {3, 0}}, rec.pieces)
	assert.Equal(t, 1, sched.count())
}

func TestCountdownExpiryCostsLives(t *testing.T) {
	gs, sched, rec := newTestSession(t, 0, 3, 7, 8)
	gs.board.Multiplier = 4

	sched.last().fn()
	snap := gs.Snapshot()
	assert.Equal(t, 2, snap.Scoreboard.Lives)
	assert.Equal(t, 1, snap.Scoreboard.Multiplier)
	assert.Equal(t, 7, snap.Current.Index())
	assert.Equal(t, 3, snap.Next.Index())

	gs.board.Multiplier = 5
	sched.last().fn()
	snap = gs.Snapshot()
	assert.Equal(t, 1, snap.Scoreboard.Lives)
	assert.Equal(t, 1, snap.Scoreboard.Multiplier)
	assert.Equal(t, 8, snap.Current.Index())
	assert.Equal(t, 3, snap.Next.Index())

	assert.Equal(t, []int{2, 1}, rec.livesLost())
	assert.Equal(t, 3, sched.count())
	assert.Equal(t, domain.StatusRunning, snap.Status)
	assert.Equal(t, 0, rec.gameOverCount())
}

func TestCountdownExpiryWithNoLivesEndsGame(t *testing.T) {
	repo := newFakeGameRepo()
	sched := &fakeScheduler{}
	rec := &recorder{}
	gs := NewGameSession("last-life", Options{
		Source:    &sequenceSource{values: []int{2, 4, 6}},
		Scheduler: sched,
		Repo:      repo,
	})
	gs.SetListeners(rec.listeners())
	require.NoError(t, gs.Start())
	gs.board.Lives = 0
	gs.board.Score = 120

	sched.last().fn()

	snap := gs.Snapshot()
	assert.Equal(t, domain.StatusGameOver, snap.Status)
	assert.Equal(t, 0, snap.Scoreboard.Lives)
	assert.Equal(t, 2, snap.Current.Index(), "no discard on the terminal expiry")
	assert.False(t, snap.CountdownPending)
	assert.Equal(t, 1, sched.count())
	assert.Empty(t, rec.livesLost())
	require.Equal(t, 1, rec.gameOverCount())
	assert.Equal(t, 120, rec.gameOvers[0].Score)
	assert.True(t, gs.IsFinished())

	select {
	case record := <-repo.saved:
		assert.Equal(t, gs.GameID, record.GameID)
		assert.Equal(t, "last-life", record.PlayerName)
		assert.Equal(t, 120, record.Score)
		assert.Equal(t, domain.ReasonTimeout, record.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("game record was not saved")
	}

	_, err := gs.Place(2, 2)
	assert.ErrorIs(t, err, domain.ErrNotRunning)
}

func TestStaleCountdownIsDiscarded(t *testing.T) {
	gs, sched, rec := newTestSession(t, 3, 3, 3)

	ok, err := gs.Place(2, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, sched.count())

	// the first countdown was already in flight when the placement cancelled it
	sched.timer(0).fn()

	snap := gs.Snapshot()
	assert.Equal(t, 3, snap.Scoreboard.Lives)
	assert.True(t, snap.CountdownPending)
	assert.Empty(t, rec.livesLost())
	assert.Equal(t, 2, sched.count())

	// the live one still works, and only once
	sched.timer(1).fn()
	sched.timer(1).fn()
	assert.Equal(t, []int{2}, rec.livesLost())
}

func TestShutdownCancelsWithoutGameOver(t *testing.T) {
	repo := newFakeGameRepo()
	sched := &fakeScheduler{}
	rec := &recorder{}
	gs := NewGameSession("quitter", Options{Scheduler: sched, Repo: repo})
	gs.SetListeners(rec.listeners())
	require.NoError(t, gs.Start())

	gs.Shutdown()
	gs.Shutdown()

	assert.True(t, sched.last().stopped)
	assert.Equal(t, domain.StatusGameOver, gs.Status())
	assert.Equal(t, 0, rec.gameOverCount())

	// a fire that slipped through after shutdown changes nothing
	sched.last().fn()
	assert.Empty(t, rec.livesLost())
	assert.Equal(t, 3, gs.Snapshot().Scoreboard.Lives)

	select {
	case record := <-repo.saved:
		assert.Equal(t, domain.ReasonAbandoned, record.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("game record was not saved")
	}
	assert.ErrorIs(t, gs.Swap(), domain.ErrNotRunning)
}

func TestShutdownBeforeStart(t *testing.T) {
	gs := NewGameSession("idle", Options{Scheduler: &fakeScheduler{}})
	gs.Shutdown()
	assert.True(t, gs.IsFinished())
	assert.ErrorIs(t, gs.Start(), domain.ErrAlreadyStarted)
}

func TestReplaceableListeners(t *testing.T) {
	gs, sched, _ := newTestSession(t, 0, 3)

	var first, second []int
	gs.SetOnLifeLost(func(lives int) { first = append(first, lives) })
	sched.last().fn()
	gs.SetOnLifeLost(func(lives int) { second = append(second, lives) })
	sched.last().fn()
	gs.SetOnLifeLost(nil)
	sched.last().fn()

	assert.Equal(t, []int{2}, first)
	assert.Equal(t, []int{1}, second)
	assert.Equal(t, 0, gs.Snapshot().Scoreboard.Lives)
}

// Input and countdown race on the wall clock. Every life must be lost exactly
// once and in order, and the game must end through the countdown.
func TestConcurrentCommandsAndCountdown(t *testing.T) {
	rec := &recorder{}
	gs := NewGameSession("racer", Options{
		StartingLives: 40,
		Source:        rand.New(rand.NewSource(7)),
		Delay:         func(int) time.Duration { return time.Millisecond },
	})
	gs.SetListeners(rec.listeners())
	require.NoError(t, gs.Start())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 300; i++ {
				var err error
				switch r.Intn(3) {
				case 0:
					_, err = gs.Place(r.Intn(5), r.Intn(5))
				case 1:
					err = gs.Rotate(1 + 2*r.Intn(2))
				case 2:
					err = gs.Swap()
				}
				if err != nil && !errors.Is(err, domain.ErrNotRunning) {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	require.Eventually(t, gs.IsFinished, 10*time.Second, 5*time.Millisecond)

	lost := rec.livesLost()
	require.Len(t, lost, 40)
	for i, lives := range lost {
		assert.Equal(t, 39-i, lives)
	}
	assert.Equal(t, 1, rec.gameOverCount())

	snap := gs.Snapshot()
	assert.Equal(t, 0, snap.Scoreboard.Lives)
	assert.NotNil(t, snap.Current)
	assert.NotNil(t, snap.Next)
}

type fakeGameRepo struct {
	saved chan domain.GameRecord
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{saved: make(chan domain.GameRecord, 4)}
}

func (r *fakeGameRepo) SaveGame(ctx context.Context, record domain.GameRecord) error {
	r.saved <- record
	return nil
}

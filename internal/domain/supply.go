package domain

// PieceSource picks catalog indices. *rand.Rand satisfies it.
type PieceSource interface {
	Intn(n int) int
}

// PieceSupply is the two-piece lookahead: the current piece and the next one.
// Once started it always holds exactly two pieces.
type PieceSupply struct {
	pieces []Piece
	source PieceSource
}

func NewPieceSupply(source PieceSource) *PieceSupply {
	return &PieceSupply{
		pieces: make([]Piece, 0, 2),
		source: source,
	}
}

func (s *PieceSupply) draw() Piece {
	return MustPiece(s.source.Intn(PieceCount))
}

// Start fills an empty supply with two fresh pieces.
func (s *PieceSupply) Start() error {
	if len(s.pieces) != 0 {
		return ErrSupplyStarted
	}
	for len(s.pieces) < 2 {
		s.pieces = append(s.pieces, s.draw())
	}
	return nil
}

// Advance consumes the current piece, promotes next and draws a new next.
func (s *PieceSupply) Advance() (played, current, next Piece) {
	s.mustBeFull()
	played = s.pieces[0]
	s.pieces[0] = s.pieces[1]
	s.pieces[1] = s.draw()
	return played, s.pieces[0], s.pieces[1]
}

// Swap exchanges current and next without drawing.
func (s *PieceSupply) Swap() {
	s.mustBeFull()
	s.pieces[0], s.pieces[1] = s.pieces[1], s.pieces[0]
}

// DiscardCurrent replaces the current piece with a fresh draw; next is kept.
func (s *PieceSupply) DiscardCurrent() (discarded Piece) {
	s.mustBeFull()
	discarded = s.pieces[0]
	s.pieces[0] = s.draw()
	return discarded
}

// ReplaceCurrent swaps in a new current piece, e.g. after a rotation.
func (s *PieceSupply) ReplaceCurrent(p Piece) {
	s.mustBeFull()
	s.pieces[0] = p
}

func (s *PieceSupply) Current() Piece {
	s.mustBeFull()
	return s.pieces[0]
}

func (s *PieceSupply) Next() Piece {
	s.mustBeFull()
	return s.pieces[1]
}

func (s *PieceSupply) Len() int {
	return len(s.pieces)
}

// a supply that is not exactly two pieces at a protocol boundary is a bug
func (s *PieceSupply) mustBeFull() {
	if len(s.pieces) != 2 {
		panic(ErrSupplyInvariant)
	}
}

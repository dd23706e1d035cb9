package eval

import "github.com/jingweichess/jingwei/pkg/board"

// The endgame table maps material configurations to specialized score
// functions for known winning and drawn endings. It is keyed by the material
// hash, so a single probe decides whether a recognizer applies. Several
// entries point at the generic strong-side scorer rather than a bespoke
// function; that mapping is deliberate and kept as-is.

// Recognizer scores a recognized ending. The returned score is white-positive;
// recognized is false when the material matches but the position falls outside
// the recognizer's knowledge.
type Recognizer func(pos *board.Position, strong board.Color) (board.Score, bool)

// Endgame is the material-hash lookup of endgame recognizers.
type Endgame struct {
	table map[board.ZobristHash]endgameEntry
}

type endgameEntry struct {
	fn     Recognizer
	strong board.Color
}

// Probe looks up the position's material configuration. Returns false if no
// recognizer fires.
func (e *Endgame) Probe(pos *board.Position) (board.Score, bool) {
	entry, ok := e.table[pos.MaterialHash()]
	if !ok {
		return board.DrawScore, false
	}
	return entry.fn(pos, entry.strong)
}

// NewEndgame compiles the prototype table. Every configuration is registered
// for both colors.
func NewEndgame() *Endgame {
	e := &Endgame{table: map[board.ZobristHash]endgameEntry{}}

	// Bare kings and king vs lone minors cannot win.
	e.add(nil, nil, drawn)
	e.add(pieces(board.Knight), nil, drawn)
	e.add(pieces(board.Bishop), nil, drawn)
	e.add(pieces(board.Knight, board.Knight), nil, drawn)

	// Minor vs minor endings are dead draws.
	e.add(pieces(board.Knight), pieces(board.Knight), drawn)
	e.add(pieces(board.Knight), pieces(board.Bishop), drawn)
	e.add(pieces(board.Bishop), pieces(board.Bishop), drawn)
	e.add(pieces(board.Bishop), pieces(board.Knight), drawn)

	// Lone minor vs pawn: the pawn side holds the only winning chances.
	e.add(pieces(board.Knight), pieces(board.Pawn), minorVersusPawn)
	e.add(pieces(board.Bishop), pieces(board.Pawn), minorVersusPawn)

	// Basic mates and near-mates.
	e.add(pieces(board.Pawn), nil, kpk)
	e.add(pieces(board.Bishop, board.Knight), nil, kbnk)
	e.add(pieces(board.Bishop, board.Bishop), nil, kbbk)
	e.add(pieces(board.Rook), nil, strongSide)
	e.add(pieces(board.Queen), nil, strongSide)
	e.add(pieces(board.Queen), pieces(board.Pawn), strongSide)

	// Rook against a minor and the level heavy-piece matchups are draw-biased;
	// queen against rook and the level endings with an extra pawn use the
	// generic scorer.
	e.add(pieces(board.Rook), pieces(board.Knight), drawBiased)
	e.add(pieces(board.Rook), pieces(board.Bishop), drawBiased)
	e.add(pieces(board.Rook), pieces(board.Rook), drawBiased)
	e.add(pieces(board.Queen), pieces(board.Queen), drawBiased)
	e.add(pieces(board.Queen), pieces(board.Rook), strongSide)
	e.add(pieces(board.Rook, board.Pawn), pieces(board.Rook), strongSide)
	e.add(pieces(board.Queen, board.Pawn), pieces(board.Queen), strongSide)

	for _, extra := range []board.Piece{board.Pawn, board.Knight, board.Bishop, board.Rook} {
		e.add(pieces(board.Rook, extra), nil, strongSide)
		e.add(pieces(board.Queen, extra), nil, strongSide)
	}
	e.add(pieces(board.Rook, board.Rook), nil, strongSide)
	e.add(pieces(board.Queen, board.Queen), nil, strongSide)

	return e
}

func pieces(ps ...board.Piece) []board.Piece {
	return ps
}

// add registers the configuration with white strong, and its color mirror.
func (e *Endgame) add(strongPieces, weakPieces []board.Piece, fn Recognizer) {
	for _, strong := range []board.Color{board.White, board.Black} {
		var counts [board.NumColors][board.NumPieces]int
		counts[board.White][board.King] = 1
		counts[board.Black][board.King] = 1
		for _, p := range strongPieces {
			counts[strong][p]++
		}
		for _, p := range weakPieces {
			counts[strong.Opponent()][p]++
		}
		e.table[board.MaterialHashOf(counts)] = endgameEntry{fn: fn, strong: strong}
	}
}

// generalMateTable pushes the weak king towards the board edge: zero in the
// center, growing towards corners.
var generalMateTable [board.NumSquares]board.Score

// kingProximityBonus rewards the strong king closing in, by Chebyshev distance.
var kingProximityBonus [8]board.Score

func init() {
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		df := centerDistance(sq.File().V())
		dr := centerDistance(sq.Rank().V())
		generalMateTable[sq] = board.Score(25 * (df + dr))
	}
	for d := range kingProximityBonus {
		kingProximityBonus[d] = board.Score(20 * (7 - d))
	}
}

func centerDistance(v int) int {
	if v < 4 {
		return 3 - v
	}
	return v - 4
}

// perspective converts a strong-side score to white-positive.
func perspective(s board.Score, strong board.Color) board.Score {
	if strong == board.Black {
		return -s
	}
	return s
}

func drawn(pos *board.Position, strong board.Color) (board.Score, bool) {
	return board.DrawScore, true
}

// drawBiased scores level material near zero, keeping a whisper of the
// positional balance so the engine still prefers the better side.
func drawBiased(pos *board.Position, strong board.Color) (board.Score, bool) {
	return pos.PstEval().Taper(pos.Phase()) / 8, true
}

// minorVersusPawn: the lone minor cannot win; the pawn side keeps a nominal
// pull from its winning chances.
func minorVersusPawn(pos *board.Position, strong board.Color) (board.Score, bool) {
	weak := strong.Opponent()
	pawnSq := pos.Piece(weak, board.Pawn).FirstSquare()
	edge := board.Score(4 + 2*relativeRank(weak, pawnSq))
	return perspective(-edge, strong), true
}

// strongSide is the generic winning-material scorer: material advantage plus
// driving the weak king to the edge with the strong king in support.
func strongSide(pos *board.Position, strong board.Color) (board.Score, bool) {
	weak := strong.Opponent()
	weakKing := pos.KingSquare(weak)
	dist := board.Distance(pos.KingSquare(strong), weakKing)

	score := materialBalance(pos, strong) +
		generalMateTable[weakKing] +
		kingProximityBonus[dist] +
		perspective(pos.PstEval().Taper(pos.Phase()), strong)

	return perspective(score, strong), true
}

// kpk recognizes the drawn king-and-pawn endings: the defending king parked in
// front of the pawn, or holding the key squares with the attacking king too
// far. Everything else scores as winning.
func kpk(pos *board.Position, strong board.Color) (board.Score, bool) {
	weak := strong.Opponent()
	pawnSq := pos.Piece(strong, board.Pawn).FirstSquare()
	weakKing := pos.KingSquare(weak)
	strongKing := pos.KingSquare(strong)

	promo := board.NewSquare(pawnSq.File(), promotionRank(strong))
	rel := relativeRank(strong, pawnSq)

	// Defender in the pawn's path, with the attacker not ahead of the pawn:
	// the defense holds.
	blocking := board.SquaresInFront(strong, pawnSq).IsSet(weakKing)
	supporting := board.SquaresInFront(strong, pawnSq).IsSet(strongKing) ||
		board.Distance(strongKing, promo) < board.Distance(weakKing, promo)

	if blocking && !supporting {
		return perspective(board.Score(4+rel), strong), true
	}

	// Rule of the square: a defender who cannot reach the promotion square in
	// time loses outright.
	toMove := 0
	if pos.Turn() != strong {
		toMove = 1
	}
	pawnSteps := 7 - rel
	if rel == 1 {
		pawnSteps-- // the first move covers two squares
	}
	if board.Distance(weakKing, promo)-toMove > pawnSteps {
		score := MaterialValue(board.Queen).Eg + generalMateTable[weakKing] - board.Score(8*pawnSteps)
		return perspective(score, strong), true
	}

	// Otherwise winning chances depend on opposition detail beyond this
	// recognizer; score as a well-advanced passed pawn.
	score := MaterialValue(board.Pawn).Eg + PawnPassed[rel].Eg + kingProximityBonus[board.Distance(strongKing, pawnSq)]
	return perspective(score, strong), true
}

// kbnk drives the weak king to a corner of the bishop's color.
func kbnk(pos *board.Position, strong board.Color) (board.Score, bool) {
	weak := strong.Opponent()
	weakKing := pos.KingSquare(weak)
	bishopSq := pos.Piece(strong, board.Bishop).FirstSquare()

	corners := [2]board.Square{board.A8, board.H1} // light corners
	if !isLightSquare(bishopSq) {
		corners = [2]board.Square{board.A1, board.H8}
	}
	cornerDist := board.Distance(weakKing, corners[0])
	if d := board.Distance(weakKing, corners[1]); d < cornerDist {
		cornerDist = d
	}

	score := materialBalance(pos, strong) +
		generalMateTable[weakKing] +
		kingProximityBonus[board.Distance(pos.KingSquare(strong), weakKing)] +
		board.Score(30*(7-cornerDist))

	return perspective(score, strong), true
}

// kbbk is winning only with bishops on both colors.
func kbbk(pos *board.Position, strong board.Color) (board.Score, bool) {
	bishops := pos.Piece(strong, board.Bishop)
	a, b := bishops.FirstSquare(), bishops.ClearFirst().FirstSquare()
	if isLightSquare(a) == isLightSquare(b) {
		return board.DrawScore, true
	}
	return strongSide(pos, strong)
}

// materialBalance is the tapered material difference from the strong side.
func materialBalance(pos *board.Position, strong board.Color) board.Score {
	balance := pos.MaterialEval().Taper(pos.Phase())
	if strong == board.Black {
		return -balance
	}
	return balance
}

func promotionRank(c board.Color) board.Rank {
	if c == board.White {
		return board.Rank8
	}
	return board.Rank1
}

func isLightSquare(sq board.Square) bool {
	return (sq.File().V()+sq.Rank().V())%2 == 0
}

// Package eval contains the static position evaluator, the static exchange
// evaluator and the endgame recognizer table.
package eval

import "github.com/jingweichess/jingwei/pkg/board"

// endgameProbeLimit is the total piece count at or below which the endgame
// table is consulted.
const endgameProbeLimit = 9

// Evaluator scores positions from the side to move's perspective. A single
// evaluator is shared by a search; the hash tables are optional and disabled
// unless installed.
type Evaluator struct {
	Endgame *Endgame

	// Optional caches. Nil disables them.
	EvalTable *EvalHashTable
	PawnTable *PawnHashTable
}

// NewEvaluator returns an evaluator with the endgame table compiled and the
// optional caches disabled.
func NewEvaluator() *Evaluator {
	return &Evaluator{Endgame: NewEndgame()}
}

// Evaluate returns the score from the side to move's perspective. The window
// enables the lazy cut: when the material and piece-square balance is far
// outside (alpha, beta), the expensive terms cannot matter.
func (e *Evaluator) Evaluate(pos *board.Position, alpha, beta board.Score) board.Score {
	phase := pos.Phase()
	unit := pos.Turn().Unit()

	// (1) Endgame probe by material configuration.
	if phase <= endgameProbeLimit && e.Endgame != nil {
		if score, ok := e.Endgame.Probe(pos); ok {
			return unit * score
		}
	}

	// (2) A lone king is driven to the edge by the generic scorer.
	for c := board.ZeroColor; c < board.NumColors; c++ {
		if pos.Color(c) == pos.Piece(c, board.King) {
			score, _ := strongSide(pos, c.Opponent())
			return unit * score
		}
	}

	// (3) Lazy cut on the incrementally maintained accumulators.
	lazy := unit * pos.MaterialEval().Add(pos.PstEval()).Taper(phase)
	if lazy < alpha-LazyMargin || lazy > beta+LazyMargin {
		return lazy
	}

	// (4) Full evaluation.
	if e.EvalTable != nil {
		if score, ok := e.EvalTable.probe(pos.Hash()); ok {
			return unit*score + Tempo.Taper(phase)
		}
	}

	total := pos.MaterialEval().Add(pos.PstEval())
	total = total.Add(e.pawnStructure(pos))
	total = total.Add(scorePieces(pos, board.White)).Sub(scorePieces(pos, board.Black))

	white := total.Taper(phase)
	if e.EvalTable != nil {
		e.EvalTable.store(pos.Hash(), white)
	}

	// (5) Side to move perspective plus a small tempo bonus.
	return unit*white + Tempo.Taper(phase)
}

// EvaluateFull returns the full-window score for the side to move.
func (e *Evaluator) EvaluateFull(pos *board.Position) board.Score {
	return e.Evaluate(pos, -board.InfScore, board.InfScore)
}

func (e *Evaluator) pawnStructure(pos *board.Position) board.TaperedScore {
	if e.PawnTable != nil {
		if score, ok := e.PawnTable.probe(pos.PawnHash()); ok {
			return score
		}
	}
	score := scorePawnStructure(pos)
	if e.PawnTable != nil {
		e.PawnTable.store(pos.PawnHash(), score)
	}
	return score
}

// scorePieces evaluates the piece terms for one color: pairs, outposts, files,
// king shelter, mobility, tropism and attacks. Positive favors that color.
func scorePieces(pos *board.Position, c board.Color) board.TaperedScore {
	var ret board.TaperedScore

	opp := c.Opponent()
	occ := pos.All()
	own := pos.Color(c)
	ownPawns := pos.Piece(c, board.Pawn)
	enemyPawns := pos.Piece(opp, board.Pawn)
	enemyKing := pos.KingSquare(opp)
	enemyKingZone := board.KingAttackboard(enemyKing)
	enemyPawnAttacks := board.PawnCaptureboard(opp, enemyPawns)

	// Pair bonuses.
	if pos.Piece(c, board.Knight).PopCount() >= 2 {
		ret = ret.Add(KnightPair)
	}
	if pos.Piece(c, board.Bishop).PopCount() >= 2 {
		ret = ret.Add(BishopPair)
	}
	if pos.Piece(c, board.Rook).PopCount() >= 2 {
		ret = ret.Add(RookPair)
	}
	if pos.Piece(c, board.Queen).PopCount() >= 2 {
		ret = ret.Add(QueenPair)
	}

	kingZoneAttacks := 0

	for _, piece := range board.Officers {
		for bb := pos.Piece(c, piece); bb != 0; bb = bb.ClearFirst() {
			sq := bb.FirstSquare()

			switch piece {
			case board.Knight, board.Bishop:
				// Outpost: ahead of the home half, held by a pawn, safe from
				// enemy pawns for good.
				defended := board.PawnAttackboard(opp, sq)&ownPawns != 0
				attackable := board.PassedPawnMask(c, sq) &^ board.BitFile(sq.File()) & enemyPawns
				if defended && relativeRank(c, sq) >= 4 && attackable == 0 {
					if piece == board.Knight {
						ret = ret.Add(KnightOutpost)
					} else {
						ret = ret.Add(BishopOutpost)
					}
				}

				if piece == board.Bishop {
					same := (sameColorSquares(sq) & ownPawns).PopCount()
					ret = ret.Add(BishopPawnColor.Scale(same))
				}

			case board.Rook:
				file := board.BitFile(sq.File())
				switch {
				case file&(ownPawns|enemyPawns) == 0:
					ret = ret.Add(RookOpenFile)
				case file&ownPawns == 0:
					ret = ret.Add(RookHalfOpenFile)
				}
				if file&pos.Piece(c, board.Rook)&^board.BitMask(sq) != 0 {
					ret = ret.Add(RookDoubled)
				}
			}

			attacks := board.Attackboard(occ, sq, piece)

			// Mobility: reachable squares that are not own pieces and not
			// covered by enemy pawns.
			mobility := (attacks &^ own &^ enemyPawnAttacks).PopCount()
			ret = ret.Add(Mobility[piece].Pair(mobility))

			// Tropism by distance to the enemy king.
			ret = ret.Add(Tropism[piece].Pair(7 - board.Distance(sq, enemyKing)))

			// Direct pressure on enemy pieces.
			for hits := attacks & pos.Color(opp); hits != 0; hits = hits.ClearFirst() {
				if _, victim, ok := pos.PieceAt(hits.FirstSquare()); ok {
					ret = ret.Add(PieceAttacks[piece][victim])
				}
			}

			kingZoneAttacks += (attacks & enemyKingZone).PopCount()
		}
	}

	// Pawn pressure counts against the king zone too.
	ownPawnAttacks := board.PawnCaptureboard(c, ownPawns)
	kingZoneAttacks += (ownPawnAttacks & enemyKingZone).PopCount()
	for hits := ownPawnAttacks & pos.Color(opp); hits != 0; hits = hits.ClearFirst() {
		if _, victim, ok := pos.PieceAt(hits.FirstSquare()); ok {
			ret = ret.Add(PieceAttacks[board.Pawn][victim])
		}
	}

	ret = ret.Add(KingZoneAttack.Pair(kingZoneAttacks))

	// King shelter: pawns one and two ranks ahead of a king on its back two
	// ranks.
	king := pos.KingSquare(c)
	if relativeRank(c, king) < 2 {
		files := board.BitFile(king.File()) | board.AdjacentFiles(king.File())
		ret = ret.Add(KingShield[1].Scale((files & shieldRank(c, king, 1) & ownPawns).PopCount()))
		ret = ret.Add(KingShield[2].Scale((files & shieldRank(c, king, 2) & ownPawns).PopCount()))
	}

	return ret
}

// shieldRank returns the rank mask n steps ahead of the king.
func shieldRank(c board.Color, king board.Square, n int) board.Bitboard {
	r := king.Rank().V()
	if c == board.White {
		r -= n
	} else {
		r += n
	}
	if r < 0 || r > 7 {
		return board.EmptyBitboard
	}
	return board.BitRank(board.Rank(r))
}

const lightSquares board.Bitboard = 0xaa55aa55aa55aa55

func sameColorSquares(sq board.Square) board.Bitboard {
	if isLightSquare(sq) {
		return lightSquares
	}
	return ^lightSquares
}

// EvalHashTable caches full evaluation scores by position hash. Disabled by
// default; the evaluator accepts one as an option.
type EvalHashTable struct {
	entries []evalEntry
	mask    uint64
}

type evalEntry struct {
	hash  board.ZobristHash
	score board.Score
	ok    bool
}

// NewEvalHashTable creates a table with the given number of entries, rounded
// down to a power of two.
func NewEvalHashTable(size int) *EvalHashTable {
	n := 1
	for n<<1 <= size {
		n <<= 1
	}
	return &EvalHashTable{entries: make([]evalEntry, n), mask: uint64(n - 1)}
}

func (t *EvalHashTable) probe(hash board.ZobristHash) (board.Score, bool) {
	e := &t.entries[uint64(hash)&t.mask]
	if e.ok && e.hash == hash {
		return e.score, true
	}
	return board.NoScore, false
}

func (t *EvalHashTable) store(hash board.ZobristHash, score board.Score) {
	t.entries[uint64(hash)&t.mask] = evalEntry{hash: hash, score: score, ok: true}
}

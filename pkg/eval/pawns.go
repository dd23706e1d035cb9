package eval

import "github.com/jingweichess/jingwei/pkg/board"

// Pawn structure evaluation. Scores are white-positive tapered pairs; the
// component tables are rank-indexed from the pawn's own perspective.

// relativeRank returns the rank seen from the pawn's side: 1 on the home rank,
// 6 one step from promotion.
func relativeRank(c board.Color, sq board.Square) int {
	if c == board.White {
		return 7 - sq.Rank().V()
	}
	return sq.Rank().V()
}

// scorePawnStructure evaluates chains, phalanxes, passed and doubled pawns.
func scorePawnStructure(pos *board.Position) board.TaperedScore {
	var ret board.TaperedScore
	for c := board.ZeroColor; c < board.NumColors; c++ {
		side := scorePawnSide(pos, c)
		if c == board.White {
			ret = ret.Add(side)
		} else {
			ret = ret.Sub(side)
		}
	}
	return ret
}

func scorePawnSide(pos *board.Position, c board.Color) board.TaperedScore {
	var ret board.TaperedScore

	opp := c.Opponent()
	own := pos.Piece(c, board.Pawn)
	enemy := pos.Piece(opp, board.Pawn)

	for bb := own; bb != 0; bb = bb.ClearFirst() {
		sq := bb.FirstSquare()
		rel := relativeRank(c, sq)

		// Chain: defended from behind by another pawn.
		if board.PawnAttackboard(opp, sq)&own != 0 {
			ret = ret.Add(PawnChain[rel])
		}

		// Phalanx: side-by-side neighbor on the same rank.
		neighbors := board.AdjacentFiles(sq.File()) & board.BitRank(sq.Rank())
		if neighbors&own != 0 {
			ret = ret.Add(PawnPhalanx[rel])
		}

		// Passed: no enemy pawn ahead on the own or adjacent files.
		if board.PassedPawnMask(c, sq)&enemy == 0 {
			ret = ret.Add(PawnPassed[rel])
		}

		// Doubled: own pawn ahead on the same file.
		if board.SquaresInFront(c, sq)&own != 0 {
			ret = ret.Add(PawnDoubled)
		}
	}
	return ret
}

// passedPawns returns the passed pawns of the given color, for the search's
// extension decisions.
func passedPawns(pos *board.Position, c board.Color) board.Bitboard {
	var ret board.Bitboard
	enemy := pos.Piece(c.Opponent(), board.Pawn)
	for bb := pos.Piece(c, board.Pawn); bb != 0; bb = bb.ClearFirst() {
		sq := bb.FirstSquare()
		if board.PassedPawnMask(c, sq)&enemy == 0 {
			ret |= board.BitMask(sq)
		}
	}
	return ret
}

// PassedPawns returns the passed pawns of the given color.
func PassedPawns(pos *board.Position, c board.Color) board.Bitboard {
	return passedPawns(pos, c)
}

// PawnHashTable caches pawn-structure scores by pawn hash. Disabled by default;
// the evaluator accepts one as an option.
type PawnHashTable struct {
	entries []pawnEntry
	mask    uint64
}

type pawnEntry struct {
	hash  board.ZobristHash
	score board.TaperedScore
	ok    bool
}

// NewPawnHashTable creates a table with the given number of entries, rounded
// down to a power of two.
func NewPawnHashTable(size int) *PawnHashTable {
	n := 1
	for n<<1 <= size {
		n <<= 1
	}
	return &PawnHashTable{entries: make([]pawnEntry, n), mask: uint64(n - 1)}
}

func (t *PawnHashTable) probe(hash board.ZobristHash) (board.TaperedScore, bool) {
	e := &t.entries[uint64(hash)&t.mask]
	if e.ok && e.hash == hash {
		return e.score, true
	}
	return board.TaperedScore{}, false
}

func (t *PawnHashTable) store(hash board.ZobristHash, score board.TaperedScore) {
	t.entries[uint64(hash)&t.mask] = pawnEntry{hash: hash, score: score, ok: true}
}

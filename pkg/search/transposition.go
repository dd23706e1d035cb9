package search

import (
	"context"
	"fmt"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/seekerror/logw"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	NoBound Bound = iota
	ExactBound
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "None"
	}
}

// entry is a packed 16-byte transposition table slot. Mate scores are stored
// scaled to the node that wrote them and unscaled on read, so the distance to
// mate stays correct wherever the entry is probed.
type entry struct {
	hash      board.ZobristHash // 8
	score     int16             // 2
	depth     uint8             // 1: depth searched below the node
	age       uint8             // 1: generation counter
	kind      Bound             // 1
	from, to  uint8             // 2: best move
	promotion uint8             // 1
}

// TranspositionTable is a fixed-size hash of search results. Replacement is
// always-overwrite; the generation counter ages entries across searches.
// Single-threaded: the search owns the table.
type TranspositionTable struct {
	entries    []entry
	mask       uint64
	generation uint8
	used       uint64
}

// NewTranspositionTable allocates a table of the given size in bytes, rounded
// down to a power-of-two entry count.
func NewTranspositionTable(ctx context.Context, size uint64) *TranspositionTable {
	n := uint64(1)
	for n<<1 <= size/16 {
		n <<= 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v entries", size>>20, n)

	return &TranspositionTable{
		entries: make([]entry, n),
		mask:    n - 1,
	}
}

// NewSearch advances the generation counter.
func (t *TranspositionTable) NewSearch() {
	t.generation++
}

// Size returns the size of the table in bytes.
func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.entries)) << 4
}

// Used returns the utilization as a fraction [0;1].
func (t *TranspositionTable) Used() float64 {
	return float64(t.used) / float64(len(t.entries))
}

// Read returns the bound, depth searched, score and best move for the given
// position hash, if present. The score is unscaled relative to currentDepth.
func (t *TranspositionTable) Read(hash board.ZobristHash, currentDepth int) (Bound, int, board.Score, board.Move, bool) {
	e := &t.entries[uint64(hash)&t.mask]
	if e.kind == NoBound || e.hash != hash {
		return NoBound, 0, board.NoScore, board.Move{}, false
	}

	move := board.Move{From: board.Square(e.from), To: board.Square(e.to), Promotion: board.Piece(e.promotion), See: board.InvalidScore}
	return e.kind, int(e.depth), scoreFromHash(board.Score(e.score), currentDepth), move, true
}

// Write stores the entry, scaling mate scores relative to currentDepth.
// Always overwrites.
func (t *TranspositionTable) Write(hash board.ZobristHash, kind Bound, currentDepth, depthLeft int, score board.Score, move board.Move) {
	e := &t.entries[uint64(hash)&t.mask]
	if e.kind == NoBound {
		t.used++
	}

	*e = entry{
		hash:      hash,
		score:     int16(scoreToHash(score, currentDepth)),
		depth:     uint8(depthLeft),
		age:       t.generation,
		kind:      kind,
		from:      uint8(move.From),
		to:        uint8(move.To),
		promotion: uint8(move.Promotion),
	}
}

func (t *TranspositionTable) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// scoreToHash normalizes a mate score to the writing node: the stored value is
// the distance from that node, not from the root.
func scoreToHash(score board.Score, currentDepth int) board.Score {
	switch {
	case board.IsWinScore(score):
		return score + board.Score(currentDepth)
	case board.IsLossScore(score):
		return score - board.Score(currentDepth)
	default:
		return score
	}
}

// scoreFromHash rebases a stored mate score onto the probing node.
func scoreFromHash(score board.Score, currentDepth int) board.Score {
	switch {
	case board.IsWinScore(score):
		return score - board.Score(currentDepth)
	case board.IsLossScore(score):
		return score + board.Score(currentDepth)
	default:
		return score
	}
}

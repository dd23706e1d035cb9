package engine

import "github.com/jingweichess/jingwei/pkg/board"

// Perft returns the number of legal leaf nodes at the given depth. It is the
// standard move generator diagnostic: the counts must match the published
// values exactly.
func Perft(pos *board.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var buf [board.MaxMoves]board.Move
	moves := pos.LegalMoves(buf[:0], board.AllMoves)
	if depth == 1 {
		return uint64(len(moves))
	}

	var sum uint64
	for _, m := range moves {
		child := pos.Apply(m)
		sum += Perft(&child, depth-1)
	}
	return sum
}

// PerftDivision is the leaf count below one root move.
type PerftDivision struct {
	Move  board.Move
	Count uint64
}

// Divide returns the per-move breakdown of Perft at the given depth, in
// generation order. Useful to bisect generator disagreements.
func Divide(pos *board.Position, depth int) []PerftDivision {
	var buf [board.MaxMoves]board.Move
	moves := pos.LegalMoves(buf[:0], board.AllMoves)

	ret := make([]PerftDivision, 0, len(moves))
	for _, m := range moves {
		child := pos.Apply(m)
		ret = append(ret, PerftDivision{Move: m, Count: Perft(&child, depth-1)})
	}
	return ret
}

package search

import "github.com/jingweichess/jingwei/pkg/board"

// HistoryTable is a piece-to-square running tally of cutoff contributions,
// used for quiet move ordering. A second instance tracks moves that led to
// mate scores.
type HistoryTable struct {
	scores [board.NumPieces][board.NumSquares]uint32
}

// Add credits the piece-to-square cell and returns the new tally.
func (h *HistoryTable) Add(piece board.Piece, sq board.Square, delta uint32) uint32 {
	h.scores[piece][sq] += delta
	return h.scores[piece][sq]
}

// Get returns the tally for the piece-to-square cell.
func (h *HistoryTable) Get(piece board.Piece, sq board.Square) uint32 {
	return h.scores[piece][sq]
}

// Reset zeroes the table.
func (h *HistoryTable) Reset() {
	h.scores = [board.NumPieces][board.NumSquares]uint32{}
}

// Age halves every cell, decaying stale information between searches.
func (h *HistoryTable) Age() {
	for p := range h.scores {
		for sq := range h.scores[p] {
			h.scores[p][sq] >>= 1
		}
	}
}

// killerSlot holds the two quiet moves that most recently caused a cutoff at a
// ply, plus the two that caused mate-score cutoffs.
type killerSlot struct {
	killer1, killer2         board.Move
	mateKiller1, mateKiller2 board.Move
}

// insert shifts in a new killer if it differs from the current first.
func (k *killerSlot) insert(m board.Move) {
	if !k.killer1.Equals(m) {
		k.killer2 = k.killer1
		k.killer1 = m
	}
}

// insertMate shifts in a new mate killer if it differs from the current first.
func (k *killerSlot) insertMate(m board.Move) {
	if !k.mateKiller1.Equals(m) {
		k.mateKiller2 = k.mateKiller1
		k.mateKiller1 = m
	}
}

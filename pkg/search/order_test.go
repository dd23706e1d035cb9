package search

import (
	"testing"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeT(t *testing.T, str string) board.Position {
	t.Helper()
	pos, err := fen.Decode(str)
	require.NoError(t, err, str)
	return pos
}

func TestOrdererHashMoveFirst(t *testing.T) {
	pos := decodeT(t, fen.Initial)
	o := Orderer{History: &HistoryTable{}, MateHistory: &HistoryTable{}}

	var buf [board.MaxMoves]board.Move
	moves := pos.LegalMoves(buf[:0], board.AllMoves)

	hashMove, err := board.ParseMove("g1f3")
	require.NoError(t, err)

	o.Rank(&pos, moves, hashMove, &killerSlot{})
	assert.True(t, moves[0].Equals(hashMove))
}

func TestOrdererCapturesBeforeQuiets(t *testing.T) {
	// White can win a pawn or shuffle.
	pos := decodeT(t, "4k3/8/8/3p4/4B3/8/8/4K3 w - - 0 1")
	o := Orderer{History: &HistoryTable{}, MateHistory: &HistoryTable{}}

	var buf [board.MaxMoves]board.Move
	moves := pos.LegalMoves(buf[:0], board.AllMoves)
	o.Rank(&pos, moves, board.Move{}, &killerSlot{})

	assert.True(t, moves[0].IsCapture(), "good capture first: %v", moves[0])
	assert.Equal(t, "e4d5", moves[0].String())
}

func TestOrdererKillersBeforeQuiets(t *testing.T) {
	pos := decodeT(t, fen.Initial)
	o := Orderer{History: &HistoryTable{}, MateHistory: &HistoryTable{}}

	killer, err := board.ParseMove("b1c3")
	require.NoError(t, err)

	var killers killerSlot
	killers.insert(killer)

	var buf [board.MaxMoves]board.Move
	moves := pos.LegalMoves(buf[:0], board.AllMoves)
	o.Rank(&pos, moves, board.Move{}, &killers)

	assert.True(t, moves[0].Equals(killer))
}

func TestOrdererLosingCapturesLast(t *testing.T) {
	// Rook takes a defended pawn: a losing capture sorts behind safe quiets.
	pos := decodeT(t, "4k3/8/2p5/3p4/8/8/8/3RK3 w - - 0 1")
	o := Orderer{History: &HistoryTable{}, MateHistory: &HistoryTable{}}

	var buf [board.MaxMoves]board.Move
	moves := pos.LegalMoves(buf[:0], board.AllMoves)
	o.Rank(&pos, moves, board.Move{}, &killerSlot{})

	losing, err := board.ParseMove("d1d5")
	require.NoError(t, err)

	last := moves[len(moves)-1]
	assert.True(t, last.Equals(losing), "losing capture must sort last: %v", last)
}

func TestKillerSlotShift(t *testing.T) {
	var k killerSlot
	a, _ := board.ParseMove("e2e4")
	b, _ := board.ParseMove("d2d4")

	k.insert(a)
	k.insert(a) // duplicate is ignored
	assert.True(t, k.killer1.Equals(a))
	assert.False(t, k.killer2.Equals(a))

	k.insert(b)
	assert.True(t, k.killer1.Equals(b))
	assert.True(t, k.killer2.Equals(a))
}

func TestHistoryTable(t *testing.T) {
	var h HistoryTable
	h.Add(board.Knight, board.F3, 16)
	h.Add(board.Knight, board.F3, 4)
	assert.Equal(t, uint32(20), h.Get(board.Knight, board.F3))

	h.Age()
	assert.Equal(t, uint32(10), h.Get(board.Knight, board.F3))

	h.Reset()
	assert.Equal(t, uint32(0), h.Get(board.Knight, board.F3))
}

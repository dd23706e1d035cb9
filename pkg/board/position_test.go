package board_test

import (
	"testing"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, str string) board.Position {
	t.Helper()
	pos, err := fen.Decode(str)
	require.NoError(t, err, str)
	return pos
}

func TestInvariants(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/3K4/3N4/3B4/8/8/8 w - - 0 1",
	}

	for _, tt := range tests {
		pos := decode(t, tt)
		assert.NoError(t, pos.CheckInvariants(), tt)
	}
}

func TestHashConsistency(t *testing.T) {
	pos := decode(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	fresh := pos
	fresh.RebuildDerived()

	assert.Equal(t, pos.Hash(), fresh.Hash())
	assert.Equal(t, pos.MaterialHash(), fresh.MaterialHash())
	assert.Equal(t, pos.PawnHash(), fresh.PawnHash())
	assert.Equal(t, pos.MaterialEval(), fresh.MaterialEval())
	assert.Equal(t, pos.PstEval(), fresh.PstEval())
}

func TestHashDiffers(t *testing.T) {
	a := decode(t, fen.Initial)
	b := decode(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	c := decode(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w Qkq - 0 1")

	assert.NotEqual(t, a.Hash(), b.Hash(), "turn key")
	assert.NotEqual(t, a.Hash(), c.Hash(), "castling key")
	assert.Equal(t, a.MaterialHash(), b.MaterialHash())
	assert.Equal(t, a.PawnHash(), b.PawnHash())
}

func TestIsAttacked(t *testing.T) {
	pos := decode(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")

	// The rook on a1 attacks along the file and rank.
	assert.True(t, pos.IsAttacked(board.Black, board.A8))
	assert.True(t, pos.IsAttacked(board.Black, board.D1))
	assert.False(t, pos.IsAttacked(board.Black, board.B2))

	// White's own king defends its neighbors.
	assert.True(t, pos.IsAttacked(board.Black, board.D2))
}

func TestIsChecked(t *testing.T) {
	pos := decode(t, "4k3/4R3/8/8/8/8/8/4K3 b - - 0 1")
	assert.True(t, pos.IsChecked(board.Black))
	assert.False(t, pos.IsChecked(board.White))
}

func TestMirrorColors(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
	}

	for _, tt := range tests {
		pos := decode(t, tt)
		mirror := pos.MirrorColors()

		assert.NoError(t, mirror.CheckInvariants(), tt)
		assert.Equal(t, pos.Turn().Opponent(), mirror.Turn())
		assert.Equal(t, pos.MaterialEval(), mirror.MaterialEval().Neg(), tt)
		assert.Equal(t, pos.PstEval(), mirror.PstEval().Neg(), tt)

		// Mirroring twice restores the position.
		again := mirror.MirrorColors()
		assert.Equal(t, pos.Hash(), again.Hash(), tt)
	}
}

func TestHasInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen      string
		expected bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/4KB2 w - - 0 1", true},
		{"4k3/8/8/3n4/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/3n4/8/8/8/4KB2 w - - 0 1", true},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/4K2R w - - 0 1", false},
		{"4k3/8/8/3nn3/8/8/8/4K3 w - - 0 1", false},
	}

	for _, tt := range tests {
		pos := decode(t, tt.fen)
		assert.Equal(t, tt.expected, pos.HasInsufficientMaterial(), tt.fen)
	}
}

func TestHasNonPawnMaterial(t *testing.T) {
	pos := decode(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	assert.False(t, pos.HasNonPawnMaterial(board.White))
	assert.False(t, pos.HasNonPawnMaterial(board.Black))

	pos = decode(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	assert.True(t, pos.HasNonPawnMaterial(board.White))
	assert.False(t, pos.HasNonPawnMaterial(board.Black))
}

package fen_test

import (
	"testing"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		"4k3/8/3K4/3N4/3B4/8/8/8 w - - 0 1",
		"8/8/8/8/8/4k3/4P3/4K3 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 4 10",
	}

	for _, tt := range tests {
		pos, err := fen.Decode(tt)
		require.NoError(t, err, tt)
		assert.Equal(t, tt, fen.Encode(&pos), tt)

		again, err := fen.Decode(fen.Encode(&pos))
		require.NoError(t, err, tt)
		assert.Equal(t, pos, again, tt)
	}
}

func TestDecodeInitial(t *testing.T) {
	pos, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, board.White, pos.Turn())
	assert.Equal(t, board.FullCastlingRights, pos.Castling())
	assert.Equal(t, 32, pos.Phase())
	assert.Equal(t, board.E1, pos.KingSquare(board.White))
	assert.Equal(t, board.E8, pos.KingSquare(board.Black))
	assert.Equal(t, 8, pos.Piece(board.White, board.Pawn).PopCount())

	_, ok := pos.EnPassant()
	assert.False(t, ok)

	c, piece, ok := pos.PieceAt(board.D8)
	require.True(t, ok)
	assert.Equal(t, board.Black, c)
	assert.Equal(t, board.Queen, piece)
}

// TestDecodeEnPassant verifies the en passant square survives only when an
// enemy pawn is actually positioned to capture.
func TestDecodeEnPassant(t *testing.T) {
	pos, err := fen.Decode("rnbqkbnr/pp1ppppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	require.NoError(t, err)
	ep, ok := pos.EnPassant()
	require.True(t, ok)
	assert.Equal(t, board.E3, ep)

	// No black pawn can take on e3: the square is dropped.
	pos, err = fen.Decode("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	require.NoError(t, err)
	_, ok = pos.EnPassant()
	assert.False(t, ok)
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",            // missing sections
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad color
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1", // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1", // bad ep
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",  // bad halfmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 x",  // bad fullmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w KQkq - 0 1",   // short rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1", // long rank
		"rnbqkbn?/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",  // bad piece
	}

	for _, tt := range tests {
		_, err := fen.Decode(tt)
		assert.Error(t, err, tt)
	}
}

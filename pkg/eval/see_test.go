package eval_test

import (
	"testing"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/jingweichess/jingwei/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, str string) board.Position {
	t.Helper()
	pos, err := fen.Decode(str)
	require.NoError(t, err, str)
	return pos
}

func findMove(t *testing.T, pos *board.Position, str string) board.Move {
	t.Helper()
	var buf [board.MaxMoves]board.Move
	for _, m := range pos.LegalMoves(buf[:0], board.AllMoves) {
		if m.String() == str {
			return m
		}
	}
	require.Failf(t, "move not found", "%v in %v", str, pos)
	return board.Move{}
}

func TestStaticExchange(t *testing.T) {
	tests := []struct {
		fen      string
		move     string
		expected board.Score
	}{
		// Free pawn.
		{"4k3/8/8/3p4/4B3/8/8/4K3 w - - 0 1", "e4d5", 100},
		// Defended pawn: bishop takes pawn, pawn recaptures.
		{"4k3/8/2p5/3p4/4B3/8/8/4K3 w - - 0 1", "e4d5", -225},
		// Pawn takes defended pawn: even trade.
		{"4k3/8/2p5/3p4/4P3/8/8/4K3 w - - 0 1", "e4d5", 0},
		// Rook takes undefended knight.
		{"4k3/8/8/8/8/8/8/Rn2K3 w - - 0 1", "a1b1", 325},
		// Queen takes a rook-defended pawn with no recapture: queen for pawn.
		{"4k3/8/8/3r4/8/3p4/8/3QK3 w - - 0 1", "d1d3", 100 - 975},
		// Capture with the optimistic fast path: queen captured by pawn.
		{"4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", "e4d5", 975 - 100},
	}

	for _, tt := range tests {
		pos := decode(t, tt.fen)
		m := findMove(t, &pos, tt.move)
		assert.Equalf(t, tt.expected, eval.StaticExchange(&pos, m), "%v on %v", tt.move, tt.fen)
	}
}

// TestStaticExchangeBounds checks the §8 properties: SEE never exceeds the
// captured value and the fast path honors its lower bound.
func TestStaticExchangeBounds(t *testing.T) {
	tests := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	}

	for _, tt := range tests {
		pos := decode(t, tt)

		var buf [board.MaxMoves]board.Move
		for _, m := range pos.LegalMoves(buf[:0], board.AllMoves) {
			if !m.IsCapture() {
				continue
			}
			see := eval.StaticExchange(&pos, m)
			_, mover, _ := pos.PieceAt(m.From)

			assert.NotEqual(t, board.InvalidScore, see, m)
			assert.LessOrEqualf(t, see, eval.SeeValue(m.Captured), "see(%v) above captured value", m)
			if eval.SeeValue(m.Captured) > eval.SeeValue(mover) {
				assert.GreaterOrEqualf(t, see, eval.SeeValue(m.Captured)-eval.SeeValue(mover), "see(%v) below optimistic bound", m)
			}
		}
	}
}

// TestStaticExchangeXray exercises line re-opening: stacked attackers fire
// through each other once the front piece has captured.
func TestStaticExchangeXray(t *testing.T) {
	// Two rooks doubled against a rook-defended pawn: the back rook fires
	// through the front one's vacated square.
	pos := decode(t, "3rk3/8/8/3p4/8/8/3R4/3R3K w - - 0 1")
	m := findMove(t, &pos, "d2d5")

	// RxP, rxR, Rxr: pawn + rook - rook = pawn.
	assert.Equal(t, board.Score(100), eval.StaticExchange(&pos, m))
}

package eval_test

import (
	"testing"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/jingweichess/jingwei/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestColorSymmetry mirrors the colors of a battery of positions. The score is
// from the side to move's perspective and the mirror also flips the mover, so
// the evaluations must be identical: every term is computed the same way for
// both sides.
func TestColorSymmetry(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	e := eval.NewEvaluator()
	for _, tt := range tests {
		pos := decode(t, tt)
		mirror := pos.MirrorColors()

		score := e.EvaluateFull(&pos)
		mirrored := e.EvaluateFull(&mirror)
		assert.Equalf(t, score, mirrored, "asymmetric evaluation: %v", tt)
	}
}

func TestStartingPositionBalanced(t *testing.T) {
	e := eval.NewEvaluator()
	pos := decode(t, fen.Initial)

	// Only the tempo bonus separates the symmetric starting position.
	score := e.EvaluateFull(&pos)
	assert.Less(t, score, board.Score(50))
	assert.Greater(t, score, board.Score(0))
}

func TestMaterialAdvantage(t *testing.T) {
	e := eval.NewEvaluator()

	// White is a clean rook up.
	pos := decode(t, "4k3/pppp4/8/8/8/8/PPPP4/R3K3 w - - 0 1")
	score := e.EvaluateFull(&pos)
	assert.Greater(t, score, board.Score(300))

	// The same position from black's perspective is as bad.
	pos = decode(t, "4k3/pppp4/8/8/8/8/PPPP4/R3K3 b - - 0 1")
	assert.Less(t, e.EvaluateFull(&pos), board.Score(-300))
}

// TestLazyCut verifies the window shortcut: far outside the window the lazy
// balance stands, inside it the full terms move the score.
func TestLazyCut(t *testing.T) {
	e := eval.NewEvaluator()
	pos := decode(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")

	lazy := pos.MaterialEval().Add(pos.PstEval()).Taper(pos.Phase())
	got := e.Evaluate(&pos, lazy+1000, lazy+2000)
	assert.Equal(t, lazy, got, "outside the window the accumulators stand")

	full := e.EvaluateFull(&pos)
	assert.NotEqual(t, lazy, full, "inside the window the full terms apply")
}

func TestEvalHashTable(t *testing.T) {
	e := eval.NewEvaluator()
	pos := decode(t, "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10")

	plain := e.EvaluateFull(&pos)

	e.EvalTable = eval.NewEvalHashTable(1 << 10)
	first := e.EvaluateFull(&pos)
	second := e.EvaluateFull(&pos)

	assert.Equal(t, plain, first)
	assert.Equal(t, first, second, "cached result differs")
}

func TestPawnHashTable(t *testing.T) {
	e := eval.NewEvaluator()
	pos := decode(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")

	plain := e.EvaluateFull(&pos)

	e.PawnTable = eval.NewPawnHashTable(1 << 10)
	assert.Equal(t, plain, e.EvaluateFull(&pos))
	assert.Equal(t, plain, e.EvaluateFull(&pos))
}

func TestSetParameter(t *testing.T) {
	require.NoError(t, eval.SetParameter("TempoMg", 12))
	assert.Error(t, eval.SetParameter("NoSuchParameter", 1))
	assert.Contains(t, eval.ParameterNames(), "PawnMg")
	assert.Contains(t, eval.ParameterNames(), "BishopPairEg")
}

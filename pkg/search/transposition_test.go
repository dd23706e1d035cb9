package search_test

import (
	"context"
	"testing"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionRoundTrip(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	move := board.Move{From: board.E2, To: board.E4}
	tt.Write(0xdeadbeef, search.ExactBound, 3, 5, 42, move)

	kind, depth, score, got, ok := tt.Read(0xdeadbeef, 3)
	require.True(t, ok)
	assert.Equal(t, search.ExactBound, kind)
	assert.Equal(t, 5, depth)
	assert.Equal(t, board.Score(42), score)
	assert.True(t, move.Equals(got))

	_, _, _, _, ok = tt.Read(0xcafe, 3)
	assert.False(t, ok)
}

// TestTranspositionMateScaling verifies the store/load scaling: a mate score
// probed at a different depth keeps its distance from the probing node.
func TestTranspositionMateScaling(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	// Mate in 3 plies seen at depth 5: win at ply 8 from the root.
	score := board.WinInDepth(8)
	tt.Write(0x1234, search.ExactBound, 5, 4, score, board.Move{})

	// Probed at depth 7, the same mate is still three plies away: ply 10.
	_, _, got, _, ok := tt.Read(0x1234, 7)
	require.True(t, ok)
	assert.Equal(t, board.WinInDepth(10), got)

	// Loss scores scale the other way.
	tt.Write(0x4321, search.ExactBound, 5, 4, board.LostInDepth(8), board.Move{})
	_, _, got, _, ok = tt.Read(0x4321, 3)
	require.True(t, ok)
	assert.Equal(t, board.LostInDepth(6), got)
}

func TestTranspositionOverwrite(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	tt.Write(0x1, search.ExactBound, 0, 8, 100, board.Move{})
	tt.Write(0x1, search.LowerBound, 0, 2, -50, board.Move{})

	// Replacement is always-overwrite: the shallow entry wins.
	kind, depth, score, _, ok := tt.Read(0x1, 0)
	require.True(t, ok)
	assert.Equal(t, search.LowerBound, kind)
	assert.Equal(t, 2, depth)
	assert.Equal(t, board.Score(-50), score)
}

func TestTranspositionEntrySize(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<20)

	// 16 bytes per entry: a 1MB request holds 64k entries.
	assert.Equal(t, uint64(1<<20), tt.Size())
	assert.Equal(t, float64(0), tt.Used())
}

package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/jingweichess/jingwei/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRoundTrip(t *testing.T) {
	ctx := context.Background()

	j, err := engine.OpenJournal(ctx, t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	first := engine.GameRecord{
		Start:  fen.Initial,
		Moves:  []string{"e2e4", "e7e5", "g1f3"},
		Result: "1/2-1/2 {agreed}",
		Played: time.Unix(1000, 0),
	}
	second := engine.GameRecord{
		Start:  "4k3/8/8/8/8/8/8/4K2R w K - 0 1",
		Moves:  []string{"h1h8"},
		Result: "1-0 {mate}",
		Played: time.Unix(2000, 0),
	}

	require.NoError(t, j.RecordGame(ctx, first))
	require.NoError(t, j.RecordGame(ctx, second))

	games, err := j.Games(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, first.Start, games[0].Start)
	assert.Equal(t, first.Moves, games[0].Moves)
	assert.Equal(t, first.Result, games[0].Result)
	assert.True(t, first.Played.Equal(games[0].Played))

	assert.Equal(t, second.Result, games[1].Result)
	assert.True(t, second.Played.Equal(games[1].Played))
}

func TestJournalBackfillsTimestamp(t *testing.T) {
	ctx := context.Background()

	j, err := engine.OpenJournal(ctx, t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordGame(ctx, engine.GameRecord{Start: fen.Initial, Result: "*"}))

	games, err := j.Games(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.False(t, games[0].Played.IsZero())
}

func TestEngineRecordsResult(t *testing.T) {
	ctx := context.Background()

	j, err := engine.OpenJournal(ctx, t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	e := engine.New(ctx, "jingwei", "test", engine.WithJournal(j))
	require.NoError(t, e.Move(ctx, "e2e4"))
	require.NoError(t, e.Move(ctx, "e7e5"))
	require.NoError(t, e.Result(ctx, "1/2-1/2 {test}"))

	games, err := j.Games(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, fen.Initial, games[0].Start)
	assert.Equal(t, []string{"e2e4", "e7e5"}, games[0].Moves)
	assert.Equal(t, "1/2-1/2 {test}", games[0].Result)
}

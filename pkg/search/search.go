// Package search contains the principal variation search, quiescence,
// transposition table, move ordering and time management.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

// MaxDepth is the hard cap on iteration depth.
const MaxDepth = board.MaxPly

// PV represents the principal variation for some search depth.
type PV struct {
	Depth int           // depth of search
	Moves []board.Move  // principal variation
	Score board.Score   // evaluation at depth, side to move's perspective
	Nodes uint64        // interior/leaf nodes searched
	Time  time.Duration // time taken by search
	Hash  float64       // hash table used [0;1]
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v",
		p.Depth, p.Score, p.Nodes, p.Time, int(100*p.Hash), board.PrintMoves(p.Moves))
}

// RepEntry is one step of position history for repetition detection: the
// position hash and whether the move leading here reset the repetition
// horizon.
type RepEntry struct {
	Hash         board.ZobristHash
	Irreversible bool
}

// Options hold dynamic search options for a single search.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth.
	DepthLimit lang.Optional[int]
	// Ponder restricts the root to the given move, for line analysis.
	Ponder lang.Optional[board.Move]
}

// Launcher is an interface for managing searches.
type Launcher interface {
	// Launch a new search from the given position. The history seeds
	// repetition detection. It returns a PV channel for iteratively deeper
	// searches; the channel is closed when the search stops on its own. The
	// search can be halted at any time.
	Launch(ctx context.Context, pos board.Position, history []RepEntry, clock *Clock, opt Options) (Handle, <-chan PV)
}

// Handle is an interface for the engine to manage searches. The engine is
// expected to spin off searches and close/abandon them when no longer needed.
type Handle interface {
	// Halt halts the search, if running. Idempotent.
	Halt() PV
}

// Package engine encapsulates game-playing logic: the position stack, search
// control, evaluation access and parameter overrides.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/jingweichess/jingwei/pkg/eval"
	"github.com/jingweichess/jingwei/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(1, 4, 0)

// Options are engine creation options.
type Options struct {
	// Hash is the transposition table size in MB. If zero, the engine will
	// not use a transposition table.
	Hash uint
	// UseEvalHash enables the evaluation score cache.
	UseEvalHash bool
	// UsePawnHash enables the pawn structure cache.
	UsePawnHash bool
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%v, evalhash=%v, pawnhash=%v}", o.Hash, o.UseEvalHash, o.UsePawnHash)
}

// Engine owns a stack of positions, a clock and the search machinery. All
// methods are safe for concurrent use by a single protocol driver.
type Engine struct {
	name, author string

	evaluator *eval.Evaluator
	root      *search.PVS
	launcher  search.Launcher
	clock     *search.Clock
	journal   *Journal
	opts      Options

	positions []board.Position
	moves     []board.Move
	active    search.Handle
	mu        sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithJournal records finished games to the given journal.
func WithJournal(j *Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		clock:  search.NewClock(),
	}
	for _, fn := range opts {
		fn(e)
	}

	e.evaluator = eval.NewEvaluator()
	if e.opts.UseEvalHash {
		e.evaluator.EvalTable = eval.NewEvalHashTable(1 << 20)
	}
	if e.opts.UsePawnHash {
		e.evaluator.PawnTable = eval.NewPawnHashTable(1 << 16)
	}

	e.root = &search.PVS{Eval: e.evaluator}
	if e.opts.Hash > 0 {
		e.root.TT = search.NewTranspositionTable(ctx, uint64(e.opts.Hash)<<20)
	}
	e.launcher = &search.Iterative{Root: e.root}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

// Clock returns the engine clock, configured by the protocol driver.
func (e *Engine) Clock() *search.Clock {
	return e.clock
}

// Position returns the current position.
func (e *Engine) Position() board.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.top()
}

// FEN returns the current position in FEN format. Convenience function.
func (e *Engine) FEN() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	top := e.top()
	return fen.Encode(&top)
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	pos, err := fen.Decode(position)
	if err != nil {
		return err
	}

	e.positions = e.positions[:0]
	e.positions = append(e.positions, pos)
	e.moves = e.moves[:0]

	logw.Infof(ctx, "Reset %v", position)
	return nil
}

// Move applies a move in long algebraic notation, usually an opponent move.
// The move must be legal in the current position.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	if !e.apply(candidate) {
		return fmt.Errorf("illegal move: %v", candidate)
	}

	logw.Infof(ctx, "Move %v: %v", move, e.fenLocked())
	return nil
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	if len(e.positions) < 2 {
		return fmt.Errorf("no move to take back")
	}
	e.positions = e.positions[:len(e.positions)-1]
	e.moves = e.moves[:len(e.moves)-1]

	logw.Infof(ctx, "Takeback: %v", e.fenLocked())
	return nil
}

// Analyze searches the current position. The channel streams iteratively
// deeper principal variations until the search stops or is halted.
func (e *Engine) Analyze(ctx context.Context, opt search.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	logw.Infof(ctx, "Analyze %v, clock=%v", e.fenLocked(), e.clock)

	handle, out := e.launcher.Launch(ctx, e.top(), e.historyEntries(), e.clock, opt)
	e.active = handle
	return out, nil
}

// BestMove searches the current position under the configured clock and
// returns the final principal variation. Synchronous.
func (e *Engine) BestMove(ctx context.Context, opt search.Options) (search.PV, error) {
	out, err := e.Analyze(ctx, opt)
	if err != nil {
		return search.PV{}, err
	}

	var last search.PV
	for pv := range out {
		last = pv
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = nil
	return last, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

// Apply commits a search result: the move is pushed onto the position stack.
func (e *Engine) Apply(ctx context.Context, m board.Move) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.apply(m) {
		return fmt.Errorf("illegal move: %v", m)
	}
	e.clock.DecrementMovesLeft()
	return nil
}

// StaticEval returns the static evaluation of the current position, from the
// side to move's perspective.
func (e *Engine) StaticEval() board.Score {
	e.mu.Lock()
	defer e.mu.Unlock()

	top := e.top()
	return e.evaluator.EvaluateFull(&top)
}

// Perft returns the legal leaf count at the given depth from the current
// position.
func (e *Engine) Perft(depth int) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	top := e.top()
	return Perft(&top, depth)
}

// SetParameter overrides a named evaluation parameter and rebuilds the derived
// tables and accumulators.
func (e *Engine) SetParameter(ctx context.Context, name string, value board.Score) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := eval.SetParameter(name, value); err != nil {
		return err
	}
	for i := range e.positions {
		e.positions[i].RebuildDerived()
	}

	logw.Infof(ctx, "Set parameter %v=%v", name, value)
	return nil
}

// Result records the game result to the journal, if one is attached.
func (e *Engine) Result(ctx context.Context, result string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	if e.journal == nil {
		logw.Infof(ctx, "Result %v (no journal)", result)
		return nil
	}

	start := e.positions[0]
	moves := make([]string, len(e.moves))
	for i, m := range e.moves {
		moves[i] = m.String()
	}
	return e.journal.RecordGame(ctx, GameRecord{
		Start:  fen.Encode(&start),
		Moves:  moves,
		Result: result,
	})
}

// fenLocked formats the current position; the caller holds the lock.
func (e *Engine) fenLocked() string {
	top := e.top()
	return fen.Encode(&top)
}

func (e *Engine) top() board.Position {
	return e.positions[len(e.positions)-1]
}

func (e *Engine) apply(candidate board.Move) bool {
	top := e.top()

	var buf [board.MaxMoves]board.Move
	for _, m := range top.LegalMoves(buf[:0], board.AllMoves) {
		if !candidate.Equals(m) {
			continue
		}
		e.positions = append(e.positions, top.Apply(m))
		e.moves = append(e.moves, m)
		return true
	}
	return false
}

// historyEntries converts the position stack into repetition seeds.
func (e *Engine) historyEntries() []search.RepEntry {
	ret := make([]search.RepEntry, len(e.positions))
	for i := range e.positions {
		irreversible := i == 0
		if i > 0 {
			irreversible = e.positions[i-1].IsIrreversible(e.moves[i-1])
		}
		ret[i] = search.RepEntry{Hash: e.positions[i].Hash(), Irreversible: irreversible}
	}
	return ret
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search halted: %v", pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}

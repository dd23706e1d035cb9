package search

import (
	"context"
	"sync"
	"time"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// aspirationDelta is the initial half-width of the aspiration window, one pawn.
const aspirationDelta board.Score = 100

// Iterative is a search harness for iterative deepening with aspiration
// windows over the principal variation search.
type Iterative struct {
	Root *PVS
}

func (i *Iterative) Launch(ctx context.Context, pos board.Position, history []RepEntry, clock *Clock, opt Options) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, pos, history, clock, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, cfg *PVS, pos board.Position, history []RepEntry, clock *Clock, opt Options, out chan PV) {
	defer h.init.Close()
	defer close(out)

	clock.Start()
	if cfg.TT != nil {
		cfg.TT.NewSearch()
	}

	r := newRun(cfg, clock, history, h.quit.Closed())

	prev := board.NoScore
	var bestMove board.Move

	// Depth starts at 2 and increments; a depth-2 iteration always completes
	// so that a move is available.
	for depth := 2; depth < MaxDepth && !h.quit.IsClosed(); depth++ {
		start := time.Now()
		r.rootDepth = depth

		score, moves := h.aspiration(r, &pos, depth, prev, bestMove, opt)
		if r.aborted {
			break // keep the last completed iteration
		}

		pv := PV{
			Depth: depth,
			Nodes: r.nodes,
			Score: score,
			Moves: moves,
			Time:  clock.Elapsed(r.nodes),
		}
		if cfg.TT != nil {
			pv.Hash = cfg.TT.Used()
		}

		logw.Debugf(ctx, "Searched %v in %v: %v", pos.String(), time.Since(start), pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
		prev = score
		if len(moves) > 0 {
			bestMove = moves[0]
		}

		if limit, ok := opt.DepthLimit.V(); ok && depth >= limit {
			return // halt: reached the requested depth
		}
		if board.IsMateScore(score) {
			md := board.DistanceToWin(score)
			if board.IsLossScore(score) {
				md = board.DistanceToLoss(score)
			}
			if depth > 3*md {
				return // halt: the mate is fully resolved
			}
		}
		if !clock.ShouldContinueSearch(depth, r.nodes) {
			return // halt: budget exhausted
		}
	}
}

// aspiration runs one root iteration with a window around the previous score,
// doubling the failing side until the score is inside. Mate scores collapse
// the window to the mate band.
func (h *handle) aspiration(r *run, pos *board.Position, depth int, prev board.Score, bestMove board.Move, opt Options) (board.Score, []board.Move) {
	alpha, beta := -board.InfScore, board.InfScore
	delta := aspirationDelta

	if depth >= 3 && prev != board.NoScore {
		switch {
		case board.IsWinScore(prev):
			alpha = board.WinScore - board.MaxPly
		case board.IsLossScore(prev):
			beta = -board.WinScore + board.MaxPly
		default:
			alpha, beta = prev-delta, prev+delta
		}
	}

	for {
		score, moves := r.rootSearch(pos, depth, alpha, beta, bestMove, opt)
		if r.aborted {
			return score, moves
		}

		switch {
		case score <= alpha:
			delta *= 2
			alpha = score - delta
			if alpha < -board.InfScore {
				alpha = -board.InfScore
			}
		case score >= beta:
			delta *= 2
			beta = score + delta
			if beta > board.InfScore {
				beta = board.InfScore
			}
		default:
			return score, moves
		}
	}
}

func (h *handle) Halt() PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}

// rootSearch drives the move loop at the root. The root is a PV node; the
// previous iteration's best move is searched first.
func (r *run) rootSearch(pos *board.Position, depth int, alpha, beta board.Score, bestMove board.Move, opt Options) (board.Score, []board.Move) {
	f := &r.stack[0]

	moves := pos.LegalMoves(f.moves[:0], board.AllMoves)
	if ponder, ok := opt.Ponder.V(); ok {
		keep := moves[:0]
		for _, m := range moves {
			if m.Equals(ponder) {
				keep = append(keep, m)
			}
		}
		moves = keep
	}
	if len(moves) == 0 {
		if pos.IsChecked(pos.Turn()) {
			return board.LostInDepth(0), nil
		}
		return board.DrawScore, nil
	}

	hashMove := bestMove
	if hashMove.Equals(board.Move{}) && r.tt != nil {
		if _, _, _, move, ok := r.tt.Read(pos.Hash(), 0); ok {
			hashMove = move
		}
	}
	r.orderer.Rank(pos, moves, hashMove, &f.killers)

	best := -board.InfScore
	var pv []board.Move

	for i := range moves {
		m := moves[i]
		child := pos.Apply(m)

		r.push(child.Hash(), pos.IsIrreversible(m))
		r.stack[1].prevMove = m

		var score board.Score
		pvSearched := i == 0
		if i == 0 {
			score = -r.search(&child, nodePV, 1, depth-1, -beta, -alpha)
		} else {
			score = -r.search(&child, nodeCut, 1, depth-1, -alpha-1, -alpha)
			if !r.aborted && score > alpha {
				pvSearched = true
				score = -r.search(&child, nodePV, 1, depth-1, -beta, -alpha)
			}
		}
		r.pop()

		if r.aborted {
			return best, pv
		}

		if score > best {
			best = score
			pv = []board.Move{m}
			if pvSearched {
				pv = append(pv, r.stack[1].pv...)
			}
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				break
			}
		}
	}

	if r.tt != nil && len(pv) > 0 {
		r.tt.Write(pos.Hash(), ExactBound, 0, depth, best, pv[0])
	}
	return best, pv
}

package search

import (
	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/eval"
)

// nodeKind classifies nodes for the PVS discipline. The root is PV; the first
// child of a PV node is PV and later children are CUT; CUT children are ALL
// and ALL children are CUT. Fail-high re-searches in PV windows are PV.
type nodeKind uint8

const (
	nodePV nodeKind = iota
	nodeCut
	nodeAll
)

// PVS implements the iterative-deepening principal variation search with
// transposition table, reductions, extensions, pruning heuristics and
// quiescence. Feature toggles exist for the optional heuristics; the zero
// value enables the standard set.
type PVS struct {
	Eval *eval.Evaluator
	TT   *TranspositionTable

	// DisableNullMove turns off null-move pruning.
	DisableNullMove bool
	// EnableNullVerification re-searches null-move cutoffs at reduced depth.
	// Off by default, matching the constant in the original engine.
	EnableNullVerification bool
	// DisableProbCut turns off the shallow tactical verification cut.
	DisableProbCut bool
}

const (
	probCutMargin  board.Score = 200
	probCutDepth               = 3
	futilityDepth              = 8
)

// run holds the per-search state: the preallocated per-ply stack, history
// tables, repetition stack and node counter. After the run is set up, only the
// principal-variation slices allocate on the search path.
type run struct {
	cfg   *PVS
	eval  *eval.Evaluator
	tt    *TranspositionTable
	clock *Clock

	orderer Orderer
	stack   [board.MaxPly + 2]frame
	rep     []RepEntry

	nodes     uint64
	rootDepth int
	aborted   bool

	quit <-chan struct{}
}

// frame is the per-ply record: move buffer, killers, static evaluation and the
// collected principal variation.
type frame struct {
	moves       [board.MaxMoves]board.Move
	killers     killerSlot
	staticEval  board.Score
	passedPawns board.Bitboard
	prevMove    board.Move
	pv          []board.Move
}

func newRun(cfg *PVS, clock *Clock, history []RepEntry, quit <-chan struct{}) *run {
	r := &run{
		cfg:   cfg,
		eval:  cfg.Eval,
		tt:    cfg.TT,
		clock: clock,
		orderer: Orderer{
			History:     &HistoryTable{},
			MateHistory: &HistoryTable{},
		},
		rep:  make([]RepEntry, 0, len(history)+board.MaxPly+2),
		quit: quit,
	}
	r.rep = append(r.rep, history...)
	return r
}

func (r *run) push(hash board.ZobristHash, irreversible bool) {
	r.rep = append(r.rep, RepEntry{Hash: hash, Irreversible: irreversible})
}

func (r *run) pop() {
	r.rep = r.rep[:len(r.rep)-1]
}

// countRepetitions counts earlier occurrences of the hash, walking back to the
// last irreversible move.
func (r *run) countRepetitions(hash board.ZobristHash) int {
	count := 0
	for i := len(r.rep) - 2; i >= 0; i-- {
		if r.rep[i].Hash == hash {
			count++
		}
		if r.rep[i].Irreversible {
			break
		}
	}
	return count
}

// clockOK polls the cooperative abort signals.
func (r *run) clockOK() bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	return r.clock.ShouldContinueSearch(0, r.nodes)
}

// isDraw detects the 50-move rule, repetitions and insufficient material.
// Repetition needs two prior occurrences inside the PV but only one elsewhere.
func (r *run) isDraw(pos *board.Position, kind nodeKind) bool {
	if pos.HalfmoveClock() >= 100 && pos.HasLegalMoves() {
		return true
	}

	limit := 1
	if kind == nodePV {
		limit = 2
	}
	if r.countRepetitions(pos.Hash()) >= limit {
		return true
	}

	return pos.HasInsufficientMaterial()
}

// search is the full-width node procedure.
func (r *run) search(pos *board.Position, kind nodeKind, ply, depthLeft int, alpha, beta board.Score) board.Score {
	if r.aborted {
		return board.NoScore
	}
	r.nodes++
	if !r.clockOK() {
		r.aborted = true
		return board.NoScore
	}

	f := &r.stack[ply]
	if kind == nodePV {
		f.pv = f.pv[:0]
	}

	if ply >= board.MaxPly-1 {
		return r.eval.Evaluate(pos, alpha, beta)
	}

	// (2) Draw detection.
	if r.isDraw(pos, kind) {
		return board.DrawScore
	}

	// (3) Mate-distance pruning: no line can beat a mate already found.
	if a := board.LostInDepth(ply - 1); a > alpha {
		alpha = a
	}
	if b := board.WinInDepth(ply); b < beta {
		beta = b
	}
	if alpha >= beta {
		return alpha
	}

	// (4) Horizon: drop into quiescence.
	if depthLeft <= 0 {
		return r.quiescence(pos, kind, ply, alpha, beta)
	}

	// (5) Transposition table probe. The hash move always seeds ordering; a
	// deep-enough entry with a compatible bound short-circuits non-PV nodes.
	var hashMove board.Move
	hashKind := NoBound
	hashScore := board.NoScore
	if r.tt != nil {
		if k, d, score, move, ok := r.tt.Read(pos.Hash(), ply); ok {
			hashKind, hashScore, hashMove = k, score, move
			if kind != nodePV && d >= depthLeft {
				switch k {
				case ExactBound:
					return score
				case LowerBound:
					if score >= beta {
						return score
					}
				case UpperBound:
					if score <= alpha {
						return score
					}
				}
			}
		}
	}

	// (6) Static evaluation, reusing the table score when available.
	inCheck := pos.IsChecked(pos.Turn())
	switch {
	case inCheck:
		f.staticEval = board.LostInDepth(ply)
	case hashKind != NoBound:
		f.staticEval = hashScore
	default:
		f.staticEval = r.eval.Evaluate(pos, alpha, beta)
	}
	f.passedPawns = eval.PassedPawns(pos, pos.Turn())
	phase := pos.Phase()

	// (7) Pruning shortcuts, on non-PV nodes with something left to lose.
	if kind != nodePV && !inCheck &&
		!board.IsMateScore(alpha) && alpha != board.DrawScore &&
		pos.HasNonPawnMaterial(pos.Turn()) {

		margin := eval.PruningMarginDepthLeft.At(depthLeft*8, phase)

		// Reverse futility: a static eval far above beta stands.
		if depthLeft < 4 && f.staticEval-margin >= beta {
			return f.staticEval
		}

		// Razoring: a static eval far below alpha falls back to quiescence.
		if depthLeft < 4 && f.staticEval+margin < alpha {
			if score := r.quiescence(pos, kind, ply, alpha, beta); !r.aborted && score < alpha {
				return score
			}
		}

		// Null move: hand over the move; a refutation that still clears beta
		// cuts. Unsound in pawn endings and when stacked.
		if !r.cfg.DisableNullMove && phase > 9 && !pos.MadeNullMove() && f.staticEval >= beta {
			reduction := nullMoveReduction(depthLeft, phase)
			child := pos.ApplyNull()
			r.push(child.Hash(), true)
			score := -r.search(&child, nodeAll, ply+1, depthLeft-1-reduction, -beta, -beta+1)
			r.pop()

			if !r.aborted && !board.IsMateScore(score) && score >= beta {
				if !r.cfg.EnableNullVerification {
					return score
				}
				verified := r.search(pos, kind, ply, depthLeft-nullMoveReduction(depthLeft, phase), alpha, beta)
				if !r.aborted && !board.IsMateScore(verified) && verified >= beta {
					return verified
				}
			}
		}
	}

	// (8) Generate moves: none left is mate or stalemate.
	moves := pos.LegalMoves(f.moves[:0], board.AllMoves)
	if len(moves) == 0 {
		if inCheck {
			return board.LostInDepth(ply)
		}
		return board.DrawScore
	}

	// (9) ProbCut: a noisy move whose quiescence already clears beta by a
	// margin is verified with a reduced search before cutting.
	if !r.cfg.DisableProbCut && kind != nodePV && depthLeft >= probCutDepth && !inCheck &&
		!board.IsMateScore(beta) && beta < board.InfScore-probCutMargin {

		bound := beta + probCutMargin
		for i := range moves {
			m := moves[i]
			if m.IsQuiet() || eval.StaticExchange(pos, m) < 0 {
				continue
			}

			child := pos.Apply(m)
			r.push(child.Hash(), true)
			score := -r.quiescence(&child, nodeCut, ply+1, -bound, -bound+1)
			if score >= bound {
				score = -r.search(&child, nodeCut, ply+1, depthLeft-probCutDepth, -bound, -bound+1)
			}
			r.pop()

			if r.aborted {
				return board.NoScore
			}
			if score >= bound {
				return score
			}
		}
	}

	// (10) The move loop.
	return r.searchLoop(pos, kind, ply, depthLeft, alpha, beta, moves, hashMove, inCheck, phase)
}

func (r *run) searchLoop(pos *board.Position, kind nodeKind, ply, depthLeft int, alpha, beta board.Score,
	moves []board.Move, hashMove board.Move, inCheck bool, phase int) board.Score {

	f := &r.stack[ply]
	r.orderer.Rank(pos, moves, hashMove, &f.killers)

	// Position extensions apply to every child.
	positionExt := 0
	if len(moves) == 1 {
		positionExt++
	}
	if inCheck {
		positionExt++
	}

	originalAlpha := alpha
	best := -board.InfScore
	var bestMove board.Move
	movesSearched := 0

	for i := range moves {
		m := moves[i]
		_, movingPiece, _ := pos.PieceAt(m.From)
		see := eval.StaticExchange(pos, m)

		// Per-move extensions and reductions.
		ext := positionExt
		if movingPiece == board.King && !board.KingAttackboard(m.From).IsSet(m.To) {
			ext++ // castle
		}
		if depthLeft < 5 && m.IsCapture() && f.prevMove.IsCapture() && m.To == f.prevMove.To {
			ext++ // recapture
		}

		child := pos.Apply(m)
		givesCheck := child.IsChecked(child.Turn())

		if see >= 0 {
			if movingPiece == board.Pawn && f.passedPawns.IsSet(m.From) {
				if rel := relRank(pos.Turn(), m.From); rel == 4 || rel == 5 {
					ext++ // passed pawn on the march
				}
			}
			if movingPiece == board.Bishop && board.BishopAttackboard(child.All(), m.To)&child.Piece(child.Turn(), board.Queen) != 0 {
				ext++ // bishop hitting the queen
			}
			if givesCheck {
				ext++ // sound check
			}
		} else if kind != nodePV && see <= -seePawn {
			ext -= 2 // clearly losing exchange
		}
		if ext > 1 {
			ext = 1
		}

		// Futility: a quiet late move cannot raise a hopeless static eval.
		if depthLeft < futilityDepth && movesSearched > 0 && !inCheck && !givesCheck &&
			m.IsQuiet() && see < 0 && !board.IsMateScore(alpha) {
			margin := eval.PruningMarginDepthLeft.At(depthLeft*8, phase) +
				eval.PruningMarginSearchedMoves.At(movesSearched*2, phase)
			if f.staticEval+margin < alpha {
				movesSearched++
				continue
			}
		}

		// Late move reductions on unextended quiet moves.
		reduction := 0
		if m.IsQuiet() && !inCheck && !givesCheck && ext == 0 && movesSearched >= 3 && depthLeft >= 2 {
			reduction = lateMoveReduction(movesSearched, phase)
			if see < 0 {
				reduction++
			}
		}

		childDepth := depthLeft - 1 + ext
		r.push(child.Hash(), pos.IsIrreversible(m))
		r.stack[ply+1].prevMove = m

		var score board.Score
		switch kind {
		case nodePV:
			if movesSearched == 0 {
				score = -r.search(&child, nodePV, ply+1, childDepth, -beta, -alpha)
			} else {
				score = -r.search(&child, nodeCut, ply+1, childDepth-reduction, -alpha-1, -alpha)
				if !r.aborted && score > alpha {
					score = -r.search(&child, nodePV, ply+1, childDepth, -beta, -alpha)
				}
			}
		default:
			childKind := nodeAll
			if kind == nodeAll {
				childKind = nodeCut
			}
			score = -r.search(&child, childKind, ply+1, childDepth-reduction, -alpha-1, -alpha)
			if !r.aborted && score > alpha && (reduction > 0 || ext < 0) {
				score = -r.search(&child, childKind, ply+1, childDepth, -alpha-1, -alpha)
			}
		}
		r.pop()

		if r.aborted {
			return board.NoScore
		}
		movesSearched++

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			if score >= beta {
				// (10a) Fail high: credit the move and cut.
				if m.IsQuiet() {
					r.orderer.History.Add(movingPiece, m.To, uint32(depthLeft*depthLeft))
					f.killers.insert(m)
				}
				if board.IsWinScore(score) {
					f.killers.insertMate(m)
					r.orderer.MateHistory.Add(movingPiece, m.To, uint32(depthLeft))
				}
				if r.tt != nil {
					r.tt.Write(pos.Hash(), LowerBound, ply, depthLeft, score, m)
				}
				return score
			}

			alpha = score
			if kind == nodePV {
				f.pv = append(f.pv[:0], m)
				f.pv = append(f.pv, r.stack[ply+1].pv...)
			}
		}
	}

	// (11) Save the result: exact only if the window was actually improved.
	if r.tt != nil {
		bound := UpperBound
		if best > originalAlpha {
			bound = ExactBound
		}
		r.tt.Write(pos.Hash(), bound, ply, depthLeft, best, bestMove)
	}
	return best
}

// quiescence searches tactical moves only: stand pat on the static eval,
// then captures and promotions, or every evasion when in check.
func (r *run) quiescence(pos *board.Position, kind nodeKind, ply int, alpha, beta board.Score) board.Score {
	if r.aborted {
		return board.NoScore
	}
	r.nodes++
	if !r.clockOK() {
		r.aborted = true
		return board.NoScore
	}
	if ply >= board.MaxPly-1 || (r.rootDepth > 0 && ply > 2*r.rootDepth) {
		return r.eval.Evaluate(pos, alpha, beta)
	}

	inCheck := pos.IsChecked(pos.Turn())

	standPat := board.LostInDepth(ply)
	if !inCheck {
		standPat = r.eval.Evaluate(pos, alpha, beta)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	f := &r.stack[ply]
	moves := pos.LegalMoves(f.moves[:0], board.NoisyMoves)
	if len(moves) == 0 {
		if inCheck {
			return board.LostInDepth(ply)
		}
		return standPat
	}
	r.orderer.RankNoisy(pos, moves)

	best := standPat
	movesSearched := 0

	for i := range moves {
		m := moves[i]

		if !inCheck && m.IsCapture() {
			// Futility: even winning the piece cleanly cannot reach alpha.
			if standPat+eval.SeeValue(m.Captured)+qsFutilityMargin < alpha {
				continue
			}
			// Losing exchanges are not worth the nodes.
			if eval.StaticExchange(pos, m) < 0 {
				continue
			}
		}

		child := pos.Apply(m)

		var score board.Score
		if kind == nodePV && movesSearched > 0 {
			score = -r.quiescence(&child, nodeCut, ply+1, -alpha-1, -alpha)
			if !r.aborted && score > alpha {
				score = -r.quiescence(&child, nodePV, ply+1, -beta, -alpha)
			}
		} else {
			childKind := kind
			if kind != nodePV {
				childKind = nodeCut
				if kind == nodeCut {
					childKind = nodeAll
				}
			}
			score = -r.quiescence(&child, childKind, ply+1, -beta, -alpha)
		}

		if r.aborted {
			return board.NoScore
		}
		movesSearched++

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				return best
			}
		}
	}
	return best
}

const (
	seePawn          board.Score = 100
	qsFutilityMargin board.Score = 100
)

// nullMoveReduction grows with remaining depth.
func nullMoveReduction(depthLeft, phase int) int {
	return 2 + depthLeft/4
}

// lateMoveReduction maps the searched-move count through the quadratic
// schedule: zero early in the list, up to four plies deep in it.
func lateMoveReduction(searchedMoves, phase int) int {
	result := eval.LateMoveReductionsSearchedMoves.At(searchedMoves*2, phase)
	switch {
	case result < 0:
		return 0
	case result > 4*seePawn:
		return 4
	default:
		return int(result) / int(seePawn)
	}
}

// relRank is the rank from the mover's perspective: 1 is the home rank.
func relRank(c board.Color, sq board.Square) int {
	if c == board.White {
		return 7 - sq.Rank().V()
	}
	return sq.Rank().V()
}

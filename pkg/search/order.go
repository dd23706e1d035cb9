package search

import (
	"sort"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/eval"
)

// Move ordering. Every generated move is assigned an ordering key and the list
// is stable-sorted descending. The buckets, highest first: hash/PV move, good
// captures by exchange score, queen promotions, equal captures, remaining
// promotions, mate killers, killers, quiet moves by history tally, losing
// captures, and finally quiet moves onto squares held by enemy pawns.
const (
	priorityHash         board.MovePriority = 1 << 30
	priorityGoodCapture  board.MovePriority = 1 << 26
	priorityQueenPromo   board.MovePriority = 1 << 25
	priorityEqualCapture board.MovePriority = 1 << 24
	priorityPromo        board.MovePriority = 1 << 23
	priorityMateKiller   board.MovePriority = 1 << 22
	priorityKiller       board.MovePriority = 1 << 21
	priorityBadCapture   board.MovePriority = -(1 << 24)
	priorityUnsafe       board.MovePriority = -(1 << 28)
)

// Orderer assigns ordering keys from the shared history tables.
type Orderer struct {
	History     *HistoryTable
	MateHistory *HistoryTable
}

// Rank fills in the ordering keys and sorts moves, best first. The exchange
// score of each capture is computed (and cached on the move) as a side effect.
func (o *Orderer) Rank(pos *board.Position, moves []board.Move, hashMove board.Move, killers *killerSlot) {
	unsafe := board.PawnCaptureboard(pos.Turn().Opponent(), pos.Piece(pos.Turn().Opponent(), board.Pawn))

	for i := range moves {
		m := &moves[i]
		m.Priority = o.rank(pos, m, hashMove, killers, unsafe)
	}
	sortByPriority(moves)
}

func (o *Orderer) rank(pos *board.Position, m *board.Move, hashMove board.Move, killers *killerSlot, unsafe board.Bitboard) board.MovePriority {
	if m.Equals(hashMove) {
		return priorityHash
	}

	if m.IsCapture() {
		m.See = eval.StaticExchange(pos, *m)
		switch {
		case m.See > 0:
			return priorityGoodCapture + board.MovePriority(m.See)
		case m.See == 0:
			return priorityEqualCapture + mvvlva(pos, m)
		default:
			return priorityBadCapture + board.MovePriority(m.See)
		}
	}

	if m.IsPromotion() {
		if m.Promotion == board.Queen {
			return priorityQueenPromo
		}
		return priorityPromo
	}

	if killers != nil {
		switch {
		case m.Equals(killers.mateKiller1):
			return priorityMateKiller + 1
		case m.Equals(killers.mateKiller2):
			return priorityMateKiller
		case m.Equals(killers.killer1):
			return priorityKiller + 1
		case m.Equals(killers.killer2):
			return priorityKiller
		}
	}

	_, piece, _ := pos.PieceAt(m.From)

	// Quiet moves onto enemy-pawn-controlled squares go last.
	if piece != board.Pawn && unsafe.IsSet(m.To) {
		return priorityUnsafe + board.MovePriority(o.History.Get(piece, m.To))
	}

	ret := board.MovePriority(o.History.Get(piece, m.To))
	if o.MateHistory != nil {
		ret += board.MovePriority(o.MateHistory.Get(piece, m.To)) * 2
	}
	return ret
}

// RankNoisy orders captures and promotions for quiescence: MVV-LVA with the
// exchange score as tiebreak.
func (o *Orderer) RankNoisy(pos *board.Position, moves []board.Move) {
	for i := range moves {
		m := &moves[i]
		m.Priority = mvvlva(pos, m)
		if m.IsCapture() {
			m.See = eval.StaticExchange(pos, *m)
			m.Priority += board.MovePriority(m.See)
		}
		if m.Promotion == board.Queen {
			m.Priority += priorityQueenPromo
		}
	}
	sortByPriority(moves)
}

// mvvlva prefers the most valuable victim, then the least valuable attacker.
func mvvlva(pos *board.Position, m *board.Move) board.MovePriority {
	_, piece, _ := pos.PieceAt(m.From)
	return board.MovePriority(100*eval.SeeValue(m.Captured)-eval.SeeValue(piece)) / 10
}

// sortByPriority sorts the moves by ordering key, preserving generation order
// for equal keys.
func sortByPriority(moves []board.Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Priority > moves[j].Priority
	})
}

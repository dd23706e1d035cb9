package eval

import "github.com/jingweichess/jingwei/pkg/board"

// seeValues are the fixed piece values used by the exchange evaluator. The king
// never profits from being captured: any sequence reaching it ends the swap.
var seeValues = [board.NumPieces]board.Score{
	board.Pawn:   100,
	board.Knight: 325,
	board.Bishop: 325,
	board.Rook:   500,
	board.Queen:  975,
	board.King:   board.WinScore,
}

// SeeValue returns the exchange value of a piece type.
func SeeValue(p board.Piece) board.Score {
	return seeValues[p]
}

// StaticExchange scores the full capture sequence on the move's target square,
// from the mover's perspective. The move's cached score is used if present.
func StaticExchange(pos *board.Position, m board.Move) board.Score {
	if m.See != board.InvalidScore {
		return m.See
	}
	return staticExchange(pos, m.From, m.To)
}

func staticExchange(pos *board.Position, src, dst board.Square) board.Score {
	_, mover, _ := pos.PieceAt(src)

	captured := board.NoPiece
	if _, p, ok := pos.PieceAt(dst); ok {
		captured = p
	} else if ep, ok := pos.EnPassant(); ok && ep == dst && mover == board.Pawn {
		captured = board.Pawn
	}

	// (1) If the captured piece outvalues the mover, the exchange cannot lose:
	// return the pessimistic bound without simulating.
	if seeValues[captured] > seeValues[mover] {
		return seeValues[captured] - seeValues[mover]
	}

	// (2) Gather every piece that bears on the target square. Sliders are
	// collected from their empty-board rays; blockers are tested during the
	// scan, and captures re-open the lines by removing occupancy.
	allAttackers := board.PawnAttackboard(board.White, dst)&pos.Piece(board.Black, board.Pawn) |
		board.PawnAttackboard(board.Black, dst)&pos.Piece(board.White, board.Pawn)
	for piece := board.Knight; piece <= board.King; piece++ {
		allAttackers |= board.Attackboard(board.EmptyBitboard, dst, piece) &
			(pos.Piece(board.White, piece) | pos.Piece(board.Black, piece))
	}

	// (2a) The first attacker has already moved.
	allPieces := pos.All() ^ (board.BitMask(src) &^ board.BitMask(dst))
	allAttackers &= allPieces

	if allAttackers == board.EmptyBitboard {
		return seeValues[captured]
	}

	// (3) The opponent recaptures first.
	side := pos.Turn().Opponent()

	sideAttackers := allAttackers & pos.Color(side)
	if sideAttackers == board.EmptyBitboard {
		return seeValues[captured]
	}

	// (4) Alternate sides, always recapturing with the least valued attacker.
	lastMoved := mover
	bestKnown := [board.NumColors]board.Piece{board.Pawn, board.Pawn}

	var gain [32]board.Score
	gain[0] = seeValues[captured]
	depth := 1

	for {
		piece := bestKnown[side]
		var attacking board.Bitboard
		found := false
		for !found && piece <= board.King {
			attacking = sideAttackers & pos.Piece(side, piece)
			if attacking != 0 {
				found = true
			} else {
				piece++
			}
		}
		if !found {
			break
		}
		bestKnown[side] = piece

		// Scan the candidates for one with a clear line to the square.
		specific := false
		for bb := attacking; bb != 0; bb = bb.ClearFirst() {
			attackSrc := bb.FirstSquare()
			if board.InBetween(attackSrc, dst)&allPieces != 0 {
				continue
			}

			specific = true
			allAttackers &^= board.BitMask(attackSrc)
			allPieces &^= board.BitMask(attackSrc)

			gain[depth] = seeValues[lastMoved] - gain[depth-1]
			depth++

			lastMoved = piece
			bestKnown[side] = board.Pawn
			side = side.Opponent()
			break
		}
		if !specific {
			bestKnown[side]++
		}

		sideAttackers = allAttackers & pos.Color(side)
		if sideAttackers == board.EmptyBitboard {
			break
		}
	}

	// (5) Fold the gains back: each side stands pat when recapturing loses.
	for depth--; depth > 0; depth-- {
		if -gain[depth] < gain[depth-1] {
			gain[depth-1] = -gain[depth]
		}
	}
	return gain[0]
}

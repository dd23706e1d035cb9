package board

// AttackInfo describes the checks and pins against one side's king. The move
// generator consults it to produce only legal moves.
type AttackInfo struct {
	// Checkers holds the enemy pieces giving check.
	Checkers Bitboard
	// Pinned holds own pieces that would expose the king if moved off their ray.
	Pinned Bitboard
	// BlockedAttackers holds enemy sliders aimed at the king with exactly one
	// piece of either color in between.
	BlockedAttackers Bitboard
	// CheckRays is the union of the between-squares of all sliding checkers:
	// the squares where a block evades the check.
	CheckRays Bitboard

	king Square
}

// NewAttackInfo computes checks and pins against the king of the given side.
//
// Non-slider checkers come from reverse attack lookups. For each enemy slider
// in pseudo-attack range of the king, the pieces in between decide: none makes
// it a checker, exactly one makes it a blocked attacker, and if that one piece
// belongs to the king's side it is pinned to its ray.
func NewAttackInfo(pos *Position, side Color) AttackInfo {
	opp := side.Opponent()
	king := pos.KingSquare(side)

	ret := AttackInfo{king: king}

	ret.Checkers |= KnightAttackboard(king) & pos.Piece(opp, Knight)
	ret.Checkers |= PawnAttackboard(side, king) & pos.Piece(opp, Pawn)

	all := pos.All()
	own := pos.Color(side)

	diagonals := BishopAttackboard(EmptyBitboard, king) & (pos.Piece(opp, Bishop) | pos.Piece(opp, Queen))
	straights := RookAttackboard(EmptyBitboard, king) & (pos.Piece(opp, Rook) | pos.Piece(opp, Queen))

	for sliders := diagonals | straights; sliders != 0; sliders = sliders.ClearFirst() {
		src := sliders.FirstSquare()
		between := InBetween(king, src) & all

		switch between.PopCount() {
		case 0:
			ret.Checkers |= BitMask(src)
			ret.CheckRays |= InBetween(king, src)
		case 1:
			ret.BlockedAttackers |= BitMask(src)
			ret.Pinned |= between & own
		}
	}
	return ret
}

// InCheck returns true iff the king is attacked.
func (a *AttackInfo) InCheck() bool {
	return a.Checkers != 0
}

// InDoubleCheck returns true iff two pieces give check at once. Only king
// moves can evade.
func (a *AttackInfo) InDoubleCheck() bool {
	return a.Checkers.ClearFirst() != 0
}

// PinRestriction returns the squares a pinned piece on sq may still occupy:
// the full line through the king and the piece, which contains both the
// pinning slider and the in-between squares. Full board if not pinned.
func (a *AttackInfo) PinRestriction(sq Square) Bitboard {
	if !a.Pinned.IsSet(sq) {
		return FullBitboard
	}
	return LineThrough(a.king, sq)
}

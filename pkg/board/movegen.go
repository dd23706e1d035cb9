package board

// GenMode selects which moves the generator emits.
type GenMode uint8

const (
	// AllMoves generates every legal move.
	AllMoves GenMode = iota
	// NoisyMoves generates captures and promotions only, for quiescence.
	NoisyMoves
)

// MaxMoves is an upper bound on the number of legal moves in any position.
const MaxMoves = 256

// LegalMoves appends all legal moves for the side to move to buf and returns
// it. When the side to move is in check a specialized evasion routine runs.
func (p *Position) LegalMoves(buf []Move, mode GenMode) []Move {
	g := generator{pos: p, mode: mode, out: buf}
	g.ai = NewAttackInfo(p, p.turn)
	if g.ai.InCheck() {
		g.mode = AllMoves // evasions are generated in full
	}

	g.kingMoves()
	if g.ai.InDoubleCheck() {
		return g.out // only king moves evade double check
	}

	targets := FullBitboard
	if g.ai.InCheck() {
		// Capture the checker or block its ray.
		targets = g.ai.Checkers | g.ai.CheckRays
	} else if mode == AllMoves {
		g.castlingMoves()
	}

	g.pawnMoves(targets)
	g.officerMoves(targets)
	return g.out
}

// CountLegalMoves returns the number of legal moves without retaining them.
func (p *Position) CountLegalMoves() int {
	var buf [MaxMoves]Move
	return len(p.LegalMoves(buf[:0], AllMoves))
}

// HasLegalMoves returns true iff the side to move has any legal move.
func (p *Position) HasLegalMoves() bool {
	return p.CountLegalMoves() > 0
}

type generator struct {
	pos  *Position
	mode GenMode
	ai   AttackInfo
	out  []Move
}

func (g *generator) emit(from, to Square, promotion Piece) {
	captured := g.pos.mailbox[to]
	g.out = append(g.out, Move{From: from, To: to, Promotion: promotion, Captured: captured, See: InvalidScore})
}

// attacked returns true iff any piece of the given side attacks sq under the
// supplied occupancy, ignoring pieces in the exclude set. The occupancy
// override lets king-move legality see sliders behind the king and lets the en
// passant check remove both pawns at once.
func (g *generator) attacked(by Color, sq Square, occ, exclude Bitboard) bool {
	pos := g.pos

	if KnightAttackboard(sq)&pos.Piece(by, Knight)&^exclude != 0 {
		return true
	}
	if PawnAttackboard(by.Opponent(), sq)&pos.Piece(by, Pawn)&^exclude != 0 {
		return true
	}
	if KingAttackboard(sq)&pos.Piece(by, King) != 0 {
		return true
	}
	if BishopAttackboard(occ, sq)&(pos.Piece(by, Bishop)|pos.Piece(by, Queen))&^exclude != 0 {
		return true
	}
	return RookAttackboard(occ, sq)&(pos.Piece(by, Rook)|pos.Piece(by, Queen))&^exclude != 0
}

func (g *generator) kingMoves() {
	pos := g.pos
	side := pos.turn
	opp := side.Opponent()
	king := g.ai.king

	dsts := KingAttackboard(king) &^ pos.Color(side)
	if g.mode == NoisyMoves && !g.ai.InCheck() {
		dsts &= pos.Color(opp)
	}

	// The king is removed from the occupancy so that sliders see through it:
	// stepping away along a checking ray is not an evasion.
	occ := pos.All() &^ BitMask(king)
	for ; dsts != 0; dsts = dsts.ClearFirst() {
		dst := dsts.FirstSquare()
		if !g.attacked(opp, dst, occ, EmptyBitboard) {
			g.emit(king, dst, NoPiece)
		}
	}
}

func (g *generator) castlingMoves() {
	pos := g.pos
	occ := pos.All()

	type castle struct {
		right      Castling
		king, dst  Square
		empty      Bitboard
		passage    []Square
	}

	var candidates []castle
	if pos.turn == White {
		candidates = []castle{
			{WhiteKingSideCastle, E1, G1, BitMask(F1) | BitMask(G1), []Square{E1, F1, G1}},
			{WhiteQueenSideCastle, E1, C1, BitMask(B1) | BitMask(C1) | BitMask(D1), []Square{E1, D1, C1}},
		}
	} else {
		candidates = []castle{
			{BlackKingSideCastle, E8, G8, BitMask(F8) | BitMask(G8), []Square{E8, F8, G8}},
			{BlackQueenSideCastle, E8, C8, BitMask(B8) | BitMask(C8) | BitMask(D8), []Square{E8, D8, C8}},
		}
	}

	opp := pos.turn.Opponent()
	for _, c := range candidates {
		if !pos.castling.IsAllowed(c.right) || occ&c.empty != 0 {
			continue
		}
		ok := true
		for _, sq := range c.passage {
			if g.attacked(opp, sq, occ, EmptyBitboard) {
				ok = false
				break
			}
		}
		if ok {
			g.emit(c.king, c.dst, NoPiece)
		}
	}
}

func (g *generator) officerMoves(targets Bitboard) {
	pos := g.pos
	side := pos.turn
	occ := pos.All()

	mask := targets &^ pos.Color(side)
	if g.mode == NoisyMoves {
		mask &= pos.Color(side.Opponent())
	}

	for _, piece := range Officers {
		for srcs := pos.Piece(side, piece); srcs != 0; srcs = srcs.ClearFirst() {
			src := srcs.FirstSquare()

			dsts := Attackboard(occ, src, piece) & mask & g.ai.PinRestriction(src)
			for ; dsts != 0; dsts = dsts.ClearFirst() {
				g.emit(src, dsts.FirstSquare(), NoPiece)
			}
		}
	}
}

func (g *generator) pawnMoves(targets Bitboard) {
	pos := g.pos
	side := pos.turn
	opp := side.Opponent()
	occ := pos.All()
	promoRank := PawnPromotionRank(side)

	for srcs := pos.Piece(side, Pawn); srcs != 0; srcs = srcs.ClearFirst() {
		src := srcs.FirstSquare()
		allowed := g.ai.PinRestriction(src) & targets

		// Pushes. A jump is legal only when both squares are empty.
		push := pawnPushSquare(side, src)
		if g.mode == AllMoves || promoRank.IsSet(push) {
			if !occ.IsSet(push) {
				if allowed.IsSet(push) {
					g.emitPawn(src, push, promoRank)
				}
				if PawnHomeRank(side).IsSet(src) {
					jump := pawnPushSquare(side, push)
					if !occ.IsSet(jump) && allowed.IsSet(jump) {
						g.emit(src, jump, NoPiece)
					}
				}
			}
		}

		// Captures, including capture-promotions.
		for dsts := PawnAttackboard(side, src) & pos.Color(opp) & allowed; dsts != 0; dsts = dsts.ClearFirst() {
			g.emitPawn(src, dsts.FirstSquare(), promoRank)
		}

		// En passant. The captured pawn sits behind the target square.
		if ep, ok := pos.EnPassant(); ok && PawnAttackboard(side, src).IsSet(ep) {
			g.enpassantMove(src, ep, targets)
		}
	}
}

// emitPawn expands a push or capture into the four promotions on the last rank.
func (g *generator) emitPawn(src, dst Square, promoRank Bitboard) {
	if promoRank.IsSet(dst) {
		g.emit(src, dst, Queen)
		g.emit(src, dst, Rook)
		g.emit(src, dst, Bishop)
		g.emit(src, dst, Knight)
		return
	}
	if g.mode == NoisyMoves && g.pos.mailbox[dst] == NoPiece {
		return // skip: quiet push in captures-only mode
	}
	g.emit(src, dst, NoPiece)
}

// enpassantMove verifies the capture fully, including the hidden-pin case
// where removing both pawns from the king's rank exposes a rook or queen.
func (g *generator) enpassantMove(src, ep Square, targets Bitboard) {
	pos := g.pos
	side := pos.turn
	opp := side.Opponent()
	capturedSq := pawnPushSquare(opp, ep)

	// The capture must resolve a check either by blocking on the target square
	// or by removing the checking pawn itself.
	if !targets.IsSet(ep) && !g.ai.Checkers.IsSet(capturedSq) {
		return
	}

	// Replay the capture against the occupancy and verify the king is safe.
	// Both pawns leave their squares at once, which no pin ray models.
	occ := pos.All()&^BitMask(src)&^BitMask(capturedSq) | BitMask(ep)
	if g.attacked(opp, pos.KingSquare(side), occ, BitMask(capturedSq)) {
		return
	}

	g.out = append(g.out, Move{From: src, To: ep, Captured: Pawn, See: InvalidScore})
}

// pawnPushSquare returns the square directly ahead for the given color.
func pawnPushSquare(c Color, sq Square) Square {
	if c == White {
		return sq - 8
	}
	return sq + 8
}

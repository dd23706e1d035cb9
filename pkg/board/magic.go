package board

import "math/rand"

// Magic bitboard attack tables for the sliding pieces. For each square the
// relevant occupancy (the ray squares whose contents change the attack set,
// excluding board edges) is reduced to a table index by multiply-and-shift.
// The magic factors are found at start-up with a sparse random search.
//
// See: https://www.chessprogramming.org/Magic_Bitboards ("fancy" layout).

// Magic holds the attack table slice and index reduction for a single square.
// The occupancy is reduced either by multiply-and-shift or by parallel bit
// extraction over the mask; the table is laid out for whichever reduction
// filled it, and lookups agree either way.
type Magic struct {
	Mask    Bitboard
	Magic   Bitboard
	Shift   uint
	Attacks []Bitboard

	pext bool
}

func (m *Magic) index(occupied Bitboard) uint {
	if m.pext {
		return uint(Pext(occupied, m.Mask))
	}
	return uint(((occupied & m.Mask) * m.Magic) >> m.Shift)
}

const (
	bishopTableSize = 0x1480
	rookTableSize   = 0x19000
)

var (
	bishopMagics [NumSquares]Magic
	rookMagics   [NumSquares]Magic

	bishopTable [bishopTableSize]Bitboard
	rookTable   [rookTableSize]Bitboard
)

// BishopAttackboard returns all potential moves/attacks for a Bishop at the
// given square, given the board occupancy.
func BishopAttackboard(all Bitboard, sq Square) Bitboard {
	m := &bishopMagics[sq]
	return m.Attacks[m.index(all)]
}

// RookAttackboard returns all potential moves/attacks for a Rook at the given
// square, given the board occupancy.
func RookAttackboard(all Bitboard, sq Square) Bitboard {
	m := &rookMagics[sq]
	return m.Attacks[m.index(all)]
}

// QueenAttackboard returns all potential moves/attacks for a Queen at the given
// square. Convenience function.
func QueenAttackboard(all Bitboard, sq Square) Bitboard {
	return RookAttackboard(all, sq) | BishopAttackboard(all, sq)
}

// Attackboard returns all potential moves/attacks for an officer (= non-Pawn)
// at the given square.
func Attackboard(all Bitboard, sq Square, piece Piece) Bitboard {
	switch piece {
	case King:
		return KingAttackboard(sq)
	case Queen:
		return QueenAttackboard(all, sq)
	case Rook:
		return RookAttackboard(all, sq)
	case Bishop:
		return BishopAttackboard(all, sq)
	case Knight:
		return KnightAttackboard(sq)
	default:
		panic("invalid piece")
	}
}

// slidingAttacks ray-traces the attack set for the directions, stopping at (and
// including) the first blocker.
func slidingAttacks(sq Square, occupied Bitboard, directions []direction) Bitboard {
	var ret Bitboard
	for _, d := range directions {
		for _, s := range walk(sq, d) {
			ret |= BitMask(s)
			if occupied.IsSet(s) {
				break
			}
		}
	}
	return ret
}

// relevantMask is the attack mask on an empty board with the edges stripped:
// edge squares never hide further squares, so their occupancy is irrelevant.
func relevantMask(sq Square, directions []direction) Bitboard {
	var ret Bitboard
	for _, d := range directions {
		ray := walk(sq, d)
		for i, s := range ray {
			if i == len(ray)-1 {
				break // skip: edge square
			}
			ret |= BitMask(s)
		}
	}
	return ret
}

func initMagics(table []Bitboard, magics *[NumSquares]Magic, directions []direction, pext bool) {
	rng := rand.New(rand.NewSource(1070372))

	offset := 0
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		m := &magics[sq]
		m.Mask = relevantMask(sq, directions)
		m.pext = pext

		bits := m.Mask.PopCount()
		m.Shift = uint(64 - bits)
		size := 1 << bits
		m.Attacks = table[offset : offset+size]
		offset += size

		// Enumerate every subset of the mask (carry-rippler) with its
		// reference attack set.
		occupancies := make([]Bitboard, 0, size)
		reference := make([]Bitboard, 0, size)
		occ := EmptyBitboard
		for {
			occupancies = append(occupancies, occ)
			reference = append(reference, slidingAttacks(sq, occ, directions))
			occ = (occ - m.Mask) & m.Mask
			if occ == 0 {
				break
			}
		}

		if pext {
			// Bit extraction is a perfect index: fill directly.
			for i := range occupancies {
				m.Attacks[m.index(occupancies[i])] = reference[i]
			}
			continue
		}

		// Search for a collision-free magic factor. Sparse randoms converge
		// in a few thousand attempts per square.
		epoch := make([]int, size)
		for attempt := 1; ; attempt++ {
			m.Magic = Bitboard(rng.Uint64() & rng.Uint64() & rng.Uint64())
			if (m.Magic * m.Mask >> 56).PopCount() < 6 {
				continue
			}

			ok := true
			for i := range occupancies {
				idx := m.index(occupancies[i])
				if epoch[idx] != attempt {
					epoch[idx] = attempt
					m.Attacks[idx] = reference[i]
				} else if m.Attacks[idx] != reference[i] {
					ok = false
					break
				}
			}
			if ok {
				break
			}
		}
	}
}

func init() {
	initMagics(bishopTable[:], &bishopMagics, bishopDirections, false)
	initMagics(rookTable[:], &rookMagics, rookDirections, false)
}

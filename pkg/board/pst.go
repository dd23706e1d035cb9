package board

// Material values and piece-square tables. Position maintains tapered
// accumulators of both incrementally during make-move; the full evaluator works
// on top of them. The 64-square tables are generated from a compact per-file /
// per-rank parameter set plus a quadratic center term, so that a personality
// override only has to touch a handful of numbers before rebuilding.

// MaterialValues holds the tapered value of each piece type.
var MaterialValues = [NumPieces]TaperedScore{
	Pawn:   {Mg: 100, Eg: 130},
	Knight: {Mg: 325, Eg: 305},
	Bishop: {Mg: 325, Eg: 335},
	Rook:   {Mg: 500, Eg: 550},
	Queen:  {Mg: 975, Eg: 1000},
}

// PieceSquareSpec is the compact generator for one piece's 64-square table.
type PieceSquareSpec struct {
	File   [8]TaperedScore // per-file base, a..h
	Rank   [8]TaperedScore // per-rank base, rank 8 first (white's perspective)
	Center TaperedScore    // scaled by the quadratic center closeness [0;9]
}

// PieceSquareSpecs drives table generation, from white's perspective.
var PieceSquareSpecs = [NumPieces]PieceSquareSpec{
	Pawn: {
		File:   files(0, 2, 4, 8, 8, 4, 2, 0),
		Rank:   ranks8(pair(0, 0), pair(90, 140), pair(40, 70), pair(15, 35), pair(5, 15), pair(0, 5), pair(0, 0), pair(0, 0)),
		Center: pair(2, 0),
	},
	Knight: {
		File:   files(-10, -4, 0, 2, 2, 0, -4, -10),
		Rank:   ranks8(pair(-8, -8), pair(0, 0), pair(6, 4), pair(6, 4), pair(2, 2), pair(0, 0), pair(-4, -4), pair(-10, -8)),
		Center: pair(7, 5),
	},
	Bishop: {
		File:   files(-4, 0, 2, 2, 2, 2, 0, -4),
		Rank:   ranks8(pair(-4, -2), pair(0, 0), pair(2, 2), pair(2, 2), pair(2, 2), pair(2, 2), pair(2, 0), pair(-6, -2)),
		Center: pair(4, 3),
	},
	Rook: {
		File:   files(-2, 0, 2, 5, 5, 2, 0, -2),
		Rank:   ranks8(pair(2, 2), pair(10, 8), pair(0, 0), pair(0, 0), pair(0, 0), pair(0, 0), pair(0, 0), pair(0, 0)),
		Center: pair(0, 1),
	},
	Queen: {
		File:   files(-4, 0, 2, 4, 4, 2, 0, -4),
		Rank:   ranks8(pair(0, 0), pair(4, 4), pair(2, 4), pair(2, 4), pair(0, 2), pair(0, 0), pair(-2, 0), pair(-4, 0)),
		Center: pair(2, 3),
	},
	King: {
		File:   files(12, 16, 2, -6, -6, 2, 16, 12),
		Rank:   ranks8(pair(-40, 10), pair(-35, 8), pair(-30, 4), pair(-25, 0), pair(-20, -4), pair(-15, -8), pair(-5, -16), pair(10, -24)),
		Center: pair(-4, 8),
	},
}

// pieceSquare is the generated table, from white's perspective in the A8=0
// layout. Black mirrors vertically.
var pieceSquare [NumPieces][NumSquares]TaperedScore

// PieceSquareValue returns the tapered piece-square score for a piece of the
// given color, positive favoring that color.
func PieceSquareValue(c Color, p Piece, sq Square) TaperedScore {
	if c == Black {
		sq = sq.MirrorV()
	}
	return pieceSquare[p][sq]
}

// RebuildPieceSquareTables regenerates the 64-square tables from the specs.
// Called at start-up and after parameter overrides. Positions derived before a
// rebuild carry stale accumulators and must be rebuilt as well.
func RebuildPieceSquareTables() {
	for p := Pawn; p <= King; p++ {
		spec := &PieceSquareSpecs[p]
		for sq := ZeroSquare; sq < NumSquares; sq++ {
			v := spec.File[sq.File()].Add(spec.Rank[sq.Rank()])

			// Center closeness is quadratic: 9 in the middle four squares,
			// falling off to 0 in the corners.
			df, dr := centerDistance(sq.File().V()), centerDistance(sq.Rank().V())
			closeness := Score((3 - df) * (3 - dr))
			v = v.Add(TaperedScore{Mg: spec.Center.Mg * closeness, Eg: spec.Center.Eg * closeness})

			pieceSquare[p][sq] = v
		}
	}
}

func centerDistance(v int) int {
	if v < 4 {
		return 3 - v
	}
	return v - 4
}

func pair(mg, eg Score) TaperedScore {
	return TaperedScore{Mg: mg, Eg: eg}
}

func files(a, b, c, d, e, f, g, h Score) [8]TaperedScore {
	return [8]TaperedScore{
		{Mg: a, Eg: a}, {Mg: b, Eg: b}, {Mg: c, Eg: c}, {Mg: d, Eg: d},
		{Mg: e, Eg: e}, {Mg: f, Eg: f}, {Mg: g, Eg: g}, {Mg: h, Eg: h},
	}
}

func ranks8(r8, r7, r6, r5, r4, r3, r2, r1 TaperedScore) [8]TaperedScore {
	return [8]TaperedScore{r8, r7, r6, r5, r4, r3, r2, r1}
}

func init() {
	RebuildPieceSquareTables()
}

package eval

import (
	"fmt"
	"sort"

	"github.com/jingweichess/jingwei/pkg/board"
)

// The evaluation terms are generated from a compact parameter set: per-term
// tapered weights plus quadratic constructs for the mobility, tropism and
// pruning schedules. A personality override mutates the parameters by name and
// rebuilds the derived tables.

// QuadraticConstruct builds a quadratic schedule y(x) = (A·x² + B·x + C)/1024,
// evaluated separately for middlegame and endgame and tapered by phase.
type QuadraticConstruct struct {
	A, B, C board.TaperedScore
}

// At evaluates the schedule at x, tapered by phase.
func (q QuadraticConstruct) At(x, phase int) board.Score {
	return q.Pair(x).Taper(phase)
}

// Pair evaluates the schedule at x as a tapered pair.
func (q QuadraticConstruct) Pair(x int) board.TaperedScore {
	v := board.Score(x)
	return board.TaperedScore{
		Mg: (q.A.Mg*v*v + q.B.Mg*v + q.C.Mg) / 1024,
		Eg: (q.A.Eg*v*v + q.B.Eg*v + q.C.Eg) / 1024,
	}
}

func pair(mg, eg board.Score) board.TaperedScore {
	return board.TaperedScore{Mg: mg, Eg: eg}
}

// MaterialValue returns the tapered material value of a piece.
func MaterialValue(p board.Piece) board.TaperedScore {
	return board.MaterialValues[p]
}

// Pawn structure parameters, rank-indexed from the pawn's own perspective
// (index 1 = home rank .. 6 = one step from promotion).
var (
	PawnChain   = [8]board.TaperedScore{2: pair(4, 6), 3: pair(6, 8), 4: pair(9, 12), 5: pair(14, 18), 6: pair(20, 28)}
	PawnPhalanx = [8]board.TaperedScore{1: pair(2, 2), 2: pair(4, 4), 3: pair(7, 8), 4: pair(12, 16), 5: pair(22, 30), 6: pair(40, 55)}
	PawnPassed  = [8]board.TaperedScore{1: pair(5, 10), 2: pair(8, 16), 3: pair(14, 28), 4: pair(28, 52), 5: pair(55, 95), 6: pair(95, 160)}
	PawnDoubled = pair(-12, -22)
)

// Piece cooperation and placement parameters.
var (
	KnightPair = pair(-8, -6)
	BishopPair = pair(28, 42)
	RookPair   = pair(-6, -4)
	QueenPair  = pair(-4, -2)

	KnightOutpost = pair(16, 10)
	BishopOutpost = pair(10, 6)

	BishopPawnColor = pair(-3, -5) // per own pawn on the bishop's square color

	RookOpenFile     = pair(24, 10)
	RookHalfOpenFile = pair(10, 6)
	RookDoubled      = pair(12, 18)

	KingShield = [3]board.TaperedScore{pair(0, 0), pair(14, 0), pair(8, 0)} // by rank distance from king

	Tempo = pair(12, 4)
)

// Mobility schedules by piece, evaluated on reachable squares.
var Mobility = [board.NumPieces]QuadraticConstruct{
	board.Knight: {A: pair(-32, -24), B: pair(1400, 1100), C: pair(-4096, -3072)},
	board.Bishop: {A: pair(-16, -12), B: pair(1000, 900), C: pair(-3584, -3072)},
	board.Rook:   {A: pair(-8, -8), B: pair(700, 900), C: pair(-2560, -3072)},
	board.Queen:  {A: pair(-4, -4), B: pair(400, 500), C: pair(-2048, -2560)},
}

// Tropism schedules by piece, evaluated on 7 minus the Chebyshev distance to
// the enemy king.
var Tropism = [board.NumPieces]QuadraticConstruct{
	board.Knight: {A: pair(40, 10), B: pair(300, 100), C: pair(-1024, -512)},
	board.Bishop: {A: pair(20, 10), B: pair(200, 100), C: pair(-768, -512)},
	board.Rook:   {A: pair(30, 20), B: pair(350, 250), C: pair(-1024, -768)},
	board.Queen:  {A: pair(60, 40), B: pair(500, 400), C: pair(-1536, -1024)},
}

// PieceAttacks[attacker][victim] rewards pressure against heavier pieces.
var PieceAttacks = [board.NumPieces][board.NumPieces]board.TaperedScore{
	board.Pawn:   {board.Knight: pair(26, 30), board.Bishop: pair(26, 30), board.Rook: pair(38, 44), board.Queen: pair(50, 55)},
	board.Knight: {board.Bishop: pair(12, 14), board.Rook: pair(24, 28), board.Queen: pair(34, 38)},
	board.Bishop: {board.Knight: pair(12, 14), board.Rook: pair(24, 28), board.Queen: pair(34, 38)},
	board.Rook:   {board.Knight: pair(10, 12), board.Bishop: pair(10, 12), board.Queen: pair(20, 24)},
	board.Queen:  {board.Knight: pair(6, 8), board.Bishop: pair(6, 8), board.Rook: pair(10, 12)},
}

// KingZoneAttack is scaled by the number of attacked squares next to the
// enemy king.
var KingZoneAttack = QuadraticConstruct{A: pair(60, 10), B: pair(400, 80), C: pair(0, 0)}

// Search schedules (§ pruning and reductions), shared with the search package.
var (
	LateMoveReductionsSearchedMoves = QuadraticConstruct{A: pair(0, 0), B: pair(6000, 5000), C: pair(-20000, -18000)}
	PruningMarginDepthLeft          = QuadraticConstruct{A: pair(0, 0), B: pair(12000, 14000), C: pair(40960, 49152)}
	PruningMarginSearchedMoves      = QuadraticConstruct{A: pair(0, 0), B: pair(-1500, -1800), C: pair(0, 0)}
)

// LazyMargin is the window distance beyond which the lazy evaluation stands.
var LazyMargin board.Score = 300

// registry maps override names to parameter locations. Tapered parameters
// register both a Mg and an Eg leaf.
var registry = map[string]*board.Score{}

func register(name string, t *board.TaperedScore) {
	registry[name+"Mg"] = &t.Mg
	registry[name+"Eg"] = &t.Eg
}

func init() {
	for p := board.Pawn; p <= board.Queen; p++ {
		register(pieceName(p), &board.MaterialValues[p])
	}
	register("BishopPair", &BishopPair)
	register("KnightPair", &KnightPair)
	register("RookPair", &RookPair)
	register("QueenPair", &QueenPair)
	register("KnightOutpost", &KnightOutpost)
	register("BishopOutpost", &BishopOutpost)
	register("RookOpenFile", &RookOpenFile)
	register("RookHalfOpenFile", &RookHalfOpenFile)
	register("RookDoubled", &RookDoubled)
	register("PawnDoubled", &PawnDoubled)
	register("Tempo", &Tempo)
	registry["LazyMargin"] = &LazyMargin
	for i := range PawnPassed {
		register(fmt.Sprintf("PawnPassedRank%v", i), &PawnPassed[i])
	}
}

// SetParameter overrides a named parameter and rebuilds the derived tables.
func SetParameter(name string, value board.Score) error {
	p, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %v", name)
	}
	*p = value
	board.RebuildPieceSquareTables()
	return nil
}

// ParameterNames returns the registered override names, sorted.
func ParameterNames() []string {
	ret := make([]string, 0, len(registry))
	for name := range registry {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func pieceName(p board.Piece) string {
	switch p {
	case board.Pawn:
		return "Pawn"
	case board.Knight:
		return "Knight"
	case board.Bishop:
		return "Bishop"
	case board.Rook:
		return "Rook"
	case board.Queen:
		return "Queen"
	case board.King:
		return "King"
	default:
		return "None"
	}
}

package board

import "fmt"

// Score is a signed move or position score in centi-pawns, from the perspective
// stated by its producer. Mate scores occupy the band near +/- WinScore so that
// "win in N plies" orders correctly. All scores fit in 16 bits for hashing.
type Score int32

const (
	DrawScore Score = 0

	// WinScore/LossScore are the undiscounted mate scores. A mate found at
	// depth d scores WinScore-d, so shorter mates win comparisons.
	WinScore  Score = 30000
	LossScore Score = -WinScore

	// InfScore bounds every alpha-beta window. NoScore marks an unset score.
	InfScore Score = 31000
	NoScore  Score = -32000

	// InvalidScore marks a lazily computed score that has not been filled in.
	InvalidScore Score = -32001
)

// MaxPly is the hard depth cap of any search.
const MaxPly = 128

// WinInDepth returns the score for delivering mate at the given ply.
func WinInDepth(depth int) Score {
	return WinScore - Score(depth)
}

// LostInDepth returns the score for being mated at the given ply.
func LostInDepth(depth int) Score {
	return -WinScore + Score(depth)
}

// IsWinScore returns true iff the score is a forced win for the mover.
func IsWinScore(s Score) bool {
	return s >= WinScore-MaxPly
}

// IsLossScore returns true iff the score is a forced loss for the mover.
func IsLossScore(s Score) bool {
	return s <= -WinScore+MaxPly
}

// IsMateScore returns true iff the score encodes a forced mate either way.
func IsMateScore(s Score) bool {
	return IsWinScore(s) || IsLossScore(s)
}

// DistanceToWin returns the number of plies to the encoded win.
func DistanceToWin(s Score) int {
	return int(WinScore - s)
}

// DistanceToLoss returns the number of plies to the encoded loss.
func DistanceToLoss(s Score) int {
	return int(s + WinScore)
}

func (s Score) String() string {
	switch {
	case IsWinScore(s):
		return fmt.Sprintf("+M%v", (DistanceToWin(s)+1)/2)
	case IsLossScore(s):
		return fmt.Sprintf("-M%v", (DistanceToLoss(s)+1)/2)
	default:
		return fmt.Sprintf("%.2f", float64(s)/100)
	}
}

// TaperedScore is a (middlegame, endgame) score pair. The effective value is
// interpolated by the game phase: (Mg*phase + Eg*(32-phase)) / 32.
type TaperedScore struct {
	Mg, Eg Score
}

func (t TaperedScore) Add(o TaperedScore) TaperedScore {
	return TaperedScore{Mg: t.Mg + o.Mg, Eg: t.Eg + o.Eg}
}

func (t TaperedScore) Sub(o TaperedScore) TaperedScore {
	return TaperedScore{Mg: t.Mg - o.Mg, Eg: t.Eg - o.Eg}
}

func (t TaperedScore) Neg() TaperedScore {
	return TaperedScore{Mg: -t.Mg, Eg: -t.Eg}
}

// Scale multiplies both components by n.
func (t TaperedScore) Scale(n int) TaperedScore {
	return TaperedScore{Mg: t.Mg * Score(n), Eg: t.Eg * Score(n)}
}

// Taper interpolates the pair by phase in [0;32], where 32 is the full board.
func (t TaperedScore) Taper(phase int) Score {
	return (t.Mg*Score(phase) + t.Eg*Score(32-phase)) / 32
}

func (t TaperedScore) String() string {
	return fmt.Sprintf("(%v, %v)", t.Mg, t.Eg)
}

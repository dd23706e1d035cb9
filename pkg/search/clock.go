package search

import (
	"fmt"
	"time"
)

// ClockMode selects the time-management policy for a search.
type ClockMode uint8

const (
	// NoClock sets no budget: the search stops once the minimum depth of 2
	// is complete.
	NoClock ClockMode = iota
	// FixedTime budgets a fixed number of milliseconds per move.
	FixedTime
	// FixedDepth stops after completing the given iteration depth.
	FixedDepth
	// FixedNodes stops after the given node count.
	FixedNodes
	// Tournament divides the remaining time over the moves to go.
	Tournament
)

func (m ClockMode) String() string {
	switch m {
	case NoClock:
		return "none"
	case FixedTime:
		return "time"
	case FixedDepth:
		return "depth"
	case FixedNodes:
		return "nodes"
	case Tournament:
		return "level"
	default:
		return "?"
	}
}

// Clock implements the per-move time budget and abort policy. The search polls
// ShouldContinueSearch cooperatively; a minimum depth of 2 is always completed
// so a move exists even on an expired clock.
type Clock struct {
	mode ClockMode

	maxDepth int
	maxNodes uint64
	maxTime  time.Duration

	level struct {
		moves     int
		base      time.Duration
		increment time.Duration
	}

	movesLeft        int
	timeLeft         time.Duration
	opponentTimeLeft time.Duration

	// nps, if set, replaces wall time with faked node-based time for
	// deterministic testing.
	nps uint64

	start               time.Time
	minimumDepthReached bool
}

// NewClock returns an unconstrained clock.
func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Mode() ClockMode {
	return c.mode
}

// SetFixedDepth limits the search to the given iteration depth.
func (c *Clock) SetFixedDepth(depth int) {
	c.mode = FixedDepth
	c.maxDepth = depth
}

// SetFixedTime budgets the given duration per move.
func (c *Clock) SetFixedTime(d time.Duration) {
	c.mode = FixedTime
	c.maxTime = d
}

// SetFixedNodes limits the search to the given node count.
func (c *Clock) SetFixedNodes(nodes uint64) {
	c.mode = FixedNodes
	c.maxNodes = nodes
}

// SetTournament configures conventional clock play: moves per session, session
// time, and per-move increment. Zero moves means sudden death.
func (c *Clock) SetTournament(moves int, base, increment time.Duration) {
	c.mode = Tournament
	c.level.moves = moves
	c.level.base = base
	c.level.increment = increment

	c.movesLeft = moves
	c.timeLeft = base
}

// SetTimeLeft updates the engine's remaining time, as reported by the arbiter.
func (c *Clock) SetTimeLeft(d time.Duration) {
	c.timeLeft = d
}

// SetOpponentTimeLeft updates the opponent's remaining time.
func (c *Clock) SetOpponentTimeLeft(d time.Duration) {
	c.opponentTimeLeft = d
}

// SetMovesLeft overrides the moves remaining to the time control.
func (c *Clock) SetMovesLeft(moves int) {
	c.movesLeft = moves
}

// DecrementMovesLeft records a played move against the session.
func (c *Clock) DecrementMovesLeft() {
	if c.movesLeft > 0 {
		c.movesLeft--
		if c.movesLeft == 0 {
			c.movesLeft = c.level.moves
			c.timeLeft += c.level.base
		}
	}
}

// SetNps enables fake-NPS mode: the node count is treated as elapsed time at
// the given rate, making timed searches deterministic.
func (c *Clock) SetNps(nps uint64) {
	c.nps = nps
}

// Start marks the beginning of a search.
func (c *Clock) Start() {
	c.minimumDepthReached = false
	c.start = time.Now()
}

// Elapsed returns the time spent since Start. In fake-NPS mode the node count
// is the clock.
func (c *Clock) Elapsed(nodes uint64) time.Duration {
	if c.nps != 0 {
		return time.Duration(nodes * uint64(time.Second) / c.nps)
	}
	return time.Since(c.start)
}

// ShouldContinueSearch reports whether the search may continue. Depth is the
// iteration about to start, or zero for in-tree polls; nodes is the running
// node count. Time checks in tournament mode run every 1024 nodes.
func (c *Clock) ShouldContinueSearch(depth int, nodes uint64) bool {
	if depth >= MaxDepth {
		return false
	}

	// Always finish a depth-2 iteration so a legal move is available.
	if c.mode != FixedDepth && !c.minimumDepthReached {
		if depth > 1 {
			c.minimumDepthReached = true
		} else {
			return true
		}
	}

	switch c.mode {
	case NoClock:
		return false
	case FixedTime:
		return c.Elapsed(nodes) < c.maxTime
	case FixedDepth:
		return depth < c.maxDepth
	case FixedNodes:
		return nodes < c.maxNodes
	case Tournament:
		if nodes%1024 != 0 {
			return true
		}
		return c.Elapsed(nodes) < c.budget()
	default:
		return true
	}
}

// budget returns the tournament per-move allowance, with a small safety margin.
func (c *Clock) budget() time.Duration {
	var perMove time.Duration
	switch {
	case c.level.moves == 0:
		perMove = c.timeLeft/30 + c.level.increment
	case c.movesLeft <= 1:
		perMove = c.timeLeft
	default:
		perMove = c.timeLeft/time.Duration(c.movesLeft) + c.level.increment
	}

	if perMove -= 20 * time.Millisecond; perMove < time.Millisecond {
		perMove = time.Millisecond
	}
	return perMove
}

func (c *Clock) String() string {
	switch c.mode {
	case FixedDepth:
		return fmt.Sprintf("clock{depth=%v}", c.maxDepth)
	case FixedTime:
		return fmt.Sprintf("clock{time=%v}", c.maxTime)
	case FixedNodes:
		return fmt.Sprintf("clock{nodes=%v}", c.maxNodes)
	case Tournament:
		return fmt.Sprintf("clock{level=%v/%v+%v, left=%v}", c.level.moves, c.level.base, c.level.increment, c.timeLeft)
	default:
		return "clock{}"
	}
}

// Package xboard contains a driver for using the engine under the XBoard text
// protocol.
//
// See: https://www.gnu.org/software/xboard/engine-intf.html
package xboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jingweichess/jingwei/pkg/board"
	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/jingweichess/jingwei/pkg/engine"
	"github.com/jingweichess/jingwei/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "xboard"

// Driver implements an XBoard driver for an engine. It is activated if sent
// "xboard".
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	force  atomic.Bool // manual-move mode: do not auto-reply
	post   atomic.Bool // print per-iteration thinking output
	active atomic.Bool // user is waiting for the engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	d.post.Store(true)
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "XBoard protocol initialized")

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "xboard", "protover":
				// Announce the supported feature set. "done=1" ends feature
				// negotiation.

				d.out <- fmt.Sprintf("feature setboard=1 usermove=1 time=1 analyze=0 nps=1 sigint=0 sigterm=0 myname=\"%v\" done=1", d.e.Name())

			case "accepted", "rejected":
				// Feature acknowledgements need no reply.

			case "new":
				d.ensureInactive(ctx)
				d.force.Store(false)
				if err := d.e.Reset(ctx, fen.Initial); err != nil {
					logw.Errorf(ctx, "Reset failed: %v", err)
				}

			case "setboard":
				d.ensureInactive(ctx)
				if err := d.e.Reset(ctx, strings.Join(args, " ")); err != nil {
					d.out <- fmt.Sprintf("tellusererror Illegal position: %v", err)
				}

			case "usermove":
				if len(args) == 0 {
					d.out <- "Error (missing move): usermove"
					break
				}
				d.ensureInactive(ctx)

				if err := d.e.Move(ctx, args[0]); err != nil {
					d.out <- fmt.Sprintf("Illegal move: %v", args[0])
					break
				}
				if !d.force.Load() {
					d.think(ctx)
				}

			case "go":
				d.ensureInactive(ctx)
				d.force.Store(false)
				d.think(ctx)

			case "force":
				d.ensureInactive(ctx)
				d.force.Store(true)

			case "undo":
				d.ensureInactive(ctx)
				if err := d.e.TakeBack(ctx); err != nil {
					d.out <- fmt.Sprintf("Error (%v): undo", err)
				}

			case "sd":
				// Fixed-depth clock.

				if n, err := parseInt(args); err == nil {
					d.e.Clock().SetFixedDepth(n)
				}

			case "st":
				// Fixed seconds per move.

				if n, err := parseInt(args); err == nil {
					d.e.Clock().SetFixedTime(time.Duration(n) * time.Second)
				}

			case "sn":
				// Fixed node budget per move.

				if n, err := parseInt(args); err == nil {
					d.e.Clock().SetFixedNodes(uint64(n))
				}

			case "level":
				// level <moves> <base> <increment>, base in min[:sec].

				if len(args) >= 3 {
					moves, err1 := strconv.Atoi(args[0])
					base, err2 := parseLevelTime(args[1])
					inc, err3 := strconv.Atoi(args[2])
					if err1 == nil && err2 == nil && err3 == nil {
						d.e.Clock().SetTournament(moves, base, time.Duration(inc)*time.Second)
					}
				}

			case "time":
				// Engine's remaining time, in centiseconds.

				if n, err := parseInt(args); err == nil {
					d.e.Clock().SetTimeLeft(time.Duration(n) * 10 * time.Millisecond)
				}

			case "otim":
				if n, err := parseInt(args); err == nil {
					d.e.Clock().SetOpponentTimeLeft(time.Duration(n) * 10 * time.Millisecond)
				}

			case "nps":
				// Fake-NPS mode: node counts stand in for wall time.

				if n, err := parseInt(args); err == nil {
					d.e.Clock().SetNps(uint64(n))
				}

			case "perft":
				if n, err := parseInt(args); err == nil {
					start := time.Now()
					count := d.e.Perft(n)
					d.out <- fmt.Sprintf("perft %v: %v (%v)", n, count, time.Since(start))
				}

			case "eval":
				d.out <- fmt.Sprintf("eval %v", d.e.StaticEval())

			case "fen":
				d.out <- d.e.FEN()

			case "setvalue":
				if len(args) < 2 {
					d.out <- "Error (usage): setvalue <name> <score>"
					break
				}
				value, err := strconv.Atoi(args[1])
				if err != nil {
					d.out <- fmt.Sprintf("Error (invalid score): setvalue %v", args[1])
					break
				}
				if err := d.e.SetParameter(ctx, args[0], board.Score(value)); err != nil {
					d.out <- fmt.Sprintf("Error (%v): setvalue", err)
				}

			case "personality":
				if len(args) == 0 {
					d.out <- "Error (usage): personality <file>"
					break
				}
				if err := d.e.LoadPersonality(ctx, args[0]); err != nil {
					d.out <- fmt.Sprintf("Error (%v): personality", err)
				}

			case "result":
				d.ensureInactive(ctx)
				if err := d.e.Result(ctx, strings.Join(args, " ")); err != nil {
					logw.Errorf(ctx, "Failed to record result: %v", err)
				}

			case "ping":
				if len(args) > 0 {
					d.out <- fmt.Sprintf("pong %v", args[0])
				}

			case "post":
				d.post.Store(true)

			case "nopost":
				d.post.Store(false)

			case "quit", "exit":
				d.ensureInactive(ctx)
				return

			case "random", "hard", "easy", "computer", "white", "black":
				// Quietly accepted, no behavior change.

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// think searches the current position and replies with the best move.
func (d *Driver) think(ctx context.Context) {
	out, err := d.e.Analyze(ctx, search.Options{})
	if err != nil {
		logw.Errorf(ctx, "Analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			if d.post.Load() {
				d.out <- printPV(pv)
			}
		}
		d.searchCompleted(ctx, last)
	}()
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		if len(pv.Moves) == 0 {
			// Checkmate or stalemate: nothing to play.
			return
		}

		move := pv.Moves[0]
		if err := d.e.Apply(ctx, move); err != nil {
			logw.Errorf(ctx, "Failed to apply own move %v: %v", move, err)
			return
		}
		d.out <- fmt.Sprintf("move %v", move)
	} // else: stale or duplicate result
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

// printPV formats the per-iteration report: depth, score, centiseconds,
// nodes and the principal variation.
func printPV(pv search.PV) string {
	return fmt.Sprintf("%v %v %v %v %v",
		pv.Depth, printScore(pv.Score), pv.Time.Milliseconds()/10, pv.Nodes, board.PrintMoves(pv.Moves))
}

// printScore converts to centipawns, with mate scores in the conventional
// 100000+N representation.
func printScore(s board.Score) int {
	switch {
	case board.IsWinScore(s):
		return 100000 + (board.DistanceToWin(s)+1)/2
	case board.IsLossScore(s):
		return -100000 - (board.DistanceToLoss(s)+1)/2
	default:
		return int(s)
	}
}

func parseInt(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[0])
}

// parseLevelTime parses the "min" or "min:sec" base time format.
func parseLevelTime(str string) (time.Duration, error) {
	parts := strings.SplitN(str, ":", 2)

	min, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid level time: %v", str)
	}
	ret := time.Duration(min) * time.Minute

	if len(parts) == 2 {
		sec, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, fmt.Errorf("invalid level time: %v", str)
		}
		ret += time.Duration(sec) * time.Second
	}
	return ret, nil
}

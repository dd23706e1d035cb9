package xboard_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jingweichess/jingwei/pkg/engine"
	"github.com/jingweichess/jingwei/pkg/engine/xboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness drives the protocol over channels, collecting replies with a
// deadline so a silent engine fails rather than hangs.
type harness struct {
	in  chan string
	out <-chan string
	d   *xboard.Driver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	e := engine.New(ctx, "jingwei", "test", engine.WithOptions(engine.Options{Hash: 1}))
	in := make(chan string, 16)
	d, out := xboard.NewDriver(ctx, e, in)

	t.Cleanup(func() {
		d.Close()
	})
	return &harness{in: in, out: out, d: d}
}

func (h *harness) send(lines ...string) {
	for _, line := range lines {
		h.in <- line
	}
}

// expect waits for an output line containing the given substring.
func (h *harness) expect(t *testing.T, substr string) string {
	t.Helper()

	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-h.out:
			if !ok {
				t.Fatalf("output closed while waiting for %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", substr)
		}
	}
}

func TestPingPong(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "ping 7")
	h.expect(t, "pong 7")
}

func TestProtover(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "protover 2")

	features := h.expect(t, "feature")
	assert.Contains(t, features, "setboard=1")
	assert.Contains(t, features, "usermove=1")
	assert.Contains(t, features, "time=1")
	assert.Contains(t, features, "analyze=0")
	assert.Contains(t, features, "nps=1")
	assert.Contains(t, features, "done=1")
}

func TestSetboardAndFen(t *testing.T) {
	h := newHarness(t)
	kiwipete := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	h.send("xboard", "setboard "+kiwipete, "fen")
	assert.Equal(t, kiwipete, h.expect(t, "r3k2r"))
}

func TestPerftCommand(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "perft 3")
	assert.Contains(t, h.expect(t, "perft 3:"), "8902")
}

func TestEvalCommand(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "eval")
	h.expect(t, "eval")
}

func TestUsermoveReply(t *testing.T) {
	h := newHarness(t)

	// Fixed depth 2 keeps the reply fast and deterministic to arrive.
	h.send("xboard", "sd 2", "usermove e2e4")
	reply := h.expect(t, "move ")
	require.Len(t, strings.Fields(reply), 2)
}

func TestForceSuppressesReply(t *testing.T) {
	h := newHarness(t)

	h.send("xboard", "sd 2", "force", "usermove e2e4", "usermove e7e5", "ping 1")
	// The pong arrives without any move having been sent.
	for {
		line := h.expect(t, "")
		if strings.Contains(line, "pong 1") {
			break
		}
		assert.False(t, strings.HasPrefix(line, "move "), line)
	}
}

func TestGoProducesMove(t *testing.T) {
	h := newHarness(t)

	h.send("xboard", "sd 3", "setboard 6k1/5ppp/8/8/8/8/8/R6K w - - 0 1", "go")
	assert.Contains(t, h.expect(t, "move "), "move a1a8")
}

func TestIllegalUsermove(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "usermove e2e5")
	h.expect(t, "Illegal move")
}

func TestSetvalueCommand(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "setvalue Bogus 10")
	h.expect(t, "Error")
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	h.send("xboard", "quit")

	deadline := time.After(30 * time.Second)
	select {
	case <-h.d.Closed():
	case <-deadline:
		t.Fatal("driver did not close on quit")
	}
}

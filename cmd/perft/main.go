package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jingweichess/jingwei/pkg/board/fen"
	"github.com/jingweichess/jingwei/pkg/engine"
	"github.com/seekerror/logw"
)

var (
	position = flag.String("fen", fen.Initial, "Position to count from")
	depth    = flag.Int("depth", 5, "Leaf depth")
	divide   = flag.Bool("divide", false, "Print the per-move breakdown")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: perft [options]

PERFT counts legal move paths for move generator verification.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	pos, err := fen.Decode(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid position '%v': %v", *position, err)
	}

	start := time.Now()
	if *divide {
		var sum uint64
		for _, d := range engine.Divide(&pos, *depth) {
			fmt.Printf("%v: %v\n", d.Move, d.Count)
			sum += d.Count
		}
		fmt.Printf("total: %v (%v)\n", sum, time.Since(start))
		return
	}

	count := engine.Perft(&pos, *depth)
	fmt.Printf("perft(%v) = %v (%v)\n", *depth, count, time.Since(start))
}

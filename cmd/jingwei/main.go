package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jingweichess/jingwei/pkg/engine"
	"github.com/jingweichess/jingwei/pkg/engine/xboard"
	"github.com/seekerror/logw"
)

var (
	hash    = flag.Uint("hash", 64, "Transposition table size in MB (zero disables)")
	journal = flag.String("journal", "", "Game journal directory (empty disables)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: jingwei [options]

JING WEI is an XBoard chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := []engine.Option{
		engine.WithOptions(engine.Options{Hash: *hash}),
	}
	if *journal != "" {
		j, err := engine.OpenJournal(ctx, *journal)
		if err != nil {
			logw.Exitf(ctx, "Failed to open journal: %v", err)
		}
		defer j.Close()
		opts = append(opts, engine.WithJournal(j))
	}

	e := engine.New(ctx, "jingwei", "jingweichess", opts...)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case xboard.ProtocolName:
		driver, out := xboard.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

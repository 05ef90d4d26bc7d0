package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors suggest values for the flags that take a known set.
var flagPredictors = map[string]complete.Predictor{
	"method":      predict.Set{"fifo", "average"},
	"period":      predict.Set{"day", "week", "month", "quarter", "year"},
	"freq":        predict.Set{"weekly", "biweekly", "monthly"},
	"format":      predict.Set{"term", "md", "html"},
	"chart":       predict.Files("*.png"),
	"config":      predict.Files("*"),
	"ledger-file": predict.Files("*.jsonl"),
	"store":       predict.Files("*.db"),
	"log-level":   predict.Set{"debug", "info", "warn", "error"},
}

// argPredictors suggest the positional arguments of a subcommand.
var argPredictors = map[string]complete.Predictor{
	"import": predict.Files("*.jsonl"),
	"fmt":    predict.Files("*.jsonl"),
}

func predictor(name string) complete.Predictor {
	if p, ok := flagPredictors[name]; ok {
		return p
	}
	return predict.Something
}

// Completion describes pnl for shell completion: global flags, subcommands
// and their flags.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: make(map[string]complete.Predictor),
	}
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		root.Flags[f.Name] = predictor(f.Name)
	})
	for _, e := range commands() {
		fs := flag.NewFlagSet(e.cmd.Name(), flag.ContinueOnError)
		e.cmd.SetFlags(fs)
		sub := &complete.Command{
			Flags: make(map[string]complete.Predictor),
			Args:  argPredictors[e.cmd.Name()],
		}
		fs.VisitAll(func(f *flag.Flag) {
			sub.Flags[f.Name] = predictor(f.Name)
		})
		root.Sub[e.cmd.Name()] = sub
	}
	return root
}

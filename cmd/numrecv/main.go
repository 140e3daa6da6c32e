package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/qmsk/numsend/dashes"
	"github.com/qmsk/numsend/stats"
	"github.com/qmsk/numsend/util"
)

type Options struct {
	Log     util.LogOptions     `group:"Logging"`
	Metrics util.MetricsOptions `group:"Metrics"`
	Stats   stats.WriterOptions `group:"Stats Writer"`
	Recv    dashes.RecvConfig   `group:"Receiver"`
}

func parseOptions(args []string, parserOptions flags.Options) (Options, error) {
	var options Options

	parser := flags.NewParser(&options, parserOptions)
	parser.Name = "numrecv"
	parser.LongDescription = "Receive runs of dashes and report payloads received out of sequence."

	if args, err := parser.ParseArgs(args); err != nil {
		return options, err
	} else if len(args) > 0 {
		return options, fmt.Errorf("%w: extra arguments: %v", dashes.ErrInvalidArgument, args)
	}

	if options.Stats.Instance == "" {
		options.Stats.Instance = options.Recv.ListenAddr
	}

	return options, nil
}

func main() {
	options, err := parseOptions(os.Args[1:], flags.Default)
	if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
		os.Exit(0)
	} else if ok {
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	log := util.NewLogger(os.Stderr, options.Log)

	// dashes.Recv
	recv, err := options.Recv.Apply(log)
	if err != nil {
		log.Error("failed to listen", "addr", options.Recv.ListenAddr, "tcp", options.Recv.TCP, "error", err)
		os.Exit(1)
	} else {
		log.Info("listening", "recv", recv.String())
	}

	// metrics
	if _, err := options.Metrics.Serve(log); err != nil {
		log.Error("failed to start metrics server", "error", err)
		os.Exit(1)
	}

	// stats
	if options.Stats.Empty() {
		log.Debug("skip stats")
	} else if statsWriter, err := stats.NewWriter(options.Stats, log); err != nil {
		log.Error("failed to create stats writer", "error", err)
		os.Exit(1)
	} else if err := recv.StatsWriter(statsWriter); err != nil {
		log.Error("failed to set stats writer", "error", err)
		os.Exit(1)
	} else {
		log.Debug("stats writer", "stats", statsWriter.String())

		defer statsWriter.Close()
	}

	// run
	if err := recv.Run(); err != nil {
		log.Error("recv failed", "recv", recv.String(), "error", err)
		os.Exit(1)
	}
}

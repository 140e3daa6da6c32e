package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/qmsk/numsend/dashes"
	"github.com/qmsk/numsend/stats"
	"github.com/qmsk/numsend/util"
)

const EXIT_USAGE = 2

type Options struct {
	Log     util.LogOptions     `group:"Logging"`
	Metrics util.MetricsOptions `group:"Metrics"`
	Stats   stats.WriterOptions `group:"Stats Writer"`
	Send    dashes.SendConfig   `group:"Send"`

	Args struct {
		Host string `positional-arg-name:"host" description:"Destination host"`
		Port uint16 `positional-arg-name:"port" description:"Destination port"`
	} `positional-args:"yes" required:"yes"`
}

func parseOptions(args []string, parserOptions flags.Options) (Options, error) {
	var options Options

	parser := flags.NewParser(&options, parserOptions)
	parser.Name = "numsend"
	parser.LongDescription = "Send runs of dashes to host:port, one payload every --sleep milliseconds, echoing each payload to stdout."

	if args, err := parser.ParseArgs(args); err != nil {
		return options, err
	} else if len(args) > 0 {
		return options, fmt.Errorf("%w: extra arguments: %v", dashes.ErrInvalidArgument, args)
	}

	options.Send.Host = options.Args.Host
	options.Send.Port = options.Args.Port

	if options.Stats.Instance == "" {
		options.Stats.Instance = options.Send.Addr()
	}

	return options, nil
}

func main() {
	options, err := parseOptions(os.Args[1:], flags.Default)
	if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
		os.Exit(0)
	} else if ok {
		// already printed
		os.Exit(EXIT_USAGE)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(EXIT_USAGE)
	}

	log := util.NewLogger(os.Stderr, options.Log)

	// dashes.Send
	send, err := options.Send.Apply(log)
	if errors.Is(err, dashes.ErrInvalidArgument) {
		log.Error("invalid arguments", "error", err)
		os.Exit(EXIT_USAGE)
	} else if err != nil {
		log.Error("failed to open socket", "addr", options.Send.Addr(), "tcp", options.Send.TCP, "error", err)
		os.Exit(1)
	} else {
		log.Debug("opened socket", "send", send.String())
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
	} else if err := send.StatsWriter(statsWriter); err != nil {
		log.Error("failed to set stats writer", "error", err)
		os.Exit(1)
	} else {
		log.Debug("stats writer", "stats", statsWriter.String())

		defer statsWriter.Close()
	}

	// run
	if err := send.Run(); err != nil {
		log.Error("send failed", "send", send.String(), "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"io"
	"os"

	"golang.org/x/term"

	"fissh/internal/stream"
	"fissh/internal/terminal"
	"fissh/internal/tui"
)

func runLocal(ctx context.Context, args []string) error {
	var screen bool
	cfg, err := parse("local", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&screen, "screen", false, "draw through a full-screen tcell viewer")
	})
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	if screen {
		return tui.Open(ctx, params, source(cfg), cfg.Stream.Interval.Duration, logger)
	}

	out := int(os.Stdout.Fd())
	dims := terminal.NewDims(terminal.Viewport(terminal.SizeOr(out)))
	terminal.Watch(ctx, out, dims)

	in := int(os.Stdin.Fd())
	restore, err := terminal.MakeRaw(in)
	if err != nil {
		return err
	}
	defer func() { _ = restore() }()

	if _, err := io.WriteString(os.Stdout, terminal.ClearScreen); err != nil {
		return err
	}
	rows, cols := dims.Get()
	sched, err := stream.Start(ctx, rows, cols, os.Stdout, dims.Get,
		stream.WithInterval(cfg.Stream.Interval.Duration),
		stream.WithParams(params),
		stream.WithSource(source(cfg)),
		stream.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if term.IsTerminal(in) {
		go terminal.WatchInput(os.Stdin, sched.Stop)
	}

	<-sched.Done()
	sched.Stop()
	_ = terminal.Restore(os.Stdout)
	return sched.Err()
}

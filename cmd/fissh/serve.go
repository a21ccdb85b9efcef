package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"fissh/internal/ledger"
	"fissh/internal/server"
)

func runServe(ctx context.Context, args []string) error {
	cfg, err := parse("serve", args, nil)
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	store, err := ledger.NewStore(cfg.Ledger.Backend, cfg.Ledger.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if err := ledger.CloseIfSupported(store); err != nil {
			logger.Warn("ledger close failed", "err", err)
		}
	}()

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func runSessions(ctx context.Context, args []string) error {
	var (
		limit  int
		active bool
	)
	cfg, err := parse("sessions", args, func(fs *flag.FlagSet) {
		fs.IntVar(&limit, "n", 20, "number of sessions to list")
		fs.BoolVar(&active, "active", false, "only sessions still open")
	})
	if err != nil {
		return err
	}

	store, err := ledger.NewStore(cfg.Ledger.Backend, cfg.Ledger.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer ledger.CloseIfSupported(store)

	var recs []ledger.Record
	if active {
		recs, err = store.Active(ctx)
	} else {
		recs, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRANSPORT\tREMOTE\tSTARTED\tDURATION\tFRAMES\tPEAK\tREASON")
	for _, r := range recs {
		reason := r.Reason
		if r.Live() {
			reason = "live"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%dx%d\t%s\n",
			r.ID, r.Transport, r.Remote, r.Started.Format(time.DateTime),
			r.Duration(now).Round(time.Second), r.Frames, r.PeakRows, r.PeakCols, reason)
	}
	return w.Flush()
}

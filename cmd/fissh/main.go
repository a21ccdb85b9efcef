// Command fissh streams an emoji aquarium to the local terminal or serves it
// to remote viewers over SSH and websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fissh/internal/config"
	pcore "fissh/pkg/core"
)

const usage = `usage: fissh <command> [flags]

commands:
  local     stream the aquarium to this terminal
  serve     accept viewers over ssh and websockets
  sessions  list recorded viewer sessions

Run "fissh <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "local":
		err = runLocal(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "sessions":
		err = runSessions(ctx, args)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "fissh: unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "fissh:", err)
		os.Exit(1)
	}
}

// parse loads the file named by -config, then lets the remaining flags
// override it.
func parse(name string, args []string, extra func(*flag.FlagSet)) (*config.Config, error) {
	path := config.PathFromArgs(args)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String("config", path, "YAML or TOML config file")
	cfg.Bind(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func source(cfg *config.Config) *pcore.RNG {
	seed := cfg.Tank.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return pcore.NewRNG(seed)
}

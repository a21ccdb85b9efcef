//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strconv"

	"fissh/internal/app"
	"fissh/internal/aquarium"
	"fissh/internal/config"
	"fissh/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg, err := config.Load(config.PathFromArgs(os.Args[1:]))
	if err != nil {
		log.Fatal(err)
	}
	flag.String("config", "", "YAML or TOML config file (flags override it)")
	simName := flag.String("sim", "aquarium", "simulation: aquarium or aquarium-garden")
	rows := flag.Int("rows", 24, "tank rows")
	cols := flag.Int("cols", 40, "tank columns")
	scale := flag.Int("scale", 16, "pixels per cell")
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	seed := cfg.Tank.Seed
	if seed == 0 {
		seed = 1337
	}
	sim, err := core.Lookup(*simName, map[string]string{
		"rows":               strconv.Itoa(*rows),
		"cols":               strconv.Itoa(*cols),
		"seed":               strconv.FormatInt(seed, 10),
		"variance":           strconv.FormatFloat(cfg.Tank.Variance, 'f', -1, 64),
		"crawl_divisor":      strconv.FormatFloat(cfg.Tank.CrawlDivisor, 'f', -1, 64),
		"bubble_divisor":     strconv.FormatFloat(cfg.Tank.BubbleDivisor, 'f', -1, 64),
		"vegetation_divisor": strconv.FormatFloat(cfg.Tank.VegetationDivisor, 'f', -1, 64),
		"crawl_cadence":      strconv.Itoa(cfg.Tank.CrawlCadence),
		"vegetation":         strconv.FormatBool(cfg.Tank.Vegetation),
		"occlusion":          cfg.Tank.Occlusion,
	})
	if err != nil {
		log.Fatal(err)
	}
	tank, ok := sim.(*aquarium.Tank)
	if !ok {
		log.Fatalf("sim %q is not an aquarium", sim.Name())
	}

	game := app.New(tank, *scale, cfg.Stream.Interval.Duration, seed)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("fissh - " + tank.Name())
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

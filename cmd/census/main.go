// Command census sweeps aquarium tunings headlessly and reports how crowded
// each one keeps the tank.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"fissh/internal/aquarium"
	pcore "fissh/pkg/core"
)

type paramSet struct {
	variance     float64
	crawlDivisor float64
	cadence      int
}

func (p paramSet) String() string {
	return fmt.Sprintf("variance=%.2f crawlDivisor=%.0f cadence=%d", p.variance, p.crawlDivisor, p.cadence)
}

type scenarioResult struct {
	params        paramSet
	meanSwimming  float64
	meanCrawling  float64
	meanBubbles   float64
	peakOccupied  int
	swimRejected  float64
	crawlRejected float64
}

func main() {
	steps := flag.Int("steps", 2000, "ticks to simulate per scenario")
	rows := flag.Int("rows", 24, "tank rows")
	cols := flag.Int("cols", 40, "tank columns")
	seeds := flag.Int("seeds", 4, "independent tanks per parameter set")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	top := flag.Int("top", 10, "results to print")
	flag.Parse()

	sets := sweep(
		[]float64{0.05, 0.1, 0.15, 0.2, 0.3},
		[]float64{4, 5, 6, 8},
		[]int{2, 3, 4},
	)
	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps, %d seeds, %dx%d)\n",
		len(sets), *workers, *steps, *seeds, *rows, *cols)

	start := time.Now()
	all := runAll(sets, *workers, func(p paramSet) scenarioResult {
		return runScenario(p, *rows, *cols, *steps, *seeds)
	})
	sort.Slice(all, func(i, j int) bool {
		return all[i].meanSwimming+all[i].meanCrawling > all[j].meanSwimming+all[j].meanCrawling
	})

	fmt.Printf("\nMost populated tunings (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		fmt.Printf("%2d) swim=%.2f crawl=%.2f bubbles=%.2f peak=%d rejected swim=%.1f%% crawl=%.1f%% %s\n",
			i+1, res.meanSwimming, res.meanCrawling, res.meanBubbles, res.peakOccupied,
			100*res.swimRejected, 100*res.crawlRejected, res.params)
	}
}

func sweep(variances, divisors []float64, cadences []int) []paramSet {
	var sets []paramSet
	for _, v := range variances {
		for _, d := range divisors {
			for _, c := range cadences {
				sets = append(sets, paramSet{variance: v, crawlDivisor: d, cadence: c})
			}
		}
	}
	return sets
}

// runAll fans sets out to workers and collects one result per set.
func runAll(sets []paramSet, workers int, run func(paramSet) scenarioResult) []scenarioResult {
	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < max(workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- run(params)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	all := make([]scenarioResult, 0, len(sets))
	for res := range results {
		all = append(all, res)
	}
	return all
}

func runScenario(params paramSet, rows, cols, steps, seeds int) scenarioResult {
	p := aquarium.DefaultParams()
	p.Variance = params.variance
	p.CrawlDivisor = params.crawlDivisor
	p.CrawlCadence = params.cadence

	res := scenarioResult{params: params}
	var swimming, crawling, bubbles float64
	var stats aquarium.SpawnStats
	samples := 0
	for seed := 1; seed <= seeds; seed++ {
		tank, err := aquarium.NewTank(rows, cols, p, pcore.NewRNG(int64(seed)))
		if err != nil {
			return res
		}
		tank.SeedSwimmer()
		for step := 0; step < steps; step++ {
			tank.Advance(rows, cols)
			c := tank.Census()
			swimming += float64(c.Swimming)
			crawling += float64(c.Crawling)
			bubbles += float64(c.Bubbles)
			res.peakOccupied = max(res.peakOccupied, c.Total())
			samples++
		}
		s := tank.Stats()
		stats.SwimPlaced += s.SwimPlaced
		stats.SwimRejected += s.SwimRejected
		stats.CrawlPlaced += s.CrawlPlaced
		stats.CrawlRejected += s.CrawlRejected
	}
	if samples > 0 {
		res.meanSwimming = swimming / float64(samples)
		res.meanCrawling = crawling / float64(samples)
		res.meanBubbles = bubbles / float64(samples)
	}
	res.swimRejected = ratio(stats.SwimRejected, stats.SwimPlaced)
	res.crawlRejected = ratio(stats.CrawlRejected, stats.CrawlPlaced)
	return res
}

func ratio(rejected, placed uint64) float64 {
	total := rejected + placed
	if total == 0 {
		return 0
	}
	return float64(rejected) / float64(total)
}

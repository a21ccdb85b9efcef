package aquarium

import (
	"errors"
	"testing"

	pcore "fissh/pkg/core"
)

// script replays fixed draws; once exhausted every trial fails and every
// index is zero.
type script struct {
	floats []float64
	ints   []int
}

func (s *script) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.999
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *script) IntN(n int) int {
	if len(s.ints) == 0 || n <= 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func layerWith(rows, cols int, cells map[[2]int]Species) *Layer {
	l := NewLayer(rows, cols)
	for pos, s := range cells {
		l.Set(pos[0], pos[1], s)
	}
	return l
}

func expectOnly(t *testing.T, l *Layer, want map[[2]int]Species) {
	t.Helper()
	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			got := l.At(row, col)
			if exp := want[[2]int{row, col}]; got != exp {
				t.Fatalf("cell (%d,%d) = %v, expected %v", row, col, got, exp)
			}
		}
	}
}

func TestBlockedIgnoresVegetationAndCentre(t *testing.T) {
	l := layerWith(5, 5, map[[2]int]Species{
		{2, 2}: Crab,
		{4, 0}: Seedling,
	})
	if Blocked(l, 2, 2) {
		t.Fatal("the cell itself must not count as a neighbour")
	}
	if !Blocked(l, 1, 1) || !Blocked(l, 3, 3) || !Blocked(l, 2, 3) {
		t.Fatal("every cell around a crab should be blocked")
	}
	if Blocked(l, 3, 0) || Blocked(l, 4, 1) {
		t.Fatal("vegetation must never block")
	}
	if Blocked(l, 0, 4) {
		t.Fatal("a far cell should be free")
	}
}

func TestSpawnSwimmingPlacesAtRightEdge(t *testing.T) {
	l := NewLayer(6, 8)
	src := &script{floats: []float64{0.1}, ints: []int{2, 1}}
	if got := SpawnSwimming(l, src, DefaultParams()); got != Placed {
		t.Fatalf("expected Placed, got %v", got)
	}
	expectOnly(t, l, map[[2]int]Species{{2, 7}: TropicalFish})
}

func TestSpawnSwimmingTrialFailure(t *testing.T) {
	l := NewLayer(6, 8)
	src := &script{floats: []float64{0.15}}
	if got := SpawnSwimming(l, src, DefaultParams()); got != Skipped {
		t.Fatalf("expected Skipped, got %v", got)
	}
	expectOnly(t, l, nil)
}

func TestSpawnRejectedNextToOccupant(t *testing.T) {
	l := layerWith(6, 8, map[[2]int]Species{{3, 6}: Fish})
	src := &script{floats: []float64{0.1}, ints: []int{2, 0}}
	if got := SpawnSwimming(l, src, DefaultParams()); got != Rejected {
		t.Fatalf("expected Rejected, got %v", got)
	}
	expectOnly(t, l, map[[2]int]Species{{3, 6}: Fish})
}

func TestSpawnCrawlingUsesDivisor(t *testing.T) {
	p := DefaultParams()
	l := NewLayer(6, 8)
	if got := SpawnCrawling(l, &script{floats: []float64{0.03}}, p); got != Skipped {
		t.Fatalf("0.03 is above 0.15/6, expected Skipped, got %v", got)
	}
	p.CrawlDivisor = 5
	if got := SpawnCrawling(l, &script{floats: []float64{0.029}}, p); got != Placed {
		t.Fatalf("0.029 is below 0.15/5, expected Placed, got %v", got)
	}
	expectOnly(t, l, map[[2]int]Species{{5, 7}: Crab})
}

func TestSpawnBubbleNeedsEmptyCell(t *testing.T) {
	b := NewLayer(6, 8)
	p := DefaultParams()
	if got := SpawnBubble(b, &script{floats: []float64{0.05}, ints: []int{3}}, p); got != Placed {
		t.Fatalf("expected Placed, got %v", got)
	}
	if got := SpawnBubble(b, &script{floats: []float64{0.05}, ints: []int{3}}, p); got != Rejected {
		t.Fatalf("expected Rejected on an occupied cell, got %v", got)
	}
	if got := SpawnBubble(b, &script{floats: []float64{0.05}, ints: []int{4}}, p); got != Placed {
		t.Fatalf("bubbles ignore neighbours, expected Placed, got %v", got)
	}
	expectOnly(t, b, map[[2]int]Species{{4, 3}: Bubble, {4, 4}: Bubble})
}

func TestPlantVegetationBottomRowOnly(t *testing.T) {
	v := NewLayer(4, 4)
	src := &script{floats: []float64{0.01, 0.5, 0.02, 0.9}}
	if n := PlantVegetation(v, 0, src, DefaultParams()); n != 2 {
		t.Fatalf("expected 2 plants, got %d", n)
	}
	expectOnly(t, v, map[[2]int]Species{{3, 0}: Seedling, {3, 2}: Seedling})
}

func TestBubblesRiseAndPop(t *testing.T) {
	b := layerWith(4, 3, map[[2]int]Species{{2, 1}: Bubble, {0, 2}: Bubble})
	next := RiseBubbles(b)
	expectOnly(t, next, map[[2]int]Species{{1, 1}: Bubble})
	next = RiseBubbles(next)
	expectOnly(t, next, map[[2]int]Species{{0, 1}: Bubble})
	next = RiseBubbles(next)
	expectOnly(t, next, nil)
}

func TestSwimmerFallsOffLeftEdge(t *testing.T) {
	l := layerWith(5, 4, map[[2]int]Species{{1, 0}: Fish})
	next := MoveCreatures(l, 1, &script{}, DefaultParams())
	expectOnly(t, next, nil)
}

func TestSwimmerMovesLeft(t *testing.T) {
	l := layerWith(5, 4, map[[2]int]Species{{1, 3}: Blowfish})
	next := MoveCreatures(l, 1, &script{}, DefaultParams())
	expectOnly(t, next, map[[2]int]Species{{1, 2}: Blowfish})
}

func TestSwimmerDrift(t *testing.T) {
	l := layerWith(6, 4, map[[2]int]Species{{1, 3}: Fish})
	// 0.05*2 < 0.15 drifts; 0.7 picks down.
	next := MoveCreatures(l, 1, &script{floats: []float64{0.05, 0.7}}, DefaultParams())
	expectOnly(t, next, map[[2]int]Species{{2, 2}: Fish})

	next = MoveCreatures(l, 1, &script{floats: []float64{0.05, 0.2}}, DefaultParams())
	expectOnly(t, next, map[[2]int]Species{{0, 2}: Fish})
}

func TestSwimmerDriftOutOfBandDestroyed(t *testing.T) {
	// Band is rows 0..3 for six rows.
	l := layerWith(6, 4, map[[2]int]Species{{3, 3}: Fish, {0, 1}: Fish})
	next := MoveCreatures(l, 1, &script{floats: []float64{0.05, 0.1, 0.05, 0.9}}, DefaultParams())
	expectOnly(t, next, nil)
}

func TestLaterMoverYieldsToEarlier(t *testing.T) {
	l := layerWith(6, 8, map[[2]int]Species{{0, 5}: Fish, {1, 6}: TropicalFish})
	next := MoveCreatures(l, 1, &script{}, DefaultParams())
	expectOnly(t, next, map[[2]int]Species{{0, 4}: Fish})
}

func TestCrawlerCadence(t *testing.T) {
	l := layerWith(5, 6, map[[2]int]Species{{4, 3}: Crab})
	p := DefaultParams()
	for _, tick := range []uint64{1, 2, 4, 5} {
		next := MoveCreatures(l, tick, &script{}, p)
		expectOnly(t, next, map[[2]int]Species{{4, 3}: Crab})
	}
	for _, tick := range []uint64{0, 3, 6} {
		next := MoveCreatures(l, tick, &script{}, p)
		expectOnly(t, next, map[[2]int]Species{{4, 2}: Crab})
	}
}

func TestCrawlerAtEdgeDestroyedOnCadence(t *testing.T) {
	l := layerWith(5, 6, map[[2]int]Species{{4, 0}: Crab})
	expectOnly(t, MoveCreatures(l, 2, &script{}, DefaultParams()), map[[2]int]Species{{4, 0}: Crab})
	expectOnly(t, MoveCreatures(l, 3, &script{}, DefaultParams()), nil)
}

func TestCrawlerDoesNotConsumeRandomness(t *testing.T) {
	l := layerWith(5, 6, map[[2]int]Species{{4, 3}: Crab})
	src := &script{floats: []float64{0.01}}
	MoveCreatures(l, 3, src, DefaultParams())
	if len(src.floats) != 1 {
		t.Fatal("crawlers never drift and should draw nothing")
	}
}

func TestResizeTallerPinsCrawler(t *testing.T) {
	e := layerWith(6, 10, map[[2]int]Species{{5, 5}: Crab, {1, 2}: Fish})
	b := layerWith(6, 10, map[[2]int]Species{{4, 7}: Bubble})
	ne, nb := Resize(e, b, 10, 10)
	if ne.Rows != 10 || ne.Cols != 10 || nb.Rows != 10 || nb.Cols != 10 {
		t.Fatalf("unexpected sizes %dx%d / %dx%d", ne.Rows, ne.Cols, nb.Rows, nb.Cols)
	}
	expectOnly(t, ne, map[[2]int]Species{{9, 5}: Crab, {1, 2}: Fish})
	expectOnly(t, nb, map[[2]int]Species{{4, 7}: Bubble})
}

func TestResizeShorterPinsCrawlerAndDropsOutsiders(t *testing.T) {
	e := layerWith(10, 10, map[[2]int]Species{
		{9, 2}: Crab,
		{9, 8}: Crab,
		{0, 1}: Fish,
		{4, 1}: Blowfish,
		{2, 9}: TropicalFish,
	})
	b := layerWith(10, 10, map[[2]int]Species{{8, 0}: Bubble, {3, 3}: Bubble})
	ne, nb := Resize(e, b, 6, 6)
	// Row 4 is below the new band (0..3); column 8 and 9 fall outside.
	expectOnly(t, ne, map[[2]int]Species{{5, 2}: Crab, {0, 1}: Fish})
	expectOnly(t, nb, map[[2]int]Species{{3, 3}: Bubble})
}

func TestReplantKeepsOverlapAndPlantsNewColumns(t *testing.T) {
	old := layerWith(4, 3, map[[2]int]Species{{3, 0}: Seedling, {3, 2}: Seedling})
	next := Replant(old, 6, 5, &script{floats: []float64{0.01, 0.9}}, DefaultParams())
	expectOnly(t, next, map[[2]int]Species{{5, 0}: Seedling, {5, 2}: Seedling, {5, 3}: Seedling})
}

func TestRenderFixedGrid(t *testing.T) {
	e := layerWith(2, 3, map[[2]int]Species{{0, 0}: Fish})
	b := layerWith(2, 3, map[[2]int]Species{{1, 1}: Bubble})
	got := Frame(e, b, nil, OcclusionVegetationFirst)
	want := "🐟    \r\n  🫧  "
	if got != want {
		t.Fatalf("frame = %q, expected %q", got, want)
	}
}

func TestRenderOcclusionOrder(t *testing.T) {
	e := layerWith(3, 2, map[[2]int]Species{{2, 0}: Crab, {1, 1}: Fish})
	b := layerWith(3, 2, map[[2]int]Species{{2, 0}: Bubble, {1, 1}: Bubble})
	v := layerWith(3, 2, map[[2]int]Species{{2, 0}: Seedling, {2, 1}: Seedling})

	if got := Visible(e, b, v, 2, 0, OcclusionVegetationFirst); got != Seedling {
		t.Fatalf("vegetation-first: expected seedling, got %v", got)
	}
	if got := Visible(e, b, v, 2, 0, OcclusionBubblesFirst); got != Bubble {
		t.Fatalf("bubbles-first: expected bubble, got %v", got)
	}
	if got := Visible(e, b, v, 1, 1, OcclusionVegetationFirst); got != Bubble {
		t.Fatalf("bubbles hide creatures, got %v", got)
	}
	if got := Visible(e, NewLayer(3, 2), v, 2, 0, OcclusionBubblesFirst); got != Crab {
		t.Fatalf("bubbles-first: creatures hide vegetation, got %v", got)
	}
	if got := Visible(e, b, v, 2, 1, OcclusionBubblesFirst); got != Seedling {
		t.Fatalf("lone vegetation should show, got %v", got)
	}
}

func TestNewTankRejectsDegenerateViewport(t *testing.T) {
	for _, size := range [][2]int{{2, 10}, {10, 0}, {0, 0}} {
		_, err := NewTank(size[0], size[1], DefaultParams(), pcore.NewRNG(1))
		if !errors.Is(err, ErrViewport) {
			t.Fatalf("size %v: expected ErrViewport, got %v", size, err)
		}
	}
	if _, err := NewTank(3, 1, DefaultParams(), pcore.NewRNG(1)); err != nil {
		t.Fatalf("3x1 is the smallest usable tank: %v", err)
	}
}

func TestNewTankRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.CrawlCadence = 0
	if _, err := NewTank(5, 5, p, pcore.NewRNG(1)); err == nil {
		t.Fatal("expected cadence validation error")
	}
}

func TestTankAdvanceAppliesResize(t *testing.T) {
	tank, err := NewTank(6, 8, DefaultParams(), &script{})
	if err != nil {
		t.Fatal(err)
	}
	if tank.Advance(6, 8) {
		t.Fatal("same size should not resize")
	}
	if !tank.Advance(9, 12) {
		t.Fatal("new size should resize")
	}
	if tank.Rows() != 9 || tank.Cols() != 12 || tank.Bubbles().Rows != 9 || tank.Bubbles().Cols != 12 {
		t.Fatalf("expected 9x12 layers, got %dx%d", tank.Rows(), tank.Cols())
	}
	if tank.Advance(2, 12) {
		t.Fatal("degenerate size must be ignored")
	}
	if tank.Rows() != 9 {
		t.Fatalf("degenerate size changed rows to %d", tank.Rows())
	}
	if tank.Tick() != 3 {
		t.Fatalf("expected 3 ticks, got %d", tank.Tick())
	}
}

func TestTankResizeDoesNotTick(t *testing.T) {
	tank, err := NewTank(6, 8, DefaultParams(), &script{})
	if err != nil {
		t.Fatal(err)
	}
	tank.Entities().Set(5, 3, Crab)
	before := tank.Census()
	if !tank.Resize(8, 10) {
		t.Fatal("new size should resize")
	}
	if tank.Rows() != 8 || tank.Cols() != 10 {
		t.Fatalf("expected 8x10, got %dx%d", tank.Rows(), tank.Cols())
	}
	if tank.Tick() != 0 {
		t.Fatalf("Resize must not tick, tick = %d", tank.Tick())
	}
	if tank.Entities().At(7, 3) != Crab {
		t.Fatal("crab should be pinned to the new floor")
	}
	if got := tank.Census(); got != before {
		t.Fatalf("census changed from %+v to %+v", before, got)
	}
	if tank.Resize(8, 10) || tank.Resize(2, 10) {
		t.Fatal("same or degenerate size must not resize")
	}
}

func TestTankTickOrder(t *testing.T) {
	// Swimmer trial succeeds (row 1, fish), crawler and bubble trials fail;
	// the new swimmer then moves one column left in the same tick.
	src := &script{floats: []float64{0.01, 0.9, 0.9, 0.9}, ints: []int{1, 0}}
	tank, err := NewTank(5, 6, DefaultParams(), src)
	if err != nil {
		t.Fatal(err)
	}
	tank.Advance(5, 6)
	expectOnly(t, tank.Entities(), map[[2]int]Species{{1, 4}: Fish})
	stats := tank.Stats()
	if stats.SwimPlaced != 1 || stats.CrawlPlaced != 0 || stats.BubblePlaced != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestTankInvariantsUnderRandomResizes(t *testing.T) {
	p := DefaultParams()
	p.Variance = 0.6
	p.Vegetation = true
	tank, err := NewTank(12, 20, p, pcore.NewRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	sizes := pcore.NewRNG(7)
	rows, cols := 12, 20
	for i := 0; i < 600; i++ {
		if i%25 == 0 {
			rows = 3 + sizes.IntN(20)
			cols = 1 + sizes.IntN(30)
		}
		tank.Advance(rows, cols)

		if tank.Rows() != rows || tank.Cols() != cols {
			t.Fatalf("tick %d: tank %dx%d, expected %dx%d", i, tank.Rows(), tank.Cols(), rows, cols)
		}
		if tank.Bubbles().Rows != rows || tank.Bubbles().Cols != cols {
			t.Fatalf("tick %d: bubble layer out of step", i)
		}
		e := tank.Entities()
		for row := 0; row < e.Rows; row++ {
			for col := 0; col < e.Cols; col++ {
				s := e.At(row, col)
				if s.Crawling() && row != rows-1 {
					t.Fatalf("tick %d: crawler at row %d of %d", i, row, rows)
				}
				if s.Swimming() && row > rows-3 {
					t.Fatalf("tick %d: swimmer at row %d of %d", i, row, rows)
				}
			}
		}
		v := tank.Vegetation()
		for row := 0; row < v.Rows-1; row++ {
			for col := 0; col < v.Cols; col++ {
				if v.At(row, col) != Empty {
					t.Fatalf("tick %d: vegetation off the floor at (%d,%d)", i, row, col)
				}
			}
		}
	}
	if tank.Stats().SwimPlaced == 0 {
		t.Fatal("expected some swimmers to spawn")
	}
}

func TestTankFrameDimensions(t *testing.T) {
	tank, err := NewTank(4, 3, DefaultParams(), &script{})
	if err != nil {
		t.Fatal(err)
	}
	frame := tank.Frame()
	want := "      \r\n      \r\n      \r\n      "
	if frame != want {
		t.Fatalf("empty frame = %q, expected %q", frame, want)
	}
}

func TestCensus(t *testing.T) {
	p := DefaultParams()
	p.Vegetation = true
	tank, err := NewTank(5, 4, p, &script{floats: []float64{0.01, 0.01, 0.9, 0.9}})
	if err != nil {
		t.Fatal(err)
	}
	tank.Entities().Set(0, 1, Fish)
	tank.Entities().Set(4, 3, Crab)
	tank.Bubbles().Set(2, 2, Bubble)
	got := tank.Census()
	want := Census{Swimming: 1, Crawling: 1, Bubbles: 1, Vegetation: 2}
	if got != want {
		t.Fatalf("census = %+v, expected %+v", got, want)
	}
	if got.Total() != 5 {
		t.Fatalf("total = %d, expected 5", got.Total())
	}
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{
		"rows":          "30",
		"cols":          "2",
		"variance":      "0.3",
		"crawl_divisor": "5",
		"crawl_cadence": "0",
		"vegetation":    "true",
		"occlusion":     "bubbles-first",
		"seed":          "nope",
	})
	if c.Rows != 30 || c.Cols != 2 {
		t.Fatalf("unexpected size %dx%d", c.Rows, c.Cols)
	}
	if c.Params.Variance != 0.3 || c.Params.CrawlDivisor != 5 {
		t.Fatalf("unexpected params %+v", c.Params)
	}
	if c.Params.CrawlCadence != 3 {
		t.Fatalf("invalid cadence should keep default, got %d", c.Params.CrawlCadence)
	}
	if !c.Params.Vegetation || c.Params.Occlusion != OcclusionBubblesFirst {
		t.Fatalf("unexpected toggles %+v", c.Params)
	}
	if c.Seed != DefaultConfig().Seed {
		t.Fatalf("unparseable seed should keep default, got %d", c.Seed)
	}
}

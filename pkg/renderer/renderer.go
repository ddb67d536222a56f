// Package renderer drives the render loop: it partitions the image into
// tiles, distributes them to workers, accumulates filtered samples and
// streams settled rows to an image sink.
package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/arpelle/glint/log"
	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/integrator"
	"github.com/arpelle/glint/pkg/sampler"
	"github.com/arpelle/glint/pkg/scene"
)

var logger = log.New("renderer")

// ErrCancelled is returned when a render is cancelled; completed rows have
// already been flushed to the sink
var ErrCancelled = errors.New("renderer: render cancelled")

// Options configures a render
type Options struct {
	Width, Height int
	Samples       int // Samples per pixel
	TileSize      int // Tile edge in pixels, 0 for the 16-pixel default
	Threads       int // Worker count, 0 for NumCPU, 1 renders row by row
	Filter        Filter
	Seed          uint64

	// NewIntegrator builds one integrator per worker; integrators carry
	// per-worker channel state and must not be shared
	NewIntegrator func() integrator.Integrator
}

type tileTask struct {
	id       int
	bounds   image.Rectangle
	expanded image.Rectangle
}

type tileResult struct {
	id    int
	accum *Accumulator
	stats WorkerStats
}

// Render renders the scene and streams settled rows to the sink. Pixel
// values are deterministic for a given scene, options and seed: sample
// values are keyed by pixel, and tile results are merged in tile order
// regardless of which worker finishes first.
func Render(ctx context.Context, sc *scene.Scene, opts Options, sink RowSink) (Stats, error) {
	if opts.Samples < 1 {
		opts.Samples = 1
	}
	if opts.TileSize < 1 {
		opts.TileSize = 16
	}
	if opts.Threads < 1 {
		opts.Threads = runtime.NumCPU()
	}
	if opts.Filter == nil {
		opts.Filter = NewMitchellFilter()
	}
	if opts.NewIntegrator == nil {
		opts.NewIntegrator = func() integrator.Integrator { return integrator.NewPath(sc, 5, 0.5) }
	}

	sc.Camera.SetAspect(float64(opts.Width) / float64(opts.Height))

	imageBounds := image.Rect(0, 0, opts.Width, opts.Height)
	tiles := makeTiles(imageBounds, opts.TileSize, opts.Threads, opts.Filter.Radius())

	// Each row waits on the tiles whose filter-expanded bounds touch it
	rowsPending := make([]int, opts.Height)
	for _, t := range tiles {
		for y := t.expanded.Min.Y; y < t.expanded.Max.Y; y++ {
			rowsPending[y]++
		}
	}

	taskCh := make(chan tileTask, len(tiles))
	for _, t := range tiles {
		taskCh <- t
	}
	close(taskCh)

	resultCh := make(chan tileResult, opts.Threads*2)

	var wg sync.WaitGroup
	for w := 0; w < opts.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(ctx, sc, opts, taskCh, resultCh)
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	start := time.Now()
	logger.Infof("rendering %dx%d, %d spp, %d tiles, %d workers",
		opts.Width, opts.Height, opts.Samples, len(tiles), opts.Threads)

	frame := NewAccumulator(imageBounds, opts.Filter)
	stats := Stats{Workers: opts.Threads}

	// Merge results strictly in tile order so accumulation is
	// deterministic, then flush every row no future tile can touch
	pending := make(map[int]tileResult)
	nextMerge := 0
	nextFlush := 0
	var sinkErr error

	for res := range resultCh {
		pending[res.id] = res
		for {
			r, ok := pending[nextMerge]
			if !ok {
				break
			}
			delete(pending, nextMerge)
			frame.Merge(r.accum)
			stats.WorkerStats.merge(r.stats)
			for y := r.accum.Bounds().Min.Y; y < r.accum.Bounds().Max.Y; y++ {
				rowsPending[y]--
			}
			nextMerge++

			if sinkErr == nil {
				for nextFlush < opts.Height && rowsPending[nextFlush] == 0 {
					if err := sink.WriteRow(frame.Row(nextFlush)); err != nil {
						sinkErr = err
						break
					}
					nextFlush++
				}
			}
		}
	}

	stats.Duration = time.Since(start)

	if sinkErr != nil {
		return stats, sinkErr
	}
	if nextMerge < len(tiles) {
		stats.Cancelled = true
		logger.Warningf("render cancelled after %d/%d tiles, %d rows flushed",
			nextMerge, len(tiles), nextFlush)
		return stats, ErrCancelled
	}
	logger.Infof("render complete in %s", stats.Duration.Round(time.Millisecond))
	return stats, nil
}

// runWorker pulls tiles until the queue drains or the context is
// cancelled; cancellation is only polled between tiles, a started tile
// always finishes
func runWorker(ctx context.Context, sc *scene.Scene, opts Options, taskCh <-chan tileTask, resultCh chan<- tileResult) {
	smp := sampler.New(opts.Seed)
	pixelCh := smp.Request2D("camera.pixel", opts.Samples)
	lensCh := smp.Request2D("camera.lens", opts.Samples)

	integ := opts.NewIntegrator()
	integ.RequestSamples(smp, opts.Samples)

	arena := core.NewArena()

	for task := range taskCh {
		if ctx.Err() != nil {
			return
		}
		accum := NewAccumulator(task.expanded, opts.Filter)
		var stats WorkerStats

		for y := task.bounds.Min.Y; y < task.bounds.Max.Y; y++ {
			for x := task.bounds.Min.X; x < task.bounds.Max.X; x++ {
				smp.GeneratePixel(x, y)
				for s := 0; s < opts.Samples; s++ {
					jitter := smp.Get2D(pixelCh, s)
					fx := float64(x) + jitter.X
					fy := float64(y) + jitter.Y

					ray := sc.Camera.GenerateRay(fx, fy, opts.Width, opts.Height, smp.Get2D(lensCh, s))
					arena.Reset()
					tint := integ.Li(ray, smp, s, arena)
					accum.AddSample(fx, fy, tint)
					stats.CameraRays++
				}
				stats.Pixels++
			}
		}
		stats.Tiles++

		resultCh <- tileResult{id: task.id, accum: accum, stats: stats}
	}
}

// makeTiles partitions the image. With one thread the image is rendered
// row by row; otherwise into square tiles in scanline order.
func makeTiles(bounds image.Rectangle, tileSize, threads int, filterRadius float64) []tileTask {
	margin := int(math.Ceil(filterRadius))

	var tiles []tileTask
	add := func(r image.Rectangle) {
		expanded := image.Rect(
			r.Min.X-margin, r.Min.Y-margin,
			r.Max.X+margin, r.Max.Y+margin,
		).Intersect(bounds)
		tiles = append(tiles, tileTask{id: len(tiles), bounds: r, expanded: expanded})
	}

	if threads == 1 {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			add(image.Rect(bounds.Min.X, y, bounds.Max.X, y+1))
		}
		return tiles
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y += tileSize {
		for x := bounds.Min.X; x < bounds.Max.X; x += tileSize {
			r := image.Rect(x, y, x+tileSize, y+tileSize).Intersect(bounds)
			add(r)
		}
	}
	return tiles
}

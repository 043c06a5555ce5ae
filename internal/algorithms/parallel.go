package algorithms

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// defaultWorkers is the band count used by exported operations.
func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// forEachRow calls fn for every row in [0, rows), split into contiguous bands
// processed by at most workers goroutines. fn must only write to its own rows,
// which keeps the result independent of the worker count.
func forEachRow(rows, workers int, fn func(y int)) {
	forEachBand(rows, workers, func(start, end int) {
		for y := start; y < end; y++ {
			fn(y)
		}
	})
}

// forEachBand splits [0, n) into at most workers contiguous bands and runs fn
// on each. Callers use it when per-band setup (scratch buffers, FFT plans)
// should be shared by the rows of a band.
func forEachBand(n, workers int, fn func(start, end int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	band := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += band {
		start, end := start, min(start+band, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// clampIndex replicates border samples for out-of-range indices.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

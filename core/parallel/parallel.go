// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// Workers returns the number of goroutines used for items, at most GOMAXPROCS.
func Workers(items int) int {
	n := runtime.GOMAXPROCS(0)
	if n > items {
		n = items // No need for more workers than items
	}
	return n
}

// Parallelize divides [0, items) into one contiguous range per worker and
// runs fn on each range concurrently. A panic inside fn is returned as a
// PanicError. When several ranges fail, the error of the lowest range wins.
func Parallelize(items int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}

	numWorkers := Workers(items)
	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	errs := make([]error, numWorkers)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			errs[w] = run(fn, s, e)
		}(i, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items does not exceed threshold, and like Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}
	if items <= threshold {
		return run(fn, 0, items)
	}
	return Parallelize(items, fn)
}

func run(fn func(start, end int) error, start, end int) (err error) {
	defer errors.Recover(&err, "parallel worker")
	return fn(start, end)
}

package classify

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ClassifyAll classifies msgs with at most workers goroutines. Results are
// returned in input order; workers <= 0 uses GOMAXPROCS.
func (c *Classifier) ClassifyAll(msgs []RawMessage, workers int) []Result {
	results := make([]Result, len(msgs))
	if len(msgs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range msgs {
		i := i
		g.Go(func() error {
			results[i] = c.Classify(&msgs[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

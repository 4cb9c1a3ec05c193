package match

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MatchAll matches queries concurrently and returns results in input order.
// Concurrency is capped at GOMAXPROCS. It returns ctx.Err() if ctx is
// cancelled before all queries are matched.
func (m *Matcher) MatchAll(ctx context.Context, queries []string) ([]Result, error) {
	results := make([]Result, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = m.Match(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

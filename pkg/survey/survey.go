// Package survey runs the exponential sum computation over every prime of
// a residue class and collects the results.
package survey

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"q47-expsums/pkg/expsum"
	"q47-expsums/pkg/primes"
)

// Config describes one survey.
type Config struct {
	Query  primes.Query
	Degree uint32

	// Workers bounds the number of primes computed concurrently.
	// 1 computes sequentially; 0 uses runtime.NumCPU().
	Workers int

	// ProgressEvery logs a progress line after every n primes (0 disables).
	ProgressEvery int
}

// Run selects the primes and computes x_p for each of them.
// Results are stored in prime order regardless of completion order.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ps, err := primes.Select(cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("select primes: %w", err)
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("no primes below %d in class %d mod %d",
			cfg.Query.Limit, cfg.Query.Residue, cfg.Query.Modulus)
	}
	logger.Info("Effective primes",
		zap.Int("count", len(ps)),
		zap.Uint32("first", ps[0]),
		zap.Uint32("last", ps[len(ps)-1]))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]expsum.Result, len(ps))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, p := range ps {
		if err := egCtx.Err(); err != nil {
			break
		}
		i, p := i, p
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r, err := expsum.Compute(p, cfg.Degree)
			if err != nil {
				return fmt.Errorf("prime %d: %w", p, err)
			}
			results[i] = r
			if i == 0 || (cfg.ProgressEvery > 0 && (i+1)%cfg.ProgressEvery == 0) {
				logger.Info("Computed",
					zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(ps))),
					zap.Uint32("p", p),
					zap.Float64("magnitude", r.Mag))
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FromResults(results), nil
}

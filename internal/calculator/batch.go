package calculator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/gacha-curve/internal/gacha"
)

// MaxBatch bounds the number of requests in one Batch call.
const MaxBatch = 32

// Batch computes independent curves in parallel. A request that fails only
// fills its own BatchResult.Error; the call as a whole fails only when ctx
// ends.
func (s *Service) Batch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	if len(reqs) > MaxBatch {
		return nil, &gacha.Error{
			Kind:    gacha.KindInvalidSettings,
			Message: fmt.Sprintf("batch of %d requests exceeds the limit of %d", len(reqs), MaxBatch),
		}
	}
	out := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := s.Curve(gctx, req)
			if err != nil {
				if ctx.Err() != nil && isInterrupted(err) {
					return err
				}
				info := Describe(err)
				out[i].Error = &info
				return nil
			}
			out[i].Curve = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

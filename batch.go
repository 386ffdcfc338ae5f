package transform

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TransformAll runs the pipeline over a batch of records concurrently,
// preserving input order in the output slice. A record that fails leaves a
// nil slot; all per-record errors are joined and returned together so one
// bad record does not abort the batch. Cancellation of ctx stops scheduling
// further records.
func (p *Pipeline) TransformAll(ctx context.Context, records []Record) ([]Record, error) {
	return p.runAll(ctx, records, (*Pipeline).TransformRecord)
}

// RestoreAll is TransformAll in the restore direction.
func (p *Pipeline) RestoreAll(ctx context.Context, records []Record) ([]Record, error) {
	return p.runAll(ctx, records, (*Pipeline).RestoreRecord)
}

func (p *Pipeline) runAll(ctx context.Context, records []Record, run func(*Pipeline, Record) (Record, error)) ([]Record, error) {
	out := make([]Record, len(records))
	errs := make([]error, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, rec := range records {
		i, rec := i, rec
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		default:
		}
		g.Go(func() error {
			result, err := run(p, rec)
			if err != nil {
				errs[i] = fmt.Errorf("record %d: %w", i, err)
				return nil
			}
			out[i] = result
			return nil
		})
	}

	// Workers never return errors, so this only waits.
	_ = g.Wait()
	return out, errors.Join(errs...)
}

package batch

import (
	"context"

	"github.com/compozy/plistyaml/engine/convert"
	"github.com/compozy/plistyaml/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Runner tidies files concurrently. Each file is owned by one goroutine.
type Runner struct {
	converter *convert.Converter
	workers   int
}

// NewRunner creates a runner bounded to workers concurrent files.
func NewRunner(converter *convert.Converter, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{converter: converter, workers: workers}
}

// Tidy runs TidyYAML over paths and returns reports in input order. Caught
// failures are reported and do not stop the batch; a malformed source
// cancels the remaining work and is returned.
func (r *Runner) Tidy(ctx context.Context, paths []string) ([]*convert.Report, error) {
	log := logger.FromContext(ctx)
	reports := make([]*convert.Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := r.converter.TidyYAML(gctx, path, "")
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug("batch aborted", "error", err)
		return compact(reports), err
	}
	log.Debug("batch finished", "files", len(paths), "failed", CountFailed(reports))
	return reports, nil
}

// compact drops slots for files that never ran.
func compact(reports []*convert.Report) []*convert.Report {
	out := make([]*convert.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// CountFailed returns the number of failed reports.
func CountFailed(reports []*convert.Report) int {
	n := 0
	for _, r := range reports {
		if r != nil && r.Failed() {
			n++
		}
	}
	return n
}

// AnyFailed reports whether any report in the batch failed.
func AnyFailed(reports []*convert.Report) bool {
	return CountFailed(reports) > 0
}

package pipeline

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job converts one file.
type Job struct {
	Input  string
	Output string
}

// JobResult reports the outcome of one [Job].
type JobResult struct {
	Job
	InSize   int
	OutSize  int
	Cached   bool
	Duration time.Duration
	Err      error
}

// ConvertAll runs jobs with at most workers in flight. A failing job does
// not stop the others; its error is reported in its result. The returned
// error is non-nil only when ctx is cancelled.
func (r *Runner) ConvertAll(ctx context.Context, jobs []Job, opts ConvertOptions, workers int) ([]JobResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.convertFile(gctx, job, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (r *Runner) convertFile(ctx context.Context, job Job, opts ConvertOptions) (res JobResult) {
	res.Job = job
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	data, err := os.ReadFile(job.Input)
	if err != nil {
		res.Err = err
		return res
	}
	res.InSize = len(data)

	out, hit, err := r.convert(ctx, job.Input, data, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.OutSize, res.Cached = len(out), hit
	res.Err = os.WriteFile(job.Output, out, 0o644)
	return res
}

// Package batch renders many icons concurrently, writes them as PNG files
// and keeps a running overflow report.
package batch

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/setanarut/iconcomposer"
	"github.com/setanarut/iconcomposer/utils"
)

// Renderer is satisfied by *iconcomposer.Engine.
type Renderer interface {
	Composite(spec iconcomposer.IconSpec) (iconcomposer.Result, error)
}

// Job renders Spec into <OutDir>/<File>.
type Job struct {
	File string
	Spec iconcomposer.IconSpec
}

// Outcome is the result of one job. Err is set when the icon could not be
// rendered or saved; the other jobs of the batch are unaffected.
type Outcome struct {
	Job
	Path   string
	Color  string // dominant colour as hex, "" for fully transparent icons
	Result iconcomposer.Result
	Err    error
}

type Runner struct {
	Renderer Renderer
	OutDir   string
	// Number of icons rendered at once. Values below 1 mean 1.
	Workers  int
	Palette  utils.PaletteMethod
	Report   *Report
	Progress ProgressFunc
	Logger   *zap.Logger
}

// Run renders jobs and returns one outcome per job, in job order. The
// error is non-nil only when ctx was cancelled; icons not started by then
// are reported with ctx.Err().
func (r *Runner) Run(ctx context.Context, phase string, jobs []Job) ([]Outcome, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	report := r.Report
	if report == nil {
		report = new(Report)
	}
	newProgress := r.Progress
	if newProgress == nil {
		newProgress = NopProgress
	}

	out := make([]Outcome, len(jobs))
	progress := newProgress(phase, len(jobs))
	var done atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(max(r.Workers, 1))
	for i, job := range jobs {
		out[i].Job = job
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			out[i] = r.render(job, report, log)
			progress.Update(int(done.Add(1)))
			return nil
		})
	}
	g.Wait()
	progress.Finish()
	return out, ctx.Err()
}

func (r *Runner) render(job Job, report *Report, log *zap.Logger) Outcome {
	o := Outcome{Job: job}
	res, err := r.Renderer.Composite(job.Spec)
	if err != nil {
		report.Fail()
		log.Warn("icon not rendered", zap.String("file", job.File), zap.Error(err))
		o.Err = err
		return o
	}
	report.Record(job.File, res)

	path := filepath.Join(r.OutDir, job.File)
	if err := utils.SaveImage(res.Image, path); err != nil {
		report.Fail()
		log.Error("icon not saved", zap.String("path", path), zap.Error(err))
		o.Err = err
		return o
	}
	o.Path = path
	o.Result = res
	o.Color = utils.DominantHex(res.Image, r.Palette)
	return o
}

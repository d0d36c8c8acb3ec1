package batch

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"devstabilize/internal/preview"
	"devstabilize/internal/retarget"
	"devstabilize/internal/scene"
)

// Config holds the shared settings for a batch run.
type Config struct {
	Workers int

	// Preview, when set, renders a trajectory image per job into PreviewDir.
	Preview       bool
	PreviewDir    string
	PreviewFormat preview.Format
	PreviewOpts   preview.Options

	// Progress is the interval between progress lines. Zero uses 2s; negative disables.
	Progress time.Duration
}

// Result holds the outcome of processing one job.
type Result struct {
	Name     string        `json:"name"`
	Scene    string        `json:"scene"`
	Output   string        `json:"output"`
	Preview  string        `json:"preview,omitempty"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Frames   int           `json:"frames"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`

	Samples []retarget.FrameSample `json:"-"`
}

// Run processes all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress >= 0 {
		interval := cfg.Progress
		if interval == 0 {
			interval = 2 * time.Second
		}
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Printf("  [%d/%d] %.1f jobs/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = Process(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// Process bakes one job: load the scene, key both entities over the range, retarget,
// set the key tangents, save the scene and optionally render a preview.
func Process(cfg Config, job Job) Result {
	began := time.Now()
	res := Result{Name: job.Name, Scene: job.Scene, Output: job.Output}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(began)
		return res
	}

	s, err := scene.Load(job.Scene)
	if err != nil {
		return fail(err)
	}

	req, err := request(job, s)
	if err != nil {
		return fail(err)
	}
	res.Start, res.End = req.Start, req.End

	mode, err := retarget.ParseReassembly(job.Reassembly)
	if err != nil {
		return fail(err)
	}
	tan, err := scene.ParseTangent(job.Tangent)
	if err != nil {
		return fail(err)
	}

	samples, err := Bake(s, req, tan, retarget.WithReassembly(mode))
	if err != nil {
		return fail(err)
	}
	res.Samples = samples
	res.Frames = len(samples)

	if err := s.Save(job.Output); err != nil {
		return fail(err)
	}

	if cfg.Preview {
		opts := cfg.PreviewOpts
		if opts.Title == "" {
			opts.Title = fmt.Sprintf("%s: %s -> %s", job.Name, job.Source, job.Dest)
		}
		img, err := preview.Render(samples, opts)
		if err != nil {
			return fail(err)
		}
		format := cfg.PreviewFormat
		if format == "" {
			format = preview.WebP
		}
		res.Preview = filepath.Join(cfg.PreviewDir, job.Name+format.Ext())
		if err := savePreview(res.Preview, img, format); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	res.Duration = time.Since(began)
	return res
}

// Bake keys the enabled channels of both entities over the range, retargets and gives
// the rewritten keys tangent tan, all inside the single undo boundary opened by
// retarget.Run. Any failure leaves the scene as it was.
func Bake(s *scene.Scene, req retarget.Request, tan scene.Tangent, opts ...retarget.Option) ([]retarget.FrameSample, error) {
	chs := req.Channels()
	ids := []string{req.Source, req.Dest}

	fill := func() error {
		for _, id := range ids {
			if err := s.FillKeys(id, chs, req.Start, req.End); err != nil {
				return errors.Wrapf(err, "fill keys on %q", id)
			}
		}
		return nil
	}
	tangents := func() error {
		for _, id := range ids {
			if err := s.SetTangents(id, chs, req.Start, req.End, tan); err != nil {
				return errors.Wrapf(err, "set tangents on %q", id)
			}
		}
		return nil
	}

	all := make([]retarget.Option, 0, len(opts)+2)
	all = append(all, opts...)
	all = append(all, retarget.WithPrepare(fill), retarget.WithFinish(tangents))
	return retarget.Run(s, req, all...)
}

// request fills the job's frame range from the scene's playback range when unset.
func request(job Job, s *scene.Scene) (retarget.Request, error) {
	req := retarget.Request{
		Source:   job.Source,
		Dest:     job.Dest,
		Start:    s.PlaybackStart,
		End:      s.PlaybackEnd,
		Rotation: job.Rotation,
		Scale:    job.Scale,
	}
	if job.Start != nil {
		req.Start = *job.Start
	}
	if job.End != nil {
		req.End = *job.End
	}
	return req, req.Validate()
}

func savePreview(path string, img image.Image, f preview.Format) error {
	return errors.Wrapf(preview.Save(path, img, f), "preview %s", path)
}

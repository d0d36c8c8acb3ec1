package retarget

import (
	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/trs"
)

type options struct {
	reassembly Reassembly
	onFrame    func(FrameSample)
	prepare    []func() error
	finish     []func() error
}

// maxPrealloc bounds the sample slice allocated up front.
const maxPrealloc = 1 << 16

// Option configures Run.
type Option func(*options)

// WithReassembly selects how the source rotation is rebuilt. Default is ReassembleClean.
func WithReassembly(r Reassembly) Option {
	return func(o *options) {
		o.reassembly = r
	}
}

// WithFrameHook is called after each frame has been written to the scene.
func WithFrameHook(fn func(FrameSample)) Option {
	return func(o *options) {
		o.onFrame = fn
	}
}

// WithPrepare runs fn inside the undo boundary before the first frame. An error
// aborts the run and rolls the boundary back.
func WithPrepare(fn func() error) Option {
	return func(o *options) {
		o.prepare = append(o.prepare, fn)
	}
}

// WithFinish runs fn inside the undo boundary after the last frame, before commit.
// An error rolls the whole run back.
func WithFinish(fn func() error) Option {
	return func(o *options) {
		o.finish = append(o.finish, fn)
	}
}

// Run retargets every frame of req inside one undo boundary of s and returns the
// samples it wrote. Validation failures return before the scene is touched. A failing
// frame aborts the loop, rolls the boundary back and returns a *FrameError. The scene's
// current time is restored on every path.
func Run(s Scene, req Request, opts ...Option) (samples []FrameSample, err error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, id := range []string{req.Source, req.Dest} {
		if !s.EntityExists(id) {
			return nil, errors.Wrapf(ErrEntityNotFound, "%q", id)
		}
	}

	tx, err := s.Begin()
	if err != nil {
		return nil, adapterFailure(err, "begin undo block")
	}
	defer func() {
		if err == nil {
			if cerr := tx.Commit(); cerr != nil {
				samples, err = nil, adapterFailure(cerr, "commit undo block")
			}
			return
		}
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Wrapf(err, "rollback: %v", rerr)
		}
		samples = nil
	}()

	prev := s.CurrentTime()
	defer func() {
		if terr := s.SetCurrentTime(prev); terr != nil && err == nil {
			samples, err = nil, adapterFailure(terr, "restore current time %d", prev)
		}
	}()

	for _, fn := range o.prepare {
		if perr := fn(); perr != nil {
			return nil, adapterFailure(perr, "prepare")
		}
	}

	flags := Flags{Rotation: req.Rotation, Scale: req.Scale}
	n := req.Frames()
	samples = make([]FrameSample, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		f := req.Start + i
		sample, ferr := runFrame(s, req, flags, f, o.reassembly)
		if ferr != nil {
			return nil, &FrameError{Frame: f, Err: ferr}
		}
		samples = append(samples, sample)
		if o.onFrame != nil {
			o.onFrame(sample)
		}
	}

	for _, fn := range o.finish {
		if ferr := fn(); ferr != nil {
			return nil, adapterFailure(ferr, "finish")
		}
	}
	return samples, nil
}

func runFrame(s Scene, req Request, flags Flags, f int, mode Reassembly) (FrameSample, error) {
	srcWorld, err := s.WorldMatrix(req.Source, f)
	if err != nil {
		return FrameSample{}, adapterFailure(err, "world matrix of %q", req.Source)
	}
	dstWorld, err := s.WorldMatrix(req.Dest, f)
	if err != nil {
		return FrameSample{}, adapterFailure(err, "world matrix of %q", req.Dest)
	}

	dest, source, err := ComputeFrame(srcWorld, dstWorld, flags, mode)
	if err != nil {
		return FrameSample{}, err
	}

	sample := FrameSample{
		Frame:       f,
		SourceWorld: srcWorld,
		DestWorld:   dstWorld,
		Dest:        dest,
		Source:      source,
		Channels:    flags.Channels(),
	}
	if err := writeSample(s, req, sample); err != nil {
		return FrameSample{}, err
	}
	return sample, nil
}

type setter func(id string, frame int, v mathutil.Vec3) error

func writeSample(s Scene, req Request, sample FrameSample) error {
	for _, ch := range sample.Channels.List() {
		set, name := channelSetter(s, ch)
		if err := set(req.Dest, sample.Frame, sample.Dest.Channel(ch)); err != nil {
			return adapterFailure(err, "set %s of %q", name, req.Dest)
		}
		if err := set(req.Source, sample.Frame, sample.Source.Channel(ch)); err != nil {
			return adapterFailure(err, "set %s of %q", name, req.Source)
		}
	}
	return nil
}

func channelSetter(s Scene, ch trs.Channels) (setter, string) {
	switch ch {
	case trs.Rotate:
		return s.SetRotation, "rotation"
	case trs.Scale:
		return s.SetScale, "scale"
	default:
		return s.SetTranslation, "translation"
	}
}

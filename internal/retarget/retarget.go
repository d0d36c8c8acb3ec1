// Package retarget bakes the world motion of a source entity into a destination
// entity (usually a camera) frame by frame, collapsing the source to identity on
// every transferred channel so the pair stays visually coincident.
//
// Matrices follow mgl64: column vectors, so a transform applied first sits on the
// right. The destination's new local matrix is inverse(C) × destWorld, where C is
// the source correction T × R × S built from the enabled channels.
package retarget

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/trs"
)

// Request describes one retarget over an inclusive frame range.
type Request struct {
	Source   string
	Dest     string
	Start    int
	End      int
	Rotation bool
	Scale    bool
}

// Channels returns the channels transferred by the request. Translation is always on.
func (r Request) Channels() trs.Channels {
	return Flags{Rotation: r.Rotation, Scale: r.Scale}.Channels()
}

// Frames returns the number of frames in the range, or 0 for a range Validate rejects.
func (r Request) Frames() int {
	n, _ := FrameCount(r.Start, r.End)
	return n
}

// Validate checks the request without touching any scene.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Source) == "" {
		return errors.Wrap(ErrInvalidArgument, "source id is empty")
	}
	if strings.TrimSpace(r.Dest) == "" {
		return errors.Wrap(ErrInvalidArgument, "destination id is empty")
	}
	if strings.TrimSpace(r.Source) == strings.TrimSpace(r.Dest) {
		return errors.Wrapf(ErrInvalidArgument, "source and destination are both %q", r.Source)
	}
	if r.Start > r.End {
		return errors.Wrapf(ErrInvalidArgument, "frame start %d is after end %d", r.Start, r.End)
	}
	if _, ok := FrameCount(r.Start, r.End); !ok {
		return errors.Wrapf(ErrInvalidArgument, "frame range %d..%d is too long", r.Start, r.End)
	}
	return nil
}

// FrameCount returns the number of frames in the inclusive range [start, end]. It
// reports false when start > end or the count does not fit in an int.
func FrameCount(start, end int) (int, bool) {
	if start > end {
		return 0, false
	}
	d := end - start
	if d < 0 || d == math.MaxInt {
		return 0, false
	}
	return d + 1, true
}

// Flags selects the optional channels of a single frame computation.
type Flags struct {
	Rotation bool
	Scale    bool
}

func (f Flags) Channels() trs.Channels {
	c := trs.Translate
	if f.Rotation {
		c |= trs.Rotate
	}
	if f.Scale {
		c |= trs.Scale
	}
	return c
}

// Reassembly selects how the source rotation matrix is rebuilt from normalized axes.
type Reassembly int

const (
	// ReassembleClean builds a pure rotation with zero translation.
	ReassembleClean Reassembly = iota
	// ReassembleLegacy keeps the translation column and bottom row of the
	// translation-stripped source matrix over the normalized axes.
	ReassembleLegacy
)

func (r Reassembly) String() string {
	if r == ReassembleLegacy {
		return "legacy"
	}
	return "clean"
}

// ParseReassembly accepts "clean" (or empty) and "legacy".
func ParseReassembly(s string) (Reassembly, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clean":
		return ReassembleClean, nil
	case "legacy":
		return ReassembleLegacy, nil
	}
	return ReassembleClean, errors.Wrapf(ErrInvalidArgument, "unknown reassembly %q", s)
}

// FrameSample is the working data of one frame. It carries no state into the next frame.
type FrameSample struct {
	Frame       int
	SourceWorld mathutil.Mat4
	DestWorld   mathutil.Mat4
	Dest        trs.TRS
	Source      trs.TRS
	Channels    trs.Channels
}

// ComputeFrame solves one frame: it returns the destination's new local transform and
// the source's zeroed transform. Channels not in flags hold neutral values and must
// not be written by the caller. A collapsed axis is only an error when rotation or
// scale is transferred.
func ComputeFrame(sourceWorld, destWorld mathutil.Mat4, flags Flags, mode Reassembly) (dest, source trs.TRS, err error) {
	t := mathutil.TranslationMatrix(sourceWorld)
	dest, source = trs.Identity(), trs.Identity()

	// translation only: C = T, and neither 3×3 block is consumed
	if !flags.Rotation && !flags.Scale {
		tInv, _ := mathutil.Inverse(t)
		dest.Translation = mathutil.Translation(tInv.Mul4(destWorld))
		return dest, source, nil
	}

	tInv, _ := mathutil.Inverse(t)
	rotScaleOnly := tInv.Mul4(sourceWorld)

	rot, scale, err := trs.Normalize(rotScaleOnly)
	if err != nil {
		return trs.TRS{}, trs.TRS{}, errors.Wrap(err, "source world matrix")
	}
	if mode == ReassembleLegacy {
		rot = legacyRotation(rot, rotScaleOnly)
	}

	c := mgl64.Ident4()
	if flags.Scale {
		c = trs.ScaleMatrix(scale)
	}
	if flags.Rotation {
		c = rot.Mul4(c)
	}
	c = t.Mul4(c)

	invC, ok := mathutil.Inverse(c)
	if !ok {
		return trs.TRS{}, trs.TRS{}, errors.Wrap(ErrDegenerateTransform, "source correction matrix is singular")
	}

	final, err := trs.Decompose(invC.Mul4(destWorld))
	if err != nil {
		return trs.TRS{}, trs.TRS{}, errors.Wrap(err, "destination matrix")
	}

	dest.Translation = final.Translation
	if flags.Rotation {
		dest.Rotation = final.Rotation
	}
	if flags.Scale {
		dest.Scale = final.Scale
	}
	return dest, source, nil
}

// legacyRotation copies the translation column and bottom row of src over the
// normalized axes of rot.
func legacyRotation(rot, src mathutil.Mat4) mathutil.Mat4 {
	out := rot
	for i := 0; i < 4; i++ {
		out.Set(i, 3, src.At(i, 3))
		out.Set(3, i, src.At(3, i))
	}
	return out
}

package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/trs"
)

// WorldMatrix chains local transforms from the root down: parent world × local.
func (s *Scene) WorldMatrix(id string, frame int) (mathutil.Mat4, error) {
	e, err := s.lookup(id)
	if err != nil {
		return mathutil.Mat4{}, err
	}

	world := mgl64.Ident4()
	seen := map[string]bool{}
	for e != nil {
		if seen[e.Name] {
			return mathutil.Mat4{}, errors.Wrapf(ErrCycle, "at %q", e.Name)
		}
		seen[e.Name] = true

		world = trs.Compose(e.Local(frame)).Mul4(world)

		if e.Parent == "" {
			break
		}
		parent, ok := s.entities[e.Parent]
		if !ok {
			return mathutil.Mat4{}, errors.Wrapf(ErrNoEntity, "parent %q of %q", e.Parent, e.Name)
		}
		e = parent
	}
	return world, nil
}

// WorldMatrices evaluates the world matrix of id on every frame of [start, end].
func (s *Scene) WorldMatrices(id string, start, end int) ([]mathutil.Mat4, error) {
	n, err := frameCount(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]mathutil.Mat4, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		f := start + i
		m, err := s.WorldMatrix(id, f)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", f)
		}
		out = append(out, m)
	}
	return out, nil
}

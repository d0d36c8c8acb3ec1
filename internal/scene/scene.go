// Package scene is a self-contained animated transform scene: named entities with
// an optional parent, keyed translate/rotate/scale curves, a current time and undo
// boundaries. It implements retarget.Scene and reads and writes YAML scene files.
package scene

import (
	"github.com/pkg/errors"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/retarget"
	"devstabilize/internal/trs"
)

var (
	ErrNoEntity = errors.New("no such entity")
	ErrLocked   = errors.New("channel is locked")
	ErrTxOpen   = errors.New("undo boundary already open")
	ErrCycle    = errors.New("parent cycle")
)

var _ retarget.Scene = (*Scene)(nil)

// maxPrealloc bounds per-frame slices allocated up front.
const maxPrealloc = 1 << 16

func frameCount(start, end int) (int, error) {
	n, ok := retarget.FrameCount(start, end)
	if !ok {
		return 0, errors.Errorf("scene: invalid frame range %d..%d", start, end)
	}
	return n, nil
}

// Scene holds entities keyed by normalized id.
type Scene struct {
	Name string

	// PlaybackStart and PlaybackEnd bound the default frame range.
	PlaybackStart int
	PlaybackEnd   int

	// KeyTangent is given to newly created keys.
	KeyTangent Tangent

	entities map[string]*Entity
	order    []string
	time     int

	snapshot map[string]*Entity
}

// New returns an empty scene with a 1..24 playback range.
func New(name string) *Scene {
	return &Scene{
		Name:          name,
		PlaybackStart: 1,
		PlaybackEnd:   24,
		entities:      make(map[string]*Entity),
		time:          1,
	}
}

// Add inserts an entity. Names must be unique after normalization.
func (s *Scene) Add(e *Entity) error {
	id := NormalizeID(e.Name)
	if id == "" {
		return errors.New("scene: entity with empty name")
	}
	if _, ok := s.entities[id]; ok {
		return errors.Errorf("scene: duplicate entity %q", id)
	}
	e.Name = id
	e.Parent = NormalizeID(e.Parent)
	s.entities[id] = e
	s.order = append(s.order, id)
	return nil
}

// Entity returns the entity with the given id.
func (s *Scene) Entity(id string) (*Entity, bool) {
	e, ok := s.entities[NormalizeID(id)]
	return e, ok
}

// Entities returns entity ids in insertion order.
func (s *Scene) Entities() []string {
	return append([]string(nil), s.order...)
}

func (s *Scene) lookup(id string) (*Entity, error) {
	e, ok := s.Entity(id)
	if !ok {
		return nil, errors.Wrapf(ErrNoEntity, "%q", id)
	}
	return e, nil
}

func (s *Scene) EntityExists(id string) bool {
	_, ok := s.Entity(id)
	return ok
}

// Local evaluates an entity's local transform at frame.
func (s *Scene) Local(id string, frame int) (trs.TRS, error) {
	e, err := s.lookup(id)
	if err != nil {
		return trs.TRS{}, err
	}
	return e.Local(frame), nil
}

func (s *Scene) SetTranslation(id string, frame int, v mathutil.Vec3) error {
	return s.setKey(id, trs.Translate, frame, v)
}

func (s *Scene) SetRotation(id string, frame int, deg mathutil.Vec3) error {
	return s.setKey(id, trs.Rotate, frame, deg)
}

func (s *Scene) SetScale(id string, frame int, v mathutil.Vec3) error {
	return s.setKey(id, trs.Scale, frame, v)
}

func (s *Scene) setKey(id string, ch trs.Channels, frame int, v mathutil.Vec3) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if e.Locked.Has(ch) {
		return errors.Wrapf(ErrLocked, "%s.%s", e.Name, ch)
	}
	if !mathutil.IsFinite(v) {
		return errors.Errorf("scene: non-finite %s value %v on %q", ch, v, e.Name)
	}
	e.Curve(ch).Set(frame, v, s.KeyTangent)
	return nil
}

func (s *Scene) CurrentTime() int {
	return s.time
}

func (s *Scene) SetCurrentTime(frame int) error {
	s.time = frame
	return nil
}

// FillKeys keys every channel in chs on every frame of [start, end] with the value the
// entity currently evaluates to, so later per-frame writes land on a fully keyed curve.
func (s *Scene) FillKeys(id string, chs trs.Channels, start, end int) error {
	n, err := frameCount(start, end)
	if err != nil {
		return err
	}
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	values := make([]trs.TRS, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		values = append(values, e.Local(start+i))
	}
	for _, ch := range chs.List() {
		for i, v := range values {
			if err := s.setKey(id, ch, start+i, v.Channel(ch)); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetTangents sets both tangents of every key of chs in [start, end].
func (s *Scene) SetTangents(id string, chs trs.Channels, start, end int, tan Tangent) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	for _, ch := range chs.List() {
		e.Curve(ch).SetTangents(start, end, tan)
	}
	return nil
}

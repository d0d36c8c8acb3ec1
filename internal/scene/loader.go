package scene

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"devstabilize/internal/mathutil"
	"devstabilize/internal/trs"
)

// sceneFile matches the YAML schema of a scene file.
type sceneFile struct {
	Name     string       `yaml:"name"`
	Playback playbackFile `yaml:"playback"`
	Time     int          `yaml:"time"`
	Tangent  Tangent      `yaml:"tangent"`
	Entities []entityFile `yaml:"entities"`
}

type playbackFile struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type entityFile struct {
	Name      string         `yaml:"name"`
	Parent    string         `yaml:"parent,omitempty"`
	Translate *mathutil.Vec3 `yaml:"translate,omitempty,flow"`
	Rotate    *mathutil.Vec3 `yaml:"rotate,omitempty,flow"`
	Scale     *mathutil.Vec3 `yaml:"scale,omitempty,flow"`
	Locked    []string       `yaml:"locked,omitempty,flow"`
	Keys      keysFile       `yaml:"keys,omitempty"`
}

type keysFile struct {
	Translate []Key `yaml:"translate,omitempty"`
	Rotate    []Key `yaml:"rotate,omitempty"`
	Scale     []Key `yaml:"scale,omitempty"`
}

// Load reads a YAML scene file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "scene: open")
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: %s", path)
	}
	return s, nil
}

// Decode parses a YAML scene document.
func Decode(r io.Reader) (*Scene, error) {
	var sf sceneFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	s := New(sf.Name)
	if sf.Playback.Start != 0 || sf.Playback.End != 0 {
		s.PlaybackStart, s.PlaybackEnd = sf.Playback.Start, sf.Playback.End
	}
	if s.PlaybackStart > s.PlaybackEnd {
		return nil, errors.Errorf("playback start %d is after end %d", s.PlaybackStart, s.PlaybackEnd)
	}
	s.time = s.PlaybackStart
	if sf.Time != 0 {
		s.time = sf.Time
	}
	s.KeyTangent = sf.Tangent

	for _, ef := range sf.Entities {
		e, err := ef.entity()
		if err != nil {
			return nil, err
		}
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	for _, id := range s.order {
		e := s.entities[id]
		if e.Parent != "" {
			if _, ok := s.entities[e.Parent]; !ok {
				return nil, errors.Wrapf(ErrNoEntity, "parent %q of %q", e.Parent, id)
			}
		}
	}
	return s, nil
}

func (ef entityFile) entity() (*Entity, error) {
	e := NewEntity(ef.Name)
	e.Parent = ef.Parent
	if ef.Translate != nil {
		e.Rest.Translation = *ef.Translate
	}
	if ef.Rotate != nil {
		e.Rest.Rotation = *ef.Rotate
	}
	if ef.Scale != nil {
		e.Rest.Scale = *ef.Scale
	}

	for _, name := range ef.Locked {
		ch, err := parseChannel(name)
		if err != nil {
			return nil, errors.Wrapf(err, "entity %q", ef.Name)
		}
		e.Locked |= ch
	}

	for ch, keys := range map[trs.Channels][]Key{
		trs.Translate: ef.Keys.Translate,
		trs.Rotate:    ef.Keys.Rotate,
		trs.Scale:     ef.Keys.Scale,
	} {
		c := e.Curve(ch)
		for _, k := range keys {
			c.Set(k.Frame, k.Value, Flat)
			i, _ := c.find(k.Frame)
			c.Keys[i].In, c.Keys[i].Out = k.In, k.Out
		}
	}
	return e, nil
}

func parseChannel(name string) (trs.Channels, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "t", "translate":
		return trs.Translate, nil
	case "r", "rotate":
		return trs.Rotate, nil
	case "s", "scale":
		return trs.Scale, nil
	}
	return 0, errors.Errorf("unknown channel %q", name)
}

// Save writes the scene to a YAML file.
func (s *Scene) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "scene: create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "scene: create")
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "scene: %s", path)
	}
	return f.Close()
}

// Encode writes the scene as a YAML document.
func (s *Scene) Encode(w io.Writer) error {
	sf := sceneFile{
		Name:     s.Name,
		Playback: playbackFile{Start: s.PlaybackStart, End: s.PlaybackEnd},
		Time:     s.time,
		Tangent:  s.KeyTangent,
	}
	for _, id := range s.order {
		e := s.entities[id]
		t, r, sc := e.Rest.Translation, e.Rest.Rotation, e.Rest.Scale
		ef := entityFile{
			Name:      e.Name,
			Parent:    e.Parent,
			Translate: &t,
			Rotate:    &r,
			Scale:     &sc,
			Keys: keysFile{
				Translate: e.Translate.Keys,
				Rotate:    e.Rotate.Keys,
				Scale:     e.Scale.Keys,
			},
		}
		for _, ch := range e.Locked.List() {
			ef.Locked = append(ef.Locked, ch.String())
		}
		sf.Entities = append(sf.Entities, ef)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&sf); err != nil {
		return errors.Wrap(err, "encode")
	}
	return enc.Close()
}

package trs

import (
	"fmt"
	"strings"

	"devstabilize/internal/mathutil"
)

// TRS holds a decomposed transform. Rotation is Euler XYZ in degrees.
type TRS struct {
	Translation mathutil.Vec3
	Rotation    mathutil.Vec3
	Scale       mathutil.Vec3
}

// Identity returns the neutral transform: no translation, no rotation, unit scale.
func Identity() TRS {
	return TRS{Scale: mathutil.One}
}

func (t TRS) String() string {
	return fmt.Sprintf("t=(%.4f,%.4f,%.4f) r=(%.4f,%.4f,%.4f) s=(%.4f,%.4f,%.4f)",
		t.Translation[0], t.Translation[1], t.Translation[2],
		t.Rotation[0], t.Rotation[1], t.Rotation[2],
		t.Scale[0], t.Scale[1], t.Scale[2])
}

// Channels is a bit set of transform channels.
type Channels uint8

const (
	Translate Channels = 1 << iota
	Rotate
	Scale

	All = Translate | Rotate | Scale
)

// Has reports whether every channel in c2 is set in c.
func (c Channels) Has(c2 Channels) bool {
	return c&c2 == c2
}

// List returns the set channels in translate, rotate, scale order.
func (c Channels) List() []Channels {
	var out []Channels
	for _, ch := range []Channels{Translate, Rotate, Scale} {
		if c.Has(ch) {
			out = append(out, ch)
		}
	}
	return out
}

func (c Channels) String() string {
	var names []string
	for _, ch := range c.List() {
		switch ch {
		case Translate:
			names = append(names, "translate")
		case Rotate:
			names = append(names, "rotate")
		case Scale:
			names = append(names, "scale")
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// Channel returns the value of a single channel.
func (t TRS) Channel(ch Channels) mathutil.Vec3 {
	switch ch {
	case Rotate:
		return t.Rotation
	case Scale:
		return t.Scale
	default:
		return t.Translation
	}
}

package scene

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"devstabilize/internal/mathutil"
)

// Tangent controls how a curve leaves or enters a key.
type Tangent int

const (
	// Flat eases in and out with a zero slope.
	Flat Tangent = iota
	// Linear uses the slope of the straight segment to the neighbouring key.
	Linear
	// Step holds the key value until the next key (out tangent only).
	Step
)

var tangentNames = map[Tangent]string{Flat: "flat", Linear: "linear", Step: "step"}

func (t Tangent) String() string {
	if n, ok := tangentNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseTangent accepts "flat", "linear" and "step". Empty means flat.
func ParseTangent(s string) (Tangent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Flat, nil
	}
	for t, n := range tangentNames {
		if n == s {
			return t, nil
		}
	}
	return Flat, errors.Errorf("unknown tangent type %q", s)
}

func (t Tangent) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *Tangent) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseTangent(n.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", n.Line)
	}
	*t = v
	return nil
}

// Key is one keyframe of a three-axis channel.
type Key struct {
	Frame int           `yaml:"frame"`
	Value mathutil.Vec3 `yaml:"value,flow"`
	In    Tangent       `yaml:"in"`
	Out   Tangent       `yaml:"out"`
}

// Curve is a three-axis animation curve with keys sorted by frame.
type Curve struct {
	Keys []Key
}

func (c *Curve) find(frame int) (int, bool) {
	i := sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Frame >= frame })
	return i, i < len(c.Keys) && c.Keys[i].Frame == frame
}

// Set keys v at frame. An existing key keeps its tangents; a new key gets tan on both sides.
func (c *Curve) Set(frame int, v mathutil.Vec3, tan Tangent) {
	i, ok := c.find(frame)
	if ok {
		c.Keys[i].Value = v
		return
	}
	c.Keys = append(c.Keys, Key{})
	copy(c.Keys[i+1:], c.Keys[i:])
	c.Keys[i] = Key{Frame: frame, Value: v, In: tan, Out: tan}
}

// SetTangents changes both tangents of every key in [start, end].
func (c *Curve) SetTangents(start, end int, tan Tangent) {
	for i := range c.Keys {
		if c.Keys[i].Frame >= start && c.Keys[i].Frame <= end {
			c.Keys[i].In, c.Keys[i].Out = tan, tan
		}
	}
}

// Empty reports whether the curve has no keys.
func (c *Curve) Empty() bool {
	return len(c.Keys) == 0
}

// Eval returns the curve value at t, holding the first and last keys outside the keyed range.
func (c *Curve) Eval(t float64) mathutil.Vec3 {
	n := len(c.Keys)
	switch {
	case n == 0:
		return mathutil.Vec3{}
	case t <= float64(c.Keys[0].Frame):
		return c.Keys[0].Value
	case t >= float64(c.Keys[n-1].Frame):
		return c.Keys[n-1].Value
	}

	i := sort.Search(n, func(i int) bool { return float64(c.Keys[i].Frame) > t })
	k0, k1 := c.Keys[i-1], c.Keys[i]
	if k0.Out == Step {
		return k0.Value
	}

	span := float64(k1.Frame - k0.Frame)
	u := (t - float64(k0.Frame)) / span
	h00 := 2*u*u*u - 3*u*u + 1
	h10 := u*u*u - 2*u*u + u
	h01 := -2*u*u*u + 3*u*u
	h11 := u*u*u - u*u

	var out mathutil.Vec3
	for a := 0; a < 3; a++ {
		p0, p1 := k0.Value[a], k1.Value[a]
		m0 := slope(k0.Out, p1-p0)
		m1 := slope(k1.In, p1-p0)
		out[a] = h00*p0 + h10*m0 + h01*p1 + h11*m1
	}
	return out
}

// slope returns the Hermite tangent over one unit segment.
func slope(t Tangent, delta float64) float64 {
	if t == Linear {
		return delta
	}
	return 0
}

func (c *Curve) clone() Curve {
	return Curve{Keys: append([]Key(nil), c.Keys...)}
}

package scene

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"devstabilize/internal/trs"
)

// Entity is an animated transform node.
type Entity struct {
	Name   string
	Parent string

	// Rest is the static value of channels that carry no keys.
	Rest trs.TRS

	Translate Curve
	Rotate    Curve
	Scale     Curve

	// Locked channels refuse keys, like locked host attributes.
	Locked trs.Channels
}

// NewEntity returns an entity at rest on the identity transform.
func NewEntity(name string) *Entity {
	return &Entity{Name: name, Rest: trs.Identity()}
}

// NormalizeID trims an entity id and folds it to Unicode NFC so ids typed on a
// command line match ids stored in files.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// Curve returns the curve of a single channel.
func (e *Entity) Curve(ch trs.Channels) *Curve {
	switch ch {
	case trs.Rotate:
		return &e.Rotate
	case trs.Scale:
		return &e.Scale
	default:
		return &e.Translate
	}
}

// Local evaluates the entity's local transform at frame.
func (e *Entity) Local(frame int) trs.TRS {
	out := e.Rest
	if !e.Translate.Empty() {
		out.Translation = e.Translate.Eval(float64(frame))
	}
	if !e.Rotate.Empty() {
		out.Rotation = e.Rotate.Eval(float64(frame))
	}
	if !e.Scale.Empty() {
		out.Scale = e.Scale.Eval(float64(frame))
	}
	return out
}

func (e *Entity) clone() *Entity {
	c := *e
	c.Translate = e.Translate.clone()
	c.Rotate = e.Rotate.clone()
	c.Scale = e.Scale.clone()
	return &c
}

package retarget

import "devstabilize/internal/mathutil"

// Scene is the host capability the retargeter runs against. Every query and write
// names its frame explicitly; an adapter backed by a host with a global evaluation
// time is expected to move that time itself.
type Scene interface {
	EntityExists(id string) bool
	WorldMatrix(id string, frame int) (mathutil.Mat4, error)

	// Each setter records a key on the channel at frame.
	SetTranslation(id string, frame int, v mathutil.Vec3) error
	SetRotation(id string, frame int, deg mathutil.Vec3) error
	SetScale(id string, frame int, v mathutil.Vec3) error

	CurrentTime() int
	SetCurrentTime(frame int) error

	// Begin opens an undo boundary around a whole operation.
	Begin() (Tx, error)
}

// Tx is an open undo boundary.
type Tx interface {
	Commit() error
	Rollback() error
}

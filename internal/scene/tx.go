package scene

import "devstabilize/internal/retarget"

// Begin snapshots every entity. Only one boundary may be open at a time.
func (s *Scene) Begin() (retarget.Tx, error) {
	if s.snapshot != nil {
		return nil, ErrTxOpen
	}
	s.snapshot = make(map[string]*Entity, len(s.entities))
	for id, e := range s.entities {
		s.snapshot[id] = e.clone()
	}
	return &tx{scene: s, time: s.time}, nil
}

type tx struct {
	scene *Scene
	time  int
	done  bool
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.scene.snapshot = nil
	return nil
}

// Rollback restores the entity state and current time captured by Begin.
func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for id, e := range t.scene.snapshot {
		t.scene.entities[id] = e
	}
	t.scene.snapshot = nil
	t.scene.time = t.time
	return nil
}

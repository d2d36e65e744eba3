package keys

import "github.com/nrednav/cuid2"

type Manager interface {
	NewID() string
}

type cuidManager struct {
	generate func() string
}

// New returns a Manager backed by cuid2, every call yields a fresh collision
// resistant id.
func New() *cuidManager {
	return &cuidManager{generate: cuid2.Generate}
}

func (m *cuidManager) NewID() string {
	return m.generate()
}

package memory

import (
	"context"
	"sync"

	"github.com/davicafu/hexatasks/shared/platform/persistence"
)

// Slot guarda el contenido en memoria del proceso. No sobrevive a reinicios.
type Slot struct {
	data  []byte
	found bool
	mu    sync.RWMutex
}

var _ persistence.Slot = (*Slot)(nil)

func NewSlot() *Slot {
	return &Slot{}
}

// NewSlotWith crea un hueco ya ocupado con 'data' (útil en tests).
func NewSlotWith(data []byte) *Slot {
	return &Slot{data: append([]byte(nil), data...), found: true}
}

func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.found {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *Slot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.found = true
	return nil
}

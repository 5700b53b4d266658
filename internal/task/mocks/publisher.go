package mocks

import (
	"context"
	"sync"

	sharedEvents "github.com/davicafu/hexatasks/shared/events"
	sharedBus "github.com/davicafu/hexatasks/shared/platform/bus"
	"github.com/stretchr/testify/mock"
)

// MockPublisher simula un publisher
type MockPublisher struct {
	mock.Mock
}

var _ sharedBus.EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// RecordingPublisher guarda los eventos de integración publicados.
type RecordingPublisher struct {
	Events []sharedEvents.IntegrationEvent
	mu     sync.Mutex
}

var _ sharedBus.EventPublisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ie, ok := event.(sharedEvents.IntegrationEvent); ok {
		p.Events = append(p.Events, ie)
	}
	return nil
}

// Types devuelve los tipos de evento en orden de publicación.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Type)
	}
	return out
}

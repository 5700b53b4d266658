package bus

import "context"

type Keyer interface {
	PartitionKey() string
}

// La semántica de topic/nombre y formato del payload la decides en los adapters.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// NopPublisher descarta los eventos; útil cuando no hay bus configurado.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event interface{}) error {
	return nil
}

var _ EventPublisher = NopPublisher{}

// en internal/task/infra/inbound/events/task_consumer.go
package events

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	sharedEvents "github.com/davicafu/hexatasks/shared/events"
	sharedUtils "github.com/davicafu/hexatasks/shared/utils"
)

// ActivityRecorder guarda el historial de eventos (p. ej. ClickHouse).
type ActivityRecorder interface {
	Record(ctx context.Context, evt sharedEvents.IntegrationEvent) error
}

// ActivityConsumer procesa los eventos de Task: los registra en el log y, si hay recorder, en el historial.
type ActivityConsumer struct {
	registry map[string]sharedEvents.EventMetadata
	recorder ActivityRecorder
	log      *zap.Logger

	mu     sync.Mutex
	counts map[string]int
}

// NewActivityConsumer es el constructor. recorder puede ser nil.
func NewActivityConsumer(recorder ActivityRecorder, logger *zap.Logger) *ActivityConsumer {
	return &ActivityConsumer{
		registry: taskDomain.NewEventRegistry(),
		recorder: recorder,
		log:      logger,
		counts:   make(map[string]int),
	}
}

// HandleMessage es el punto de entrada para un nuevo mensaje/evento.
func (c *ActivityConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	sharedUtils.UnmarshalAndHandle(c.log, payload, func(base sharedEvents.IntegrationEvent) {
		metadata, ok := c.registry[base.Type]
		if !ok {
			c.log.Warn("Unknown task event type", zap.String("type", base.Type), zap.String("key", key))
			return
		}

		// Creamos una nueva instancia del tipo de evento (ej: &sharedEvents.TaskCreated{})
		evt := reflect.New(metadata.Type).Interface()
		if err := json.Unmarshal(base.Data, evt); err != nil {
			c.log.Warn("Failed to decode task event", zap.String("type", base.Type), zap.String("key", key), zap.Error(err))
			return
		}

		c.logActivity(base, evt)
		c.mu.Lock()
		c.counts[base.Type]++
		c.mu.Unlock()

		if c.recorder != nil {
			c.withContext(ctx, base, func(ctxTask context.Context) error {
				return c.recorder.Record(ctxTask, base)
			})
		}
	})
}

// Counts devuelve cuántos eventos de cada tipo se han procesado.
func (c *ActivityConsumer) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// LogSummary deja en el log el recuento de eventos procesados, p. ej. al parar el servidor.
func (c *ActivityConsumer) LogSummary() {
	counts := c.Counts()
	c.log.Info("📊 Task activity processed",
		zap.Int(taskDomain.TaskCreated, counts[taskDomain.TaskCreated]),
		zap.Int(taskDomain.TaskUpdated, counts[taskDomain.TaskUpdated]),
		zap.Int(taskDomain.TaskDeleted, counts[taskDomain.TaskDeleted]),
	)
}

func (c *ActivityConsumer) logActivity(base sharedEvents.IntegrationEvent, evt interface{}) {
	switch e := evt.(type) {
	case *sharedEvents.TaskCreated:
		c.log.Info("🆕 Task created", zap.String("task_id", base.Key), zap.String("title", e.Title), zap.String("priority", e.Priority))
	case *sharedEvents.TaskUpdated:
		c.log.Info("✏️ Task updated", zap.String("task_id", base.Key), zap.Bool("completed", e.Completed), zap.Bool("was_completed", e.WasCompleted))
	case *sharedEvents.TaskDeleted:
		c.log.Info("🗑️ Task deleted", zap.String("task_id", base.Key), zap.Bool("was_completed", e.WasCompleted))
	}
}

// Helper para ejecutar acción con contexto limitado y log.
func (c *ActivityConsumer) withContext(ctx context.Context, base sharedEvents.IntegrationEvent, action func(ctx context.Context) error) {
	ctxTask, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := action(ctxTask); err != nil {
		c.log.Warn("Failed to record task activity",
			zap.String("task_id", base.Key),
			zap.String("type", base.Type),
			zap.Error(err),
		)
	}
}

// BackgroundConsumerChan inicia una goroutine para consumir eventos de un canal del bus en memoria.
func BackgroundConsumerChan(ctx context.Context, ch <-chan interface{}, consumer *ActivityConsumer) {
	go ConsumeChan(ctx, ch, consumer)
}

// ConsumeChan es la versión bloqueante; termina al cancelar el contexto o cerrarse el canal.
func ConsumeChan(ctx context.Context, ch <-chan interface{}, consumer *ActivityConsumer) {
	for {
		select {
		case <-ctx.Done():
			consumer.log.Info("ActivityConsumer stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				consumer.log.Info("ActivityConsumer channel closed")
				return
			}
			// Hacemos una aserción de tipo para asegurarnos de que es un []byte
			if payload, ok := msg.([]byte); ok {
				// La 'key' no es relevante en el bus en memoria, pasamos una vacía.
				consumer.HandleMessage(ctx, "", payload)
			}
		}
	}
}

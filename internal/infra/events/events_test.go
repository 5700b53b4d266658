package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	sharedEvents "github.com/davicafu/hexatasks/shared/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleEvent(t *testing.T) sharedEvents.IntegrationEvent {
	t.Helper()
	evt, err := sharedEvents.NewIntegrationEvent("task.created", "key-1", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		sharedEvents.TaskCreated{Title: "Buy milk", Priority: "medium"})
	require.NoError(t, err)
	return evt
}

// -------------------- InMemoryEventBus --------------------

func TestInMemoryBus_DeliversSynchronously(t *testing.T) {
	bus := NewInMemoryEventBus("task")
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)

	require.NoError(t, bus.Publish(context.Background(), sampleEvent(t)))

	// Sin esperas: el reparto ocurre dentro de Publish
	for _, ch := range []<-chan interface{}{a, b} {
		select {
		case msg := <-ch:
			payload, ok := msg.([]byte)
			require.True(t, ok)
			var got sharedEvents.IntegrationEvent
			require.NoError(t, json.Unmarshal(payload, &got))
			assert.Equal(t, "task.created", got.Type)
			assert.Equal(t, "key-1", got.Key)
		default:
			t.Fatal("el evento debería estar ya en el canal")
		}
	}
}

func TestInMemoryBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewInMemoryEventBus("task")
	ch := bus.Subscribe(1)

	require.NoError(t, bus.Publish(context.Background(), sampleEvent(t)))
	require.NoError(t, bus.Publish(context.Background(), sampleEvent(t)))

	assert.Len(t, ch, 1, "el segundo evento se descarta")
}

func TestInMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus("task")
	assert.NoError(t, bus.Publish(context.Background(), sampleEvent(t)))
	assert.Equal(t, "task", bus.Topic())
}

func TestInMemoryBus_Close(t *testing.T) {
	bus := NewInMemoryEventBus("task")
	ch := bus.Subscribe(1)

	bus.Close()
	bus.Close() // idempotente

	_, open := <-ch
	assert.False(t, open)
	assert.NoError(t, bus.Publish(context.Background(), sampleEvent(t)))
	_, open = <-bus.Subscribe(1)
	assert.False(t, open)
}

// -------------------- KafkaPublisher --------------------

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_UsesPartitionKeyAndHeader(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), sampleEvent(t)))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("key-1"), w.msgs[0].Key)
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, []byte("task.created"), w.msgs[0].Headers[0].Value)

	var got sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "task.created", got.Type)
}

func TestKafkaPublisher_PlainPayloadHasNoKey(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), map[string]string{"hello": "world"}))

	require.Len(t, w.msgs, 1)
	assert.Nil(t, w.msgs[0].Key)
	assert.Empty(t, w.msgs[0].Headers)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")}, zap.NewNop())

	assert.Error(t, p.Publish(context.Background(), sampleEvent(t)))
}

// -------------------- ConsumerAdapter --------------------

type fakeReader struct {
	msgs   chan kafka.Message
	closed bool
	mu     sync.Mutex
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

type recordingHandler struct {
	keys chan string
}

func (h *recordingHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	h.keys <- key
}

func TestConsumerAdapter_ForwardsUntilCancelled(t *testing.T) {
	reader := &fakeReader{msgs: make(chan kafka.Message, 2)}
	handler := &recordingHandler{keys: make(chan string, 2)}
	c := NewConsumerAdapter(reader, "task", handler, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	reader.msgs <- kafka.Message{Key: []byte("a"), Value: []byte(`{}`)}
	reader.msgs <- kafka.Message{Key: []byte("b"), Value: []byte(`{}`)}

	assert.Equal(t, "a", <-handler.keys)
	assert.Equal(t, "b", <-handler.keys)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el consumidor no se detuvo")
	}
	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.True(t, reader.closed)
}

package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/journal"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type mockStore struct {
	mu        sync.Mutex
	events    []journal.OutboxEvent
	fetchErr  error
	markErr   error
	published []int64
}

func (m *mockStore) UnpublishedEvents(context.Context, int) ([]journal.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []journal.OutboxEvent
	for _, ev := range m.events {
		if !m.isPublished(ev.ID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockStore) MarkPublished(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.published = append(m.published, id)
	return nil
}

func (m *mockStore) isPublished(id int64) bool {
	for _, p := range m.published {
		if p == id {
			return true
		}
	}
	return false
}

func (m *mockStore) publishedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.published...)
}

type mockWriter struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	failKey  string
	closed   bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range msgs {
		if w.failKey != "" && string(m.Key) == w.failKey {
			return errors.New("broker unavailable")
		}
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func event(id int64, receiptID string) journal.OutboxEvent {
	return journal.OutboxEvent{
		ID:          id,
		AggregateID: receiptID,
		EventType:   journal.EventSaleCompleted,
		Payload:     json.RawMessage(fmt.Sprintf(`{"receipt_id":%q,"total":"250"}`, receiptID)),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	store := &mockStore{events: []journal.OutboxEvent{event(1, "r-1"), event(2, "r-2")}}
	writer := &mockWriter{}
	poller := NewOutboxPoller(store, writer, nil)

	n := poller.processUnpublishedEvents(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, store.publishedIDs())
	require.Len(t, writer.messages, 2)
	assert.Equal(t, "r-1", string(writer.messages[0].Key))
	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, journal.EventSaleCompleted, string(writer.messages[0].Headers[0].Value))
}

func TestProcessUnpublishedEvents_WriteFailureLeavesEventPending(t *testing.T) {
	store := &mockStore{events: []journal.OutboxEvent{event(1, "r-1"), event(2, "r-2")}}
	writer := &mockWriter{failKey: "r-1"}
	poller := NewOutboxPoller(store, writer, nil)

	n := poller.processUnpublishedEvents(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{2}, store.publishedIDs())

	writer.failKey = ""
	n = poller.processUnpublishedEvents(context.Background())
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{2, 1}, store.publishedIDs())
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	store := &mockStore{fetchErr: errors.New("database is locked")}
	writer := &mockWriter{}
	poller := NewOutboxPoller(store, writer, nil)

	assert.Zero(t, poller.processUnpublishedEvents(context.Background()))
	assert.Empty(t, writer.messages)
}

func TestProcessUnpublishedEvents_MarkErrorIsNotCounted(t *testing.T) {
	store := &mockStore{events: []journal.OutboxEvent{event(1, "r-1")}, markErr: errors.New("disk full")}
	writer := &mockWriter{}
	poller := NewOutboxPoller(store, writer, nil)

	assert.Zero(t, poller.processUnpublishedEvents(context.Background()))
	assert.Len(t, writer.messages, 1, "message is sent even if marking fails")
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := &mockStore{events: []journal.OutboxEvent{event(1, "r-1")}}
	poller := NewOutboxPoller(store, &mockWriter{}, nil)
	poller.eventTick = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(store.publishedIDs()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClose_ClosesWriter(t *testing.T) {
	writer := &mockWriter{}
	poller := NewOutboxPoller(&mockStore{}, writer, nil)

	require.NoError(t, poller.Close())
	assert.True(t, writer.closed)
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	if err != nil {
		t.Skipf("kafka container unavailable: %v", err)
	}

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesSalesToKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	createTopic(t, brokerAddr, SaleCompletedTopic)
	time.Sleep(5 * time.Second)

	store := &mockStore{events: []journal.OutboxEvent{event(1, "receipt-123")}}

	writer := NewKafkaWriter(brokerAddr)
	writer.WriteTimeout = 10 * time.Second
	writer.ReadTimeout = 10 * time.Second

	poller := NewOutboxPoller(store, writer, nil)
	defer poller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    SaleCompletedTopic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "receipt-123", string(msg.Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "receipt-123", payload["receipt_id"])

	assert.Eventually(t, func() bool { return len(store.publishedIDs()) == 1 }, 5*time.Second, 100*time.Millisecond)
}

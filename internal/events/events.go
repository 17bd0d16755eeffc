// Package events fans domain change events out to connected SSE clients
// and, when configured, to a Kafka topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/recipebox/recipebox-server/internal/sse"
)

// Emitter delivers events to live clients. *sse.Manager implements it.
type Emitter interface {
	Emit(event sse.Event)
}

// MessageWriter is the subset of *kafka.Writer the bus uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is the JSON value written to Kafka.
type Message struct {
	Type      sse.EventType `json:"type"`
	UserID    int64         `json:"user_id"`
	Timestamp time.Time     `json:"timestamp"`
	Data      any           `json:"data"`
}

// Bus publishes events. Kafka writes happen on a background goroutine so
// request handlers never wait on the broker.
type Bus struct {
	emitter Emitter
	writer  MessageWriter
	logger  *slog.Logger

	queue chan kafka.Message
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus. writer may be nil, which disables the Kafka sink.
func NewBus(emitter Emitter, writer MessageWriter, logger *slog.Logger) *Bus {
	b := &Bus{
		emitter: emitter,
		writer:  writer,
		logger:  logger,
	}
	if writer != nil {
		b.queue = make(chan kafka.Message, 256)
		b.wg.Add(1)
		go b.run()
	}
	return b
}

// NewKafkaWriter creates a writer for topic on the given brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // Keeps one user's events on one partition
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// Publish sends event to SSE clients and queues it for Kafka.
func (b *Bus) Publish(event sse.Event) {
	if b.emitter != nil {
		b.emitter.Emit(event)
	}
	if b.writer == nil || event.Type == sse.EventHeartbeat {
		return
	}

	msg, err := EncodeMessage(event)
	if err != nil {
		b.logger.Error("failed to encode event for kafka",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.queue <- msg:
	default:
		b.logger.Warn("kafka queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// EncodeMessage builds the Kafka message for event. The key is the owning
// user so that a user's events stay ordered.
func EncodeMessage(event sse.Event) (kafka.Message, error) {
	value, err := json.Marshal(Message{
		Type:      event.Type,
		UserID:    event.UserID,
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	return kafka.Message{
		Key:   fmt.Appendf(nil, "user-%d", event.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.Timestamp,
	}, nil
}

func (b *Bus) run() {
	defer b.wg.Done()
	for msg := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := b.writer.WriteMessages(ctx, msg); err != nil {
			b.logger.Error("failed to write event to kafka",
				slog.String("key", string(msg.Key)),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}

// Shutdown flushes queued Kafka messages and closes the writer.
func (b *Bus) Shutdown(ctx context.Context) error {
	if b.writer == nil {
		return nil
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("kafka flush timed out, some events may be lost")
	}

	return b.writer.Close()
}

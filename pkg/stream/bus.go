package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// Bus hands out readers and writers bound to one Kafka cluster. It keeps
// no connections of its own; callers own the lifecycle of whatever it
// returns.
type Bus struct {
	brokers []string
}

func NewBus(brokers []string) *Bus {
	return &Bus{brokers: brokers}
}

// Writer returns a synchronous writer for topic. One ack is enough for a
// lossy 1 Hz telemetry stream.
func (b *Bus) Writer(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(b.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// Reader returns a consumer-group reader for topic. MinBytes is 1 so a
// single reading is delivered without waiting for a batch to fill.
func (b *Bus) Reader(topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
}

// Publish encodes one reading and sends it, stamping the Kafka message
// with the reading's own timestamp rather than the send time.
func Publish(ctx context.Context, w *kafka.Writer, r Reading) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "could not encode reading")
	}
	err = w.WriteMessages(ctx, kafka.Message{Time: r.Time, Value: body})
	return errors.Wrap(err, "could not publish reading")
}

// Fetch blocks for the next reading on r. The returned error is the
// reader's own on broker trouble, so callers can test for
// context.DeadlineExceeded with errors.Is.
func Fetch(ctx context.Context, r *kafka.Reader) (Reading, error) {
	msg, err := r.ReadMessage(ctx)
	if err != nil {
		return Reading{}, err
	}
	var reading Reading
	if err := json.Unmarshal(msg.Value, &reading); err != nil {
		return Reading{}, errors.Wrapf(err, "could not decode reading '%s'", msg.Value)
	}
	return reading, nil
}

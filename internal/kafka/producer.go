package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/logger"
)

// Producer is a thin wrapper around segmentio/kafka-go Writer for one topic.
// Writes are asynchronous: Publish only enqueues, delivery failures are logged,
// and Close flushes whatever is still buffered.
type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             logFailedWrites,
	}}
}

func logFailedWrites(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	logger.Log.Warn("kafka: audit messages dropped",
		zap.Int("count", len(msgs)),
		zap.Error(err),
	)
}

// Publish enqueues one message; it does not wait for the broker.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

func (p *Producer) Close() error { return p.w.Close() }

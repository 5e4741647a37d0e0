package pkg

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// Community events pushed over the real-time channel. Messages are keyed by
// community ID so consumers can subscribe per community.
const (
	EventNewPost     = "newPost"
	EventPostUpdated = "postUpdated"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &KafkaProducer{writer: w, topic: cfg.Topic}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish emits one community-scoped event. Callers treat failures as
// best-effort: a lost event never fails the request that produced it.
func (p *KafkaProducer) Publish(ctx context.Context, communityID uint64, event string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(communityID, 10)),
		Value: body,
	}
	return p.writer.WriteMessages(ctx, msg)
}

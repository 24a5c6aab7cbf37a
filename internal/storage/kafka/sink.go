// Package kafka publishes rendered notifications to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"poapFeed/internal/model"
)

const envelopeType = "poap.notification"

// Envelope wraps each message with its type and publish time.
type Envelope struct {
	Type string          `json:"type"`
	TS   int64           `json:"ts"`
	Data json.RawMessage `json:"data"`
}

// Sink is a synchronous Kafka producer keyed by network.
type Sink struct {
	topic string
	p     sarama.SyncProducer
}

func NewSink(brokers []string, topic string, cfg *sarama.Config) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewSinkWithProducer(topic, p), nil
}

// NewSinkWithProducer wraps an existing producer.
func NewSinkWithProducer(topic string, p sarama.SyncProducer) *Sink {
	return &Sink{topic: topic, p: p}
}

func (s *Sink) Close() error {
	if s.p != nil {
		return s.p.Close()
	}
	return nil
}

func (s *Sink) Publish(_ context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	b, err := json.Marshal(Envelope{Type: envelopeType, TS: time.Now().UnixMilli(), Data: data})
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(n.Network.String()),
		Value: sarama.ByteEncoder(b),
	}
	if _, _, err := s.p.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka publish failed: %w", err)
	}
	return nil
}

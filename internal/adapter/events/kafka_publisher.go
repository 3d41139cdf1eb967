package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/core/domain"
)

// KafkaPublisher writes every ledger change to a topic, keyed by item name so
// the changes of one item stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, conf)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Name),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.ID)},
			{Key: []byte("kind"), Value: []byte(event.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/weiawesome/framez/internal/domain"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// KafkaPublisher writes notification events to a Kafka topic keyed by
// recipient, so one user's notifications stay ordered on one partition.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	doneCh   chan struct{}
}

// NewKafkaPublisher creates the producer and makes sure the topic exists.
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	if err := ensureTopic(brokers, topic, 3); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Str(pkglog.FieldTopic, topic).Msg("failed to ensure topic, may already exist")
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kp := &KafkaPublisher{
		producer: p,
		topic:    topic,
		doneCh:   make(chan struct{}),
	}
	go kp.deliveryReportHandler()

	return kp, nil
}

func ensureTopic(brokers, topic string, partitions int) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return err
	}
	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", result.Topic, result.Error)
		}
	}
	return nil
}

func (kp *KafkaPublisher) deliveryReportHandler() {
	l := pkglog.L()
	for e := range kp.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			l.Error().Err(m.TopicPartition.Error).
				Str(pkglog.FieldTopic, kp.topic).
				Str(pkglog.FieldTargetUserID, string(m.Key)).
				Msg("notification delivery failed")
		}
	}
	close(kp.doneCh)
}

// Publish enqueues n. Delivery failures are reported asynchronously.
func (kp *KafkaPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &kp.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(n.RecipientID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce notification: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the producer.
func (kp *KafkaPublisher) Close() error {
	kp.producer.Flush(5000)
	kp.producer.Close()
	<-kp.doneCh
	return nil
}

var _ Publisher = (*KafkaPublisher)(nil)

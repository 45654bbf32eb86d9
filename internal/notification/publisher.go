package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/ridloal/apparel-store/internal/platform/config"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
}

const connectAttempts = 5

func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= connectAttempts; i++ {
		producer, err = sarama.NewSyncProducer(cfg.Brokers, sc)
		if err == nil {
			logger.Info("Kafka producer initialized", logger.Fields{"brokers": cfg.Brokers})
			return NewKafkaPublisherFromProducer(producer), nil
		}
		logger.Warn("Waiting for Kafka... (%d/%d): %v", i, connectAttempts, err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("kafka producer unavailable: %w", err)
}

func NewKafkaPublisherFromProducer(p sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to %s failed: %w", topic, err)
	}
	logger.Info("Published event", logger.Fields{"topic": topic, "key": key, "partition": partition, "offset": offset})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

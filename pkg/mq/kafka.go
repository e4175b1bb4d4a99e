package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/xiebiao/mall/pkg/metrics"
)

// messageWriter *kafka.Writer的子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 把事件写入一个Kafka topic
// routingKey同时作为消息Key和"event"头，同一类事件落在同一分区
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewKafkaPublisher 创建同步写入的Kafka发布者
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
	}
	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("Kafka发布者已创建")
	return newKafkaPublisher(w, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: logger}
}

// Publish 写入一条消息
func (p *KafkaPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := encode(message)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(routingKey),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(routingKey)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: time.Now(),
	})
	metrics.IncMessagePublished("kafka", routingKey, resultLabel(err))
	if err != nil {
		return fmt.Errorf("写入Kafka失败: %w", err)
	}

	p.logger.Debug().Str("topic", p.topic).Str("event", routingKey).Msg("消息已发布")
	return nil
}

// Close 刷新并关闭writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

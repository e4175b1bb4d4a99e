// Package mq 领域事件发布
//
// 事件在数据库事务提交之后发布，发布失败只记日志，不影响已经成功的业务操作。
// 支持RabbitMQ（topic exchange）和Kafka两种传输，未配置时使用NopPublisher。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// Publisher 事件发布者
type Publisher interface {
	// Publish 把message序列化为JSON后发布，routingKey形如 order.created
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Close() error
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

func encode(message interface{}) ([]byte, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("消息序列化失败: %w", err)
	}
	return body, nil
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

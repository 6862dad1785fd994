// Package mq 基于RabbitMQ的事件发布/订阅
//
// 使用Topic Exchange，路由键形如 order.placed、order.status_changed，
// 消费者可以用通配符订阅（order.*）。
// 消息体为JSON，链路追踪上下文通过消息头传递。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
)

// EventPublisher 事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Close() error
}

// Config RabbitMQ配置
type Config struct {
	Enabled      bool   `mapstructure:"enabled"`
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
}

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	now      func() time.Time
}

// NewPublisher 连接RabbitMQ并声明Exchange
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := declareExchange(channel, exchange, exchangeType); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("消息发布者已创建", map[string]interface{}{
		"exchange": exchange,
		"type":     exchangeType,
	})

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		now:      time.Now,
	}, nil
}

func declareExchange(ch *amqp.Channel, exchange, exchangeType string) error {
	if exchangeType == "" {
		exchangeType = amqp.ExchangeTopic
	}
	// durable, 非auto-delete
	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明Exchange失败: %w", err)
	}
	return nil
}

// Publish 发布消息（JSON序列化，持久化投递）
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	msg, err := buildPublishing(ctx, routingKey, message, p.now())
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	metrics.ObservePublish(p.exchange, routingKey, err)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	logger.Ctx(ctx).Debug().
		Str("routing_key", routingKey).
		Str("message_id", msg.MessageId).
		Msg("消息已发布")
	return nil
}

func buildPublishing(ctx context.Context, routingKey string, message interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("消息序列化失败: %w", err)
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))

	return amqp.Publishing{
		Headers:      headers,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         routingKey,
		Timestamp:    now,
		Body:         body,
	}, nil
}

// Close 关闭发布者
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher 未启用RabbitMQ时使用，只记录日志
type NoopPublisher struct{}

// Publish 丢弃消息
func (NoopPublisher) Publish(ctx context.Context, routingKey string, _ interface{}) error {
	logger.Ctx(ctx).Debug().Str("routing_key", routingKey).Msg("消息队列未启用，事件已丢弃")
	return nil
}

// Close 无操作
func (NoopPublisher) Close() error { return nil }

// headerCarrier 让amqp消息头实现propagation.TextMapCarrier
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	v, ok := c[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
)

// Delivery 交给处理函数的消息
type Delivery struct {
	MessageID  string
	RoutingKey string
	Body       []byte
	// Redelivered 是否为重新投递（之前处理失败过）
	Redelivered bool
}

// Handler 消息处理函数
type Handler func(ctx context.Context, d Delivery) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer 声明Queue并按routingKeys绑定到Exchange
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	cleanup := func() {
		channel.Close()
		conn.Close()
	}

	if err := declareExchange(channel, exchange, exchangeType); err != nil {
		cleanup()
		return nil, err
	}

	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			cleanup()
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	logger.Info("消息消费者已创建", map[string]interface{}{
		"queue":        q.Name,
		"routing_keys": routingKeys,
	})

	return &Consumer{conn: conn, channel: channel, queue: q.Name}, nil
}

// Consume 阻塞消费，直到ctx取消
//
// 手动确认：处理成功Ack；首次失败重新入队；
// 重新投递后仍失败则丢弃（不再入队），避免毒消息无限循环。
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	logger.Info("开始消费消息", map[string]interface{}{"queue": c.queue})

	for {
		select {
		case <-ctx.Done():
			logger.Info("消费者退出", map[string]interface{}{"queue": c.queue})
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("消息Channel已关闭")
			}
			c.handle(ctx, msg, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery, handler Handler) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(msg.Headers))
	start := time.Now()

	err := handler(ctx, Delivery{
		MessageID:   msg.MessageId,
		RoutingKey:  msg.RoutingKey,
		Body:        msg.Body,
		Redelivered: msg.Redelivered,
	})
	metrics.ObserveConsume(c.queue, err, time.Since(start))

	log := logger.Ctx(ctx)
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	requeue := shouldRequeue(msg.Redelivered)
	log.Error().Err(err).
		Str("routing_key", msg.RoutingKey).
		Str("message_id", msg.MessageId).
		Bool("requeue", requeue).
		Msg("消息处理失败")
	_ = msg.Nack(false, requeue)
}

func shouldRequeue(redelivered bool) bool {
	return !redelivered
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

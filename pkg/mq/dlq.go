package mq

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rabbitmq/amqp091-go"
)

const (
	DLQExchangeName = "events.dlq"

	// 错误信息写入消息头，过长时截断
	maxErrorHeaderLen = 512
)

func DeclareDLQExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(DLQExchangeName, "topic", true, false, false, false, nil)
}

// DeclareDLQQueue declares "<queue>.dlq" bound to the DLQ exchange under routingKey.
// Without it, dead letters published to the exchange are silently dropped.
func DeclareDLQQueue(ch *amqp091.Channel, queueName, routingKey string) (amqp091.Queue, error) {
	if err := DeclareDLQExchange(ch); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queueName+".dlq", true, false, false, false, nil)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, DLQExchangeName, false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}
	return q, nil
}

// PublishToDLQ forwards the raw body unchanged, with the failure cause and
// origin in the headers.
func (p *Publisher) PublishToDLQ(ctx context.Context, routingKey, queueName string, body []byte, cause error) error {
	reason := truncateReason(cause.Error(), maxErrorHeaderLen)

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx,
		DLQExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now().UTC(),
			Headers: amqp091.Table{
				"x-original-error": reason,
				"x-failed-queue":   queueName,
				"x-failed-at":      connectionName,
			},
		},
	)
}

// truncateReason 截断到 max 字节以内，不拆开多字节字符
func truncateReason(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

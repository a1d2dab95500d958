// Package notifier publishes push notification payloads to RabbitMQ, where
// a separate delivery worker fans them out to APNs/FCM.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// PushMessage is the payload handed to the delivery worker.
type PushMessage struct {
	DeviceTokens []string  `json:"device_tokens"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	QueuedAt     time.Time `json:"queued_at"`
}

// PushPublisher publishes push payloads to a fanout exchange.
type PushPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPushPublisher connects to RabbitMQ and declares the push exchange.
func NewPushPublisher(url, exchange string) (*PushPublisher, error) {
	p := &PushPublisher{
		url:      url,
		exchange: exchange,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PushPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch

	log.WithField("exchange", p.exchange).Info("Connected push publisher to RabbitMQ")
	return nil
}

// Send publishes one push payload. A dead connection is re-dialed once
// before giving up.
func (p *PushPublisher) Send(ctx context.Context, deviceTokens []string, title, body string) error {
	if len(deviceTokens) == 0 {
		return nil
	}

	payload, err := json.Marshal(PushMessage{
		DeviceTokens: deviceTokens,
		Title:        title,
		Body:         body,
		QueuedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		"",    // routing key ignored by fanout
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish push message: %w", err)
	}

	return nil
}

// Close shuts down the channel and connection.
func (p *PushPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

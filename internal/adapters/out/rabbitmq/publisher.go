// Package rabbitmq broadcasts committed status changes to other marketplace
// services over a fanout exchange.
package rabbitmq

import (
	"log/slog"

	"parceltrack/internal/core/domain/events"

	"github.com/streadway/amqp"
)

// StatusExchange is the fanout exchange delivery status changes are
// broadcast on.
const StatusExchange = "parceltrack.delivery.status"

// Publisher publishes StatusChanged events to RabbitMQ. Implements
// events.StatusListener; publishing is best effort and never blocks a
// transition from committing.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// NewPublisher connects to RabbitMQ and declares the status exchange.
func NewPublisher(amqpURL string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(
		StatusExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		logger:  logger.With("component", "rabbitmq_publisher"),
	}, nil
}

// OnStatusChanged broadcasts one committed transition as a status frame.
// A broker failure is logged and swallowed; the local commit already
// happened and consumers reconcile through the backend anyway.
func (p *Publisher) OnStatusChanged(event events.StatusChanged) {
	body, err := events.MarshalFrame(event)
	if err != nil {
		p.logger.Error("Failed to encode status event", "error", err)
		return
	}

	err = p.channel.Publish(
		StatusExchange,
		"",    // routing key, ignored by fanout
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish status event",
			"deliveryId", event.DeliveryID.String(), "error", err)
	}
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

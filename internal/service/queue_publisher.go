// Package queue_publisher publishes domain events to RabbitMQ.
// Publishing is best effort: errors are logged and returned so callers
// can drop them without interrupting the request that produced the
// event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/launchform/intake-api/internal/queue"
)

// PublishProjectSubmitted publishes a ProjectSubmittedEvent to the
// intake.project.submitted queue.
func PublishProjectSubmitted(ctx context.Context, event q.ProjectSubmittedEvent) error {
	return publish(ctx, q.SubmittedQueue, event)
}

// PublishPaymentReconciled publishes a PaymentReconciledEvent to the
// intake.payment.reconciled queue.
func PublishPaymentReconciled(ctx context.Context, event q.PaymentReconciledEvent) error {
	return publish(ctx, q.ReconciledQueue, event)
}

// publish dials the broker, declares the durable queue (idempotent)
// and sends one persistent JSON message.  It never panics; any error
// is logged and returned.
func publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

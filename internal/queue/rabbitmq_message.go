package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message pairs a decoded Job with the delivery it arrived on so the
// worker can ack or nack it.
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// Ack marks the delivery as processed
func (m *Message) Ack() error {
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack rejects the delivery, optionally putting it back on the queue
func (m *Message) Nack(requeue bool) error {
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the decoded job
func (m *Message) GetJob() *Job {
	return m.Job
}

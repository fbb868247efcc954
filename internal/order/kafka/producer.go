package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-orders/internal/models"
)

// Topics carrying the order lifecycle stream.
const (
	TopicOrderCreated  = "order_created"
	TopicStatusChanged = "order_status_changed"
)

type statusEvent struct {
	ID        string        `json:"id"`
	Status    models.Status `json:"status"`
	ChangedAt time.Time     `json:"changedAt"`
}

// Producer streams order events. Publishing is best-effort everywhere it is
// called; a broker outage never affects a submission.
type Producer struct {
	created *kafka.Writer
	status  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		created: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   TopicOrderCreated,
		}),
		status: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   TopicStatusChanged,
		}),
	}
}

func (p *Producer) PublishOrderCreated(order models.Order) error {
	msgBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return p.created.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(order.ID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishStatusChanged(id string, status models.Status) error {
	msgBytes, err := json.Marshal(statusEvent{
		ID:        id,
		Status:    status,
		ChangedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.status.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(id),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if err := p.created.Close(); err != nil {
		return err
	}
	return p.status.Close()
}

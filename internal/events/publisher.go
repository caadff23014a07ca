package events

import (
	"encoding/json"
	"time"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/kafka"
	"github.com/codform/order-api/pkg/logger"
)

// Event types published to the orders topic.
const (
	EventOrderCreated   = "order_created"
	EventOrderConfirmed = "order_confirmed"
)

// Publisher emits order lifecycle events for downstream reporting.
// Publishing is strictly fire-and-forget: the order intake path never
// fails because an event could not be delivered.
type Publisher interface {
	PublishOrderCreated(shopDomain string, order *models.Order)
	PublishOrderConfirmed(shopDomain string, order *models.Order)
}

// OrderEvent is the JSON envelope on the wire.
type OrderEvent struct {
	Type        string    `json:"type"`
	ShopDomain  string    `json:"shop_domain"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// KafkaPublisher publishes order events through a sarama producer,
// keyed by shop domain so one merchant's events stay ordered.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   logger.Logger
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(producer *kafka.Producer, topic string, logger logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (p *KafkaPublisher) PublishOrderCreated(shopDomain string, order *models.Order) {
	p.publish(EventOrderCreated, shopDomain, order)
}

func (p *KafkaPublisher) PublishOrderConfirmed(shopDomain string, order *models.Order) {
	p.publish(EventOrderConfirmed, shopDomain, order)
}

func (p *KafkaPublisher) publish(eventType, shopDomain string, order *models.Order) {
	event := OrderEvent{
		Type:        eventType,
		ShopDomain:  shopDomain,
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  models.GetCurrentTime(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal order event", "error", err, "orderID", order.ID)
		return
	}

	if err := p.producer.SendMessage(p.topic, shopDomain, payload); err != nil {
		p.logger.Warn("Order event not published",
			"error", err,
			"type", eventType,
			"orderID", order.ID)
	}
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(string, *models.Order)   {}
func (NopPublisher) PublishOrderConfirmed(string, *models.Order) {}

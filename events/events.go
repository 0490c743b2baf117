// Package events publishes order domain events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	OrderCreated               = "order.created"
	OrderPaymentStatusChanged  = "order.payment_status_changed"
	OrderDeliveryStatusChanged = "order.delivery_status_changed"
	OrderCancelled             = "order.cancelled"
)

// Envelope is the wire format of every event, version 1
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     uint   `json:"order_id"`
	CustomerID  uint   `json:"customer_id"`
	ProviderID  uint   `json:"provider_id"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

type StatusChangedPayload struct {
	OrderID    uint   `json:"order_id"`
	ProviderID uint   `json:"provider_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	ChangedBy  uint   `json:"changed_by"`
}

type OrderCancelledPayload struct {
	OrderID    uint `json:"order_id"`
	CustomerID uint `json:"customer_id"`
	ProviderID uint `json:"provider_id"`
}

// Publisher delivers events after the state change has been committed
type Publisher interface {
	Publish(ctx context.Context, ev Envelope) error
	Close() error
}

// NewEnvelope stamps a payload with id, type and time. Orders are correlated by id.
func NewEnvelope(eventType, producer string, orderID uint, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: fmt.Sprintf("%d", orderID),
		Payload:       raw,
	}, nil
}

// Emitter builds envelopes and hands them to a Publisher. Failures are logged, never returned.
type Emitter struct {
	pub      Publisher
	producer string
	log      *logrus.Logger
}

func NewEmitter(pub Publisher, producer string, log *logrus.Logger) *Emitter {
	return &Emitter{pub: pub, producer: producer, log: log}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, orderID uint, payload any) {
	if e == nil || e.pub == nil {
		return
	}
	ev, err := NewEnvelope(eventType, e.producer, orderID, payload)
	if err == nil {
		err = e.pub.Publish(ctx, ev)
	}
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"event_type": eventType,
			"order_id":   orderID,
		}).Warn("failed to publish event")
	}
}

package models

import (
	"errors"
	"time"
)

// ErrOrderNotFound is returned when an order id is absent from a storage tier.
var ErrOrderNotFound = errors.New("order not found")

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// KnownStatus reports whether s is one of the defined order statuses.
func KnownStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ValidTransition reports whether from → to follows the usual lifecycle
// (pending → confirmed → delivered, cancellation from pending or confirmed).
// The stores themselves apply any target status; this is advisory for the
// admin-facing layer, which logs illegal jumps instead of rejecting them.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusDelivered || to == StatusCancelled
	}
	return false
}

type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Order is the aggregate record shared by both storage tiers. Payload holds
// the submitted form attributes and is never interpreted by the persistence
// layer; it travels as part of the serialized blob.
type Order struct {
	ID        string         `json:"id"`
	Status    Status         `json:"status"`
	Payload   map[string]any `json:"payload"`
	Items     []LineItem     `json:"items"`
	Total     int64          `json:"total"`
	CreatedAt time.Time      `json:"createdAt"`
}

// StatusUpdate is the result of a reconciled status change. Durable tells
// a diagnostic-minded caller which tier absorbed the write; functionally
// both outcomes are success.
type StatusUpdate struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	Durable bool   `json:"durable"`
}

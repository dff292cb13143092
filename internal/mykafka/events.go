package mykafka

import "time"

const (
	TopicCart    = "cart_events"
	TopicProduct = "product_events"
)

const (
	CartItemAdded   = "cart_item_added"
	CartItemUpdated = "cart_item_updated"
	CartItemRemoved = "cart_item_removed"
	CartCleared     = "cart_cleared"

	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"
)

type CartEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"userID"`
	ProductID  uint      `json:"productID,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Price      string    `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uint      `json:"productID"`
	OwnerID    uint      `json:"ownerID"`
	Name       string    `json:"name,omitempty"`
	Price      string    `json:"price,omitempty"`
	IsActive   bool      `json:"isActive"`
	OccurredAt time.Time `json:"occurredAt"`
}

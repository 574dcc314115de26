package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderOpen, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

type ItemStatus string

const (
	ItemOrdered   ItemStatus = "ORDERED"
	ItemPreparing ItemStatus = "PREPARING"
	ItemReady     ItemStatus = "READY"
	ItemServed    ItemStatus = "SERVED"
	ItemCancelled ItemStatus = "CANCELLED"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemOrdered, ItemPreparing, ItemReady, ItemServed, ItemCancelled:
		return true
	}
	return false
}

// OrderItem is a single product line. Name, Price and Category are captured
// from the catalog when the item is added.
type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Category  string             `bson:"category" json:"category"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Status    ItemStatus         `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	StartedAt *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	ReadyAt   *time.Time         `bson:"readyAt,omitempty" json:"readyAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Order defines the persisted order document. Items are embedded so they are
// removed together with the order.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TableID   primitive.ObjectID `bson:"tableId" json:"tableId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Status    OrderStatus        `bson:"status" json:"status"`
	Items     []OrderItem        `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	ClosedAt  *time.Time         `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
}

// ItemIndex returns the position of the item with the given id, or -1.
func (o *Order) ItemIndex(itemID primitive.ObjectID) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Total sums quantity × price over the items that were not cancelled.
func (o *Order) Total() float64 {
	total := 0.0
	for _, item := range o.Items {
		if item.Status == ItemCancelled {
			continue
		}
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// UsesProduct reports whether any item references productID.
func (o *Order) UsesProduct(productID primitive.ObjectID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

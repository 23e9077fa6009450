package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fulfillment labels. Status is set by administrative action only and is
// independent of the payment flag.
const (
	StatusPending        = "Food pending"
	StatusPreparing      = "Food preparing"
	StatusOutForDelivery = "Out for delivery"
	StatusDelivered      = "Delivered"
)

// ValidStatus reports whether s is one of the known fulfillment labels.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// LineItem is an order's snapshot of one purchased item at creation time.
// Later catalog changes do not affect it.
type LineItem struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// Address is the delivery address captured with an order.
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipcode" json:"zipcode"`
	Country string `bson:"country" json:"country"`
	Phone   string `bson:"phone" json:"phone"`
}

// Order is created unpaid at placement time. Payment flips to true on
// confirmation; a failed payment deletes the record instead of keeping a
// terminal state.
type Order struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	Items   []LineItem         `bson:"items" json:"items"`
	Amount  float64            `bson:"amount" json:"amount"`
	Address Address            `bson:"address" json:"address"`
	Status  string             `bson:"status" json:"status"`
	Date    time.Time          `bson:"date" json:"date"`
	Payment bool               `bson:"payment" json:"payment"`
}

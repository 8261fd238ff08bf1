package models

import "time"

// OrderStatus is the lifecycle state of a composite order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Address is where the work is performed; State drives the sales-tax rate.
type Address struct {
	Street  string `bson:"street" json:"street" binding:"required"`
	City    string `bson:"city" json:"city" binding:"required"`
	State   string `bson:"state" json:"state" binding:"required"`
	Zip     string `bson:"zip" json:"zip" binding:"required"`
	Country string `bson:"country" json:"country"`
}

// CompositeOrder combines address, description and date with one or more priced works.
type CompositeOrder struct {
	ID              string         `bson:"id" json:"id"`
	Code            string         `bson:"code" json:"code"`
	UserID          string         `bson:"userId" json:"userId"`
	Address         Address        `bson:"address" json:"address"`
	Description     string         `bson:"description" json:"description"`
	Date            string         `bson:"date" json:"date"`
	TimeCoefficient float64        `bson:"timeCoefficient" json:"timeCoefficient"`
	Works           []WorkEstimate `bson:"works" json:"works"`
	Estimate        Estimate       `bson:"estimate" json:"estimate"`
	Photos          []string       `bson:"photos" json:"photos,omitempty"`
	Status          OrderStatus    `bson:"status" json:"status"`
	PaymentIntentID string         `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	// PaymentClientSecret is handed to the client once and never stored.
	PaymentClientSecret string    `bson:"-" json:"paymentClientSecret,omitempty"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Address     Address        `json:"address" binding:"required"`
	Description string         `json:"description"`
	Date        string         `json:"date" binding:"required"`
	Items       []EstimateItem `json:"items" binding:"required"`
	Photos      []string       `json:"photos"`
}

// ChangeDateRequest moves an order to a new service date.
type ChangeDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// StatusUpdateRequest is used by administrators to advance an order.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

package models

import "time"

// OrderStatus represents the lifecycle stage of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "outfordelivery"
	StatusDelivered      OrderStatus = "delivered"
)

// DeliveryDetails is copied into the order at checkout
type DeliveryDetails struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
}

// CartItem is a snapshot of a menu line; later menu edits never touch it
type CartItem struct {
	MenuID   string  `json:"menuId"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	Base
	UserID          string          `json:"userId" gorm:"not null;size:24;index"`
	User            *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	RestaurantID    string          `json:"restaurantId" gorm:"not null;size:24;index:idx_orders_restaurant_status,priority:1"`
	Restaurant      *Restaurant     `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails" gorm:"serializer:json;not null"`
	CartItems       []CartItem      `json:"cartItems" gorm:"serializer:json;not null"`
	TotalAmount     float64         `json:"totalAmount" gorm:"not null"`
	Status          OrderStatus     `json:"status" gorm:"not null;default:'pending';index:idx_orders_restaurant_status,priority:2"`
}

// OrderStatusChange is the audit trail of every status write
type OrderStatusChange struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"not null;size:24;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy" gorm:"size:24"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Checkout holds the cart snapshot between the hosted payment page and
// the provider's confirmation; the order is created from it on payment.
type Checkout struct {
	Base
	ProviderSessionID string          `json:"-" gorm:"uniqueIndex;size:255"`
	UserID            string          `json:"-" gorm:"not null;size:24"`
	RestaurantID      string          `json:"-" gorm:"not null;size:24"`
	DeliveryDetails   DeliveryDetails `json:"deliveryDetails" gorm:"serializer:json;not null"`
	CartItems         []CartItem      `json:"cartItems" gorm:"serializer:json;not null"`
	TotalAmount       float64         `json:"totalAmount"`
	OrderID           *string         `json:"orderId,omitempty" gorm:"size:24"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
}

// Live order event types
const (
	EventOrderCreated = "order.created"
	EventOrderStatus  = "order.status"
)

// OrderEvent is pushed to the owning restaurant when an order changes
type OrderEvent struct {
	Type  string `json:"type"`
	Order *Order `json:"order"`
}

package models

import "time"

type OrderStatus string
type PaymentStatus string
type DeliveryArea string

const (
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting handling
	OrderStatusProcessing OrderStatus = "processing" // Being packed / dispatched
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the items
	OrderStatusCancelled  OrderStatus = "cancelled"

	// Payment statuses; loosely coupled to the order status except that
	// entering "delivered" marks the order paid.
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"

	// Delivery area tiers, each with a flat configured charge.
	DeliveryAreaInside  DeliveryArea = "inside"
	DeliveryAreaOutside DeliveryArea = "outside"
)

type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	OrderNumber     string        `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          string        `gorm:"index;not null" json:"user_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	DeliveryAddress string        `json:"delivery_address"`
	DeliveryArea    DeliveryArea  `gorm:"type:VARCHAR(10)" json:"delivery_area"`
	DeliveryCharge  float64       `json:"delivery_charge"`
	Subtotal        float64       `json:"subtotal"`
	Total           float64       `json:"total"`
	PaymentMethod   string        `json:"payment_method"` // e.g. "cod", "card"
	PaymentStatus   PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	Status          OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	Notes           string        `json:"notes,omitempty"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// OrderItem is a frozen snapshot of a cart line at checkout. Title, price
// and image are copied, never re-derived, so later catalog edits cannot
// change historical orders.
type OrderItem struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	OrderID          uint         `gorm:"index" json:"-"`
	ProductID        uint         `json:"product_id"`
	Title            string       `json:"title"`
	Price            float64      `json:"price"`
	Quantity         int          `json:"quantity"`
	Image            string       `json:"image,omitempty"`
	SelectedColor    *string      `json:"selected_color,omitempty"`
	SelectedSize     *string      `json:"selected_size,omitempty"`
	SelectedVariant  *VariantRef  `gorm:"type:jsonb" json:"selected_variant,omitempty"`
	CustomSelections SelectionMap `gorm:"type:jsonb" json:"custom_selections,omitempty"`
}

// StockAdjustment is one signed stock mutation produced by a status
// transition.
type StockAdjustment struct {
	ProductID uint
	Delta     int
}

// StockAdjustments encodes the inventory side effects of a status
// transition as a closed table over (prev, next): entering "delivered"
// decrements each item's parent product by its quantity, leaving
// "delivered" increments it back, every other pair moves no stock. The
// guard is the previous status, so repeating a transition is a stock no-op.
func StockAdjustments(prev, next OrderStatus, items []OrderItem) []StockAdjustment {
	entering := next == OrderStatusDelivered && prev != OrderStatusDelivered
	leaving := prev == OrderStatusDelivered && next != OrderStatusDelivered
	if !entering && !leaving {
		return nil
	}
	sign := -1
	if leaving {
		sign = 1
	}
	adjustments := make([]StockAdjustment, 0, len(items))
	for _, item := range items {
		adjustments = append(adjustments, StockAdjustment{
			ProductID: item.ProductID,
			Delta:     sign * item.Quantity,
		})
	}
	return adjustments
}

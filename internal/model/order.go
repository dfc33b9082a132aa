package model

import "time"

// OrderStatus is the lifecycle state of an order. Orders are created in
// StatusPending; transitions happen only through admin action on the backend.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Order represents a customer order as returned by the backend.
// OrderNumber follows the GRP-YYYYMMDD-NNNN format and is the public
// identifier used for confirmation pages.
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerEmail   string      `json:"customerEmail"`
	DeliveryAddress string      `json:"deliveryAddress"`
	DeliveryZone    string      `json:"deliveryZone"`
	DeliveryFee     int         `json:"deliveryFee"`
	TotalAmount     int         `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is a line of an order. Price is the unit price captured at
// order time; later product price changes never alter historical orders.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
}

// Subtotal returns quantity times the captured unit price.
func (i OrderItem) Subtotal() int {
	return i.Price * i.Quantity
}

// DeliveryZone represents a deliverable area with its flat fee.
// Inactive zones are hidden from storefront selection.
type DeliveryZone struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

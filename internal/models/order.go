package models

import (
	"database/sql"
	"time"
)

// OrderStatus enumerates the lifecycle of a COD order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusRTO       OrderStatus = "rto"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known statuses.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered,
		OrderStatusRTO, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the unit of record for a single COD purchase attempt.
// TotalAmount is fixed at creation time; ShopifyOrderID and
// ShopifyOrderNumber are either both empty or both set.
type Order struct {
	ID                 string         `db:"id" json:"id"`
	StoreID            string         `db:"store_id" json:"store_id"`
	CustomerName       string         `db:"customer_name" json:"customer_name"`
	CustomerPhone      string         `db:"customer_phone" json:"customer_phone"`
	CustomerAddress    string         `db:"customer_address" json:"customer_address"`
	CustomerCity       string         `db:"customer_city" json:"customer_city"`
	CustomerPincode    string         `db:"customer_pincode" json:"customer_pincode"`
	CustomerState      sql.NullString `db:"customer_state" json:"customer_state,omitempty"`
	CustomerEmail      string         `db:"customer_email" json:"customer_email"`
	ProductID          string         `db:"product_id" json:"product_id"`
	ProductTitle       string         `db:"product_title" json:"product_title"`
	ProductPrice       float64        `db:"product_price" json:"product_price"`
	ProductVariantID   sql.NullString `db:"product_variant_id" json:"product_variant_id,omitempty"`
	ProductImage       sql.NullString `db:"product_image" json:"product_image,omitempty"`
	Quantity           int            `db:"quantity" json:"quantity"`
	TotalAmount        float64        `db:"total_amount" json:"total_amount"`
	Status             string         `db:"status" json:"status"`
	ShopifyOrderID     sql.NullString `db:"shopify_order_id" json:"shopify_order_id,omitempty"`
	ShopifyOrderNumber sql.NullString `db:"shopify_order_number" json:"shopify_order_number,omitempty"`
	IPAddress          string         `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent          string         `db:"user_agent" json:"user_agent,omitempty"`
	DeviceType         string         `db:"device_type" json:"device_type,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// OrderInput is a normalized, validated submission ready to persist.
// It is produced by the intake validator, never from raw request data.
type OrderInput struct {
	ShopDomain       string
	CustomerName     string
	CustomerPhone    string
	CustomerAddress  string
	CustomerCity     string
	CustomerPincode  string
	CustomerState    string
	CustomerEmail    string
	ProductID        string
	ProductTitle     string
	ProductPrice     float64
	ProductVariantID string
	ProductImage     string
	Quantity         int
	IPAddress        string
	UserAgent        string
	DeviceType       string
}

// TotalAmount computes the order total. The value is stored on the
// order row at creation and never recomputed afterwards.
func (in *OrderInput) TotalAmount() float64 {
	return in.ProductPrice * float64(in.Quantity)
}

// NewOrder builds a pending Order from normalized input.
func NewOrder(storeID string, in *OrderInput) *Order {
	now := GetCurrentTime()

	return &Order{
		ID:               GenerateID("ord"),
		StoreID:          storeID,
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		CustomerAddress:  in.CustomerAddress,
		CustomerCity:     in.CustomerCity,
		CustomerPincode:  in.CustomerPincode,
		CustomerState:    nullString(in.CustomerState),
		CustomerEmail:    in.CustomerEmail,
		ProductID:        in.ProductID,
		ProductTitle:     in.ProductTitle,
		ProductPrice:     in.ProductPrice,
		ProductVariantID: nullString(in.ProductVariantID),
		ProductImage:     nullString(in.ProductImage),
		Quantity:         in.Quantity,
		TotalAmount:      in.TotalAmount(),
		Status:           string(OrderStatusPending),
		IPAddress:        in.IPAddress,
		UserAgent:        in.UserAgent,
		DeviceType:       in.DeviceType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// OrderStats aggregates a merchant's order counts and revenue.
type OrderStats struct {
	TotalOrders     int     `db:"total_orders" json:"total_orders"`
	PendingOrders   int     `db:"pending_orders" json:"pending_orders"`
	ConfirmedOrders int     `db:"confirmed_orders" json:"confirmed_orders"`
	DeliveredOrders int     `db:"delivered_orders" json:"delivered_orders"`
	RTOOrders       int     `db:"rto_orders" json:"rto_orders"`
	TotalRevenue    float64 `db:"total_revenue" json:"total_revenue"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package models

import (
	"strings"
	"testing"
)

func TestNewOrder(t *testing.T) {
	in := &OrderInput{
		ShopDomain:      "test-shop.myshopify.com",
		CustomerName:    "Jane Doe",
		CustomerPhone:   "9876543210",
		CustomerAddress: "12 MG Road",
		CustomerCity:    "Bengaluru",
		CustomerPincode: "560001",
		CustomerEmail:   "jane@example.com",
		ProductID:       "prod-1",
		ProductTitle:    "Widget",
		ProductPrice:    199.50,
		Quantity:        3,
	}

	order := NewOrder("str-abc12345", in)

	if !strings.HasPrefix(order.ID, "ord-") {
		t.Errorf("ID = %q, want ord- prefix", order.ID)
	}
	if order.StoreID != "str-abc12345" {
		t.Errorf("StoreID = %q", order.StoreID)
	}
	if order.Status != string(OrderStatusPending) {
		t.Errorf("Status = %q, want pending", order.Status)
	}
	if order.TotalAmount != 598.50 {
		t.Errorf("TotalAmount = %v, want 598.50", order.TotalAmount)
	}
	if order.CustomerState.Valid {
		t.Error("empty state should be null")
	}
	if order.ShopifyOrderID.Valid {
		t.Error("new order should not carry a Shopify order id")
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "delivered", "rto", "cancelled"} {
		if !ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%q) = false, want true", s)
		}
	}

	for _, s := range []string{"", "shipped", "PENDING", "done"} {
		if ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%q) = true, want false", s)
		}
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID("ord")
	b := GenerateID("ord")

	if !strings.HasPrefix(a, "ord-") {
		t.Errorf("GenerateID = %q, want ord- prefix", a)
	}
	if len(a) != len("ord-")+8 {
		t.Errorf("GenerateID = %q, want 8 character suffix", a)
	}
	if a == b {
		t.Error("expected unique IDs")
	}
}

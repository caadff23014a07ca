package models

import (
	"testing"
	"time"
)

func TestPlanWithinLimit(t *testing.T) {
	tests := []struct {
		name  string
		plan  Plan
		count int
		want  bool
	}{
		{"free under limit", PlanFree, 0, true},
		{"free one below limit", PlanFree, 59, true},
		{"free at limit", PlanFree, 60, false},
		{"free over limit", PlanFree, 100, false},
		{"pro under limit", PlanPro, 499, true},
		{"pro at limit", PlanPro, 500, false},
		{"unlimited never limited", PlanUnlimited, 1000000, true},
		{"unknown plan treated as free", Plan("enterprise"), 59, true},
		{"unknown plan at free limit", Plan("enterprise"), 60, false},
		{"empty plan treated as free", Plan(""), 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.WithinLimit(tt.count); got != tt.want {
				t.Errorf("WithinLimit(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestNewStoreDefaults(t *testing.T) {
	store := NewStore("test-shop.myshopify.com")

	if store.ShopDomain != "test-shop.myshopify.com" {
		t.Errorf("ShopDomain = %q", store.ShopDomain)
	}
	if !store.FormEnabled {
		t.Error("new store should have the form enabled")
	}
	if store.Plan != string(PlanFree) {
		t.Errorf("Plan = %q, want %q", store.Plan, PlanFree)
	}
	if store.OrdersThisMonth != 0 {
		t.Errorf("OrdersThisMonth = %d, want 0", store.OrdersThisMonth)
	}
	if store.ButtonText != "Cash on Delivery" {
		t.Errorf("ButtonText = %q", store.ButtonText)
	}
	if store.ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestStoreApply(t *testing.T) {
	store := NewStore("test-shop.myshopify.com")

	enabled := false
	text := "Buy with COD"
	store.Apply(&SettingsUpdate{
		FormEnabled: &enabled,
		ButtonText:  &text,
	})

	if store.FormEnabled {
		t.Error("FormEnabled should be false after update")
	}
	if store.ButtonText != "Buy with COD" {
		t.Errorf("ButtonText = %q", store.ButtonText)
	}
	if store.LabelName != "Full Name" {
		t.Errorf("untouched field changed: LabelName = %q", store.LabelName)
	}
}

func TestPublicSettingsProjection(t *testing.T) {
	store := NewStore("test-shop.myshopify.com")
	store.AccessToken = "shpat_secret"
	store.OrdersThisMonth = 42

	got := store.PublicSettings()

	if got.ButtonText != store.ButtonText {
		t.Errorf("ButtonText = %q, want %q", got.ButtonText, store.ButtonText)
	}
	if got.FormEnabled != store.FormEnabled {
		t.Errorf("FormEnabled = %v", got.FormEnabled)
	}
}

func TestSameMonth(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{
			"same month",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC),
			true,
		},
		{
			"different month same year",
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"same month different year",
			time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameMonth(tt.a, tt.b); got != tt.want {
				t.Errorf("SameMonth = %v, want %v", got, tt.want)
			}
		})
	}
}

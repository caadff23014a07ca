package models

import (
	"time"
)

// Plan is a merchant's subscription tier.
type Plan string

const (
	PlanFree      Plan = "free"
	PlanPro       Plan = "pro"
	PlanUnlimited Plan = "unlimited"
)

// Monthly order limits per plan.
const (
	FreePlanLimit = 60
	ProPlanLimit  = 500
)

// WithinLimit reports whether a merchant with the given current-month
// order count may record another order. Unknown plan values behave as
// free, which keeps a corrupted or future plan string from granting
// unlimited orders.
func (p Plan) WithinLimit(ordersThisMonth int) bool {
	switch p {
	case PlanUnlimited:
		return true
	case PlanPro:
		return ordersThisMonth < ProPlanLimit
	case PlanFree:
		return ordersThisMonth < FreePlanLimit
	default:
		return ordersThisMonth < FreePlanLimit
	}
}

// Store holds a merchant's settings and quota counters. This service
// consumes the form/plan/quota fields; the widget display fields are
// served read-only to the storefront.
type Store struct {
	ID              string    `db:"id" json:"id"`
	ShopDomain      string    `db:"shop_domain" json:"shop_domain"`
	AccessToken     string    `db:"access_token" json:"-"`
	FormEnabled     bool      `db:"form_enabled" json:"form_enabled"`
	Plan            string    `db:"plan" json:"plan"`
	OrdersThisMonth int       `db:"orders_this_month" json:"orders_this_month"`
	MonthResetDate  time.Time `db:"month_reset_date" json:"month_reset_date"`
	ButtonText      string    `db:"button_text" json:"button_text"`
	ButtonColor     string    `db:"button_color" json:"button_color"`
	ButtonTextColor string    `db:"button_text_color" json:"button_text_color"`
	ShowName        bool      `db:"show_name" json:"show_name"`
	ShowPhone       bool      `db:"show_phone" json:"show_phone"`
	ShowAddress     bool      `db:"show_address" json:"show_address"`
	ShowCity        bool      `db:"show_city" json:"show_city"`
	ShowPincode     bool      `db:"show_pincode" json:"show_pincode"`
	ShowState       bool      `db:"show_state" json:"show_state"`
	LabelName       string    `db:"label_name" json:"label_name"`
	LabelPhone      string    `db:"label_phone" json:"label_phone"`
	LabelAddress    string    `db:"label_address" json:"label_address"`
	LabelCity       string    `db:"label_city" json:"label_city"`
	LabelPincode    string    `db:"label_pincode" json:"label_pincode"`
	LabelState      string    `db:"label_state" json:"label_state"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// NewStore builds a store with the default widget settings. Created on
// first contact with an unknown shop domain.
func NewStore(shopDomain string) *Store {
	now := GetCurrentTime()

	return &Store{
		ID:              GenerateID("str"),
		ShopDomain:      shopDomain,
		FormEnabled:     true,
		Plan:            string(PlanFree),
		OrdersThisMonth: 0,
		MonthResetDate:  now,
		ButtonText:      "Cash on Delivery",
		ButtonColor:     "#000000",
		ButtonTextColor: "#ffffff",
		ShowName:        true,
		ShowPhone:       true,
		ShowAddress:     true,
		ShowCity:        true,
		ShowPincode:     true,
		ShowState:       false,
		LabelName:       "Full Name",
		LabelPhone:      "Phone Number",
		LabelAddress:    "Address",
		LabelCity:       "City",
		LabelPincode:    "Pincode",
		LabelState:      "State",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// PublicSettings is the read-only projection served to the storefront
// widget. It never exposes plan, quota or token fields.
type PublicSettings struct {
	FormEnabled     bool   `json:"formEnabled"`
	ButtonText      string `json:"buttonText"`
	ButtonColor     string `json:"buttonColor"`
	ButtonTextColor string `json:"buttonTextColor"`
	ShowName        bool   `json:"showName"`
	ShowPhone       bool   `json:"showPhone"`
	ShowAddress     bool   `json:"showAddress"`
	ShowCity        bool   `json:"showCity"`
	ShowPincode     bool   `json:"showPincode"`
	ShowState       bool   `json:"showState"`
	LabelName       string `json:"labelName"`
	LabelPhone      string `json:"labelPhone"`
	LabelAddress    string `json:"labelAddress"`
	LabelCity       string `json:"labelCity"`
	LabelPincode    string `json:"labelPincode"`
	LabelState      string `json:"labelState"`
}

// PublicSettings returns the widget projection of s.
func (s *Store) PublicSettings() PublicSettings {
	return PublicSettings{
		FormEnabled:     s.FormEnabled,
		ButtonText:      s.ButtonText,
		ButtonColor:     s.ButtonColor,
		ButtonTextColor: s.ButtonTextColor,
		ShowName:        s.ShowName,
		ShowPhone:       s.ShowPhone,
		ShowAddress:     s.ShowAddress,
		ShowCity:        s.ShowCity,
		ShowPincode:     s.ShowPincode,
		ShowState:       s.ShowState,
		LabelName:       s.LabelName,
		LabelPhone:      s.LabelPhone,
		LabelAddress:    s.LabelAddress,
		LabelCity:       s.LabelCity,
		LabelPincode:    s.LabelPincode,
		LabelState:      s.LabelState,
	}
}

// SettingsUpdate carries a partial settings change from the dashboard.
// Nil fields are left untouched.
type SettingsUpdate struct {
	FormEnabled     *bool   `json:"formEnabled,omitempty"`
	ButtonText      *string `json:"buttonText,omitempty"`
	ButtonColor     *string `json:"buttonColor,omitempty"`
	ButtonTextColor *string `json:"buttonTextColor,omitempty"`
	ShowName        *bool   `json:"showName,omitempty"`
	ShowPhone       *bool   `json:"showPhone,omitempty"`
	ShowAddress     *bool   `json:"showAddress,omitempty"`
	ShowCity        *bool   `json:"showCity,omitempty"`
	ShowPincode     *bool   `json:"showPincode,omitempty"`
	ShowState       *bool   `json:"showState,omitempty"`
	LabelName       *string `json:"labelName,omitempty"`
	LabelPhone      *string `json:"labelPhone,omitempty"`
	LabelAddress    *string `json:"labelAddress,omitempty"`
	LabelCity       *string `json:"labelCity,omitempty"`
	LabelPincode    *string `json:"labelPincode,omitempty"`
	LabelState      *string `json:"labelState,omitempty"`
}

// Apply copies the non-nil fields of u onto s.
func (s *Store) Apply(u *SettingsUpdate) {
	if u.FormEnabled != nil {
		s.FormEnabled = *u.FormEnabled
	}
	if u.ButtonText != nil {
		s.ButtonText = *u.ButtonText
	}
	if u.ButtonColor != nil {
		s.ButtonColor = *u.ButtonColor
	}
	if u.ButtonTextColor != nil {
		s.ButtonTextColor = *u.ButtonTextColor
	}
	if u.ShowName != nil {
		s.ShowName = *u.ShowName
	}
	if u.ShowPhone != nil {
		s.ShowPhone = *u.ShowPhone
	}
	if u.ShowAddress != nil {
		s.ShowAddress = *u.ShowAddress
	}
	if u.ShowCity != nil {
		s.ShowCity = *u.ShowCity
	}
	if u.ShowPincode != nil {
		s.ShowPincode = *u.ShowPincode
	}
	if u.ShowState != nil {
		s.ShowState = *u.ShowState
	}
	if u.LabelName != nil {
		s.LabelName = *u.LabelName
	}
	if u.LabelPhone != nil {
		s.LabelPhone = *u.LabelPhone
	}
	if u.LabelAddress != nil {
		s.LabelAddress = *u.LabelAddress
	}
	if u.LabelCity != nil {
		s.LabelCity = *u.LabelCity
	}
	if u.LabelPincode != nil {
		s.LabelPincode = *u.LabelPincode
	}
	if u.LabelState != nil {
		s.LabelState = *u.LabelState
	}
	s.UpdatedAt = GetCurrentTime()
}

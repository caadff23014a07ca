package intake

import (
	"context"
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/apperrors"
)

// Customer is the raw customer block of a widget submission.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
	State   string `json:"state"`
	Email   string `json:"email"`
}

// Product is the raw product block of a widget submission.
type Product struct {
	ID        string  `json:"id" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	VariantID string  `json:"variantId"`
	Image     string  `json:"image"`
}

// Submission is the raw request body posted by the storefront widget.
type Submission struct {
	Shop     string   `json:"shop"`
	Customer Customer `json:"customer"`
	Product  Product  `json:"product"`
	Quantity int      `json:"quantity"`
}

// RequestMeta carries request metadata recorded alongside the order.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// StoreGetter fetches merchant settings for validation.
type StoreGetter interface {
	GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error)
}

// QuotaChecker answers whether a merchant may record another order.
type QuotaChecker interface {
	WithinLimit(ctx context.Context, shopDomain string) (bool, error)
}

// Validator turns raw submissions into normalized order input, or fails
// with a typed error the boundary handler can map to a response.
type Validator struct {
	stores      StoreGetter
	quota       QuotaChecker
	validate    *validatorv10.Validate
	emailDomain string
}

// NewValidator creates a Validator. platformDomain is the suffix used
// for placeholder customer emails.
func NewValidator(stores StoreGetter, quota QuotaChecker, platformDomain string) *Validator {
	return &Validator{
		stores:      stores,
		quota:       quota,
		validate:    validatorv10.New(),
		emailDomain: platformDomain,
	}
}

// Validate checks a submission in order: shop present, form enabled,
// quota available, customer fields, product fields. On success it
// returns normalized input with defaults applied.
func (v *Validator) Validate(ctx context.Context, sub *Submission, meta RequestMeta) (*models.OrderInput, error) {
	if strings.TrimSpace(sub.Shop) == "" {
		return nil, apperrors.NewValidationError("Shop is required")
	}

	store, err := v.stores.GetByDomain(ctx, sub.Shop)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load store settings")
	}

	if !store.FormEnabled {
		return nil, apperrors.NewFormDisabledError("COD form is disabled")
	}

	within, err := v.quota.WithinLimit(ctx, sub.Shop)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to check order limit")
	}
	if !within {
		return nil, apperrors.NewQuotaExceededError("Order limit reached. Please upgrade your plan.")
	}

	if err := v.validate.Struct(sub); err != nil {
		return nil, classifyFieldErrors(err)
	}

	quantity := sub.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	email := sub.Customer.Email
	if email == "" {
		email = PlaceholderEmail(sub.Customer.Phone, v.emailDomain)
	}

	return &models.OrderInput{
		ShopDomain:       sub.Shop,
		CustomerName:     sub.Customer.Name,
		CustomerPhone:    sub.Customer.Phone,
		CustomerAddress:  sub.Customer.Address,
		CustomerCity:     sub.Customer.City,
		CustomerPincode:  sub.Customer.Pincode,
		CustomerState:    sub.Customer.State,
		CustomerEmail:    email,
		ProductID:        sub.Product.ID,
		ProductTitle:     sub.Product.Title,
		ProductPrice:     sub.Product.Price,
		ProductVariantID: sub.Product.VariantID,
		ProductImage:     sub.Product.Image,
		Quantity:         quantity,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		DeviceType:       ClassifyDevice(meta.UserAgent),
	}, nil
}

// classifyFieldErrors collapses validator field errors into the two
// user-facing messages the widget understands. Customer problems win
// when both blocks are incomplete.
func classifyFieldErrors(err error) error {
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}

	product := false
	for _, fe := range ve {
		ns := fe.StructNamespace()
		if strings.HasPrefix(ns, "Submission.Customer") {
			return apperrors.NewValidationError("Missing required customer fields")
		}
		if strings.HasPrefix(ns, "Submission.Product") {
			product = true
		}
	}

	if product {
		return apperrors.NewValidationError("Missing required product fields")
	}

	return apperrors.NewValidationError("Invalid submission")
}

// PlaceholderEmail derives the deterministic stand-in email used when a
// customer submits no address, e.g. "9876543210@cod.codform.app".
func PlaceholderEmail(phone, platformDomain string) string {
	return fmt.Sprintf("%s@cod.%s", phone, platformDomain)
}

// ClassifyDevice buckets a user-agent string into mobile, tablet or
// desktop. Matching is case-insensitive and mobile wins over tablet.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "mobile"):
		return "mobile"
	case strings.Contains(ua, "tablet"):
		return "tablet"
	default:
		return "desktop"
	}
}

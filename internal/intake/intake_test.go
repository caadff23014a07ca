package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/apperrors"
)

type fakeStoreGetter struct {
	store *models.Store
	err   error
}

func (f *fakeStoreGetter) GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	return f.store, f.err
}

type fakeQuotaChecker struct {
	within bool
	err    error
}

func (f *fakeQuotaChecker) WithinLimit(ctx context.Context, shopDomain string) (bool, error) {
	return f.within, f.err
}

func validSubmission() *Submission {
	return &Submission{
		Shop: "test-shop.myshopify.com",
		Customer: Customer{
			Name:    "Jane Doe",
			Phone:   "9876543210",
			Address: "12 MG Road",
			City:    "Bengaluru",
			Pincode: "560001",
		},
		Product: Product{
			ID:    "prod-1",
			Title: "Widget",
			Price: 199.50,
		},
		Quantity: 2,
	}
}

func newTestValidator(stores StoreGetter, quota QuotaChecker) *Validator {
	return NewValidator(stores, quota, "codform.app")
}

func TestValidateSuccess(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{store: models.NewStore("test-shop.myshopify.com")},
		&fakeQuotaChecker{within: true},
	)

	meta := RequestMeta{
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0 (iPhone) Mobile Safari",
	}

	in, err := v.Validate(context.Background(), validSubmission(), meta)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if in.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", in.Quantity)
	}
	if in.CustomerEmail != "9876543210@cod.codform.app" {
		t.Errorf("CustomerEmail = %q", in.CustomerEmail)
	}
	if in.DeviceType != "mobile" {
		t.Errorf("DeviceType = %q, want mobile", in.DeviceType)
	}
	if in.IPAddress != "203.0.113.7" {
		t.Errorf("IPAddress = %q", in.IPAddress)
	}
}

func TestValidateExplicitEmailKept(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{store: models.NewStore("test-shop.myshopify.com")},
		&fakeQuotaChecker{within: true},
	)

	sub := validSubmission()
	sub.Customer.Email = "jane@example.com"

	in, err := v.Validate(context.Background(), sub, RequestMeta{})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if in.CustomerEmail != "jane@example.com" {
		t.Errorf("CustomerEmail = %q, want submitted email", in.CustomerEmail)
	}
}

func TestValidateQuantityDefaultsToOne(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{store: models.NewStore("test-shop.myshopify.com")},
		&fakeQuotaChecker{within: true},
	)

	for _, q := range []int{0, -3} {
		sub := validSubmission()
		sub.Quantity = q

		in, err := v.Validate(context.Background(), sub, RequestMeta{})
		if err != nil {
			t.Fatalf("Validate(quantity=%d) returned error: %v", q, err)
		}
		if in.Quantity != 1 {
			t.Errorf("Quantity = %d, want 1", in.Quantity)
		}
	}
}

func TestValidateMissingShop(t *testing.T) {
	v := newTestValidator(&fakeStoreGetter{}, &fakeQuotaChecker{within: true})

	sub := validSubmission()
	sub.Shop = "  "

	_, err := v.Validate(context.Background(), sub, RequestMeta{})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	if err.Error() != "Shop is required" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestValidateFormDisabled(t *testing.T) {
	store := models.NewStore("test-shop.myshopify.com")
	store.FormEnabled = false

	v := newTestValidator(&fakeStoreGetter{store: store}, &fakeQuotaChecker{within: true})

	_, err := v.Validate(context.Background(), validSubmission(), RequestMeta{})
	if !errors.Is(err, apperrors.ErrFormDisabled) {
		t.Fatalf("err = %v, want form disabled", err)
	}
	if err.Error() != "COD form is disabled" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestValidateQuotaExceeded(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{store: models.NewStore("test-shop.myshopify.com")},
		&fakeQuotaChecker{within: false},
	)

	_, err := v.Validate(context.Background(), validSubmission(), RequestMeta{})
	if !errors.Is(err, apperrors.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want quota exceeded", err)
	}
	if err.Error() != "Order limit reached. Please upgrade your plan." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestValidateMissingCustomerFields(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{store: models.NewStore("test-shop.myshopify.com")},
		&fakeQuotaChecker{within: true},
	)

	sub := validSubmission()
	sub.Customer.Phone = ""
	sub.Product.Title = ""

	_, err := v.Validate(context.Background(), sub, RequestMeta{})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	// Customer problems win when both blocks are incomplete.
	if err.Error() != "Missing required customer fields" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestValidateMissingProductFields(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{store: models.NewStore("test-shop.myshopify.com")},
		&fakeQuotaChecker{within: true},
	)

	sub := validSubmission()
	sub.Product.Price = 0

	_, err := v.Validate(context.Background(), sub, RequestMeta{})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	if err.Error() != "Missing required product fields" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestValidateStoreLookupFailure(t *testing.T) {
	v := newTestValidator(
		&fakeStoreGetter{err: errors.New("connection refused")},
		&fakeQuotaChecker{within: true},
	)

	_, err := v.Validate(context.Background(), validSubmission(), RequestMeta{})
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Mobile/15E148 Safari", "mobile"},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; Tablet) Safari", "tablet"},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", "desktop"},
		{"uppercase mobile", "SomeAgent MOBILE", "mobile"},
		{"mobile wins over tablet", "Tablet Mobile Agent", "mobile"},
		{"empty", "", "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDevice(tt.ua); got != tt.want {
				t.Errorf("ClassifyDevice(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}

func TestPlaceholderEmail(t *testing.T) {
	got := PlaceholderEmail("9876543210", "codform.app")
	want := "9876543210@cod.codform.app"

	if got != want {
		t.Errorf("PlaceholderEmail = %q, want %q", got, want)
	}

	// Deterministic: the same phone always maps to the same address.
	if again := PlaceholderEmail("9876543210", "codform.app"); again != got {
		t.Errorf("PlaceholderEmail not deterministic: %q vs %q", again, got)
	}
}

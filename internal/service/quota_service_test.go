package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/apperrors"
	"github.com/codform/order-api/pkg/logger"
)

type fakeQuotaStore struct {
	store *models.Store
	err   error

	incrementOK  []bool
	resetOK      bool
	resetErr     error
	incrementErr error

	incrementCalls int
	resetCalls     int
}

func (f *fakeQuotaStore) GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	return f.store, f.err
}

func (f *fakeQuotaStore) IncrementOrderCount(ctx context.Context, shopDomain string, now time.Time) (bool, error) {
	ok := false
	if f.incrementCalls < len(f.incrementOK) {
		ok = f.incrementOK[f.incrementCalls]
	}
	f.incrementCalls++
	return ok, f.incrementErr
}

func (f *fakeQuotaStore) ResetOrderCount(ctx context.Context, shopDomain string, now time.Time) (bool, error) {
	f.resetCalls++
	return f.resetOK, f.resetErr
}

func fixedQuotaService(store *fakeQuotaStore, now time.Time) *QuotaService {
	s := NewQuotaService(store, logger.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestWithinLimitCurrentMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	store := models.NewStore("test-shop.myshopify.com")
	store.OrdersThisMonth = 59
	store.MonthResetDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	s := fixedQuotaService(&fakeQuotaStore{store: store}, now)

	within, err := s.WithinLimit(context.Background(), store.ShopDomain)
	if err != nil {
		t.Fatalf("WithinLimit error: %v", err)
	}
	if !within {
		t.Error("59 of 60 should be within the free limit")
	}

	store.OrdersThisMonth = 60
	within, err = s.WithinLimit(context.Background(), store.ShopDomain)
	if err != nil {
		t.Fatalf("WithinLimit error: %v", err)
	}
	if within {
		t.Error("60 of 60 should exhaust the free limit")
	}
}

func TestWithinLimitStaleMonthIgnoresCounter(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 5, 0, 0, time.UTC)

	store := models.NewStore("test-shop.myshopify.com")
	store.OrdersThisMonth = 60
	store.MonthResetDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	s := fixedQuotaService(&fakeQuotaStore{store: store}, now)

	within, err := s.WithinLimit(context.Background(), store.ShopDomain)
	if err != nil {
		t.Fatalf("WithinLimit error: %v", err)
	}
	if !within {
		t.Error("a counter from last month must not block the new month")
	}
}

func TestWithinLimitStoreError(t *testing.T) {
	s := fixedQuotaService(&fakeQuotaStore{err: errors.New("down")}, time.Now())

	_, err := s.WithinLimit(context.Background(), "test-shop.myshopify.com")
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}
}

func TestIncrementSameMonth(t *testing.T) {
	store := &fakeQuotaStore{incrementOK: []bool{true}}
	s := fixedQuotaService(store, time.Now())

	if err := s.Increment(context.Background(), "test-shop.myshopify.com"); err != nil {
		t.Fatalf("Increment error: %v", err)
	}
	if store.incrementCalls != 1 || store.resetCalls != 0 {
		t.Errorf("calls = %d increments, %d resets", store.incrementCalls, store.resetCalls)
	}
}

func TestIncrementMonthRollover(t *testing.T) {
	store := &fakeQuotaStore{incrementOK: []bool{false}, resetOK: true}
	s := fixedQuotaService(store, time.Now())

	if err := s.Increment(context.Background(), "test-shop.myshopify.com"); err != nil {
		t.Fatalf("Increment error: %v", err)
	}
	if store.resetCalls != 1 {
		t.Errorf("resetCalls = %d, want 1", store.resetCalls)
	}
}

func TestIncrementLostRolloverRace(t *testing.T) {
	// Another request reset the month first; the second increment
	// attempt counts against the fresh counter.
	store := &fakeQuotaStore{incrementOK: []bool{false, true}, resetOK: false}
	s := fixedQuotaService(store, time.Now())

	if err := s.Increment(context.Background(), "test-shop.myshopify.com"); err != nil {
		t.Fatalf("Increment error: %v", err)
	}
	if store.incrementCalls != 2 || store.resetCalls != 1 {
		t.Errorf("calls = %d increments, %d resets", store.incrementCalls, store.resetCalls)
	}
}

func TestIncrementStorageError(t *testing.T) {
	store := &fakeQuotaStore{incrementErr: errors.New("down")}
	s := fixedQuotaService(store, time.Now())

	err := s.Increment(context.Background(), "test-shop.myshopify.com")
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}
}

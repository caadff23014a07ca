package service

import (
	"context"
	"time"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/apperrors"
	"github.com/codform/order-api/pkg/logger"
)

// QuotaStore is the slice of the store repository the quota tracker
// needs. The counter mutations are atomic at the storage layer.
type QuotaStore interface {
	GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error)
	IncrementOrderCount(ctx context.Context, shopDomain string, now time.Time) (bool, error)
	ResetOrderCount(ctx context.Context, shopDomain string, now time.Time) (bool, error)
}

// QuotaService tracks a merchant's monthly order count against the
// limit derived from their plan.
type QuotaService struct {
	stores QuotaStore
	now    func() time.Time
	logger logger.Logger
}

// NewQuotaService creates a QuotaService using wall-clock time.
func NewQuotaService(stores QuotaStore, logger logger.Logger) *QuotaService {
	return &QuotaService{
		stores: stores,
		now:    models.GetCurrentTime,
		logger: logger,
	}
}

// WithinLimit reports whether the merchant may record another order
// this month. A reset date from a prior month means nothing has been
// counted yet this month, so the stale counter is ignored.
func (s *QuotaService) WithinLimit(ctx context.Context, shopDomain string) (bool, error) {
	store, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		return false, apperrors.NewStorageError("failed to load store for quota check")
	}

	count := store.OrdersThisMonth
	if !models.SameMonth(s.now(), store.MonthResetDate) {
		count = 0
	}

	return models.Plan(store.Plan).WithinLimit(count), nil
}

// Increment counts one order against the merchant's month. When the
// stored reset date is in a different month the counter restarts at 1.
// Called exactly once per accepted submission, whatever the upstream
// sync outcome: the quota tracks local orders, not successful syncs.
func (s *QuotaService) Increment(ctx context.Context, shopDomain string) error {
	now := s.now()

	// Fast path: the counter already belongs to the current month.
	incremented, err := s.stores.IncrementOrderCount(ctx, shopDomain, now)
	if err != nil {
		return apperrors.NewStorageError("failed to increment order count")
	}
	if incremented {
		return nil
	}

	// Month rolled over; this order starts the new month.
	reset, err := s.stores.ResetOrderCount(ctx, shopDomain, now)
	if err != nil {
		return apperrors.NewStorageError("failed to reset order count")
	}
	if reset {
		return nil
	}

	// A concurrent request won the rollover; count against the fresh
	// month instead.
	incremented, err = s.stores.IncrementOrderCount(ctx, shopDomain, now)
	if err != nil || !incremented {
		return apperrors.NewStorageError("failed to increment order count after rollover")
	}

	return nil
}

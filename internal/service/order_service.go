package service

import (
	"context"
	"errors"

	"github.com/codform/order-api/internal/events"
	"github.com/codform/order-api/internal/intake"
	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/internal/repository"
	syncpkg "github.com/codform/order-api/internal/sync"
	"github.com/codform/order-api/pkg/apperrors"
	"github.com/codform/order-api/pkg/logger"
)

// Merchant-facing sync status messages. A submission whose local order
// was persisted always succeeds; the message tells the merchant how the
// Shopify side went.
const (
	msgSyncPending = "Order created but Shopify sync pending"
	msgSyncFailed  = "Order created but Shopify sync failed"
	msgSyncSkipped = "Order created but Shopify sync skipped"
)

// OrderStore is the slice of the order repository the service needs.
type OrderStore interface {
	Create(ctx context.Context, in *models.OrderInput) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByShop(ctx context.Context, shopDomain, status string, limit, offset int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Order, error)
	GetStats(ctx context.Context, shopDomain string) (*models.OrderStats, error)
}

// SubmissionValidator normalizes raw widget submissions.
type SubmissionValidator interface {
	Validate(ctx context.Context, sub *intake.Submission, meta intake.RequestMeta) (*models.OrderInput, error)
}

// Syncer mirrors a persisted order into the commerce platform.
type Syncer interface {
	Sync(ctx context.Context, order *models.Order, store *models.Store) syncpkg.Result
}

// QuotaIncrementer counts an accepted order against the monthly quota.
type QuotaIncrementer interface {
	Increment(ctx context.Context, shopDomain string) error
}

// StoreReader fetches merchant settings.
type StoreReader interface {
	GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error)
}

// SubmitResult is what the boundary handler turns into the widget
// response.
type SubmitResult struct {
	OrderID        string
	ShopifyOrderID string
	OrderNumber    string
	Message        string
}

// OrderService runs the order intake pipeline and serves the dashboard
// order operations.
type OrderService struct {
	orders    OrderStore
	stores    StoreReader
	validator SubmissionValidator
	syncer    Syncer
	quota     QuotaIncrementer
	publisher events.Publisher
	logger    logger.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(
	orders OrderStore,
	stores StoreReader,
	validator SubmissionValidator,
	syncer Syncer,
	quota QuotaIncrementer,
	publisher events.Publisher,
	logger logger.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		stores:    stores,
		validator: validator,
		syncer:    syncer,
		quota:     quota,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitOrder runs the full intake pipeline: validate and normalize,
// persist locally (strict), then best-effort Shopify sync. The monthly
// quota is incremented exactly once per accepted submission regardless
// of how the sync ends, and a persisted order always yields success.
func (s *OrderService) SubmitOrder(ctx context.Context, sub *intake.Submission, meta intake.RequestMeta) (*SubmitResult, error) {
	in, err := s.validator.Validate(ctx, sub, meta)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Create(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError("Store not found")
		}
		s.logger.Error("Failed to persist order", "error", err, "shop", in.ShopDomain)
		return nil, apperrors.NewStorageError("Failed to create order")
	}

	s.publisher.PublishOrderCreated(in.ShopDomain, order)

	result := s.syncOrder(ctx, order, in.ShopDomain)

	if err := s.quota.Increment(ctx, in.ShopDomain); err != nil {
		// The order is already the merchant's record; a quota counter
		// that lags by one is the lesser failure.
		s.logger.Error("Failed to increment monthly order count",
			"error", err,
			"shop", in.ShopDomain,
			"orderID", order.ID)
	}

	res := &SubmitResult{OrderID: order.ID}

	switch result.Outcome {
	case syncpkg.OutcomeSynced:
		res.ShopifyOrderID = result.ShopifyOrderID
		res.OrderNumber = result.OrderNumber
		order.Status = string(models.OrderStatusConfirmed)
		s.publisher.PublishOrderConfirmed(in.ShopDomain, order)
	case syncpkg.OutcomeSkipped:
		res.Message = msgSyncSkipped
	case syncpkg.OutcomeFailed:
		// The remote side answering with no usable order is "pending"
		// (it may still materialize upstream); transport-level failures
		// are "failed".
		if errors.Is(result.Err, apperrors.ErrUpstreamSync) {
			res.Message = msgSyncPending
		} else {
			res.Message = msgSyncFailed
		}
	}

	return res, nil
}

// syncOrder loads the store and runs the sync orchestrator. Any
// failure here is absorbed; the persisted order is never rolled back.
func (s *OrderService) syncOrder(ctx context.Context, order *models.Order, shopDomain string) syncpkg.Result {
	store, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		s.logger.Error("Failed to load store for sync", "error", err, "shop", shopDomain)
		return syncpkg.Result{Outcome: syncpkg.OutcomeFailed, Err: err}
	}

	return s.syncer.Sync(ctx, order, store)
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, apperrors.NewStorageError("Failed to load order")
	}

	return order, nil
}

// GetOrders lists a merchant's orders, newest first.
func (s *OrderService) GetOrders(ctx context.Context, shopDomain, status string, limit, offset int) ([]*models.Order, error) {
	orders, err := s.orders.GetByShop(ctx, shopDomain, status, limit, offset)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to list orders")
	}

	return orders, nil
}

// UpdateOrderStatus sets an order's status from the dashboard.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.NewValidationError("Invalid order status")
	}

	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, apperrors.NewStorageError("Failed to update order status")
	}

	return order, nil
}

// GetStats aggregates a merchant's order counts and revenue.
func (s *OrderService) GetStats(ctx context.Context, shopDomain string) (*models.OrderStats, error) {
	stats, err := s.orders.GetStats(ctx, shopDomain)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load order stats")
	}

	return stats, nil
}

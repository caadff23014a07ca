package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codform/order-api/internal/database"
	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/logger"
)

// ErrStoreNotFound is returned by Create when the shop domain has no
// store record. Order creation never creates stores implicitly.
var ErrStoreNotFound = errors.New("store not found")

// OrderRepository handles database operations for COD orders.
type OrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *database.Database, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, store_id, customer_name, customer_phone, customer_address,
	customer_city, customer_pincode, customer_state, customer_email,
	product_id, product_title, product_price, product_variant_id, product_image,
	quantity, total_amount, status, shopify_order_id, shopify_order_number,
	ip_address, user_agent, device_type, created_at, updated_at`

// Create persists a new order from normalized input. The merchant's
// store must already exist.
func (r *OrderRepository) Create(ctx context.Context, in *models.OrderInput) (*models.Order, error) {
	var storeID string
	err := r.db.DB.GetContext(ctx, &storeID,
		`SELECT id FROM stores WHERE shop_domain = $1`, in.ShopDomain)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		r.logger.Error("Failed to look up store for order", "error", err, "shop", in.ShopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	order := models.NewOrder(storeID, in)

	query := `
		INSERT INTO cod_orders (
			id, store_id, customer_name, customer_phone, customer_address,
			customer_city, customer_pincode, customer_state, customer_email,
			product_id, product_title, product_price, product_variant_id, product_image,
			quantity, total_amount, status,
			ip_address, user_agent, device_type, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
	`

	_, err = r.db.DB.ExecContext(
		ctx,
		query,
		order.ID,
		order.StoreID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.CustomerCity,
		order.CustomerPincode,
		order.CustomerState,
		order.CustomerEmail,
		order.ProductID,
		order.ProductTitle,
		order.ProductPrice,
		order.ProductVariantID,
		order.ProductImage,
		order.Quantity,
		order.TotalAmount,
		order.Status,
		order.IPAddress,
		order.UserAgent,
		order.DeviceType,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", "error", err, "orderID", order.ID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return order, nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM cod_orders WHERE id = $1`, orderColumns)

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order by ID", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &order, nil
}

// GetByShop lists a merchant's orders, newest first. An unknown shop
// yields an empty slice rather than an error. An empty status means all
// statuses.
func (r *OrderRepository) GetByShop(ctx context.Context, shopDomain, status string, limit, offset int) ([]*models.Order, error) {
	var storeID string
	err := r.db.DB.GetContext(ctx, &storeID,
		`SELECT id FROM stores WHERE shop_domain = $1`, shopDomain)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*models.Order{}, nil
		}
		r.logger.Error("Failed to look up store for order list", "error", err, "shop", shopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	orders := []*models.Order{}

	if status != "" {
		query := fmt.Sprintf(`
			SELECT %s FROM cod_orders
			WHERE store_id = $1 AND status = $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4`, orderColumns)
		err = r.db.DB.SelectContext(ctx, &orders, query, storeID, status, limit, offset)
	} else {
		query := fmt.Sprintf(`
			SELECT %s FROM cod_orders
			WHERE store_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`, orderColumns)
		err = r.db.DB.SelectContext(ctx, &orders, query, storeID, limit, offset)
	}

	if err != nil {
		r.logger.Error("Failed to list orders", "error", err, "shop", shopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, nil
}

// UpdateStatus sets an order's status and returns the updated order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	query := `
		UPDATE cod_orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.DB.ExecContext(ctx, query, status, models.GetCurrentTime(), id)
	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// LinkShopifyOrder records the upstream identifiers and confirms the
// order. Re-linking the same values is a no-op in effect; callers must
// only link an order once.
func (r *OrderRepository) LinkShopifyOrder(ctx context.Context, id, shopifyOrderID, shopifyOrderNumber string) (*models.Order, error) {
	query := `
		UPDATE cod_orders
		SET shopify_order_id = $1, shopify_order_number = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		shopifyOrderID,
		shopifyOrderNumber,
		string(models.OrderStatusConfirmed),
		models.GetCurrentTime(),
		id,
	)

	if err != nil {
		r.logger.Error("Failed to link Shopify order", "error", err, "orderID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// GetStats aggregates a merchant's order counts and revenue. An unknown
// shop yields all zeroes.
func (r *OrderRepository) GetStats(ctx context.Context, shopDomain string) (*models.OrderStats, error) {
	var storeID string
	err := r.db.DB.GetContext(ctx, &storeID,
		`SELECT id FROM stores WHERE shop_domain = $1`, shopDomain)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.OrderStats{}, nil
		}
		r.logger.Error("Failed to look up store for stats", "error", err, "shop", shopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	query := `
		SELECT
			COUNT(*) AS total_orders,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_orders,
			COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed_orders,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered_orders,
			COUNT(*) FILTER (WHERE status = 'rto') AS rto_orders,
			COALESCE(SUM(total_amount), 0) AS total_revenue
		FROM cod_orders
		WHERE store_id = $1
	`

	var stats models.OrderStats
	if err := r.db.DB.GetContext(ctx, &stats, query, storeID); err != nil {
		r.logger.Error("Failed to aggregate order stats", "error", err, "shop", shopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &stats, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codform/order-api/internal/database"
	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/logger"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrDatabase = errors.New("database error")
)

// StoreRepository handles database operations for merchant stores.
type StoreRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewStoreRepository creates a new StoreRepository.
func NewStoreRepository(db *database.Database, logger logger.Logger) *StoreRepository {
	return &StoreRepository{
		db:     db,
		logger: logger,
	}
}

const storeColumns = `
	id, shop_domain, access_token, form_enabled, plan,
	orders_this_month, month_reset_date,
	button_text, button_color, button_text_color,
	show_name, show_phone, show_address, show_city, show_pincode, show_state,
	label_name, label_phone, label_address, label_city, label_pincode, label_state,
	created_at, updated_at`

// GetByDomain fetches a store by its shop domain, creating a default
// record on first contact. Every shop that loads the widget gets a row.
func (r *StoreRepository) GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	store, err := r.findByDomain(ctx, shopDomain)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := r.insertDefault(ctx, models.NewStore(shopDomain)); err != nil {
		return nil, err
	}

	// Re-read after insert so a concurrent first contact still yields
	// the single winning row.
	return r.findByDomain(ctx, shopDomain)
}

func (r *StoreRepository) findByDomain(ctx context.Context, shopDomain string) (*models.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE shop_domain = $1`, storeColumns)

	var store models.Store
	err := r.db.DB.GetContext(ctx, &store, query, shopDomain)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get store by domain", "error", err, "shop", shopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &store, nil
}

func (r *StoreRepository) insertDefault(ctx context.Context, store *models.Store) error {
	query := `
		INSERT INTO stores (
			id, shop_domain, access_token, form_enabled, plan,
			orders_this_month, month_reset_date,
			button_text, button_color, button_text_color,
			show_name, show_phone, show_address, show_city, show_pincode, show_state,
			label_name, label_phone, label_address, label_city, label_pincode, label_state,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		ON CONFLICT (shop_domain) DO NOTHING
	`

	_, err := r.db.DB.ExecContext(
		ctx,
		query,
		store.ID,
		store.ShopDomain,
		store.AccessToken,
		store.FormEnabled,
		store.Plan,
		store.OrdersThisMonth,
		store.MonthResetDate,
		store.ButtonText,
		store.ButtonColor,
		store.ButtonTextColor,
		store.ShowName,
		store.ShowPhone,
		store.ShowAddress,
		store.ShowCity,
		store.ShowPincode,
		store.ShowState,
		store.LabelName,
		store.LabelPhone,
		store.LabelAddress,
		store.LabelCity,
		store.LabelPincode,
		store.LabelState,
		store.CreatedAt,
		store.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create default store", "error", err, "shop", store.ShopDomain)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// UpdateSettings applies a partial settings change and returns the
// updated store.
func (r *StoreRepository) UpdateSettings(ctx context.Context, shopDomain string, update *models.SettingsUpdate) (*models.Store, error) {
	store, err := r.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	store.Apply(update)

	query := `
		UPDATE stores SET
			form_enabled = $1,
			button_text = $2,
			button_color = $3,
			button_text_color = $4,
			show_name = $5,
			show_phone = $6,
			show_address = $7,
			show_city = $8,
			show_pincode = $9,
			show_state = $10,
			label_name = $11,
			label_phone = $12,
			label_address = $13,
			label_city = $14,
			label_pincode = $15,
			label_state = $16,
			updated_at = $17
		WHERE shop_domain = $18
	`

	_, err = r.db.DB.ExecContext(
		ctx,
		query,
		store.FormEnabled,
		store.ButtonText,
		store.ButtonColor,
		store.ButtonTextColor,
		store.ShowName,
		store.ShowPhone,
		store.ShowAddress,
		store.ShowCity,
		store.ShowPincode,
		store.ShowState,
		store.LabelName,
		store.LabelPhone,
		store.LabelAddress,
		store.LabelCity,
		store.LabelPincode,
		store.LabelState,
		store.UpdatedAt,
		shopDomain,
	)

	if err != nil {
		r.logger.Error("Failed to update store settings", "error", err, "shop", shopDomain)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return store, nil
}

// IncrementOrderCount bumps the monthly counter by one. The increment
// happens in SQL, so two concurrent submissions never lose an update.
// The month guard keeps a stale increment from racing a rollover; zero
// rows affected means the stored reset date is in a different month.
func (r *StoreRepository) IncrementOrderCount(ctx context.Context, shopDomain string, now time.Time) (bool, error) {
	query := `
		UPDATE stores
		SET orders_this_month = orders_this_month + 1
		WHERE shop_domain = $1
		  AND date_trunc('month', month_reset_date) = date_trunc('month', $2::timestamptz)
	`

	result, err := r.db.DB.ExecContext(ctx, query, shopDomain, now)
	if err != nil {
		r.logger.Error("Failed to increment order count", "error", err, "shop", shopDomain)
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows > 0, nil
}

// ResetOrderCount starts a new counting month: count 1, reset date now.
// The order triggering the rollover is the first of the new month. The
// guard makes the reset lose against a concurrent rollover, so two
// first-orders of a month cannot both reset the counter; false means
// another request already started the month.
func (r *StoreRepository) ResetOrderCount(ctx context.Context, shopDomain string, now time.Time) (bool, error) {
	query := `
		UPDATE stores
		SET orders_this_month = 1, month_reset_date = $2
		WHERE shop_domain = $1
		  AND date_trunc('month', month_reset_date) <> date_trunc('month', $2::timestamptz)
	`

	result, err := r.db.DB.ExecContext(ctx, query, shopDomain, now)
	if err != nil {
		r.logger.Error("Failed to reset order count", "error", err, "shop", shopDomain)
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows > 0, nil
}

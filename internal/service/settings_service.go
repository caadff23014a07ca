package service

import (
	"context"

	"github.com/codform/order-api/internal/models"
	"github.com/codform/order-api/pkg/apperrors"
	"github.com/codform/order-api/pkg/logger"
)

// SettingsStore is the slice of the store repository the settings
// service needs.
type SettingsStore interface {
	GetByDomain(ctx context.Context, shopDomain string) (*models.Store, error)
	UpdateSettings(ctx context.Context, shopDomain string, update *models.SettingsUpdate) (*models.Store, error)
}

// SettingsService serves merchant settings: the read-only widget
// projection and the dashboard read/update operations. Reading settings
// for an unknown shop creates the default record.
type SettingsService struct {
	stores SettingsStore
	logger logger.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(stores SettingsStore, logger logger.Logger) *SettingsService {
	return &SettingsService{
		stores: stores,
		logger: logger,
	}
}

// GetPublicSettings returns the widget projection for a shop.
func (s *SettingsService) GetPublicSettings(ctx context.Context, shopDomain string) (*models.PublicSettings, error) {
	store, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load store settings")
	}

	settings := store.PublicSettings()
	return &settings, nil
}

// GetSettings returns the full store record for the dashboard.
func (s *SettingsService) GetSettings(ctx context.Context, shopDomain string) (*models.Store, error) {
	store, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to load store settings")
	}

	return store, nil
}

// UpdateSettings applies a partial settings change from the dashboard.
func (s *SettingsService) UpdateSettings(ctx context.Context, shopDomain string, update *models.SettingsUpdate) (*models.Store, error) {
	store, err := s.stores.UpdateSettings(ctx, shopDomain, update)
	if err != nil {
		return nil, apperrors.NewStorageError("Failed to update store settings")
	}

	s.logger.Info("Store settings updated", "shop", shopDomain)
	return store, nil
}

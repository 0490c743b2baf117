package repository

import (
	"context"

	"foodhub-api/models"
)

func (s *Store) CreateProvider(ctx context.Context, p *models.Provider) error {
	return s.conn(ctx).Create(p).Error
}

func (s *Store) FindProviderByID(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// LockProvider reads the provider row for update inside a transaction
func (s *Store) LockProvider(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := s.forUpdate(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProviders(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	err := s.conn(ctx).Order("id asc").Find(&providers).Error
	return providers, err
}

// ProviderExists reports whether any profile other than excludeID already uses
// the owner id, the email or the restaurant name. Any single collision counts.
func (s *Store) ProviderExists(ctx context.Context, ownerID uint, email, restaurantName string, excludeID uint) (bool, error) {
	var count int64
	q := s.conn(ctx).Model(&models.Provider{}).
		Where("(id = ? OR email = ? OR restaurant_name = ?)", ownerID, email, restaurantName)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *Store) UpdateProvider(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.conn(ctx).Model(&models.Provider{}).Where("id = ?", id).Updates(fields).Error
}

func (s *Store) CountMealsByProvider(ctx context.Context, providerID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Meal{}).Where("provider_id = ?", providerID).Count(&count).Error
	return count, err
}

func (s *Store) CountOrdersByPaymentStatus(ctx context.Context, providerID uint, status models.PaymentStatus) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Order{}).
		Where("provider_id = ? AND payment_status = ?", providerID, status).
		Count(&count).Error
	return count, err
}

func (s *Store) DeleteProvider(ctx context.Context, id uint) (int64, error) {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Provider{})
	return res.RowsAffected, res.Error
}

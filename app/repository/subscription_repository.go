package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	return translateError(r.db.WithContext(ctx).Omit("Customer").Create(subscription).Error)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByExternalID(ctx context.Context, asaasSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("asaas_subscription_id = ?", asaasSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByCustomer(ctx context.Context, customerID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

// ListWithCustomer preloads the owning customer. Customer stays nil when the
// referenced row is missing.
func (r *subscriptionRepository) ListWithCustomer(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).Preload("Customer").
		Order("created_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) ListByStatus(ctx context.Context, status string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("id ASC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) MarkCanceled(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":                models.SubscriptionStatusInactive,
			"canceled_at":           at,
			"canceled_at_estimated": false,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *subscriptionRepository) UpdateRemoteState(ctx context.Context, id uint, status string, nextDueDate time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"next_due_date": nextDueDate,
		})
	return res.Error
}

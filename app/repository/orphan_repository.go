package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// orphanRepository implements the OrphanRepository interface
type orphanRepository struct {
	db *gorm.DB
}

// NewOrphanRepository creates a new gateway orphan ledger
func NewOrphanRepository(db *gorm.DB) OrphanRepository {
	return &orphanRepository{db: db}
}

func (r *orphanRepository) Create(ctx context.Context, orphan *models.GatewayOrphan) error {
	return r.db.WithContext(ctx).Create(orphan).Error
}

func (r *orphanRepository) ListUnresolved(ctx context.Context) ([]models.GatewayOrphan, error) {
	var orphans []models.GatewayOrphan
	err := r.db.WithContext(ctx).Where("resolved_at IS NULL").Order("id ASC").Find(&orphans).Error
	return orphans, err
}

func (r *orphanRepository) HasUnresolved(ctx context.Context, kind, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GatewayOrphan{}).
		Where("kind = ? AND external_id = ? AND resolved_at IS NULL", kind, externalID).
		Count(&count).Error
	return count > 0, err
}

// Resolve stamps an unresolved entry. Unknown or already resolved ids yield
// gorm.ErrRecordNotFound.
func (r *orphanRepository) Resolve(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.GatewayOrphan{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

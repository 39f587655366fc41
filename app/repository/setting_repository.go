package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// settingsRowID is the primary key of the singleton row.
const settingsRowID = 1

// settingRepository implements the SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository instance
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns the settings row, creating it with defaults on first read.
// Concurrent first reads race on the fixed primary key; the loser re-reads.
func (r *settingRepository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting, settingsRowID).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def := models.DefaultSetting()
	def.ID = settingsRowID
	if err := translateError(r.db.WithContext(ctx).Create(def).Error); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		if err := r.db.WithContext(ctx).First(&setting, settingsRowID).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	return def, nil
}

// Save writes site name, whatsapp and favicon. Script fields are owned by SaveScripts.
func (r *settingRepository) Save(ctx context.Context, setting *models.Setting) error {
	if _, err := r.Get(ctx); err != nil {
		return err
	}
	setting.ID = settingsRowID
	return r.db.WithContext(ctx).Model(&models.Setting{ID: settingsRowID}).
		Select("site_name", "whatsapp", "favicon_path", "updated_at").
		Updates(setting).Error
}

// SaveScripts updates the tracking tags and returns the fresh row.
func (r *settingRepository) SaveScripts(ctx context.Context, facebookPixel, googleAnalytics *string) (*models.Setting, error) {
	if _, err := r.Get(ctx); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Model(&models.Setting{ID: settingsRowID}).
		Updates(map[string]interface{}{
			"facebook_pixel":   facebookPixel,
			"google_analytics": googleAnalytics,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx)
}

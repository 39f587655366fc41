package repository

import (
	"context"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// videoRepository implements the VideoRepository interface
type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository instance
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create inserts the video. A new hero video demotes the previous one in the
// same transaction.
func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if video.IsHeroVideo {
			if err := clearHero(tx, 0); err != nil {
				return err
			}
		}
		return tx.Create(video).Error
	})
}

func (r *videoRepository) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).First(&video, id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// List returns the newest videos first.
func (r *videoRepository) List(ctx context.Context) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&videos).Error
	return videos, err
}

func (r *videoRepository) GetHero(ctx context.Context) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).Where("is_hero_video = ?", true).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if video.IsHeroVideo {
			if err := clearHero(tx, video.ID); err != nil {
				return err
			}
		}
		res := tx.Model(&models.Video{ID: video.ID}).
			Select("title", "description", "youtube_url", "is_hero_video").
			Updates(video)
		return res.Error
	})
}

func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Video{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// clearHero demotes every hero video except keepID.
func clearHero(tx *gorm.DB, keepID uint) error {
	q := tx.Model(&models.Video{}).Where("is_hero_video = ?", true)
	if keepID != 0 {
		q = q.Where("id <> ?", keepID)
	}
	return q.Update("is_hero_video", false).Error
}

package repository

import (
	"context"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// faqRepository implements the FaqRepository interface
type faqRepository struct {
	db *gorm.DB
}

// NewFaqRepository creates a new FAQ repository instance
func NewFaqRepository(db *gorm.DB) FaqRepository {
	return &faqRepository{db: db}
}

func (r *faqRepository) Create(ctx context.Context, faq *models.Faq) error {
	return r.db.WithContext(ctx).Create(faq).Error
}

func (r *faqRepository) GetByID(ctx context.Context, id uint) (*models.Faq, error) {
	var faq models.Faq
	err := r.db.WithContext(ctx).First(&faq, id).Error
	if err != nil {
		return nil, err
	}
	return &faq, nil
}

// List returns FAQs in display order, ties broken by id.
func (r *faqRepository) List(ctx context.Context) ([]models.Faq, error) {
	var faqs []models.Faq
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&faqs).Error
	return faqs, err
}

func (r *faqRepository) Update(ctx context.Context, faq *models.Faq) error {
	return r.db.WithContext(ctx).Model(&models.Faq{ID: faq.ID}).
		Select("question", "answer", "display_order").
		Updates(faq).Error
}

func (r *faqRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Faq{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *faqRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Faq{}).Count(&count).Error
	return count, err
}

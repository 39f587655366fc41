package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Faq struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Question     string    `gorm:"type:varchar(500);not null" json:"question" validate:"required,min=1,max=500"`
	Answer       string    `gorm:"type:varchar(1000);not null" json:"answer" validate:"required,min=1,max=1000"`
	DisplayOrder int       `gorm:"not null;default:0;index" json:"displayOrder" validate:"min=0"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (f *Faq) Validate() error {
	v := validator.New()

	return v.Struct(f)
}

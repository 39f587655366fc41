package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

const DefaultSiteName = "MeuSaaS"

var whatsappPattern = regexp.MustCompile(`^\d{10,15}$`)

// Setting is the single row of site-wide settings.
type Setting struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SiteName        string    `gorm:"type:varchar(255);not null;default:'MeuSaaS'" json:"siteName" validate:"required,min=1,max=255"`
	FaviconPath     *string   `gorm:"type:varchar(500)" json:"faviconPath"`
	Whatsapp        *string   `gorm:"type:varchar(20)" json:"whatsapp" validate:"omitempty,whatsapp"`
	FacebookPixel   *string   `gorm:"type:varchar(100)" json:"facebookPixel" validate:"omitempty,max=100"`
	GoogleAnalytics *string   `gorm:"type:varchar(100)" json:"googleAnalytics" validate:"omitempty,max=100"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// DefaultSetting returns the row created on first read.
func DefaultSetting() *Setting {
	return &Setting{SiteName: DefaultSiteName}
}

// ValidWhatsapp accepts the empty string or 10 to 15 digits.
func ValidWhatsapp(v string) bool {
	return v == "" || whatsappPattern.MatchString(v)
}

func (s *Setting) Validate() error {
	v := validator.New()
	_ = v.RegisterValidation("whatsapp", func(fl validator.FieldLevel) bool {
		return ValidWhatsapp(fl.Field().String())
	})

	return v.Struct(s)
}

// StringOrEmpty dereferences optional string columns for templates and forms.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OptionalString maps the empty string to NULL.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

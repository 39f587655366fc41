package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Video is a YouTube video shown on the landing page. At most one row is the
// hero video.
type Video struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description string    `gorm:"type:varchar(500);not null" json:"description" validate:"required,min=1,max=500"`
	YoutubeURL  string    `gorm:"column:youtube_url;type:varchar(500);not null" json:"youtubeUrl" validate:"required,url,max=500,youtube"`
	IsHeroVideo bool      `gorm:"not null;default:false;index" json:"isHeroVideo"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// IsYouTubeURL accepts youtube.com (any subdomain) and youtu.be links.
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtu.be"
}

// EmbedURL converts watch and short links to the embeddable form.
func (v *Video) EmbedURL() string {
	u, err := url.Parse(v.YoutubeURL)
	if err != nil {
		return v.YoutubeURL
	}
	var id string
	switch {
	case strings.EqualFold(u.Hostname(), "youtu.be"):
		id = strings.Trim(u.Path, "/")
	case strings.HasPrefix(u.Path, "/embed/"):
		return v.YoutubeURL
	default:
		id = u.Query().Get("v")
	}
	if id == "" {
		return v.YoutubeURL
	}
	return "https://www.youtube.com/embed/" + id
}

func (v *Video) Validate() error {
	val := validator.New()
	_ = val.RegisterValidation("youtube", func(fl validator.FieldLevel) bool {
		return IsYouTubeURL(fl.Field().String())
	})

	return val.Struct(v)
}

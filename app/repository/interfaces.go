package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/SubDesk/app/models"
	"gorm.io/gorm"
)

// CustomerRepository defines the interface for customer-related database operations.
// Customers are never deleted.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByExternalID(ctx context.Context, asaasCustomerID string) (*models.Customer, error)
	GetPortalAccountByEmail(ctx context.Context, email string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context) ([]models.Customer, error)
	ListWithSubscriptionSummary(ctx context.Context) ([]CustomerWithSummary, error)
	Count(ctx context.Context) (int64, error)
	CountWithActiveSubscription(ctx context.Context) (int64, error)
}

// SubscriptionRepository defines the interface for subscription-related database operations.
// Subscriptions are never hard-deleted.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetByID(ctx context.Context, id uint) (*models.Subscription, error)
	GetByExternalID(ctx context.Context, asaasSubscriptionID string) (*models.Subscription, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]models.Subscription, error)
	ListWithCustomer(ctx context.Context) ([]models.Subscription, error)
	ListByStatus(ctx context.Context, status string) ([]models.Subscription, error)
	// MarkCanceled flips an ACTIVE row to INACTIVE in a single UPDATE and
	// reports whether a row changed.
	MarkCanceled(ctx context.Context, id uint, at time.Time) (bool, error)
	UpdateRemoteState(ctx context.Context, id uint, status string, nextDueDate time.Time) error
}

// UserRepository defines the interface for operator accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// SettingRepository defines the interface for the site settings singleton
type SettingRepository interface {
	Get(ctx context.Context) (*models.Setting, error)
	Save(ctx context.Context, setting *models.Setting) error
	SaveScripts(ctx context.Context, facebookPixel, googleAnalytics *string) (*models.Setting, error)
}

// FaqRepository defines the interface for FAQ entries
type FaqRepository interface {
	Create(ctx context.Context, faq *models.Faq) error
	GetByID(ctx context.Context, id uint) (*models.Faq, error)
	List(ctx context.Context) ([]models.Faq, error)
	Update(ctx context.Context, faq *models.Faq) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// VideoRepository defines the interface for landing page videos.
// Create and Update keep at most one hero video.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
	GetHero(ctx context.Context) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id uint) error
}

// OrphanRepository defines the interface for the gateway orphan ledger
type OrphanRepository interface {
	Create(ctx context.Context, orphan *models.GatewayOrphan) error
	ListUnresolved(ctx context.Context) ([]models.GatewayOrphan, error)
	HasUnresolved(ctx context.Context, kind, externalID string) (bool, error)
	Resolve(ctx context.Context, id uint, at time.Time) error
}

// CustomerWithSummary is a customer with its subscription aggregate. The
// customer fields are flattened into the JSON object.
type CustomerWithSummary struct {
	models.Customer
	HasActiveSubscription bool                 `json:"hasActiveSubscription"`
	ActiveSubscription    *models.Subscription `json:"activeSubscription"`
	TotalSubscriptions    int                  `json:"totalSubscriptions"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	Customer     CustomerRepository
	Subscription SubscriptionRepository
	User         UserRepository
	Setting      SettingRepository
	Faq          FaqRepository
	Video        VideoRepository
	Orphan       OrphanRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer:     NewCustomerRepository(db),
		Subscription: NewSubscriptionRepository(db),
		User:         NewUserRepository(db),
		Setting:      NewSettingRepository(db),
		Faq:          NewFaqRepository(db),
		Video:        NewVideoRepository(db),
		Orphan:       NewOrphanRepository(db),
	}
}

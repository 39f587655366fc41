package models

import "time"

const (
	SubscriptionStatusActive   = "ACTIVE"
	SubscriptionStatusInactive = "INACTIVE"
)

const BillingTypeCreditCard = "CREDIT_CARD"

// Cycle is the recurrence period of a subscription.
type Cycle string

const (
	CycleMonthly      Cycle = "MONTHLY"
	CycleQuarterly    Cycle = "QUARTERLY"
	CycleSemiannually Cycle = "SEMIANNUALLY"
	CycleYearly       Cycle = "YEARLY"
)

// Valid reports whether c is one of the supported cycles.
func (c Cycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleSemiannually, CycleYearly:
		return true
	}
	return false
}

// Subscription mirrors a recurring subscription at the billing gateway.
// Re-subscribing creates a new row; rows are never hard-deleted.
type Subscription struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	CustomerID          uint       `gorm:"not null;index" json:"customerId"`
	AsaasSubscriptionID string     `gorm:"column:asaas_subscription_id;type:varchar(255);not null;uniqueIndex" json:"asaasSubscriptionId"`
	Status              string     `gorm:"type:varchar(50);not null;default:'ACTIVE';index" json:"status"`
	Value               int        `gorm:"not null" json:"value"`
	NextDueDate         time.Time  `gorm:"type:timestamp;not null" json:"nextDueDate"`
	BillingType         string     `gorm:"type:varchar(50);not null;default:'CREDIT_CARD'" json:"billingType"`
	Cycle               Cycle      `gorm:"type:varchar(50);not null;default:'MONTHLY'" json:"cycle"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	CanceledAt          *time.Time `gorm:"type:timestamp;default:null" json:"canceledAt"`
	CanceledAtEstimated bool       `gorm:"not null;default:false" json:"canceledAtEstimated"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// IsActive reports whether the local mirror considers the subscription active.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

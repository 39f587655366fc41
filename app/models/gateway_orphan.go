package models

import "time"

const (
	OrphanKindCustomer     = "customer"
	OrphanKindSubscription = "subscription"
	OrphanKindCancellation = "cancellation"
	OrphanKindRemoteActive = "remote_active"
)

// GatewayOrphan records a remote entity whose local mirror disagrees with the
// billing gateway: a remote create or cancel whose local write failed, or a
// remote subscription still billing while the local row is canceled.
// Operators resolve entries by hand after fixing the state.
type GatewayOrphan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Kind       string     `gorm:"type:varchar(32);not null;index" json:"kind"`
	ExternalID string     `gorm:"type:varchar(255);not null;index" json:"externalId"`
	CustomerID *uint      `json:"customerId"`
	Email      string     `gorm:"type:varchar(255)" json:"email"`
	Reason     string     `gorm:"type:text" json:"reason"`
	ResolvedAt *time.Time `gorm:"type:timestamp;default:null;index" json:"resolvedAt"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (o *GatewayOrphan) IsResolved() bool {
	return o.ResolvedAt != nil
}

package billing

import (
	"time"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
)

const DefaultCycle = models.CycleMonthly

// CreditCardInput is the card data submitted by the visitor. It is forwarded to
// the gateway and never stored.
type CreditCardInput struct {
	HolderName  string `json:"holderName" validate:"required,min=3"`
	Number      string `json:"number" validate:"required,min=13"`
	ExpiryMonth string `json:"expiryMonth" validate:"required,len=2"`
	ExpiryYear  string `json:"expiryYear" validate:"required,len=4"`
	CCV         string `json:"ccv" validate:"required,min=3,max=4"`
}

// SubscribeRequest is the self-service signup payload.
type SubscribeRequest struct {
	Name          string          `json:"name" validate:"required,min=3"`
	Email         string          `json:"email" validate:"required,email"`
	CpfCnpj       string          `json:"cpfCnpj" validate:"required,min=11"`
	Phone         string          `json:"phone" validate:"required,min=10"`
	PostalCode    string          `json:"postalCode"`
	Address       string          `json:"address"`
	AddressNumber string          `json:"addressNumber"`
	Complement    string          `json:"complement"`
	Province      string          `json:"province"`
	City          string          `json:"city"`
	State         string          `json:"state" validate:"omitempty,max=2"`
	CreditCard    CreditCardInput `json:"creditCard"`
	Value         int             `json:"value" validate:"min=1"`
	Cycle         models.Cycle    `json:"cycle" validate:"omitempty,oneof=MONTHLY QUARTERLY SEMIANNUALLY YEARLY"`
}

type CustomerRef struct {
	ID              uint   `json:"id"`
	AsaasCustomerID string `json:"asaasCustomerId"`
}

type SubscriptionRef struct {
	ID                  uint      `json:"id"`
	AsaasSubscriptionID string    `json:"asaasSubscriptionId"`
	Status              string    `json:"status"`
	NextDueDate         time.Time `json:"nextDueDate"`
}

// SubscribeResult is returned after both remote and local writes succeeded.
type SubscribeResult struct {
	Customer     CustomerRef     `json:"customer"`
	Subscription SubscriptionRef `json:"subscription"`
}

// CustomerOverview is a customer with its subscription aggregate.
type CustomerOverview = repository.CustomerWithSummary

// SubscriptionWithCustomer carries the owning customer, nil when the
// referenced row is missing.
type SubscriptionWithCustomer struct {
	models.Subscription
	Customer *models.Customer `json:"customer"`
}

type Summary struct {
	TotalCustomers            int64 `json:"totalCustomers"`
	WithActiveSubscription    int64 `json:"withActiveSubscription"`
	WithoutActiveSubscription int64 `json:"withoutActiveSubscription"`
}

// Dashboard is the customer portal view of one customer.
type Dashboard struct {
	Customer              *models.Customer      `json:"customer"`
	Subscriptions         []models.Subscription `json:"subscriptions"`
	ActiveSubscription    *models.Subscription  `json:"activeSubscription"`
	HasActiveSubscription bool                  `json:"hasActiveSubscription"`
}

// AccountUpdate changes the portal credentials of a customer. Nil fields are kept.
type AccountUpdate struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// Sync outcomes.
const (
	SyncUnchanged     = "unchanged"
	SyncUpdated       = "updated"
	SyncCanceled      = "canceled"
	SyncFailed        = "failed"
	SyncMissingRemote = "missing_remote"
	// the gateway bills a subscription that is canceled locally
	SyncRemoteActive  = "remote_active_locally_canceled"
)

// SyncResult describes one subscription checked against the gateway.
type SyncResult struct {
	SubscriptionID      uint      `json:"subscriptionId"`
	AsaasSubscriptionID string    `json:"asaasSubscriptionId"`
	Outcome             string    `json:"outcome"`
	Status              string    `json:"status"`
	NextDueDate         time.Time `json:"nextDueDate"`
	Error               string    `json:"error,omitempty"`
}

// ReconcileReport aggregates a reconciliation run.
type ReconcileReport struct {
	Checked    int          `json:"checked"`
	Updated    int          `json:"updated"`
	Canceled   int          `json:"canceled"`
	Failed     int          `json:"failed"`
	Mismatched int          `json:"mismatched"`
	Results    []SyncResult `json:"results"`
}

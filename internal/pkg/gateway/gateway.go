// Package gateway talks to the recurring billing gateway (Asaas REST v3).
// Calls never touch local state.
package gateway

import "context"

// Operation names used in errors and metrics.
const (
	OpCreateCustomer     = "create_customer"
	OpCreateSubscription = "create_subscription"
	OpGetSubscription    = "get_subscription"
	OpCancelSubscription = "cancel_subscription"
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// Remote subscription states as reported by the gateway.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusExpired  = "EXPIRED"
)

// Gateway is the remote billing system.
type Gateway interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	CreateSubscription(ctx context.Context, in SubscriptionInput) (*Subscription, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	CancelSubscription(ctx context.Context, id string) error
}

type CustomerInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	Phone         string `json:"phone"`
	MobilePhone   string `json:"mobilePhone"`
	PostalCode    string `json:"postalCode,omitempty"`
	Address       string `json:"address,omitempty"`
	AddressNumber string `json:"addressNumber,omitempty"`
	Complement    string `json:"complement,omitempty"`
	Province      string `json:"province,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
}

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	CpfCnpj string `json:"cpfCnpj"`
}

type CreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CCV         string `json:"ccv"`
}

type CreditCardHolderInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	PostalCode    string `json:"postalCode"`
	AddressNumber string `json:"addressNumber"`
	Phone         string `json:"phone"`
}

type SubscriptionInput struct {
	Customer             string               `json:"customer"`
	BillingType          string               `json:"billingType"`
	Value                int                  `json:"value"`
	NextDueDate          string               `json:"nextDueDate"`
	Cycle                string               `json:"cycle"`
	Description          string               `json:"description"`
	CreditCard           CreditCard           `json:"creditCard"`
	CreditCardHolderInfo CreditCardHolderInfo `json:"creditCardHolderInfo"`
}

// Subscription is the gateway view of a subscription. NextDueDate uses DateLayout.
type Subscription struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
	NextDueDate string  `json:"nextDueDate"`
	Cycle       string  `json:"cycle"`
	BillingType string  `json:"billingType"`
	Deleted     bool    `json:"deleted"`
}

// IsActive reports whether the gateway still bills this subscription.
func (s *Subscription) IsActive() bool {
	return !s.Deleted && s.Status == StatusActive
}

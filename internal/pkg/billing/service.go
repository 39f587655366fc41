package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/SubDesk/internal/pkg/metrics"
)

// Operation labels for metrics.
const (
	opSubscribe = "subscribe"
	opCancel    = "cancel"
)

// Params holds the collaborators of a Service.
type Params struct {
	Customers     repository.CustomerRepository
	Subscriptions repository.SubscriptionRepository
	Orphans       repository.OrphanRepository
	Gateway       gateway.Gateway
	Log           *zap.Logger
	Metrics       *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
	// Location decides which calendar day "tomorrow" is. Defaults to UTC.
	Location    *time.Location
	Description string
}

// Service orchestrates the subscription lifecycle between the billing gateway
// and the local mirror. It keeps no mutable state between calls.
type Service struct {
	customers     repository.CustomerRepository
	subscriptions repository.SubscriptionRepository
	orphans       repository.OrphanRepository
	gw            gateway.Gateway
	log           *zap.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	loc           *time.Location
	description   string
}

// NewService creates a billing service from injected collaborators.
func NewService(p Params) *Service {
	s := &Service{
		customers:     p.Customers,
		subscriptions: p.Subscriptions,
		orphans:       p.Orphans,
		gw:            p.Gateway,
		log:           p.Log,
		metrics:       p.Metrics,
		now:           p.Now,
		loc:           p.Location,
		description:   p.Description,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// FirstDueDate returns the calendar day after now in the service location.
func (s *Service) FirstDueDate(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, s.loc)
}

// Subscribe creates the remote customer and subscription and mirrors both
// locally. Steps run strictly in order and nothing is retried.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResult, error) {
	req.normalize()
	if err := Validate(&req); err != nil {
		s.metrics.BillingOperation(opSubscribe, "invalid")
		return nil, err
	}

	log := s.log.With(zap.String("email", req.Email))
	log.Info("Creating gateway customer")

	remoteCustomer, err := s.gw.CreateCustomer(ctx, gateway.CustomerInput{
		Name:          req.Name,
		Email:         req.Email,
		CpfCnpj:       req.CpfCnpj,
		Phone:         req.Phone,
		MobilePhone:   req.Phone,
		PostalCode:    req.PostalCode,
		Address:       req.Address,
		AddressNumber: req.AddressNumber,
		Complement:    req.Complement,
		Province:      req.Province,
		City:          req.City,
		State:         req.State,
	})
	if err != nil {
		log.Warn("Gateway customer creation failed", zap.Error(err))
		s.metrics.BillingOperation(opSubscribe, "gateway_customer_failed")
		return nil, err
	}
	log = log.With(zap.String("asaas_customer_id", remoteCustomer.ID))

	customer := &models.Customer{
		AsaasCustomerID: remoteCustomer.ID,
		Name:            req.Name,
		Email:           req.Email,
		CpfCnpj:         req.CpfCnpj,
		Phone:           req.Phone,
		PostalCode:      models.OptionalString(req.PostalCode),
		Address:         models.OptionalString(req.Address),
		AddressNumber:   models.OptionalString(req.AddressNumber),
		Complement:      models.OptionalString(req.Complement),
		Province:        models.OptionalString(req.Province),
		City:            models.OptionalString(req.City),
		State:           models.OptionalString(req.State),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		log.Error("Failed to persist customer", zap.Error(err))
		s.recordOrphan(ctx, models.OrphanKindCustomer, remoteCustomer.ID, nil, req.Email, err)
		s.metrics.BillingOperation(opSubscribe, "persist_failed")
		return nil, &PersistenceError{Step: StepCustomer, ExternalID: remoteCustomer.ID, Err: err}
	}

	requestedAt := s.now()
	dueDate := s.FirstDueDate(requestedAt)

	log.Info("Creating gateway subscription", zap.Uint("customer_id", customer.ID), zap.String("next_due_date", dueDate.Format(gateway.DateLayout)))
	remoteSub, err := s.gw.CreateSubscription(ctx, gateway.SubscriptionInput{
		Customer:    remoteCustomer.ID,
		BillingType: models.BillingTypeCreditCard,
		Value:       req.Value,
		NextDueDate: dueDate.Format(gateway.DateLayout),
		Cycle:       string(req.Cycle),
		Description: s.description,
		CreditCard: gateway.CreditCard{
			HolderName:  req.CreditCard.HolderName,
			Number:      req.CreditCard.Number,
			ExpiryMonth: req.CreditCard.ExpiryMonth,
			ExpiryYear:  req.CreditCard.ExpiryYear,
			CCV:         req.CreditCard.CCV,
		},
		CreditCardHolderInfo: gateway.CreditCardHolderInfo{
			Name:          req.Name,
			Email:         req.Email,
			CpfCnpj:       req.CpfCnpj,
			PostalCode:    req.PostalCode,
			AddressNumber: req.AddressNumber,
			Phone:         req.Phone,
		},
	})
	if err != nil {
		// the local customer stays, a later signup creates a fresh pair
		log.Warn("Gateway subscription creation failed", zap.Uint("customer_id", customer.ID), zap.Error(err))
		s.metrics.BillingOperation(opSubscribe, "gateway_subscription_failed")
		return nil, err
	}
	log = log.With(zap.String("asaas_subscription_id", remoteSub.ID))

	subscription := &models.Subscription{
		CustomerID:          customer.ID,
		AsaasSubscriptionID: remoteSub.ID,
		Status:              localStatus(remoteSub.Status),
		Value:               req.Value,
		NextDueDate:         s.parseDueDate(remoteSub.NextDueDate, dueDate),
		BillingType:         models.BillingTypeCreditCard,
		Cycle:               req.Cycle,
	}
	if err := s.subscriptions.Create(ctx, subscription); err != nil {
		log.Error("Failed to persist subscription", zap.Error(err))
		s.recordOrphan(ctx, models.OrphanKindSubscription, remoteSub.ID, &customer.ID, req.Email, err)
		s.metrics.BillingOperation(opSubscribe, "persist_failed")
		return nil, &PersistenceError{Step: StepSubscription, ExternalID: remoteSub.ID, Err: err}
	}

	log.Info("Subscription created", zap.Uint("subscription_id", subscription.ID), zap.String("status", subscription.Status))
	s.metrics.BillingOperation(opSubscribe, "success")

	return &SubscribeResult{
		Customer: CustomerRef{ID: customer.ID, AsaasCustomerID: customer.AsaasCustomerID},
		Subscription: SubscriptionRef{
			ID:                  subscription.ID,
			AsaasSubscriptionID: subscription.AsaasSubscriptionID,
			Status:              subscription.Status,
			NextDueDate:         subscription.NextDueDate,
		},
	}, nil
}

// Cancel cancels a subscription at the gateway and then marks the local row
// INACTIVE. A gateway failure leaves the local row untouched.
func (s *Service) Cancel(ctx context.Context, subscriptionID uint) error {
	sub, err := s.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if !sub.IsActive() {
		s.metrics.BillingOperation(opCancel, "already_canceled")
		return ErrAlreadyCanceled
	}

	log := s.log.With(zap.Uint("subscription_id", sub.ID), zap.String("asaas_subscription_id", sub.AsaasSubscriptionID))
	log.Info("Canceling gateway subscription")

	if err := s.gw.CancelSubscription(ctx, sub.AsaasSubscriptionID); err != nil {
		log.Warn("Gateway cancellation failed", zap.Error(err))
		s.metrics.BillingOperation(opCancel, "gateway_failed")
		return err
	}

	changed, err := s.subscriptions.MarkCanceled(ctx, sub.ID, s.now())
	if err != nil {
		log.Error("Failed to persist cancellation", zap.Error(err))
		customerID := sub.CustomerID
		s.recordOrphan(ctx, models.OrphanKindCancellation, sub.AsaasSubscriptionID, &customerID, "", err)
		s.metrics.BillingOperation(opCancel, "persist_failed")
		return &PersistenceError{Step: StepCancel, ExternalID: sub.AsaasSubscriptionID, Err: err}
	}
	if !changed {
		log.Info("Subscription was canceled concurrently")
	}

	log.Info("Subscription canceled")
	s.metrics.BillingOperation(opCancel, "success")
	return nil
}

// ListCustomers returns every customer with its subscription aggregate.
func (s *Service) ListCustomers(ctx context.Context) ([]CustomerOverview, error) {
	return s.customers.ListWithSubscriptionSummary(ctx)
}

// ListSubscriptions returns every subscription with its owning customer.
func (s *Service) ListSubscriptions(ctx context.Context) ([]SubscriptionWithCustomer, error) {
	subs, err := s.subscriptions.ListWithCustomer(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SubscriptionWithCustomer, 0, len(subs))
	for _, sub := range subs {
		customer := sub.Customer
		sub.Customer = nil
		out = append(out, SubscriptionWithCustomer{Subscription: sub, Customer: customer})
	}
	return out, nil
}

// Summary computes the customer counts shown on the admin dashboard.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	total, err := s.customers.Count(ctx)
	if err != nil {
		return Summary{}, err
	}
	active, err := s.customers.CountWithActiveSubscription(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		TotalCustomers:            total,
		WithActiveSubscription:    active,
		WithoutActiveSubscription: total - active,
	}, nil
}

// CustomerDashboard returns a customer with its subscription history.
func (s *Service) CustomerDashboard(ctx context.Context, customerID uint) (*Dashboard, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	subs, err := s.subscriptions.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Customer: customer, Subscriptions: subs}
	for i := range subs {
		if subs[i].IsActive() && (d.ActiveSubscription == nil || newer(&subs[i], d.ActiveSubscription)) {
			d.ActiveSubscription = &subs[i]
		}
	}
	d.HasActiveSubscription = d.ActiveSubscription != nil
	return d, nil
}

// UpdateCustomerAccount changes the portal email and password of a customer.
func (s *Service) UpdateCustomerAccount(ctx context.Context, customerID uint, upd AccountUpdate) (*models.Customer, error) {
	if upd.Email != nil {
		e := strings.TrimSpace(*upd.Email)
		upd.Email = &e
	}
	if upd.Email == nil && upd.Password == nil {
		return nil, ErrInvalidAccount
	}
	if err := Validate(&upd); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	email := customer.Email
	if upd.Email != nil {
		email = *upd.Email
	}
	// one portal account per email, older subscriptions of the same visitor
	// without a password do not count
	if upd.Password != nil || customer.HasPortalAccess() {
		other, err := s.customers.GetPortalAccountByEmail(ctx, email)
		switch {
		case err == nil && other.ID != customer.ID:
			return nil, ErrDuplicateAccount
		case err != nil && !repository.IsNotFound(err):
			return nil, err
		}
	}
	customer.Email = email
	if upd.Password != nil {
		if err := customer.SetPassword(*upd.Password); err != nil {
			return nil, err
		}
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	s.log.Info("Customer account updated", zap.Uint("customer_id", customer.ID), zap.Bool("password_changed", upd.Password != nil))
	return customer, nil
}

// ListOrphans returns the unresolved gateway orphan ledger.
func (s *Service) ListOrphans(ctx context.Context) ([]models.GatewayOrphan, error) {
	return s.orphans.ListUnresolved(ctx)
}

// ResolveOrphan marks a ledger entry as handled.
func (s *Service) ResolveOrphan(ctx context.Context, id uint) error {
	if err := s.orphans.Resolve(ctx, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) recordOrphan(ctx context.Context, kind, externalID string, customerID *uint, email string, cause error) {
	if s.orphans == nil {
		return
	}
	o := &models.GatewayOrphan{
		Kind:       kind,
		ExternalID: externalID,
		CustomerID: customerID,
		Email:      email,
		Reason:     cause.Error(),
	}
	// the request context may already be gone
	if err := s.orphans.Create(context.WithoutCancel(ctx), o); err != nil {
		s.log.Error("Failed to record gateway orphan", zap.String("kind", kind), zap.String("external_id", externalID), zap.Error(err))
	}
}

// recordOrphanOnce skips the entry while an unresolved one for the same remote
// entity exists.
func (s *Service) recordOrphanOnce(ctx context.Context, kind, externalID string, customerID *uint, cause error) {
	if s.orphans == nil {
		return
	}
	open, err := s.orphans.HasUnresolved(ctx, kind, externalID)
	if err != nil {
		s.log.Warn("Failed to check gateway orphan ledger", zap.String("external_id", externalID), zap.Error(err))
	} else if open {
		return
	}
	s.recordOrphan(ctx, kind, externalID, customerID, "", cause)
}

func (s *Service) parseDueDate(remote string, fallback time.Time) time.Time {
	if remote == "" {
		return fallback
	}
	t, err := time.ParseInLocation(gateway.DateLayout, remote, s.loc)
	if err != nil {
		s.log.Warn("Unparseable due date from gateway", zap.String("next_due_date", remote))
		return fallback
	}
	return t
}

func localStatus(remote string) string {
	if remote == "" || remote == gateway.StatusActive {
		return models.SubscriptionStatusActive
	}
	return models.SubscriptionStatusInactive
}

func newer(a, b *models.Subscription) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
	"github.com/ManuelReschke/SubDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/SubDesk/internal/pkg/testutil"
)

type fixture struct {
	db    *gorm.DB
	repos *repository.Repositories
	gw    *gateway.Fake
	svc   *Service
	now   time.Time
	loc   *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	db := testutil.NewDB(t)
	f := &fixture{
		db:    db,
		repos: repository.NewRepositories(db),
		gw:    gateway.NewFake(),
		// 22:30 local time, one and a half hours before midnight
		now: time.Date(2026, 1, 16, 1, 30, 0, 0, time.UTC),
		loc: loc,
	}
	f.svc = f.service()
	return f
}

func (f *fixture) service() *Service {
	return NewService(Params{
		Customers:     f.repos.Customer,
		Subscriptions: f.repos.Subscription,
		Orphans:       f.repos.Orphan,
		Gateway:       f.gw,
		Log:           zap.NewNop(),
		Metrics:       metrics.New(prometheus.NewRegistry()),
		Now:           func() time.Time { return f.now },
		Location:      f.loc,
		Description:   "Assinatura Mensal - Sistema SaaS",
	})
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func validRequest(email string) SubscribeRequest {
	return SubscribeRequest{
		Name:          "Maria Silva",
		Email:         email,
		CpfCnpj:       "12345678901",
		Phone:         "11999998888",
		PostalCode:    "01001000",
		AddressNumber: "100",
		CreditCard: CreditCardInput{
			HolderName:  "MARIA SILVA",
			Number:      "4111111111111111",
			ExpiryMonth: "05",
			ExpiryYear:  "2030",
			CCV:         "123",
		},
		Value: 297,
	}
}

func TestSubscribeSuccessPersistsOnePair(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.Customer.AsaasCustomerID)
	assert.NotEmpty(t, res.Subscription.AsaasSubscriptionID)
	assert.Equal(t, models.SubscriptionStatusActive, res.Subscription.Status)
	assert.Equal(t, int64(1), f.count(t, &models.Customer{}))
	assert.Equal(t, int64(1), f.count(t, &models.Subscription{}))

	c, err := f.repos.Customer.GetByID(context.Background(), res.Customer.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Customer.AsaasCustomerID, c.AsaasCustomerID)
	require.NotNil(t, c.PostalCode)
	assert.Equal(t, "01001000", *c.PostalCode)
	assert.Nil(t, c.Complement)

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Subscription.AsaasSubscriptionID, s.AsaasSubscriptionID)
	assert.Equal(t, c.ID, s.CustomerID)
	assert.Equal(t, models.BillingTypeCreditCard, s.BillingType)
	assert.Nil(t, s.CanceledAt)

	assert.Equal(t, []string{gateway.OpCreateCustomer, gateway.OpCreateSubscription}, f.gw.Calls())
}

func TestSubscribeDefaultsCycleAndDueDate(t *testing.T) {
	f := newFixture(t)

	req := validRequest("joao@example.com")
	req.Cycle = ""
	res, err := f.svc.Subscribe(context.Background(), req)
	require.NoError(t, err)

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CycleMonthly, s.Cycle)
	assert.Equal(t, 297, s.Value)
	assert.Equal(t, "2026-01-16", s.NextDueDate.In(f.loc).Format(gateway.DateLayout))

	remote, err := f.gw.GetSubscription(context.Background(), res.Subscription.AsaasSubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-16", remote.NextDueDate)
	assert.Equal(t, string(models.CycleMonthly), remote.Cycle)
}

func TestFirstDueDateUsesLocation(t *testing.T) {
	f := newFixture(t)
	due := f.svc.FirstDueDate(time.Date(2026, 12, 31, 23, 59, 0, 0, f.loc))
	assert.Equal(t, "2027-01-01", due.Format(gateway.DateLayout))

	// 02:00 UTC is still the previous evening in São Paulo
	due = f.svc.FirstDueDate(time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-03-10", due.Format(gateway.DateLayout))
}

func TestSubscribeValidationHasNoExternalEffect(t *testing.T) {
	f := newFixture(t)

	req := validRequest("not-an-email")
	req.CreditCard.CCV = "1"
	req.Cycle = "WEEKLY"
	_, err := f.svc.Subscribe(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "creditCard.ccv")
	assert.Contains(t, verr.Fields, "cycle")
	assert.Empty(t, f.gw.Calls())
	assert.Equal(t, int64(0), f.count(t, &models.Customer{}))
}

func TestSubscribeCustomerFailureLeavesNoRows(t *testing.T) {
	f := newFixture(t)
	f.gw.CreateCustomerErr = &gateway.RequestError{Op: gateway.OpCreateCustomer, StatusCode: http.StatusBadRequest, Message: "CPF inválido"}

	_, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "CPF inválido", reqErr.Message)

	assert.Equal(t, int64(0), f.count(t, &models.Customer{}))
	assert.Equal(t, int64(0), f.count(t, &models.Subscription{}))
	assert.Equal(t, 0, f.gw.CallCount(gateway.OpCreateSubscription))
}

func TestSubscribeSubscriptionFailureKeepsCustomer(t *testing.T) {
	f := newFixture(t)
	f.gw.CreateSubscriptionErr = &gateway.RequestError{Op: gateway.OpCreateSubscription, StatusCode: http.StatusBadRequest, Message: "Cartão recusado"}

	_, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)

	assert.Equal(t, int64(1), f.count(t, &models.Customer{}))
	assert.Equal(t, int64(0), f.count(t, &models.Subscription{}))
}

func TestSubscribeCanceledContextIsTransportError(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Subscribe(ctx, validRequest("maria@example.com"))
	var trErr *gateway.TransportError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, int64(0), f.count(t, &models.Customer{}))
}

func TestSubscribeInactiveEchoIsStored(t *testing.T) {
	f := newFixture(t)
	f.gw.StatusOverride = "PENDING"

	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInactive, res.Subscription.Status)
}

type failingSubscriptions struct {
	repository.SubscriptionRepository
	createErr error
	cancelErr error
}

func (r *failingSubscriptions) Create(ctx context.Context, s *models.Subscription) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.SubscriptionRepository.Create(ctx, s)
}

func (r *failingSubscriptions) MarkCanceled(ctx context.Context, id uint, at time.Time) (bool, error) {
	if r.cancelErr != nil {
		return false, r.cancelErr
	}
	return r.SubscriptionRepository.MarkCanceled(ctx, id, at)
}

func TestSubscribePersistenceFailureRecordsOrphan(t *testing.T) {
	f := newFixture(t)
	f.repos.Subscription = &failingSubscriptions{SubscriptionRepository: f.repos.Subscription, createErr: errors.New("disk full")}
	svc := f.service()

	_, err := svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StepSubscription, perr.Step)

	orphans, err := svc.ListOrphans(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, models.OrphanKindSubscription, orphans[0].Kind)
	assert.Equal(t, perr.ExternalID, orphans[0].ExternalID)
	assert.Equal(t, "maria@example.com", orphans[0].Email)
	require.NotNil(t, orphans[0].CustomerID)

	require.NoError(t, svc.ResolveOrphan(context.Background(), orphans[0].ID))
	orphans, err = svc.ListOrphans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orphans)
	assert.ErrorIs(t, svc.ResolveOrphan(context.Background(), 999), ErrNotFound)
}

func TestConcurrentSubscribesAreIndependent(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	results := make([]*SubscribeResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Subscribe(context.Background(), validRequest(fmt.Sprintf("c%d@example.com", i)))
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, results[0].Customer.ID, results[1].Customer.ID)
	assert.NotEqual(t, results[0].Customer.AsaasCustomerID, results[1].Customer.AsaasCustomerID)
	assert.NotEqual(t, results[0].Subscription.AsaasSubscriptionID, results[1].Subscription.AsaasSubscriptionID)
	assert.Equal(t, int64(2), f.count(t, &models.Customer{}))
	assert.Equal(t, int64(2), f.count(t, &models.Subscription{}))
}

func TestSubscribeThenListCustomersRoundTrip(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	list, err := f.svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].TotalSubscriptions)
	assert.True(t, list[0].HasActiveSubscription)
	require.NotNil(t, list[0].ActiveSubscription)
	assert.Equal(t, res.Subscription.ID, list[0].ActiveSubscription.ID)
}

func TestCancelSuccess(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	requestedAt := f.now
	f.now = f.now.Add(time.Minute)
	require.NoError(t, f.svc.Cancel(context.Background(), res.Subscription.ID))

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInactive, s.Status)
	require.NotNil(t, s.CanceledAt)
	assert.False(t, s.CanceledAt.Before(requestedAt))
	assert.False(t, s.CanceledAtEstimated)

	list, err := f.svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].HasActiveSubscription)
	assert.Nil(t, list[0].ActiveSubscription)
}

func TestCancelGatewayFailureKeepsActive(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	f.gw.CancelSubscriptionErr = &gateway.TransportError{Op: gateway.OpCancelSubscription, Err: errors.New("connection reset")}
	err = f.svc.Cancel(context.Background(), res.Subscription.ID)
	require.Error(t, err)

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, s.Status)
	assert.Nil(t, s.CanceledAt)
}

func TestCancelUnknownIsNotFound(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Cancel(context.Background(), res.Subscription.ID+100), ErrNotFound)
	assert.Equal(t, 0, f.gw.CallCount(gateway.OpCancelSubscription))

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, s.Status)
}

func TestCancelAlreadyCanceledShortCircuits(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), res.Subscription.ID))

	assert.ErrorIs(t, f.svc.Cancel(context.Background(), res.Subscription.ID), ErrAlreadyCanceled)
	assert.Equal(t, 1, f.gw.CallCount(gateway.OpCancelSubscription))
}

func TestCancelPersistenceFailureRecordsOrphan(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	f.repos.Subscription = &failingSubscriptions{SubscriptionRepository: f.repos.Subscription, cancelErr: errors.New("lock wait timeout")}
	svc := f.service()

	err = svc.Cancel(context.Background(), res.Subscription.ID)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StepCancel, perr.Step)

	orphans, err := svc.ListOrphans(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, models.OrphanKindCancellation, orphans[0].Kind)
}

func TestHasActiveSubscriptionMatchesRows(t *testing.T) {
	f := newFixture(t)
	active, err := f.svc.Subscribe(context.Background(), validRequest("a@example.com"))
	require.NoError(t, err)
	canceled, err := f.svc.Subscribe(context.Background(), validRequest("b@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), canceled.Subscription.ID))

	list, err := f.svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, c := range list {
		switch c.ID {
		case active.Customer.ID:
			assert.True(t, c.HasActiveSubscription)
		case canceled.Customer.ID:
			assert.False(t, c.HasActiveSubscription)
			assert.Equal(t, 1, c.TotalSubscriptions)
		}
	}

	sum, err := f.svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalCustomers: 2, WithActiveSubscription: 1, WithoutActiveSubscription: 1}, sum)
}

func TestListSubscriptionsCarriesCustomer(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	subs, err := f.svc.ListSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].Customer)
	assert.Equal(t, res.Customer.ID, subs[0].Customer.ID)
	assert.Nil(t, subs[0].Subscription.Customer)
}

func TestCustomerDashboardAndAccountUpdate(t *testing.T) {
	f := newFixture(t)
	first, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), first.Subscription.ID))

	d, err := f.svc.CustomerDashboard(context.Background(), first.Customer.ID)
	require.NoError(t, err)
	assert.Len(t, d.Subscriptions, 1)
	assert.Nil(t, d.ActiveSubscription)
	assert.False(t, d.HasActiveSubscription)

	_, err = f.svc.CustomerDashboard(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	email := "  nova@example.com "
	pw := "segredo1"
	c, err := f.svc.UpdateCustomerAccount(context.Background(), first.Customer.ID, AccountUpdate{Email: &email, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, "nova@example.com", c.Email)
	assert.True(t, c.HasPortalAccess())

	stored, err := f.repos.Customer.GetByID(context.Background(), first.Customer.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("segredo1"))

	short := "123"
	_, err = f.svc.UpdateCustomerAccount(context.Background(), first.Customer.ID, AccountUpdate{Password: &short})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	_, err = f.svc.UpdateCustomerAccount(context.Background(), first.Customer.ID, AccountUpdate{})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestUpdateCustomerAccountOnePortalAccountPerEmail(t *testing.T) {
	f := newFixture(t)
	older, err := f.svc.Subscribe(context.Background(), validRequest("joao@example.com"))
	require.NoError(t, err)
	newer, err := f.svc.Subscribe(context.Background(), validRequest("joao@example.com"))
	require.NoError(t, err)

	// the newer row has no password, so the older one may take the portal account
	pw := "segredo1"
	_, err = f.svc.UpdateCustomerAccount(context.Background(), older.Customer.ID, AccountUpdate{Password: &pw})
	require.NoError(t, err)

	found, err := f.repos.Customer.GetPortalAccountByEmail(context.Background(), "joao@example.com")
	require.NoError(t, err)
	assert.Equal(t, older.Customer.ID, found.ID)

	_, err = f.svc.UpdateCustomerAccount(context.Background(), newer.Customer.ID, AccountUpdate{Password: &pw})
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	// changing the password of the existing account is not a duplicate
	other := "segredo2"
	_, err = f.svc.UpdateCustomerAccount(context.Background(), older.Customer.ID, AccountUpdate{Password: &other})
	require.NoError(t, err)

	// the newer row may still move to a free email without portal access
	email := "joao.novo@example.com"
	c, err := f.svc.UpdateCustomerAccount(context.Background(), newer.Customer.ID, AccountUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, c.Email)
	assert.False(t, c.HasPortalAccess())
}

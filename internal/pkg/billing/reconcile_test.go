package billing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
)

func TestSyncSubscriptionCopiesRemoteState(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	remote, err := f.gw.GetSubscription(context.Background(), res.Subscription.AsaasSubscriptionID)
	require.NoError(t, err)
	remote.NextDueDate = "2026-02-16"
	f.gw.Put(*remote)

	out, err := f.svc.SyncSubscription(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncUpdated, out.Outcome)

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-16", s.NextDueDate.In(f.loc).Format(gateway.DateLayout))
	assert.Equal(t, models.SubscriptionStatusActive, s.Status)

	out, err = f.svc.SyncSubscription(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncUnchanged, out.Outcome)
}

func TestSyncSubscriptionMarksRemoteCancellation(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	// canceled directly at the gateway
	require.NoError(t, f.gw.CancelSubscription(context.Background(), res.Subscription.AsaasSubscriptionID))

	out, err := f.svc.SyncSubscription(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncCanceled, out.Outcome)

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInactive, s.Status)
	require.NotNil(t, s.CanceledAt)
}

func TestSyncSubscriptionNeverReactivatesCanceledRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Subscribe(ctx, validRequest("maria@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, res.Subscription.ID))

	// the gateway still bills it
	remote, err := f.gw.GetSubscription(ctx, res.Subscription.AsaasSubscriptionID)
	require.NoError(t, err)
	remote.Status = gateway.StatusActive
	remote.Deleted = false
	remote.NextDueDate = "2026-02-16"
	f.gw.Put(*remote)

	for i := 0; i < 2; i++ {
		out, err := f.svc.SyncSubscription(ctx, res.Subscription.ID)
		require.NoError(t, err)
		assert.Equal(t, SyncRemoteActive, out.Outcome)
		assert.Equal(t, models.SubscriptionStatusInactive, out.Status)
	}

	s, err := f.repos.Subscription.GetByID(ctx, res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInactive, s.Status)
	require.NotNil(t, s.CanceledAt)
	assert.Equal(t, "2026-01-16", s.NextDueDate.In(f.loc).Format(gateway.DateLayout))

	orphans, err := f.repos.Orphan.ListUnresolved(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, models.OrphanKindRemoteActive, orphans[0].Kind)
	assert.Equal(t, res.Subscription.AsaasSubscriptionID, orphans[0].ExternalID)
	require.NotNil(t, orphans[0].CustomerID)
	assert.Equal(t, res.Customer.ID, *orphans[0].CustomerID)
}

func TestSyncSubscriptionUnknownAndFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SyncSubscription(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := f.svc.Subscribe(context.Background(), validRequest("maria@example.com"))
	require.NoError(t, err)

	f.gw.GetSubscriptionErr = &gateway.TransportError{Op: gateway.OpGetSubscription, Err: errors.New("reset")}
	out, err := f.svc.SyncSubscription(context.Background(), res.Subscription.ID)
	require.Error(t, err)
	assert.Equal(t, SyncFailed, out.Outcome)

	s, err := f.repos.Subscription.GetByID(context.Background(), res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, s.Status)
}

func TestReconcileContinuesPastRowErrors(t *testing.T) {
	f := newFixture(t)
	kept, err := f.svc.Subscribe(context.Background(), validRequest("a@example.com"))
	require.NoError(t, err)
	gone, err := f.svc.Subscribe(context.Background(), validRequest("b@example.com"))
	require.NoError(t, err)

	// a row whose remote side never existed
	c, err := f.repos.Customer.GetByID(context.Background(), kept.Customer.ID)
	require.NoError(t, err)
	missing := &models.Subscription{
		CustomerID:          c.ID,
		AsaasSubscriptionID: "sub_unknown",
		Status:              models.SubscriptionStatusActive,
		Value:               97,
		NextDueDate:         f.now,
		BillingType:         models.BillingTypeCreditCard,
		Cycle:               models.CycleMonthly,
	}
	require.NoError(t, f.repos.Subscription.Create(context.Background(), missing))

	require.NoError(t, f.gw.CancelSubscription(context.Background(), gone.Subscription.AsaasSubscriptionID))

	report, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Canceled)
	assert.Equal(t, 0, report.Failed)

	outcomes := map[uint]string{}
	for _, r := range report.Results {
		outcomes[r.SubscriptionID] = r.Outcome
	}
	assert.Equal(t, SyncUnchanged, outcomes[kept.Subscription.ID])
	assert.Equal(t, SyncCanceled, outcomes[gone.Subscription.ID])
	assert.Equal(t, SyncMissingRemote, outcomes[missing.ID])

	active, err := f.repos.Subscription.ListByStatus(context.Background(), models.SubscriptionStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.Subscription.ID, active[0].ID)
}

func TestReconcileCollectsFailures(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Subscribe(context.Background(), validRequest("a@example.com"))
	require.NoError(t, err)
	f.gw.GetSubscriptionErr = &gateway.RequestError{Op: gateway.OpGetSubscription, StatusCode: http.StatusUnauthorized, Message: "invalid key"}

	report, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[0].Error, "invalid key")
}

func TestReconcileStopsOnContext(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Subscribe(context.Background(), validRequest("a@example.com"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.Reconcile(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

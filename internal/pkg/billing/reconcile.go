package billing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/gateway"
)

// SyncSubscription copies the remote status and next due date of one
// subscription into the local mirror. A subscription the gateway no longer
// knows counts as canceled.
func (s *Service) SyncSubscription(ctx context.Context, subscriptionID uint) (*SyncResult, error) {
	sub, err := s.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.sync(ctx, sub)
}

func (s *Service) sync(ctx context.Context, sub *models.Subscription) (*SyncResult, error) {
	res := &SyncResult{
		SubscriptionID:      sub.ID,
		AsaasSubscriptionID: sub.AsaasSubscriptionID,
		Status:              sub.Status,
		NextDueDate:         sub.NextDueDate,
	}
	log := s.log.With(zap.Uint("subscription_id", sub.ID), zap.String("asaas_subscription_id", sub.AsaasSubscriptionID))

	remote, err := s.gw.GetSubscription(ctx, sub.AsaasSubscriptionID)
	missing := false
	var reqErr *gateway.RequestError
	switch {
	case err == nil:
	case errors.As(err, &reqErr) && reqErr.IsNotFound():
		log.Warn("Subscription missing at gateway")
		missing = true
		remote = &gateway.Subscription{ID: sub.AsaasSubscriptionID, Status: gateway.StatusInactive, Deleted: true}
	default:
		res.Outcome = SyncFailed
		res.Error = err.Error()
		s.metrics.Reconciled(SyncFailed)
		return res, err
	}

	status := models.SubscriptionStatusInactive
	if remote.IsActive() {
		status = models.SubscriptionStatusActive
	}
	due := s.parseDueDate(remote.NextDueDate, sub.NextDueDate)

	switch {
	case !sub.IsActive() && status == models.SubscriptionStatusActive:
		// canceled rows are never reactivated, a new signup creates a new row
		log.Warn("Gateway still bills a locally canceled subscription")
		customerID := sub.CustomerID
		s.recordOrphanOnce(ctx, models.OrphanKindRemoteActive, sub.AsaasSubscriptionID, &customerID, errRemoteActive)
		res.Outcome = SyncRemoteActive
		s.metrics.Reconciled(res.Outcome)
		return res, nil
	case sub.IsActive() && status == models.SubscriptionStatusInactive:
		if _, err := s.subscriptions.MarkCanceled(ctx, sub.ID, s.now()); err != nil {
			return s.syncFailed(res, err)
		}
		if err := s.subscriptions.UpdateRemoteState(ctx, sub.ID, status, due); err != nil {
			return s.syncFailed(res, err)
		}
		res.Outcome = SyncCanceled
		if missing {
			res.Outcome = SyncMissingRemote
		}
	case status != sub.Status || !due.Equal(sub.NextDueDate):
		if err := s.subscriptions.UpdateRemoteState(ctx, sub.ID, status, due); err != nil {
			return s.syncFailed(res, err)
		}
		res.Outcome = SyncUpdated
	default:
		res.Outcome = SyncUnchanged
	}

	res.Status = status
	res.NextDueDate = due
	log.Info("Subscription synced", zap.String("outcome", res.Outcome), zap.String("status", status))
	s.metrics.Reconciled(res.Outcome)
	return res, nil
}

func (s *Service) syncFailed(res *SyncResult, err error) (*SyncResult, error) {
	res.Outcome = SyncFailed
	res.Error = err.Error()
	s.metrics.Reconciled(SyncFailed)
	return res, err
}

// Reconcile syncs every local ACTIVE subscription, one at a time. Row errors
// are collected in the report; only a done context stops the run.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	subs, err := s.subscriptions.ListByStatus(ctx, models.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Results: make([]SyncResult, 0, len(subs))}
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.sync(ctx, &subs[i])
		report.Checked++
		report.Results = append(report.Results, *res)
		switch res.Outcome {
		case SyncUpdated:
			report.Updated++
		case SyncCanceled, SyncMissingRemote:
			report.Canceled++
		case SyncFailed:
			report.Failed++
		case SyncRemoteActive:
			report.Mismatched++
		}
		if err != nil {
			s.log.Warn("Reconcile row failed", zap.Uint("subscription_id", subs[i].ID), zap.Error(err))
		}
	}

	s.log.Info("Reconcile finished",
		zap.Int("checked", report.Checked),
		zap.Int("updated", report.Updated),
		zap.Int("canceled", report.Canceled),
		zap.Int("failed", report.Failed),
		zap.Int("mismatched", report.Mismatched),
	)
	return report, nil
}

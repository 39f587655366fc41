package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
	"github.com/ManuelReschke/SubDesk/internal/pkg/testutil"
)

func newRepos(t *testing.T) (*repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return repository.NewRepositories(db), db
}

func mustCustomer(t *testing.T, repos *repository.Repositories, ext string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		AsaasCustomerID: ext,
		Name:            "Maria Silva",
		Email:           ext + "@example.com",
		CpfCnpj:         "12345678901",
		Phone:           "11999998888",
	}
	require.NoError(t, repos.Customer.Create(context.Background(), c))
	return c
}

func mustSubscription(t *testing.T, repos *repository.Repositories, customerID uint, ext, status string) *models.Subscription {
	t.Helper()
	s := &models.Subscription{
		CustomerID:          customerID,
		AsaasSubscriptionID: ext,
		Status:              status,
		Value:               297,
		NextDueDate:         time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		BillingType:         models.BillingTypeCreditCard,
		Cycle:               models.CycleMonthly,
	}
	require.NoError(t, repos.Subscription.Create(context.Background(), s))
	return s
}

func TestCustomerExternalIDIsUnique(t *testing.T) {
	repos, _ := newRepos(t)
	mustCustomer(t, repos, "cus_1")

	dup := &models.Customer{AsaasCustomerID: "cus_1", Name: "Other", Email: "o@example.com", CpfCnpj: "1", Phone: "1"}
	err := repos.Customer.Create(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSubscriptionExternalIDIsUnique(t *testing.T) {
	repos, _ := newRepos(t)
	c := mustCustomer(t, repos, "cus_1")
	mustSubscription(t, repos, c.ID, "sub_1", models.SubscriptionStatusActive)

	dup := &models.Subscription{CustomerID: c.ID, AsaasSubscriptionID: "sub_1", Status: "ACTIVE", Value: 1, NextDueDate: time.Now(), BillingType: "CREDIT_CARD", Cycle: models.CycleMonthly}
	err := repos.Subscription.Create(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserEmailIsUnique(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.User.Create(ctx, &models.User{Name: "A", Email: "a@example.com", Password: "x", Role: models.RoleAdmin}))
	err := repos.User.Create(ctx, &models.User{Name: "B", Email: "a@example.com", Password: "y", Role: models.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	count, err := repos.User.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCustomerSummary(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	withActive := mustCustomer(t, repos, "cus_active")
	mustSubscription(t, repos, withActive.ID, "sub_old", models.SubscriptionStatusInactive)
	active := mustSubscription(t, repos, withActive.ID, "sub_new", models.SubscriptionStatusActive)

	canceledOnly := mustCustomer(t, repos, "cus_canceled")
	mustSubscription(t, repos, canceledOnly.ID, "sub_c", models.SubscriptionStatusInactive)

	mustCustomer(t, repos, "cus_none")

	rows, err := repos.Customer.ListWithSubscriptionSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byExt := map[string]repository.CustomerWithSummary{}
	for _, r := range rows {
		byExt[r.AsaasCustomerID] = r
	}

	assert.True(t, byExt["cus_active"].HasActiveSubscription)
	require.NotNil(t, byExt["cus_active"].ActiveSubscription)
	assert.Equal(t, active.ID, byExt["cus_active"].ActiveSubscription.ID)
	assert.Equal(t, 2, byExt["cus_active"].TotalSubscriptions)

	assert.False(t, byExt["cus_canceled"].HasActiveSubscription)
	assert.Nil(t, byExt["cus_canceled"].ActiveSubscription)
	assert.Equal(t, 1, byExt["cus_canceled"].TotalSubscriptions)

	assert.Equal(t, 0, byExt["cus_none"].TotalSubscriptions)

	total, err := repos.Customer.Count(ctx)
	require.NoError(t, err)
	withSub, err := repos.Customer.CountWithActiveSubscription(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 1, withSub)
}

func TestSubscriptionListWithCustomerToleratesOrphans(t *testing.T) {
	repos, db := newRepos(t)
	ctx := context.Background()

	c := mustCustomer(t, repos, "cus_1")
	mustSubscription(t, repos, c.ID, "sub_1", models.SubscriptionStatusActive)

	// simulate a dangling reference left behind by manual data repair
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	mustSubscription(t, repos, 9999, "sub_orphan", models.SubscriptionStatusActive)

	subs, err := repos.Subscription.ListWithCustomer(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	for _, s := range subs {
		if s.AsaasSubscriptionID == "sub_orphan" {
			assert.Nil(t, s.Customer)
		} else {
			require.NotNil(t, s.Customer)
			assert.Equal(t, "cus_1", s.Customer.AsaasCustomerID)
		}
	}
}

func TestMarkCanceledOnlyOnce(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	c := mustCustomer(t, repos, "cus_1")
	s := mustSubscription(t, repos, c.ID, "sub_1", models.SubscriptionStatusActive)

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	changed, err := repos.Subscription.MarkCanceled(ctx, s.ID, at)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repos.Subscription.MarkCanceled(ctx, s.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repos.Subscription.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInactive, got.Status)
	require.NotNil(t, got.CanceledAt)
	assert.True(t, at.Equal(got.CanceledAt.UTC()))
	assert.False(t, got.CanceledAtEstimated)
}

func TestUpdateRemoteState(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	c := mustCustomer(t, repos, "cus_1")
	s := mustSubscription(t, repos, c.ID, "sub_1", models.SubscriptionStatusActive)

	next := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Subscription.UpdateRemoteState(ctx, s.ID, models.SubscriptionStatusActive, next))

	got, err := repos.Subscription.GetByExternalID(ctx, "sub_1")
	require.NoError(t, err)
	assert.True(t, next.Equal(got.NextDueDate.UTC()))

	active, err := repos.Subscription.ListByStatus(ctx, models.SubscriptionStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSettingsLazySingleton(t *testing.T) {
	repos, db := newRepos(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := repos.Setting.Get(ctx)
			assert.NoError(t, err)
			if s != nil {
				assert.Equal(t, models.DefaultSiteName, s.SiteName)
			}
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	s, err := repos.Setting.Get(ctx)
	require.NoError(t, err)
	s.SiteName = "Minha Marca"
	s.Whatsapp = models.OptionalString("5511999998888")
	require.NoError(t, repos.Setting.Save(ctx, s))

	pixel := "123456"
	updated, err := repos.Setting.SaveScripts(ctx, &pixel, nil)
	require.NoError(t, err)
	assert.Equal(t, "Minha Marca", updated.SiteName)
	assert.Equal(t, "5511999998888", models.StringOrEmpty(updated.Whatsapp))
	assert.Equal(t, "123456", models.StringOrEmpty(updated.FacebookPixel))
	assert.Nil(t, updated.GoogleAnalytics)
}

func TestFaqOrdering(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Faq.Create(ctx, &models.Faq{Question: "third", Answer: "a", DisplayOrder: 2}))
	require.NoError(t, repos.Faq.Create(ctx, &models.Faq{Question: "first", Answer: "a", DisplayOrder: 0}))
	require.NoError(t, repos.Faq.Create(ctx, &models.Faq{Question: "second", Answer: "a", DisplayOrder: 0}))

	faqs, err := repos.Faq.List(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{faqs[0].Question, faqs[1].Question, faqs[2].Question})

	faqs[2].DisplayOrder = 0
	faqs[2].Question = "now first"
	require.NoError(t, repos.Faq.Update(ctx, &faqs[2]))

	require.NoError(t, repos.Faq.Delete(ctx, faqs[0].ID))
	assert.True(t, repository.IsNotFound(repos.Faq.Delete(ctx, faqs[0].ID)))

	faqs, err = repos.Faq.List(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 2)
	assert.Equal(t, "now first", faqs[0].Question)
	assert.Equal(t, "second", faqs[1].Question)
}

func TestVideoHeroIsExclusive(t *testing.T) {
	repos, db := newRepos(t)
	ctx := context.Background()

	a := &models.Video{Title: "A", Description: "a", YoutubeURL: "https://youtu.be/a", IsHeroVideo: true}
	b := &models.Video{Title: "B", Description: "b", YoutubeURL: "https://youtu.be/b"}
	require.NoError(t, repos.Video.Create(ctx, a))
	require.NoError(t, repos.Video.Create(ctx, b))

	hero, err := repos.Video.GetHero(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, hero.ID)

	b.IsHeroVideo = true
	require.NoError(t, repos.Video.Update(ctx, b))

	var heroes int64
	require.NoError(t, db.Model(&models.Video{}).Where("is_hero_video = ?", true).Count(&heroes).Error)
	assert.EqualValues(t, 1, heroes)

	hero, err = repos.Video.GetHero(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, hero.ID)

	c := &models.Video{Title: "C", Description: "c", YoutubeURL: "https://youtu.be/c", IsHeroVideo: true}
	require.NoError(t, repos.Video.Create(ctx, c))
	require.NoError(t, db.Model(&models.Video{}).Where("is_hero_video = ?", true).Count(&heroes).Error)
	assert.EqualValues(t, 1, heroes)

	require.NoError(t, repos.Video.Delete(ctx, c.ID))
	_, err = repos.Video.GetHero(ctx)
	assert.True(t, repository.IsNotFound(err))
}

func TestOrphanLedger(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	o := &models.GatewayOrphan{Kind: models.OrphanKindCustomer, ExternalID: "cus_x", Email: "x@example.com", Reason: "db down"}
	require.NoError(t, repos.Orphan.Create(ctx, o))

	open, err := repos.Orphan.ListUnresolved(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	has, err := repos.Orphan.HasUnresolved(ctx, models.OrphanKindCustomer, "cus_x")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repos.Orphan.HasUnresolved(ctx, models.OrphanKindSubscription, "cus_x")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repos.Orphan.Resolve(ctx, o.ID, time.Now()))
	has, err = repos.Orphan.HasUnresolved(ctx, models.OrphanKindCustomer, "cus_x")
	require.NoError(t, err)
	assert.False(t, has)
	assert.True(t, repository.IsNotFound(repos.Orphan.Resolve(ctx, o.ID, time.Now())))

	open, err = repos.Orphan.ListUnresolved(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

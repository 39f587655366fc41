// Package seed creates the default operator and the landing page FAQs on an
// empty database.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SubDesk/app/models"
	"github.com/ManuelReschke/SubDesk/app/repository"
)

const (
	DefaultAdminName     = "Administrador"
	DefaultAdminEmail    = "admin@sistema.com"
	DefaultAdminPassword = "admin123"
)

// Admin creates the default admin when no operator exists. It reports whether
// a user was created.
func Admin(ctx context.Context, users repository.UserRepository, log *zap.Logger) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		log.Info("Users already present, skipping admin seed", zap.Int64("users", n))
		return false, nil
	}

	admin, err := models.NewUser(DefaultAdminName, DefaultAdminEmail, DefaultAdminPassword, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("build admin: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	log.Warn("Default admin created, change the password", zap.String("email", DefaultAdminEmail))
	return true, nil
}

// Faqs inserts DefaultFaqs when the table is empty and returns how many rows
// were written.
func Faqs(ctx context.Context, faqs repository.FaqRepository, log *zap.Logger) (int, error) {
	n, err := faqs.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count faqs: %w", err)
	}
	if n > 0 {
		log.Info("FAQs already present, skipping seed", zap.Int64("faqs", n))
		return 0, nil
	}

	for i := range DefaultFaqs {
		faq := DefaultFaqs[i]
		if err := faqs.Create(ctx, &faq); err != nil {
			return i, fmt.Errorf("create faq %d: %w", faq.DisplayOrder, err)
		}
	}
	log.Info("FAQs seeded", zap.Int("count", len(DefaultFaqs)))
	return len(DefaultFaqs), nil
}

// All runs every seed.
func All(ctx context.Context, repos *repository.Repositories, log *zap.Logger) error {
	if _, err := Admin(ctx, repos.User, log); err != nil {
		return err
	}
	_, err := Faqs(ctx, repos.Faq, log)
	return err
}

package session

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/SubDesk/internal/pkg/cache"
	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
)

// Redis databases per concern. The response cache uses cache.DatabaseCache.
const (
	DatabaseSessions = 1
	DatabaseLimiter  = 2
)

// Session keys.
const (
	KeyUserID     = "user_id"
	KeyCustomerID = "customer_id"
)

// CookieName is the session cookie.
const CookieName = "session_id"

// NewStorage returns a redis backed fiber.Storage on the given database, or
// nil when no cache server is configured. Fiber middlewares fall back to
// their in-memory storage on nil.
func NewStorage(cfg config.CacheConfig, database int) fiber.Storage {
	return cache.NewRedisStorage(cfg, database)
}

// NewStore creates the session store for operator and customer portal logins.
func NewStore(cfg config.SessionConfig, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		Expiration:     cfg.Expiration,
		KeyLookup:      "cookie:" + CookieName,
	})
}

// Login binds id under key to a fresh session id.
func Login(store *session.Store, c *fiber.Ctx, key string, id uint) error {
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(key, id)
	return sess.Save()
}

// Logout destroys the current session.
func Logout(store *session.Store, c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// GetID reads an id stored by Login. Missing or malformed values return 0.
func GetID(store *session.Store, c *fiber.Ctx, key string) uint {
	sess, err := store.Get(c)
	if err != nil {
		return 0
	}
	switch v := sess.Get(key).(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case uint64:
		return uint(v)
	case int64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

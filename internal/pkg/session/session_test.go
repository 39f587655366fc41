package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SubDesk/internal/pkg/config"
)

func newSessionApp() *fiber.App {
	store := NewStore(config.SessionConfig{Expiration: time.Hour}, nil)
	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		return Login(store, c, KeyUserID, 42)
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(strconv.Itoa(int(GetID(store, c, KeyUserID))) + "/" +
			strconv.Itoa(int(GetID(store, c, KeyCustomerID))))
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		return Logout(store, c)
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, ck *http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func cookieFrom(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	return nil
}

func TestLoginGetIDLogout(t *testing.T) {
	app := newSessionApp()

	resp, _ := call(t, app, http.MethodPost, "/login", nil)
	ck := cookieFrom(resp)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	_, body := call(t, app, http.MethodGet, "/me", ck)
	assert.Equal(t, "42/0", body)

	call(t, app, http.MethodPost, "/logout", ck)
	_, body = call(t, app, http.MethodGet, "/me", ck)
	assert.Equal(t, "0/0", body)
}

func TestGetIDWithoutSession(t *testing.T) {
	_, body := call(t, newSessionApp(), http.MethodGet, "/me", nil)
	assert.Equal(t, "0/0", body)
}

func TestNewStorageWithoutCacheServer(t *testing.T) {
	assert.Nil(t, NewStorage(config.CacheConfig{}, DatabaseSessions))
}

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/SubDesk/app/controllers"
	"github.com/ManuelReschke/SubDesk/internal/pkg/authz"
	"github.com/ManuelReschke/SubDesk/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Deps
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	d := h.deps

	authController := controllers.NewAuthController(d.Repos.User, d.Sessions, d.Log)
	subscriptionController := controllers.NewSubscriptionController(d.Billing, d.Log)
	customerController := controllers.NewCustomerController(d.Billing, d.Log)
	portalController := controllers.NewCustomerPortalController(d.Repos.Customer, d.Billing, d.Sessions, d.Log)
	settingController := controllers.NewSettingController(d.Repos.Setting, d.Icons, d.Cache, d.Log)
	contentController := controllers.NewContentController(d.Repos.Faq, d.Repos.Video, d.Log)
	userController := controllers.NewUserController(d.Repos.User, d.Log)
	orphanController := controllers.NewOrphanController(d.Billing, d.Log)

	api := app.Group("/api")

	// Auth
	api.Post("/auth/login", authController.HandleLogin)
	api.Post("/auth/logout", authController.HandleLogout)
	api.Get("/auth/me", middleware.RequirePermission(authz.ViewOwnAccount), authController.HandleMe)

	// Subscriptions
	manageSubs := middleware.RequirePermission(authz.ManageSubscriptions)
	api.Post("/subscriptions", subscribeLimiter(d), subscriptionController.HandleCreate)
	api.Get("/subscriptions", manageSubs, subscriptionController.HandleList)
	api.Post("/subscriptions/reconcile", manageSubs, subscriptionController.HandleReconcile)
	api.Post("/subscriptions/:id/sync", manageSubs, subscriptionController.HandleSync)
	api.Delete("/subscriptions/:id", manageSubs, subscriptionController.HandleCancel)

	// Customers
	api.Get("/customers", middleware.RequirePermission(authz.ViewCustomers), customerController.HandleList)
	api.Get("/customers/summary", middleware.RequirePermission(authz.ViewCustomers), customerController.HandleSummary)
	api.Patch("/customers/:id", middleware.RequirePermission(authz.ManageCustomers), customerController.HandleUpdateAccount)

	// Gateway orphan ledger
	api.Get("/billing/orphans", manageSubs, orphanController.HandleList)
	api.Post("/billing/orphans/:id/resolve", manageSubs, orphanController.HandleResolve)

	// Site content
	manageContent := middleware.RequirePermission(authz.ManageContent)
	api.Get("/settings", settingController.HandleGet)
	api.Post("/settings", manageContent, settingController.HandleSave)
	api.Post("/settings/scripts", manageContent, settingController.HandleSaveScripts)

	api.Get("/faqs", contentController.HandleListFaqs)
	api.Post("/faqs", manageContent, contentController.HandleCreateFaq)
	api.Put("/faqs/:id", manageContent, contentController.HandleUpdateFaq)
	api.Delete("/faqs/:id", manageContent, contentController.HandleDeleteFaq)

	api.Get("/videos", contentController.HandleListVideos)
	api.Post("/videos", manageContent, contentController.HandleCreateVideo)
	api.Put("/videos/:id", manageContent, contentController.HandleUpdateVideo)
	api.Delete("/videos/:id", manageContent, contentController.HandleDeleteVideo)

	// Operators
	manageUsers := middleware.RequirePermission(authz.ManageUsers)
	api.Get("/users", manageUsers, userController.HandleList)
	api.Post("/users", manageUsers, userController.HandleCreate)
	api.Delete("/users/:id", manageUsers, userController.HandleDelete)

	// Customer portal
	api.Post("/customer/auth/login", portalController.HandleLogin)
	api.Post("/customer/auth/logout", portalController.HandleLogout)
	api.Get("/customer/auth/me", middleware.RequireCustomer, portalController.HandleMe)
	api.Get("/customer/dashboard", middleware.RequireCustomer, portalController.HandleDashboard)
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

// subscribeLimiter throttles the public signup per client IP.
func subscribeLimiter(d Deps) fiber.Handler {
	limit := d.Limiter.Max
	if limit <= 0 {
		limit = 10
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: d.Limiter.Expiration,
		Storage:    d.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Muitas tentativas. Aguarde um momento e tente novamente.",
			})
		},
	})
}

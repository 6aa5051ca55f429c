package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/loadbridge-backend/api/controllers"
	"github.com/angelmondragon/loadbridge-backend/api/middleware"
	"github.com/angelmondragon/loadbridge-backend/internal/auth"
	"github.com/angelmondragon/loadbridge-backend/internal/deals"
	"github.com/angelmondragon/loadbridge-backend/internal/deliveries"
	"github.com/angelmondragon/loadbridge-backend/internal/dispatch"
	"github.com/angelmondragon/loadbridge-backend/internal/notifications"
	"github.com/angelmondragon/loadbridge-backend/internal/products"
	"github.com/angelmondragon/loadbridge-backend/internal/profiles"
	"github.com/angelmondragon/loadbridge-backend/pkg/auth/session"
	"github.com/angelmondragon/loadbridge-backend/pkg/config"
	"github.com/angelmondragon/loadbridge-backend/pkg/db"
	"github.com/angelmondragon/loadbridge-backend/pkg/enums"
	"github.com/angelmondragon/loadbridge-backend/pkg/logger"
	"github.com/angelmondragon/loadbridge-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Products      products.Service
	Deals         deals.Service
	Dispatch      dispatch.Service
	Deliveries    deliveries.Service
	Profiles      profiles.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.ProfileContext(logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/deals", func(r chi.Router) {
			r.Post("/", controllers.CreateDeal(svcs.Deals, logg))
			r.Get("/", controllers.ListDeals(svcs.Deals, logg))
			r.Get("/{dealId}", controllers.GetDeal(svcs.Deals, logg))
			r.Post("/{dealId}/respond", controllers.RespondToDeal(svcs.Deals, logg))
			r.Post("/{dealId}/cancel", controllers.CancelDeal(svcs.Deals, logg))
			r.Get("/{dealId}/driver-requests", controllers.ListDealDriverRequests(svcs.Dispatch, logg))
			r.Post("/{dealId}/driver-requests", controllers.RequestDriver(svcs.Dispatch, logg))
			r.Post("/{dealId}/delivery", controllers.MaterializeDelivery(svcs.Deliveries, logg))
		})

		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleSupplier.String(), logg))
				r.Post("/", controllers.SupplierCreateProduct(svcs.Products, logg))
				r.Put("/{productId}", controllers.SupplierUpdateProduct(svcs.Products, logg))
			})
		})

		r.Route("/v1/deliveries", func(r chi.Router) {
			r.Get("/{deliveryId}", controllers.GetDelivery(svcs.Deliveries, logg))
			// Start/complete stay outside the driver guard: the handling
			// party moves driverless supplier- or seller-handled deliveries.
			r.Post("/{deliveryId}/start", controllers.StartDelivery(svcs.Deliveries, logg))
			r.Post("/{deliveryId}/complete", controllers.CompleteDelivery(svcs.Deliveries, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleDriver.String(), logg))
				r.Get("/", controllers.ListDriverDeliveries(svcs.Deliveries, logg))
				r.Get("/available", controllers.ListAvailableDeliveries(svcs.Deliveries, logg))
				r.Post("/{deliveryId}/accept", controllers.AcceptDelivery(svcs.Deliveries, logg))
			})
		})

		r.Route("/v1/driver", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleDriver.String(), logg))
			r.Get("/profile", controllers.GetDriverProfile(svcs.Profiles, logg))
			r.Put("/availability", controllers.UpdateDriverAvailability(svcs.Profiles, logg))
			r.Get("/requests", controllers.DriverRequestInbox(svcs.Dispatch, logg))
			r.Post("/requests/{requestId}/respond", controllers.DriverRespondToRequest(svcs.Dispatch, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}

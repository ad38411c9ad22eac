package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anafuentes/pressroute-backend/api/controllers"
	"github.com/anafuentes/pressroute-backend/api/middleware"
	"github.com/anafuentes/pressroute-backend/internal/auth"
	"github.com/anafuentes/pressroute-backend/internal/companies"
	"github.com/anafuentes/pressroute-backend/internal/events"
	"github.com/anafuentes/pressroute-backend/internal/locations"
	"github.com/anafuentes/pressroute-backend/internal/pickups"
	"github.com/anafuentes/pressroute-backend/internal/pricelists"
	routesvc "github.com/anafuentes/pressroute-backend/internal/routes"
	"github.com/anafuentes/pressroute-backend/internal/settings"
	"github.com/anafuentes/pressroute-backend/internal/users"
	"github.com/anafuentes/pressroute-backend/pkg/auth/session"
	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/anafuentes/pressroute-backend/pkg/metrics"
	pkgredis "github.com/anafuentes/pressroute-backend/pkg/redis"
)

// Services bundles the domain services the router mounts.
type Services struct {
	Auth       auth.Service
	Users      users.Service
	Companies  companies.Service
	Locations  locations.Service
	Routes     routesvc.Service
	Pricelists pricelists.Service
	Pickups    pickups.Service
	Settings   settings.Service
	Events     events.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	healthChecks map[string]controllers.Pinger,
	redisClient *pkgredis.Client,
	sessionChecker session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPEmailLimit,
	)
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	// A nil *redis.Client stored in an interface is not a nil interface,
	// so the stores are only assigned when the client is present.
	var idemStore pkgredis.IdempotencyStore
	var rateStore middleware.RateLimiterStore
	if redisClient != nil {
		idemStore = redisClient
		rateStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthChecks))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Route discovery is public so customers can check coverage before
	// they have an account.
	r.Get("/api/v1/routes/zip/{zip}", controllers.RouteLookupByZip(svcs.Routes, logg))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(otpPolicy, rateStore, logg)).Post("/otp/send", controllers.AuthSendOTP(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, rateStore, logg)).Post("/otp/check", controllers.AuthCheckOTP(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/sign-out", controllers.AuthSignOut(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, rateStore, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UserMe(svcs.Users, logg))
			r.Post("/me/password", controllers.UserChangePassword(svcs.Users, logg))
			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Group(func(r chi.Router) {
				r.Post("/", controllers.UserCreate(svcs.Users, logg))
				r.Get("/", controllers.UserList(svcs.Users, logg))
				r.Patch("/{userID}/role", controllers.UserSetRole(svcs.Users, logg))
				r.Delete("/{userID}", controllers.UserDeactivate(svcs.Users, logg))
			})
			r.Get("/{userID}", controllers.UserGet(svcs.Users, logg))
			r.Patch("/{userID}", controllers.UserUpdate(svcs.Users, logg))
		})

		r.Route("/companies", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Group(func(r chi.Router) {
				r.Post("/", controllers.CompanyCreate(svcs.Companies, logg))
				r.Patch("/{companyID}", controllers.CompanyUpdate(svcs.Companies, logg))
				r.Post("/{companyID}/manager", controllers.CompanyAssignManager(svcs.Companies, logg))
				r.Delete("/{companyID}", controllers.CompanyDeactivate(svcs.Companies, logg))
			})
			r.Get("/", controllers.CompanyList(svcs.Companies, logg))
			r.Get("/{companyID}", controllers.CompanyGet(svcs.Companies, logg))
			r.With(middleware.RequireStaff(logg)).Get("/{companyID}/routes", controllers.RouteListByCompany(svcs.Routes, logg))
			r.With(middleware.RequireStaff(logg)).Get("/{companyID}/pricelists", controllers.PricelistListByCompany(svcs.Pricelists, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.Post("/", controllers.LocationCreate(svcs.Locations, logg))
			r.Get("/", controllers.LocationList(svcs.Locations, logg))
			r.Patch("/{locationID}", controllers.LocationUpdate(svcs.Locations, logg))
			r.Delete("/{locationID}", controllers.LocationDelete(svcs.Locations, logg))
		})

		r.Route("/routes", func(r chi.Router) {
			r.With(middleware.RequireStaff(logg)).Group(func(r chi.Router) {
				r.Post("/", controllers.RouteCreate(svcs.Routes, logg))
				r.Patch("/{routeID}", controllers.RouteUpdate(svcs.Routes, logg))
				r.Delete("/{routeID}", controllers.RouteDeactivate(svcs.Routes, logg))
			})
			r.Get("/{routeID}", controllers.RouteGet(svcs.Routes, logg))
			r.Get("/{routeID}/window", controllers.RouteWindow(svcs.Routes, logg))
		})

		r.Route("/pricelists", func(r chi.Router) {
			r.With(middleware.RequireStaff(logg)).Group(func(r chi.Router) {
				r.Post("/", controllers.PricelistCreate(svcs.Pricelists, logg))
				r.Patch("/{pricelistID}", controllers.PricelistUpdate(svcs.Pricelists, logg))
				r.Delete("/{pricelistID}", controllers.PricelistDeactivate(svcs.Pricelists, logg))
			})
			r.Get("/{pricelistID}", controllers.PricelistGet(svcs.Pricelists, logg))
		})

		r.Route("/pickups", func(r chi.Router) {
			r.Post("/", controllers.PickupCreate(svcs.Pickups, logg))
			r.Get("/", controllers.PickupList(svcs.Pickups, logg))
			r.With(middleware.RequireStaff(logg)).Patch("/bulk/status", controllers.PickupBulkUpdateStatus(svcs.Pickups, logg))
			r.Get("/{pickupID}", controllers.PickupGet(svcs.Pickups, logg))
			r.Patch("/{pickupID}", controllers.PickupUpdate(svcs.Pickups, logg))
			r.With(middleware.RequireStaff(logg)).Patch("/{pickupID}/status", controllers.PickupUpdateStatus(svcs.Pickups, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.With(middleware.RequireStaff(logg)).Get("/", controllers.SettingsGet(svcs.Settings, logg))
			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Put("/", controllers.SettingsUpdate(svcs.Settings, logg))
		})

		r.Post("/events", controllers.EventRecord(svcs.Events, logg))
	})

	return r
}

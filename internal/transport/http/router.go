package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/thlight-panel/internal/application/account"
	"github.com/thlight-panel/internal/application/admin"
	"github.com/thlight-panel/internal/application/emailcheck"
	"github.com/thlight-panel/internal/application/gameserver"
	"github.com/thlight-panel/internal/config"
	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/transport/http/handler"
	appmiddleware "github.com/thlight-panel/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background helpers such as the rate limiter sweep.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, cfg.TrustedProxies)

	accountSvc := account.NewService(account.ServiceDeps{
		Panel:       deps.Panel,
		OTP:         deps.OTP,
		JWTProvider: deps.JWTProvider,
		OwnerEmail:  cfg.OwnerEmail,
	})
	serverSvc := gameserver.NewService(gameserver.ServiceDeps{
		Panel:           deps.Panel,
		FreeServerLimit: cfg.FreeServerLimit,
	})
	adminSvc := admin.NewService(admin.ServiceDeps{
		Panel:      deps.Panel,
		OwnerEmail: cfg.OwnerEmail,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(deps.OTP, emailcheck.New(cfg.EmailAllowedDomain))
	previewH := handler.NewPreviewHandler(deps.Previews)
	accountH := handler.NewAccountHandler(accountSvc)
	serverH := handler.NewServerHandler(serverSvc)
	adminH := handler.NewAdminHandler(adminSvc)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/ping", healthH.Ping)
		r.Get("/plans", serverH.Plans)
		r.Post("/validate-email", otpH.ValidateEmail)
		r.With(sensitiveRL.Limit).Post("/send-otp", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/verify-otp", otpH.Verify)
		r.Get("/otp-status", otpH.Status)
		r.Get("/email-previews", previewH.List)
		r.Get("/latest-otp", previewH.LatestOTP)
		r.With(sensitiveRL.Limit).Post("/accounts/register", accountH.Register)
		r.With(sensitiveRL.Limit).Post("/accounts/login", accountH.Login)
		r.With(sensitiveRL.Limit).Post("/accounts/password-reset", accountH.ResetPassword)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/accounts/me", accountH.Me)

			r.Get("/servers", serverH.List)
			r.Post("/servers", serverH.Create)
			r.Get("/servers/{id}", serverH.Get)
			r.Post("/servers/{id}/actions/{action}", serverH.Power)
			r.Put("/servers/{id}/config", serverH.UpdateConfig)
			r.Put("/servers/{id}/specs", serverH.UpdateSpecs)
			r.Put("/servers/{id}/version", serverH.ChangeVersion)
			r.Get("/servers/{id}/players", serverH.ListPlayers)
			r.Post("/servers/{id}/players", serverH.AddPlayer)
			r.Post("/servers/{id}/players/{playerID}/{action}", serverH.ActOnPlayer)

			// Owner-only routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleOwner))

				r.Get("/overview", adminH.Overview)
				r.Get("/actions", adminH.Actions)
				r.Delete("/servers/{id}", adminH.DeleteServer)
				r.Post("/servers/{id}/ban", adminH.BanServer)
				r.Post("/servers/{id}/unban", adminH.UnbanServer)
				r.Post("/emails/ban", adminH.BanEmail)
				r.Post("/emails/unban", adminH.UnbanEmail)
				r.Post("/grants", adminH.Grant)
				r.Delete("/grants/{id}", adminH.Revoke)
			})
		})
	})

	return r
}

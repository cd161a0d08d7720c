package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/api/handler"
	"github.com/transporteur/marketplace/internal/api/middleware"
	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
	ops "github.com/transporteur/marketplace/internal/infrastructure/http"
	"github.com/transporteur/marketplace/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Log       zerolog.Logger
	JWTSecret string

	Revoker  ports.TokenRevoker
	Resolver ports.PrincipalResolver

	Auth     ports.AuthService
	Missions ports.MissionService
	Payments ports.PaymentService
	Tracking ports.TrackingService
	Profiles ports.ProfileService
	Admin    ports.AdminService

	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
	// Registerer receives the HTTP request metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: d.Registerer,
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	missionHandler := handler.NewMissionHandler(d.Missions)
	paymentHandler := handler.NewPaymentHandler(d.Payments)
	trackingHandler := handler.NewTrackingHandler(d.Tracking)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	adminHandler := handler.NewAdminHandler(d.Admin)

	authn := middleware.Auth(d.JWTSecret, d.Revoker)
	principal := middleware.Principal(d.Resolver)
	client := middleware.RBAC(domain.RoleClient)
	carrier := middleware.RBAC(domain.RoleCarrier)
	party := middleware.RBAC(domain.RoleClient, domain.RoleCarrier)
	admin := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authn)

	// --- Missions ---
	missions := e.Group("/missions", authn, principal)
	missions.GET("/carriers/available", missionHandler.AvailableCarriers, client)
	missions.POST("", missionHandler.Create, client)
	missions.GET("/client", missionHandler.ListForClient, client)
	missions.GET("/carrier", missionHandler.ListForCarrier, carrier)
	missions.GET("/:id", missionHandler.Get, party)
	missions.PUT("/:id/status", missionHandler.UpdateStatus, carrier)
	missions.PUT("/:id/cancel", missionHandler.Cancel, client)
	missions.POST("/:id/propose-price", missionHandler.ProposePrice, carrier)
	missions.POST("/:id/confirm-price", missionHandler.ConfirmPrice, client)
	missions.PUT("/:id/update-price", missionHandler.UpdatePrice, carrier)
	missions.GET("/:id/carrier/contact", missionHandler.CarrierContact, client)

	// --- Payment ---
	payment := e.Group("/payment", authn, principal)
	payment.POST("/process", paymentHandler.Process, client)
	payment.GET("/status/:missionId", paymentHandler.Status, party)

	// --- Tracking (any authenticated caller) ---
	tracking := e.Group("/tracking", authn, principal)
	tracking.GET("/missions/:id/location", trackingHandler.Location)

	// --- Profiles ---
	profile := e.Group("/profile", authn, principal)
	profile.GET("/client", profileHandler.ClientDashboard, client)
	profile.PUT("/client", profileHandler.UpdateClient, client)
	profile.GET("/carrier", profileHandler.CarrierDashboard, carrier)
	profile.PUT("/carrier", profileHandler.UpdateCarrier, carrier)
	profile.PUT("/carrier/availability", profileHandler.SetAvailability, carrier)
	profile.GET("/admin", profileHandler.AdminProfile, admin)

	// --- Admin reporting ---
	adminGroup := e.Group("/admin", authn, principal, admin)
	adminGroup.GET("/accounts", adminHandler.Accounts)
	adminGroup.GET("/transactions", adminHandler.Transactions)
	adminGroup.GET("/statistics", adminHandler.Statistics)
	adminGroup.GET("/missions/:id/audit", adminHandler.MissionAudit)

	// --- Health, metrics and docs ---
	ops.RegisterOps(e, d.Checks)

	return e
}

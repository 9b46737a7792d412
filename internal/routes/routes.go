package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/auth"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/config"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/handlers"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/account"
	ucAdmin "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/admin"
	ucBooking "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/booking"
	ucOpportunity "github.com/BruksfildServices01/volunteer-scheduler/internal/usecase/opportunity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/validators"
)

// Stores groups the repositories the API runs on. The memory store and the
// gorm repositories both satisfy every field.
type Stores struct {
	Bookings      booking.Repository
	Opportunities opportunity.Repository
	Identity      identity.Repository
	Audit         audit.Store
}

type Deps struct {
	Config *config.Config
	Log    zerolog.Logger
	Stores Stores
	Audit  *audit.Dispatcher

	// Limiter throttles booking creation; nil disables it.
	Limiter middleware.Limiter
	// Images stores uploaded opportunity images; nil disables uploads.
	Images ucOpportunity.ObjectStore
}

func RegisterRoutes(r *gin.Engine, d Deps) error {
	cfg := d.Config
	log := d.Log

	if err := validators.Register(); err != nil {
		return err
	}

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recovery(log))
	r.Use(cors.New(corsConfig(cfg)))

	// ======================================================
	// INFRA
	// ======================================================
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	bookings := d.Stores.Bookings
	catalog := d.Stores.Opportunities

	// ======================================================
	// USE CASES
	// ======================================================
	capacityUC := ucBooking.NewCapacity(bookings, catalog)

	createBookingUC := ucBooking.NewCreateBooking(bookings, d.Audit, log)
	createFlatBookingUC := ucBooking.NewCreateFlatBooking(bookings, d.Audit, log)
	cancelBookingUC := ucBooking.NewCancelBooking(bookings, d.Audit, log)
	completeBookingUC := ucBooking.NewCompleteBooking(bookings, d.Audit, log)
	noShowUC := ucBooking.NewMarkNoShow(bookings, d.Audit, log)
	listBookingsUC := ucBooking.NewListBookings(bookings, catalog)
	dashboardUC := ucBooking.NewVolunteerDashboard(bookings)

	browseUC := ucOpportunity.NewBrowse(catalog, capacityUC)
	createOpportunityUC := ucOpportunity.NewCreateOpportunity(catalog, d.Audit, log)
	setActiveUC := ucOpportunity.NewSetOpportunityActive(catalog, d.Audit, log)
	setAvailabilityUC := ucOpportunity.NewSetSlotAvailability(catalog, bookings, d.Audit, log)

	var uploadUC *ucOpportunity.UploadImage
	if d.Images != nil {
		uploadUC = ucOpportunity.NewUploadImage(catalog, d.Images, d.Audit, log, cfg.ImageMaxWidth)
	}

	accounts := account.New(d.Stores.Identity, tokens, d.Audit, log)
	statsUC := ucAdmin.NewDashboardStats(d.Stores.Identity, catalog, bookings)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(accounts, log)
	meHandler := handlers.NewMeHandler(accounts, dashboardUC, log)
	opportunityHandler := handlers.NewOpportunityHandler(
		browseUC,
		createOpportunityUC,
		uploadUC,
		setActiveUC,
		setAvailabilityUC,
		capacityUC,
		log,
	)
	bookingHandler := handlers.NewBookingHandler(
		createBookingUC,
		createFlatBookingUC,
		cancelBookingUC,
		completeBookingUC,
		noShowUC,
		listBookingsUC,
		log,
	)
	adminHandler := handlers.NewAdminHandler(statsUC, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.Stores.Audit, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if d.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{middleware.RateLimit(d.Limiter, log), h}
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/opportunities", opportunityHandler.Search)
		api.GET("/opportunities/map", opportunityHandler.Map)
		api.GET("/opportunities/:id", opportunityHandler.Get)
		api.GET("/opportunities/:id/slots", opportunityHandler.Slots)
		api.GET("/opportunities/:id/capacity", opportunityHandler.Capacity)
		api.GET("/slots/:id/capacity", opportunityHandler.SlotCapacity)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/register-organization", authHandler.RegisterOrganization)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// SECURED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(tokens))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/bookings", meHandler.Bookings)

			secured.POST("/bookings", limited(bookingHandler.Create)...)
			secured.POST("/opportunities/:id/bookings", limited(bookingHandler.CreateFlat)...)
			secured.POST("/bookings/:id/cancel", bookingHandler.Cancel)
		}

		// ------------------------------
		// ORGANIZATION
		// ------------------------------
		org := api.Group("/org")
		org.Use(
			middleware.AuthMiddleware(tokens),
			middleware.RequireRole(identity.RoleOrganization, identity.RoleAdmin),
		)
		{
			org.POST("/opportunities", opportunityHandler.Create)
			org.POST("/opportunities/:id/image", opportunityHandler.UploadImage)
			org.PATCH("/opportunities/:id/active", opportunityHandler.SetActive)
			org.PATCH("/slots/:id/availability", opportunityHandler.SetSlotAvailability)
			org.GET("/opportunities/:id/bookings", bookingHandler.OrganizationList)

			org.POST("/bookings/:id/complete", bookingHandler.Complete)
			org.POST("/bookings/:id/no-show", bookingHandler.NoShow)

			org.GET("/audit-logs", auditLogsHandler.List)
		}

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(
			middleware.AuthMiddleware(tokens),
			middleware.RequireRole(identity.RoleAdmin),
		)
		{
			admin.GET("/stats", adminHandler.Stats)

			admin.PATCH("/opportunities/:id/active", opportunityHandler.SetActive)
			admin.PATCH("/slots/:id/availability", opportunityHandler.SetSlotAvailability)

			admin.GET("/bookings", bookingHandler.AdminList)
			admin.POST("/bookings/:id/cancel", bookingHandler.Cancel)
			admin.POST("/bookings/:id/complete", bookingHandler.Complete)
			admin.POST("/bookings/:id/no-show", bookingHandler.NoShow)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}

	return nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}

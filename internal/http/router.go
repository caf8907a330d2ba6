package api

import (
	intconfig "studentbus/internal/config"
	h "studentbus/internal/http/handlers"
	"studentbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, handler h.Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(h.NotFound)
	r.Static("/uploads", env.UploadDir)

	requireAuth := middleware.Auth(handler.Auth)
	adminOnly := middleware.RequireRoles("admin")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.GET("/me", requireAuth, handler.Me)

		// Trips
		trips := api.Group("/trips", requireAuth)
		trips.GET("", handler.ListTrips)
		trips.GET("/:id", handler.GetTrip)
		trips.POST("", adminOnly, handler.CreateTrip)
		trips.PUT("/:id/status", adminOnly, handler.UpdateTripStatus)

		// Bookings
		bookings := api.Group("/bookings", requireAuth)
		bookings.POST("", handler.CreateBooking)
		bookings.GET("", handler.ListMyBookings)
		bookings.GET("/:id/ticket", handler.GetBookingTicket)

		// Payments
		payments := api.Group("/payments", requireAuth)
		payments.POST("/recharge", handler.SubmitRecharge)
		payments.GET("/history", handler.PaymentHistory)
		payments.GET("/pending", adminOnly, handler.PendingPayments)
		payments.GET("/:id", adminOnly, handler.GetPayment)
		payments.PUT("/:id", adminOnly, handler.ResolvePayment)

		// Admin
		admin := api.Group("/admin", requireAuth, adminOnly)
		admin.GET("/dashboard", handler.AdminDashboard)
		admin.GET("/trips", handler.AdminListTrips)

		// Realtime
		api.GET("/ws", requireAuth, handler.Notifications)
	}

	h.SetRouter(r)
	return r
}

// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/handlers"
	"github.com/tripline/travel-backend/internal/middleware"
	"github.com/tripline/travel-backend/internal/services"
	"github.com/tripline/travel-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	tripService := services.NewTripService(db, cfg)
	bookingService := services.NewBookingService(db, cfg)
	commissionService := services.NewCommissionService(db, cfg)
	coinService := services.NewCoinService(db, cfg)
	sellerService := services.NewSellerService(db, cfg)
	paymentService := services.NewPaymentService(db, cfg)
	adminService := services.NewAdminService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	tripHandler := handlers.NewTripHandler(tripService, storageService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	coinHandler := handlers.NewCoinHandler(coinService)
	sellerHandler := handlers.NewSellerHandler(sellerService, bookingService, storageService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Trip routes (public browsing)
		trips := v1.Group("/trips")
		{
			trips.GET("", middleware.OptionalAuth(), tripHandler.ListTrips)
			trips.GET("/:id", middleware.OptionalAuth(), tripHandler.GetTrip)
			trips.GET("/:id/schedules", tripHandler.ListSchedules)
			trips.GET("/:id/schedules/:scheduleId", tripHandler.GetSchedule)
		}

		// Booking routes
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthRequired())
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListMyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:id/deposit-intent", middleware.PaymentRateLimit(), paymentHandler.CreateDepositIntent)
			bookings.POST("/:id/balance-intent", middleware.PaymentRateLimit(), paymentHandler.CreateBalanceIntent)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired(), middleware.PaymentRateLimit())
		{
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		// Seller routes
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthRequired(), middleware.SellerRequired())
		{
			seller.GET("/profile", sellerHandler.GetMyProfile)
			seller.POST("/documents", sellerHandler.UploadDocument)
			seller.GET("/bookings", sellerHandler.ListMyBookings)
			seller.GET("/commissions", commissionHandler.ListMyCommissions)
			seller.GET("/earnings", commissionHandler.GetMyEarnings)

			coins := seller.Group("/coins")
			{
				coins.GET("", coinHandler.GetMyAccount)
				coins.GET("/transactions", coinHandler.ListMyTransactions)
				coins.POST("/redemptions", coinHandler.RequestRedemption)
				coins.GET("/redemptions", coinHandler.ListMyRedemptions)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.ListUsers)
				adminUsers.PATCH("/:id/status", adminHandler.UpdateUserStatus)
			}

			adminTrips := admin.Group("/trips")
			{
				adminTrips.POST("", tripHandler.CreateTrip)
				adminTrips.PATCH("/:id", tripHandler.UpdateTrip)
				adminTrips.DELETE("/:id", tripHandler.DeactivateTrip)
				adminTrips.POST("/:id/cover", tripHandler.UploadCover)
				adminTrips.POST("/:id/schedules", tripHandler.CreateSchedule)
			}

			adminSellers := admin.Group("/sellers")
			{
				adminSellers.GET("", sellerHandler.ListSellers)
				adminSellers.GET("/:id/document", sellerHandler.GetSellerDocument)
				adminSellers.POST("/:id/approve", sellerHandler.ApproveSeller)
				adminSellers.POST("/:id/reject", sellerHandler.RejectSeller)
				adminSellers.PATCH("/:id/tier", sellerHandler.SetTier)
			}

			adminBookings := admin.Group("/bookings")
			{
				adminBookings.GET("", adminHandler.ListBookings)
				adminBookings.DELETE("/:id", bookingHandler.DeleteBooking)
				adminBookings.PATCH("/:id/payment-status", bookingHandler.UpdatePaymentStatus)
				adminBookings.GET("/:id/commission-payments", commissionHandler.GetBookingPayments)
				adminBookings.PATCH("/:id/commission-payments", commissionHandler.MarkPaid)
			}

			adminRedemptions := admin.Group("/coin-redemptions")
			{
				adminRedemptions.GET("", coinHandler.ListPendingRedemptions)
				adminRedemptions.PATCH("/:id", coinHandler.ReviewRedemption)
			}

			admin.POST("/payments/refund", paymentHandler.RefundBooking)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

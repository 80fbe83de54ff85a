package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"motomarket/internal/infra/config"
	"motomarket/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
	UpdateProfile(c *gin.Context)
	ChangePassword(c *gin.Context)
}

type ListingHTTP interface {
	Search(c *gin.Context)
	Featured(c *gin.Context)
	Detail(c *gin.Context)
}

type SellerHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	MarkSold(c *gin.Context)
	Publish(c *gin.Context)
	Deactivate(c *gin.Context)
	Delete(c *gin.Context)
	AddPhoto(c *gin.Context)
}

type ServiceHTTP interface {
	Directory(c *gin.Context)
	Detail(c *gin.Context)
	Availability(c *gin.Context)
	Reviews(c *gin.Context)
	Mine(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Deactivate(c *gin.Context)
	Delete(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Mine(c *gin.Context)
	Cancel(c *gin.Context)
	Reschedule(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Dashboard(c *gin.Context)
	Review(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Seller         SellerHTTP
	Service        ServiceHTTP
	Booking        BookingHTTP
	AuthMiddleware gin.HandlerFunc
	Readiness      []obs.ReadinessCheck
}

func NewServer(cfg config.Config, logger *slog.Logger, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if logger != nil {
		logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obs.RequestID())
	router.Use(obs.RequestLogger(logger))

	allowOrigins := cfg.CORSOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	obs.HealthHandlers(router, h.Readiness...)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.PUT("/auth/me", h.Auth.UpdateProfile)
		api.POST("/auth/password", h.Auth.ChangePassword)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Search)
		api.GET("/listings/featured", h.Listing.Featured)
		api.GET("/listings/:id", h.Listing.Detail)
	}
	if h.Seller != nil {
		sellerGroup := api.Group("/seller/listings")
		sellerGroup.GET("", h.Seller.List)
		sellerGroup.POST("", h.Seller.Create)
		sellerGroup.PUT("/:id", h.Seller.Update)
		sellerGroup.POST("/:id/sold", h.Seller.MarkSold)
		sellerGroup.POST("/:id/publish", h.Seller.Publish)
		sellerGroup.POST("/:id/deactivate", h.Seller.Deactivate)
		sellerGroup.DELETE("/:id", h.Seller.Delete)
		sellerGroup.POST("/:id/photos", h.Seller.AddPhoto)
	}
	if h.Service != nil {
		api.GET("/services", h.Service.Directory)
		api.GET("/services/:id", h.Service.Detail)
		api.GET("/services/:id/availability", h.Service.Availability)
		api.GET("/services/:id/reviews", h.Service.Reviews)
		providerGroup := api.Group("/provider/services")
		providerGroup.GET("", h.Service.Mine)
		providerGroup.POST("", h.Service.Create)
		providerGroup.PUT("/:id", h.Service.Update)
		providerGroup.POST("/:id/deactivate", h.Service.Deactivate)
		providerGroup.DELETE("/:id", h.Service.Delete)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/me/bookings", h.Booking.Mine)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/reschedule", h.Booking.Reschedule)
		api.POST("/bookings/:id/status", h.Booking.UpdateStatus)
		api.POST("/bookings/:id/review", h.Booking.Review)
		api.GET("/provider/bookings", h.Booking.Dashboard)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/config"
	"github.com/Apolo151/tourist-village-app-sub004/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	List(c *gin.Context)
	Export(c *gin.Context)
	Stats(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	ByApartment(c *gin.Context)
	ByUser(c *gin.Context)
	CurrentForApartment(c *gin.Context)
}

type OccupancyHTTP interface {
	Rate(c *gin.Context)
	Current(c *gin.Context)
}

type Handlers struct {
	Booking   BookingHTTP
	Occupancy OccupancyHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-ID", "X-Village-Scope"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.List)
		api.GET("/bookings/export", h.Booking.Export)
		api.GET("/bookings/stats", h.Booking.Stats)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.DELETE("/bookings/:id", h.Booking.Delete)
		api.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		api.POST("/bookings/:id/check-out", h.Booking.CheckOut)
		api.GET("/apartments/:id/bookings", h.Booking.ByApartment)
		api.GET("/apartments/:id/bookings/current", h.Booking.CurrentForApartment)
		api.GET("/users/:id/bookings", h.Booking.ByUser)
	}
	if h.Occupancy != nil {
		api.GET("/occupancy/rate", h.Occupancy.Rate)
		api.GET("/occupancy/current", h.Occupancy.Current)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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

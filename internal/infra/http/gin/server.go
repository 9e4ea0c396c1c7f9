package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"venuecal/internal/infra/config"
	"venuecal/internal/infra/obs"
)

type CalendarHTTP interface {
	Configure(c *gin.Context)
	Month(c *gin.Context)
	Settings(c *gin.Context)
	Highlight(c *gin.Context)
	Export(c *gin.Context)
}

type BookingHTTP interface {
	Record(c *gin.Context)
	Release(c *gin.Context)
	List(c *gin.Context)
}

type SelectionHTTP interface {
	Open(c *gin.Context)
	Get(c *gin.Context)
	Apply(c *gin.Context)
	Close(c *gin.Context)
}

type QuoteHTTP interface {
	Quote(c *gin.Context)
}

type Handlers struct {
	Calendar  CalendarHTTP
	Booking   BookingHTTP
	Selection SelectionHTTP
	Quote     QuoteHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without touching the global gin mode.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(obsMW.RequestID(), obsMW.Recover(), obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Calendar != nil {
		venue := api.Group("/venues/:id")
		venue.PUT("/calendar", h.Calendar.Configure)
		venue.GET("/calendar", h.Calendar.Month)
		venue.GET("/settings", h.Calendar.Settings)
		venue.POST("/calendar/highlights", h.Calendar.Highlight)
		venue.POST("/calendar/export", h.Calendar.Export)
	}
	if h.Booking != nil {
		api.GET("/venues/:id/bookings", h.Booking.List)
		api.POST("/venues/:id/bookings", h.Booking.Record)
		api.DELETE("/venues/:id/bookings/:bookingID", h.Booking.Release)
	}
	if h.Selection != nil {
		api.POST("/venues/:id/selections", h.Selection.Open)
		sel := api.Group("/selections/:session")
		sel.GET("", h.Selection.Get)
		sel.POST("/events", h.Selection.Apply)
		sel.DELETE("", h.Selection.Close)
	}
	if h.Quote != nil {
		api.GET("/venues/:id/quote", h.Quote.Quote)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
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

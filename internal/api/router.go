package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/middleware"
	"github.com/mmynk/salesledger/internal/service"
	"github.com/mmynk/salesledger/internal/storage"
)

// Deps are the collaborators the HTTP API is built from.
type Deps struct {
	Auth    *service.AuthService
	Sales   *service.SaleService
	JWT     *auth.JWTManager
	Store   storage.Store
	Metrics *middleware.Metrics
	Logger  *slog.Logger
}

// NewRouter registers every endpoint on a new gin engine.
//
// Public:        POST /register, POST /login, GET /healthz, GET /metrics
// Authenticated: POST /token/refresh, GET /me, and CRUD under /sales
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Logger),
		d.Metrics.Instrument(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			d.Logger.Error("Panic recovered", "path", c.Request.URL.Path, "panic", recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}),
	)

	h := &handler{auth: d.Auth, sales: d.Sales, metrics: d.Metrics}

	r.GET("/healthz", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			d.Logger.Error("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	r.POST("/register", h.register)
	r.POST("/login", h.login)

	authed := r.Group("/", middleware.RequireAuth(d.JWT, d.Metrics))
	authed.POST("/token/refresh", h.refreshToken)
	authed.GET("/me", h.me)

	sales := authed.Group("/sales")
	sales.POST("", h.createSale)
	sales.GET("", h.listSales)
	sales.GET("/:id", h.getSale)
	sales.PUT("/:id", h.updateSale)
	sales.DELETE("/:id", h.deleteSale)

	return r
}

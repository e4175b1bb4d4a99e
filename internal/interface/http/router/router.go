// Package router 组装gin引擎：全局中间件、运维端点和/api/v1路由
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/mall/docs"
	"github.com/xiebiao/mall/internal/infrastructure/config"
	"github.com/xiebiao/mall/internal/interface/http/handler"
	"github.com/xiebiao/mall/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/mall/pkg/errors"
	"github.com/xiebiao/mall/pkg/response"
)

// 超过该耗时的请求记warn
const slowRequest = 3 * time.Second

// Handlers 所有HTTP处理器
type Handlers struct {
	User    *handler.UserHandler
	Product *handler.ProductHandler
	Address *handler.AddressHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// New 创建并配置gin引擎
func New(cfg *config.Config, logger zerolog.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(middleware.Logger(logger, slowRequest))
	r.Use(middleware.Recovery())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(cors.New(corsConfig(cfg.CORS)))

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	// 生产环境不暴露文档
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Response{
			Code:    apperrors.ErrCodeNotFound,
			Kind:    apperrors.KindOf(apperrors.ErrCodeNotFound),
			Message: "接口不存在",
		})
	})

	v1 := r.Group("/api/v1")
	requireAuth := auth.RequireAuth()

	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/logout", requireAuth, h.User.Logout)
	}

	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.POST("", requireAuth, h.Product.Create)
		products.PUT("/:id/price", requireAuth, h.Product.ChangePrice)
	}

	addresses := v1.Group("/addresses", requireAuth)
	{
		addresses.GET("", h.Address.List)
		addresses.POST("", h.Address.Create)
	}

	cart := v1.Group("/cart", requireAuth)
	{
		cart.GET("", h.Cart.View)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:product_id", h.Cart.SetQuantity)
		cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
	}

	orders := v1.Group("/orders", requireAuth)
	{
		orders.POST("/checkout", h.Order.Checkout)
		orders.GET("", h.Order.List)
		orders.GET("/:order_no", h.Order.Get)
		orders.POST("/:order_no/pay", h.Order.Pay)
		orders.POST("/:order_no/ship", h.Order.Ship)
		orders.POST("/:order_no/complete", h.Order.Complete)
		orders.POST("/:order_no/cancel", h.Order.Cancel)
		orders.PUT("/:order_no/remark", h.Order.UpdateRemark)
	}

	return r
}

// corsConfig 配置中出现"*"时放开所有来源
func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", handler.IdempotencyKeyHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        c.MaxAge,
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = c.AllowOrigins
	if len(cc.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
	}
	return cc
}

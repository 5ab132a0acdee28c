package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/accel-dashboard-go/internal/config"
	"github.com/jengzang/accel-dashboard-go/internal/handler"
	"github.com/jengzang/accel-dashboard-go/internal/middleware"
	"github.com/jengzang/accel-dashboard-go/internal/service"
	"github.com/jengzang/accel-dashboard-go/internal/session"
	"github.com/jengzang/accel-dashboard-go/web"
)

const defaultRateWindow = time.Minute

// Deps are the collaborators the router wires into handlers
type Deps struct {
	Auth     handler.Authenticator
	Source   service.AccelerationSource
	Sessions *session.Manager
	Limiter  *middleware.RateLimiter
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode())

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(templates)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.LoginRateLimit, defaultRateWindow)
	}

	dashboardService := service.NewDashboardService(deps.Source)
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, deps.Sessions)
	accelerationHandler := handler.NewAccelerationHandler(dashboardService)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Accelerometer dashboard is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 登录注册
	auth := r.Group("/", middleware.RateLimit(limiter))
	{
		auth.GET("/login", authHandler.LoginPage)
		auth.POST("/login", authHandler.Login)
		auth.GET("/register", authHandler.RegisterPage)
		auth.POST("/register", authHandler.Register)
	}
	r.GET("/logout", authHandler.Logout)

	// 仪表盘
	dashboard := r.Group("/", middleware.RequireSession(deps.Sessions))
	{
		dashboard.GET("/", dashboardHandler.Index)
		dashboard.GET("/refresh", dashboardHandler.Refresh)
		dashboard.GET("/export", dashboardHandler.Export)
	}

	// API 路由组
	v1 := r.Group("/api/v1", cors(), middleware.RequireToken(deps.Sessions))
	{
		acceleration := v1.Group("/acceleration")
		{
			acceleration.GET("/datasets", accelerationHandler.ListDatasets)
			acceleration.GET("/datasets/:id", accelerationHandler.GetDataset)
			acceleration.POST("/process", accelerationHandler.Process)
		}
		v1.OPTIONS("/*path", func(c *gin.Context) {})
	}

	return r, nil
}

// cors 中间件
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

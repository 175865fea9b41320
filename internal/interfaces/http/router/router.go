package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/plant/backend/internal/domain/warehouse"
	"github.com/plant/backend/internal/infrastructure/config"
	"github.com/plant/backend/internal/infrastructure/logger"
	"github.com/plant/backend/internal/infrastructure/telemetry"
	"github.com/plant/backend/internal/interfaces/http/handler"
	"github.com/plant/backend/internal/interfaces/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterValidators installs the custom binding validators. Safe to call
// once at startup; gin's binding validator is process-global.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("binaddress", func(fl validator.FieldLevel) bool {
			_, err := warehouse.ParseBinAddress(fl.Field().String())
			return err == nil
		})
	}
}

// Dependencies holds everything the router needs to wire the routes
type Dependencies struct {
	Warehouse *handler.WarehouseHandler
	System    *handler.SystemHandler
	Metrics   *telemetry.Metrics
	Logger    *zap.Logger
	Config    *config.Config
}

// New builds the gin engine with the full middleware chain and all routes
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	RegisterValidators()

	engine := gin.New()

	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(deps.Config.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = deps.Config.HTTP.CORSAllowOrigins
	}
	if len(deps.Config.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = deps.Config.HTTP.CORSAllowMethods
	}
	if len(deps.Config.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = deps.Config.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
		middleware.CORSWithConfig(corsCfg),
	)
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}

	engine.GET("/health", deps.System.Health)
	engine.GET("/ready", deps.System.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/warehouse")
	{
		items := api.Group("/items")
		{
			items.POST("", deps.Warehouse.Create)
			items.GET("", deps.Warehouse.List)
			items.GET("/export", deps.Warehouse.Export)
			items.PATCH("/limits", deps.Warehouse.UpdateLimits)
			items.GET("/:id", deps.Warehouse.Get)
			items.PATCH("/:id/deliver", deps.Warehouse.Deliver)
			items.PATCH("/:id/limit", deps.Warehouse.UpdateLimit)
			items.DELETE("/:id", deps.Warehouse.Delete)
		}
	}

	return engine
}

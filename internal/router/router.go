package router

import (
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/config"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/handler"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/infra"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/middleware"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/repository"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/sequence"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb is nil unless the Redis sequence backend is selected.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, seqCB *infra.CircuitBreaker) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	vat, err := cfg.VAT()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.PricingPolicy()
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	clk := clock.NewSystem()

	// ── Repositories ─────────────────────────────────────────────────────────
	orderRepo := repository.NewOrderRepository(db)
	dayCloseRepo := repository.NewDayCloseRepository(db)

	var store sequence.Store = repository.NewCounterRepository(db)
	if cfg.SequenceBackend == config.SequenceRedis && rdb != nil {
		store = infra.NewRedisCounter(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	generator := sequence.NewGenerator(store, seqCB)
	settlement := service.NewSettlement(pricing.New(policy), generator, clk, loc, vat)
	orderSvc := service.NewOrderService(orderRepo, settlement, clk, loc)
	dayCloseSvc := service.NewDayCloseService(dayCloseRepo, orderRepo, clk, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(orderSvc)
	dayCloseH := handler.NewDayCloseHandler(dayCloseSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, seqCB))

	v1 := r.Group("/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", middleware.RequireOpenPeriod(dayCloseSvc), ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.POST("/:id/cancel", ordersH.Cancel)
			orders.DELETE("/:id", ordersH.Delete)
			orders.POST("/:id/membership/hold", ordersH.Hold)
			orders.POST("/:id/membership/unhold", ordersH.Unhold)
		}

		dc := v1.Group("/day-close")
		{
			dc.POST("/start", dayCloseH.Start)
			dc.POST("/close", dayCloseH.Close)
			dc.GET("/current", dayCloseH.Current)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}

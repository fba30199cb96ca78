package router

import (
	"time"

	"github.com/mrinmay27/the149-store/internal/config"
	"github.com/mrinmay27/the149-store/internal/feed"
	"github.com/mrinmay27/the149-store/internal/handler"
	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"
	"github.com/mrinmay27/the149-store/internal/service"
	"github.com/mrinmay27/the149-store/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	ledgerRepo := repository.NewLedgerRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher and feed publisher — injected into services that
	// emit async side effects after commit.
	dispatcher := worker.NewDispatcher(rdb)
	publisher := feed.NewRedisPublisher(rdb)

	authSvc := service.NewAuthService(profileRepo, cfg, dispatcher)
	ledgerSvc := service.NewLedgerService(
		ledgerRepo, categoryRepo, saleRepo, expenseRepo, depositRepo, profileRepo,
		dispatcher, publisher,
	)
	inventorySvc := service.NewInventoryService(categoryRepo, publisher)
	notificationSvc := service.NewNotificationService(notificationRepo)
	reportSvc := service.NewReportService(saleRepo, expenseRepo, depositRepo, ledgerRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	profilesH := handler.NewProfilesHandler(authSvc)
	salesH := handler.NewSalesHandler(ledgerSvc, cfg.RecentSalesLimit)
	expensesH := handler.NewExpensesHandler(ledgerSvc, cfg.RecentSalesLimit)
	depositsH := handler.NewDepositsHandler(ledgerSvc, cfg.RecentSalesLimit)
	balancesH := handler.NewBalancesHandler(ledgerSvc)
	categoriesH := handler.NewCategoriesHandler(inventorySvc)
	notificationsH := handler.NewNotificationsHandler(notificationSvc, cfg.RecentSalesLimit)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Everything past login requires an approved profile.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW, middleware.RequireApproved())
	{
		v1.GET("/auth/me", authH.Me)

		// Both roles record sales and expenses; the service enforces the
		// owner-only rules that depend on the payload (online expenses).
		staff := middleware.RequireRole(model.RoleManager, model.RoleOwner)

		v1.GET("/balances", staff, balancesH.Get)

		v1.POST("/sales", staff, salesH.Record)
		v1.GET("/sales", staff, salesH.List)

		v1.POST("/expenses", staff, expensesH.Record)
		v1.GET("/expenses", staff, expensesH.List)

		v1.POST("/deposits", staff, depositsH.Record)
		v1.GET("/deposits", staff, depositsH.List)

		v1.GET("/categories", staff, categoriesH.List)
		cats := v1.Group("/categories", middleware.RequireRole(model.RoleOwner))
		{
			cats.POST("", categoriesH.Add)
			cats.DELETE("/:id", categoriesH.Remove)
			cats.PATCH("/:id/stock", categoriesH.AdjustStock)
			cats.PATCH("/:id/price", categoriesH.AdjustPrice)
		}

		v1.GET("/notifications", staff, notificationsH.List)
		v1.PATCH("/notifications/:id/read", staff, notificationsH.MarkRead)

		v1.GET("/reports/summary", staff, reportsH.Summary)
		v1.GET("/reports/summary/pdf", staff, reportsH.SummaryPDF)

		v1.GET("/feed", staff, handler.Feed(rdb))

		profiles := v1.Group("/profiles", middleware.RequireAdmin())
		{
			profiles.GET("", profilesH.List)
			profiles.PATCH("/:id/approval", profilesH.SetApproval)
		}
	}

	return r
}

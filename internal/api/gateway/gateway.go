package gateway

import (
	"context"
	"fmt"

	"social-leaderboard/backend-api/internal/db"
	"social-leaderboard/backend-api/internal/metrics"
	"social-leaderboard/backend-api/internal/middleware"
	"social-leaderboard/backend-api/internal/services/account"
	"social-leaderboard/backend-api/internal/services/auth"
	"social-leaderboard/backend-api/internal/services/leaderboard"
	lbHandlers "social-leaderboard/backend-api/internal/services/leaderboard/handlers"
	"social-leaderboard/backend-api/internal/services/taunt"
	tauntHandlers "social-leaderboard/backend-api/internal/services/taunt/handlers"
	"social-leaderboard/backend-api/internal/session"
	"social-leaderboard/backend-api/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// APIGateway exposes the per-account sync engines over HTTP.
type APIGateway struct {
	router   *fiber.App
	logger   *zap.Logger
	cfg      config.Config
	db       db.DBTX
	metrics  *metrics.Metrics
	sessions *session.Manager
}

// NewAPIGateway creates a new instance of APIGateway with a configured Fiber router.
func NewAPIGateway(cfg config.Config, logger *zap.Logger, db db.DBTX, m *metrics.Metrics) *APIGateway {
	app := fiber.New(fiber.Config{
		AppName: "Social Leaderboard API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("gateway error", zap.Error(err))
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	gw := &APIGateway{
		router:  app,
		logger:  logger,
		cfg:     cfg,
		db:      db,
		metrics: m,
	}

	gw.applyMiddleware()
	gw.setupHealthCheck()
	gw.setupMetrics()

	if db != nil {
		authSvc := auth.NewAuthService(cfg, logger)
		accSvc := account.NewAccountService(cfg, logger, db)
		lbSvc := leaderboard.NewLeaderboardService(cfg, logger, db)
		tauntSvc := taunt.NewTauntService(cfg, logger, db)

		gw.sessions = session.NewManager(cfg, logger, m, session.Services{
			Accounts:     accSvc,
			Leaderboards: lbSvc,
			Taunts:       tauntSvc,
		})
		gw.registerRoutes(authSvc, tauntSvc)
	}

	return gw
}

func (g *APIGateway) registerRoutes(authSvc auth.Service, tauntSvc taunt.Service) {
	authMiddleware := middleware.AuthMiddleware(authSvc, g.logger)
	sessionMiddleware := middleware.SessionMiddleware(g.sessions, g.logger)

	// Leaderboard screen routes
	leaderboardH := lbHandlers.NewLeaderboardHandlers(g.logger)
	leaderboardsGroup := g.MountGroup("/leaderboards", authMiddleware, sessionMiddleware)
	leaderboardsGroup.Get("/view", leaderboardH.GetView)
	leaderboardsGroup.Put("/selection", leaderboardH.SetSelection)
	leaderboardsGroup.Post("/refresh", leaderboardH.Refresh)
	leaderboardsGroup.Post("/view-more", leaderboardH.ExpandViewMore)

	// Taunt routes
	tauntH := tauntHandlers.NewTauntHandlers(tauntSvc, g.logger)
	tauntsGroup := g.MountGroup("/taunts", authMiddleware)
	tauntsGroup.Post("/", sessionMiddleware, tauntH.SendTaunt)
	tauntsGroup.Delete("/dialog", sessionMiddleware, tauntH.DismissDialog)
	tauntsGroup.Get("/received", tauntH.ListReceived)
}

// applyMiddleware sets up global middleware for the gateway.
func (g *APIGateway) applyMiddleware() {
	g.router.Use(cors.New(cors.Config{
		AllowOrigins: g.cfg.Server.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	g.router.Use(fiberLogger.New())
	g.router.Use(recover.New())
	g.router.Use(limiter.New(limiter.Config{
		Max:        g.cfg.Server.RateLimitMax,
		Expiration: g.cfg.Server.RateLimitDuration,
	}))
}

// setupHealthCheck adds a basic health check endpoint to the gateway.
func (g *APIGateway) setupHealthCheck() {
	g.router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})
}

func (g *APIGateway) setupMetrics() {
	if g.metrics == nil {
		return
	}
	g.router.Get("/metrics", adaptor.HTTPHandler(g.metrics.Handler()))
}

// MountGroup allows services to mount their own route groups on the gateway.
func (g *APIGateway) MountGroup(prefix string, handlers ...fiber.Handler) fiber.Router {
	return g.router.Group(prefix, handlers...)
}

// Router returns the underlying Fiber app (useful for testing).
func (g *APIGateway) Router() *fiber.App {
	return g.router
}

// Sessions returns the session manager, or nil when no database is attached.
func (g *APIGateway) Sessions() *session.Manager {
	return g.sessions
}

// Start begins listening on the configured host and port.
func (g *APIGateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Server.Host, g.cfg.Server.Port)
	g.logger.Info("Starting API Gateway", zap.String("address", addr))
	return g.router.Listen(addr)
}

// Shutdown stops accepting requests and then tears down every session.
func (g *APIGateway) Shutdown(ctx context.Context) error {
	g.logger.Info("Shutting down API Gateway...")
	err := g.router.ShutdownWithContext(ctx)
	if g.sessions != nil {
		g.sessions.Close()
	}
	return err
}

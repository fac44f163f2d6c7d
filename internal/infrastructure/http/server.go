package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stripe/stripe-go/v79"
	handlers "github.com/tristanfischer-ux/centauros-payment/internal/adapter/handler/http"
	"github.com/tristanfischer-ux/centauros-payment/internal/config"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/notification"
	"github.com/tristanfischer-ux/centauros-payment/internal/infrastructure/database"
	"github.com/tristanfischer-ux/centauros-payment/internal/middleware/auth"
	"github.com/tristanfischer-ux/centauros-payment/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	notifier notification.Dispatcher
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, notifier notification.Dispatcher) *Server {
	e := echo.New()
	e.HideBanner = true

	// Initialize Stripe
	stripe.Key = cfg.Service.StripeSecretKey

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		repos:    repos,
		notifier: notifier,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Initialize handlers
	reconciler := usecase.NewReconciler(
		s.repos.Orders,
		s.repos.Timesheets,
		s.repos.Disputes,
		s.repos.Transfers,
		s.repos.Payouts,
		s.repos.Balances,
		s.repos.SellerAccounts,
		s.notifier,
		s.logger,
	)
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.config.Service.StripeWebhookSecret, s.repos.Events, reconciler)
	ledgerHandler := handlers.NewLedgerHandler(s.logger, s.repos.EscrowLedger)

	// JWT middleware configuration
	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			"/webhook",
		},
	}

	// Internal inspection routes (require JWT authentication)
	v1 := s.echo.Group("/api/v1")
	internal := v1.Group("/internal", auth.JWTMiddleware(jwtConfig))
	internal.GET("/events", webhookHandler.GetRecentEvents)
	internal.GET("/events/:id", webhookHandler.GetEvent)
	internal.GET("/orders/:id/escrow", ledgerHandler.GetOrderEscrow)

	// Webhook route (outside API versioning)
	s.echo.POST("/webhook", webhookHandler.HandleWebhook)
}

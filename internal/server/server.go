package server

import (
	"time"

	"waconsole/internal/analytics"
	"waconsole/internal/assistant"
	"waconsole/internal/auth"
	"waconsole/internal/cache"
	"waconsole/internal/config"
	"waconsole/internal/database"
	"waconsole/internal/email"
	"waconsole/internal/gateway"
	"waconsole/internal/handlers"
	"waconsole/internal/realtime"
	syncsvc "waconsole/internal/sync"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server wires configuration, storage, external clients and routes.
type Server struct {
	echo   *echo.Echo
	db     *sqlx.DB
	config *config.Config
	logger zerolog.Logger
	cache  *cache.Cache

	contacts      *database.ContactService
	conversations *database.ConversationService
	assignments   *database.AssignmentService
	analytics     *analytics.Service

	gateway     *gateway.Client
	assistants  *assistant.Client
	contactSync *syncsvc.Service
	notifier    *email.Notifier

	hub       *realtime.Hub
	publisher realtime.Publisher

	authManager *auth.Manager
}

// New creates a server instance with every service wired. The hub and
// publisher come from main so the Redis forwarder (when configured)
// outlives individual requests.
func New(cfg *config.Config, db *sqlx.DB, logger zerolog.Logger, hub *realtime.Hub, publisher realtime.Publisher) (*Server, error) {
	contacts, err := database.NewContactService(db)
	if err != nil {
		return nil, err
	}
	conversations, err := database.NewConversationService(db, contacts)
	if err != nil {
		return nil, err
	}
	assignments, err := database.NewAssignmentService(db)
	if err != nil {
		return nil, err
	}
	analyticsService, err := analytics.NewService(db)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:        cfg,
		db:            db,
		logger:        logger,
		cache:         cache.New(),
		contacts:      contacts,
		conversations: conversations,
		assignments:   assignments,
		analytics:     analyticsService,
		hub:           hub,
		publisher:     publisher,
		authManager:   auth.NewManager(cfg),
		notifier:      email.NewNotifier(cfg.SendGridAPIKey, cfg.NotifyEmail, cfg.SiteURL),
	}

	if cfg.HasGateway() {
		gw, err := gateway.NewClient(cfg.WasenderBaseURL, cfg.WasenderAPIKey)
		if err != nil {
			return nil, err
		}
		s.gateway = gw
		s.contactSync = syncsvc.NewService(gw, contacts, logger, cfg.SyncBatchSize, cfg.SyncBatchDelayMs)
	} else {
		logger.Warn().Msg("WhatsApp gateway not configured; sync and outbound sends disabled")
	}

	if cfg.OpenAIKey != "" {
		assistants, err := assistant.NewClient(cfg, s.cache)
		if err != nil {
			return nil, err
		}
		s.assistants = assistants
	} else {
		logger.Warn().Msg("Assistant platform not configured; AI management endpoints disabled")
	}

	return s, nil
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints (keep at root level for monitoring)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.db))

	api := s.echo.Group("/api")

	// Unauthenticated: login and the gateway's own callbacks. The webhook
	// authenticates with its shared secret instead of an admin token.
	api.POST("/admin/login", handlers.AdminLoginHandler(s.authManager))
	api.POST("/webhook/wasender", handlers.WebhookHandler(s.conversations, s.publisher, s.config.WebhookSecret))

	// Everything else requires an admin session
	admin := api.Group("", auth.Middleware(s.authManager))

	admin.GET("/contacts/db", handlers.ListContactsHandler(s.contacts))
	admin.DELETE("/contacts/db", handlers.DeleteContactHandler(s.contacts))
	admin.POST("/contacts/sync", handlers.SyncContactsHandler(s.contactSync))
	admin.GET("/contacts/:phone/profile", handlers.GetProfileHandler(s.contacts))
	admin.PUT("/contacts/:phone/profile", handlers.UpdateProfileHandler(s.contacts))
	admin.POST("/contacts/:phone/tags", handlers.AddTagHandler(s.contacts))
	admin.DELETE("/contacts/:phone/tags/:tag", handlers.RemoveTagHandler(s.contacts))

	admin.GET("/contact-info/:phone", handlers.ContactInfoHandler(s.gateway, s.cache))
	admin.GET("/contact-picture/:phone", handlers.ContactPictureHandler(s.gateway, s.cache))

	admin.GET("/conversations", handlers.ListConversationsHandler(s.conversations))
	admin.POST("/conversations", handlers.StartConversationHandler(s.conversations, s.publisher))
	admin.GET("/conversations/:id", handlers.GetConversationHandler(s.conversations))
	admin.DELETE("/conversations/:id", handlers.DeleteConversationHandler(s.conversations))
	admin.POST("/conversations/:id/read", handlers.MarkConversationReadHandler(s.conversations, s.publisher))
	admin.PUT("/conversations/:id/status", handlers.UpdateConversationStatusHandler(s.conversations, s.publisher, s.notifier))
	admin.GET("/conversations/:id/messages", handlers.ListMessagesHandler(s.conversations))
	admin.POST("/conversations/:id/messages", handlers.SendMessageHandler(s.conversations, s.gateway, s.publisher))

	if s.assistants != nil {
		admin.GET("/ai-management/assignments", handlers.ListAssignmentsHandler(s.assignments))
		admin.PUT("/ai-management/assignments", handlers.AssignAssistantHandler(s.assignments, s.assistants, s.publisher))
		admin.GET("/ai-management/assignments/:id", handlers.GetAssignmentHandler(s.assignments))
		admin.DELETE("/ai-management/assignments/:id", handlers.UnassignAssistantHandler(s.assignments, s.publisher))
		admin.GET("/ai-management/bb-assistants", handlers.ListAssistantsHandler(s.assistants))
	}

	admin.GET("/analytics", handlers.AnalyticsHandler(s.analytics))

	admin.GET("/realtime/stream", handlers.StreamHandler(s.hub))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}

package cmd

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/redis/go-redis/v9"

	"ticket-lookup/config"
	"ticket-lookup/internal/handlers"
	"ticket-lookup/internal/services"
	"ticket-lookup/internal/services/attendee"
	_ "ticket-lookup/migrations"
	"ticket-lookup/monitoring"
	"ticket-lookup/security"
	"ticket-lookup/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()
	monitor := monitoring.NewMonitor(cfg.EnableMetrics)

	// Attendee API and resolver
	attendeeClient := attendee.NewClient(attendee.Config{
		BaseURL: cfg.AttendeeAPIBase,
		EventID: cfg.AttendeeAPIEventID,
		Token:   cfg.AttendeeAPIToken,
		Timeout: cfg.UpstreamTimeout,
		Breaker: utils.Settings{
			MaxRequests:  cfg.BreakerMaxRequests,
			Timeout:      cfg.BreakerOpenTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
		},
	}, monitor)
	ticketService := services.NewTicketService(attendeeClient, cfg.LookupTimeout, monitor)

	// Transfer intake
	transferStore := services.NewRecordTransferStore(app)

	var notifier services.Notifier
	if pn := services.NewPubNubNotifier(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubSecretKey, cfg.PubNubUserID); pn != nil {
		notifier = pn
	} else {
		slog.Info("pubnub not configured, transfer notifications disabled")
	}
	transferService := services.NewTransferService(
		transferStore,
		ticketService,
		notifier,
		cfg.TransferChannel,
		monitor,
	)

	// Rate limiting is optional
	var redisClient *redis.Client
	var limiter *security.RateLimiter
	if cfg.RedisURL != "" {
		rc, err := utils.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Error("redis unavailable, rate limiting disabled", "error", err)
		} else {
			redisClient = rc
			defer redisClient.Close()
			limiter = security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, monitor)
		}
	}

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(ticketService)
	transferHandler := handlers.NewTransferHandler(transferService)
	historyHandler := handlers.NewHistoryHandler(transferStore)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})

	// Client subcommands
	app.RootCmd.AddCommand(
		newTUICommand(cfg),
		newLookupCommand(cfg),
	)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Ticket lookup
		lookup := e.Router.GET("/api/tickets/{ref}", ticketHandler.GetTicket)
		if limiter != nil {
			lookup.BindFunc(limiter.Middleware())
		}

		// Form sink
		e.Router.POST("/{$}", transferHandler.SubmitForm)
		e.Router.GET("/api/transfers/{ticketId}", historyHandler.ListTransfers).
			Bind(apis.RequireSuperuserAuth())

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			body := map[string]any{
				"status":              "healthy",
				"upstream_configured": attendeeClient.Configured(),
			}
			if redisClient != nil {
				if err := utils.RedisHealthCheck(e.Request.Context(), redisClient); err != nil {
					body["status"] = "unhealthy"
					body["error"] = err.Error()
					return e.JSON(http.StatusServiceUnavailable, body)
				}
			}
			return e.JSON(http.StatusOK, body)
		})

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(monitor.Handler()))
		}

		slog.Info("server routes registered",
			"rate_limit", limiter != nil,
			"notifications", notifier != nil,
			"metrics", cfg.EnableMetrics,
		)

		return e.Next()
	})

	return app.Start()
}

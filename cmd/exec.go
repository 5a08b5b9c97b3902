package cmd

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"queue-system/config"
	"queue-system/internal/handlers"
	"queue-system/internal/services"
	"queue-system/internal/services/category"
	"queue-system/monitoring"
	"queue-system/security"
	"queue-system/utils"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	} else {
		slog.Warn("pubnub keys not configured, push notifications disabled")
	}

	notifier := services.NewNotifier(pn, redisClient)
	registry := category.NewRegistry()

	queueService := services.NewQueueService(app, redisClient, registry, notifier, cfg)
	participantService := services.NewParticipantService(app, redisClient, registry, notifier, cfg)
	resourceService := services.NewResourceService(app)
	discoveryService := services.NewDiscoveryService(app)
	reportService := services.NewReportService(app, redisClient, cfg)
	liveService := services.NewLiveService(app, cfg, notifier)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitRequests)

	queueHandler := handlers.NewQueueHandler(app, queueService, discoveryService, reportService, rateLimiter)
	participantHandler := handlers.NewParticipantHandler(app, participantService)
	resourceHandler := handlers.NewResourceHandler(app, resourceService)
	liveHandler := handlers.NewLiveHandler(app, liveService)

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	app.Cron().MustAdd("retention-sweep", cfg.SweepCron, func() {
		services.SweepCompleted(app, cfg)
	})

	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Queue endpoints
		e.Router.POST("/api/v1/queues", queueHandler.Create)
		e.Router.GET("/api/v1/queues/nearby", queueHandler.Nearby)
		e.Router.GET("/api/v1/queues/featured", queueHandler.Featured)
		e.Router.GET("/api/v1/queues/{code}", queueHandler.Get)
		e.Router.PATCH("/api/v1/queues/{code}", queueHandler.Edit)
		e.Router.DELETE("/api/v1/queues/{code}", queueHandler.Delete)
		e.Router.POST("/api/v1/queues/{code}/join", queueHandler.Join)
		e.Router.GET("/api/v1/queues/{code}/stats", queueHandler.Stats)

		// Resource pool endpoints
		e.Router.POST("/api/v1/queues/{code}/resources", resourceHandler.Add)
		e.Router.GET("/api/v1/queues/{code}/resources", resourceHandler.List)
		e.Router.PATCH("/api/v1/resources/{id}", resourceHandler.Edit)
		e.Router.DELETE("/api/v1/resources/{id}", resourceHandler.Delete)

		// Participant lifecycle endpoints
		e.Router.GET("/api/v1/participants/{code}", participantHandler.Get)
		e.Router.POST("/api/v1/participants/{id}/start", participantHandler.Start)
		e.Router.POST("/api/v1/participants/{id}/complete", participantHandler.Complete)
		e.Router.POST("/api/v1/participants/{id}/cancel", participantHandler.Cancel)
		e.Router.POST("/api/v1/participants/{id}/no-show", participantHandler.NoShow)
		e.Router.DELETE("/api/v1/participants/{id}", participantHandler.Remove)

		// Live status streams
		e.Router.GET("/api/v1/live/queue/{code}", liveHandler.QueueStream)
		e.Router.GET("/api/v1/live/participant/{code}", liveHandler.ParticipantStream)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if err := liveService.Shutdown(); err != nil {
			slog.Warn("live service shutdown", "error", err)
		}
		return e.Next()
	})

	return app.Start()
}

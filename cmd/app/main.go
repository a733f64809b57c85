package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/cosmicjs/appointment-scheduler/internal/adapters/in/http"
	"github.com/cosmicjs/appointment-scheduler/internal/adapters/in/rabbitmq"
	"github.com/cosmicjs/appointment-scheduler/internal/adapters/out/cache"
	"github.com/cosmicjs/appointment-scheduler/internal/adapters/out/cosmic"
	"github.com/cosmicjs/appointment-scheduler/internal/adapters/out/logger"
	"github.com/cosmicjs/appointment-scheduler/internal/adapters/out/twilio"
	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
	"github.com/cosmicjs/appointment-scheduler/internal/core/services"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
		"twilioEnabled":   cfg.Twilio.Enabled,
	})

	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	storeAdapter := cosmic.NewCosmicAdapter(cfg, mainLogger.WithModule("CosmicAdapter"))

	var notifierAdapter out.NotifierPort
	if twilioAdapter := twilio.NewTwilioAdapter(cfg, mainLogger.WithModule("TwilioAdapter")); twilioAdapter != nil {
		notifierAdapter = twilioAdapter
	}

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		scheduleCache, err := cache.NewScheduleCacheAdapter(cfg, mainLogger.WithModule("ScheduleCache"))
		if err != nil {
			log.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = scheduleCache
	}

	bookingService := services.NewBookingService(
		storeAdapter,
		notifierAdapter,
		cacheAdapter,
		mainLogger,
		cfg.Location(),
	)

	router := gin.Default()
	bookingController := http.NewBookingController(bookingService, cfg)
	bookingController.RegisterRoutes(router)
	adminController := http.NewAdminController(bookingService, cfg)
	adminController.RegisterRoutes(router)

	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewBookingEventListener(
			bookingService,
			cfg,
			mainLogger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			log.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				log.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}

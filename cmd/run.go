package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gaznger/api"
	"gaznger/auth"
	"gaznger/config"
	"gaznger/database"
	"gaznger/events"
	"gaznger/logging"
	"gaznger/metrics"
	"gaznger/notifier"
	"gaznger/repository"
	"gaznger/scheduler"
	"gaznger/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if err := logging.Setup(cfg); err != nil {
		return err
	}

	log.Info("Starting gaznger backend...")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var push service.PushSender
	if cfg.AMQPUrl != "" {
		publisher, err := notifier.NewPushPublisher(cfg.AMQPUrl, cfg.PushExchange)
		if err != nil {
			return fmt.Errorf("failed to initialize push publisher: %w", err)
		}
		defer publisher.Close()
		push = publisher
	} else {
		log.Info("AMQP URL not configured, push notifications disabled")
	}

	authService := service.NewAuthService(uowFactory, tokens)
	userService := service.NewUserService(uowFactory)
	pointsService := service.NewPointsService(uowFactory)
	settlementService := service.NewSettlementService(uowFactory)
	orderService := service.NewOrderService(uowFactory, cfg.Rewards)
	stationService := service.NewStationService(uowFactory)
	notificationService := service.NewNotificationService(uowFactory, push)

	service.RegisterOrderNotifications(eventBus, notificationService)
	metrics.RegisterEventMetrics(eventBus)

	sched := scheduler.New(settlementService, authService, cfg.SettlementInterval)
	sched.Start(ctx)

	server := api.NewServer(
		authService,
		userService,
		pointsService,
		settlementService,
		orderService,
		stationService,
		notificationService,
		tokens,
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Infof("HTTP server listening in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	sched.Wait()
	log.Info("Shutdown completed")

	return nil
}

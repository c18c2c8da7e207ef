package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"risk_monitor/internal/app/service"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"
	"risk_monitor/internal/infrastructure/ratestore"
	"risk_monitor/internal/infrastructure/realtime"
	"risk_monitor/internal/infrastructure/registryloader"
	"risk_monitor/internal/infrastructure/restapi"
	"risk_monitor/internal/infrastructure/walletrpc"
	"risk_monitor/internal/pkg/logger"
	"risk_monitor/internal/pkg/metrics"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

func main() {
	// Temporary logger for failures before the config is available.
	tempZapLogger, errTempLog := zap.NewDevelopment()
	if errTempLog != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize temporary zapLogger: %v\n", errTempLog)
		os.Exit(1)
	}

	cfg, err := configloader.Load("config/config.yml")
	if err != nil {
		tempZapLogger.Fatal("Failed to load configuration", zap.String("file", "config/config.yml"), zap.Error(err))
	}

	zapLogger, errLog := zap.NewDevelopment()
	if errLog != nil {
		tempZapLogger.Fatal("Failed to initialize zapLogger", zap.Error(errLog))
	}
	defer zapLogger.Sync()

	// Bridge the global slog into zap so both logging styles end up in one place.
	slogLevel := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	slogHandler := slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler()
	slog.SetDefault(slog.New(slogHandler))

	logger.Info("Session/risk monitor starting...")
	appLogger := logger.NewSlogAdapter()

	metrics.MustRegisterMetrics()

	// Static registry: currencies and lending pairs from the external
	// configuration layer, with local fallback files.
	registryCtx, registryCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Registry.RequestTimeoutMs)*time.Millisecond)
	registry, err := registryloader.NewLoader(cfg.Registry).Load(registryCtx)
	registryCancel()
	if err != nil {
		logger.Fatal("Failed to load currency registry", "error", err)
	}
	logger.Info("Currency registry loaded",
		"currencies", len(registry.Currencies()),
		"pairs", len(registry.Pairs()))

	// Rate table and risk engine.
	rateTable := ratestore.NewStore(time.Duration(cfg.Risk.RateMaxAgeMs)*time.Millisecond, zapLogger)
	riskEngine := service.NewRiskEngine(cfg.Risk.PivotCurrency)
	positionBook := service.NewPositionBook(riskEngine, registry, appLogger,
		time.Duration(cfg.Risk.PositionMaxAgeMs)*time.Millisecond)
	rateIngest := service.NewRateIngest(rateTable, appLogger)

	// Subscription facades.
	vaultFeed := service.NewVaultFeed(cfg.Feeds.TransactionBufferSize, appLogger)
	notificationFeed := service.NewNotificationFeed(cfg.Feeds.NotificationBufferSize, appLogger)

	// Realtime channel: all subscribers register before Connect so delivery
	// order is the arrival order for every consumer.
	channel := realtime.NewChannel(cfg.Channel, zapLogger)
	channel.Subscribe(rateIngest.HandleMessage)
	channel.Subscribe(positionBook.HandleMessage)
	channel.Subscribe(vaultFeed.HandleMessage)
	channel.Subscribe(notificationFeed.HandleMessage)
	channel.OnStateChange(func(state entity.ChannelState, attempt int) {
		if state == entity.ChannelFailed {
			logger.Error("Realtime channel failed permanently", "attempts", attempt)
		}
	})

	// Wallet provider boundary.
	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	provider, err := walletrpc.NewProvider(dialCtx, cfg.Wallet, zapLogger)
	dialCancel()
	if err != nil {
		logger.Fatal("Failed to reach the wallet provider", "error", err)
	}

	walletSession := service.NewWalletSession(provider, appLogger, cfg.Wallet)
	walletSession.OnIdentityChange(func(identity entity.WalletIdentity) {
		logger.Info("Wallet identity changed",
			"connected", identity.Connected,
			"address", identity.Address)
	})

	if err := channel.Connect(); err != nil {
		logger.Fatal("Failed to start the realtime channel", "error", err)
	}

	// Resume a previously authorized session without prompting the user.
	sessionCtx, sessionCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Wallet.RequestTimeoutMs)*time.Millisecond)
	if err := walletSession.CheckExistingSession(sessionCtx); err != nil {
		logger.Warn("Existing session check failed, continuing disconnected", "error", err)
	}
	sessionCancel()

	// HTTP API.
	sessionHandler := restapi.NewSessionHandler(walletSession, cfg, appLogger)
	riskHandler := restapi.NewRiskHandler(walletSession, positionBook, appLogger)
	feedHandler := restapi.NewFeedHandler(vaultFeed, notificationFeed, channel, appLogger)
	registryHandler := restapi.NewRegistryHandler(registry, appLogger)
	router := restapi.SetupRouter(sessionHandler, riskHandler, feedHandler, registryHandler, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	logger.Info("Monitor running. Press Ctrl+C to stop.")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, tearing down...")

	// Teardown order matters: the channel cancels its pending reconnect timer
	// before closing the transport, and the session cancels its poll before
	// the provider connection goes away.
	if err := channel.Close(); err != nil {
		logger.Warn("Channel close reported an error", "error", err)
	}
	walletSession.Disconnect()
	provider.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped.")
	}

	logger.Info("Session/risk monitor stopped.")
}

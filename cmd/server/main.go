package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/config"
	"github.com/mamadbah2/smartstore/internal/messaging"
	"github.com/mamadbah2/smartstore/internal/metrics"
	"github.com/mamadbah2/smartstore/internal/repository/mongodb"
	"github.com/mamadbah2/smartstore/internal/repository/sheets"
	"github.com/mamadbah2/smartstore/internal/scheduler"
	"github.com/mamadbah2/smartstore/internal/server/handlers"
	"github.com/mamadbah2/smartstore/internal/server/router"
	alertsvc "github.com/mamadbah2/smartstore/internal/service/alerts"
	authsvc "github.com/mamadbah2/smartstore/internal/service/auth"
	commandsvc "github.com/mamadbah2/smartstore/internal/service/commands"
	"github.com/mamadbah2/smartstore/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/smartstore/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/smartstore/internal/service/whatsapp"
	"github.com/mamadbah2/smartstore/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/smartstore/pkg/clients/whatsapp"
	"github.com/mamadbah2/smartstore/pkg/logger"
)

func main() {
	envFile := pflag.String("env-file", "", "path to a .env file with configuration overrides")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger, err := logger.New(cfg.Server.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	invCfg := inventory.DefaultConfig()
	invCfg.MaxSafeTemp = cfg.Inventory.MaxSafeTemp
	invCfg.MaxSafeHumidity = cfg.Inventory.MaxSafeHumidity
	invCfg.SoonWindowDays = cfg.Inventory.SoonWindowDays
	if cfg.Inventory.ProfilesFile != "" {
		profiles, err := config.LoadProfiles(cfg.Inventory.ProfilesFile)
		if err != nil {
			baseLogger.Fatal("failed to load storage profiles", zap.Error(err))
		}
		invCfg.Profiles = profiles
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	var mongoRepo *mongodb.MongoDBRepository
	if cfg.MongoDB.Enabled() {
		mongoRepo, err = mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	}

	var whatsClient *whatsappclient.APIClient
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(whatsappclient.Options{
			BaseURL:       cfg.WhatsApp.BaseURL,
			APIVersion:    cfg.WhatsApp.APIVersion,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		})
	}

	// Alerting
	sinks := []alertsvc.Sink{alertsvc.NewLogSink(baseLogger.Named("alerts"))}
	if whatsClient != nil && cfg.WhatsApp.ManagerNumber != "" {
		sinks = append(sinks, alertsvc.NewWhatsAppSink(whatsClient, cfg.WhatsApp.ManagerNumber, ""))
	}
	if cfg.Kafka.Enabled() {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				baseLogger.Error("failed to close kafka writer", zap.Error(err))
			}
		}()
		sinks = append(sinks, publisher)
		baseLogger.Info("kafka alert stream enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.AlertTopic))
	}
	dispatcher := alertsvc.NewDispatcher(cfg.Inventory.AlertQueueSize, baseLogger.Named("svc.alerts"), sinks...)

	recorder := metrics.NewRecorder()
	engine := inventory.NewEngine(invCfg, dispatcher, recorder, baseLogger.Named("svc.inventory"))

	// Credentials
	var userStore authsvc.UserStore
	switch cfg.Auth.Backend {
	case config.AuthBackendMongo:
		users := mongoRepo.Users()
		if err := users.EnsureIndexes(startCtx); err != nil {
			baseLogger.Fatal("failed to prepare users collection", zap.Error(err))
		}
		userStore = users
	default:
		userStore = authsvc.NewFileStore(cfg.Auth.UsersFile)
	}
	authService := authsvc.NewService(userStore, baseLogger.Named("svc.auth"))

	// Reporting
	var reportStore reportingsvc.ReportStore
	if mongoRepo != nil {
		reportStore = mongoRepo
	}
	var sheetWriter reportingsvc.RowWriter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetWriter = sheetsRepo
	}
	reportingService := reportingsvc.NewService(engine, reportStore, sheetWriter, cfg.Sheets.ReportRange, baseLogger.Named("svc.reporting"))

	// WhatsApp command channel
	var webhookHandler *handlers.WebhookHandler
	var messenger scheduler.Messenger
	if whatsClient != nil {
		var translator whatsappsvc.Translator
		if cfg.AI.AnthropicKey != "" {
			translator = anthropic.NewClient(anthropic.Options{APIKey: cfg.AI.AnthropicKey})
			baseLogger.Info("anthropic ai client enabled")
		} else {
			baseLogger.Warn("anthropic api key missing, free-text commands disabled")
		}

		if len(cfg.WhatsApp.Operators()) == 0 {
			baseLogger.Warn("no whatsapp operator numbers configured, chat commands will be refused")
		}

		commandDispatcher := commandsvc.NewService(engine, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, translator, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		messenger = messagingSvc
	} else {
		baseLogger.Warn("whatsapp not configured, webhook and chat alerts disabled")
	}

	ginEngine := router.New(router.Handlers{
		Inventory: handlers.NewInventoryHandler(engine, reportingService, baseLogger.Named("handlers.inventory")),
		Auth:      handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth")),
		Webhook:   webhookHandler,
		Metrics:   recorder.Handler(),
	}, baseLogger.Named("router"))

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}
	sched := scheduler.NewScheduler(scheduler.Options{
		SweepSchedule:  cfg.Inventory.SweepSchedule,
		ReportSchedule: cfg.Reporting.CronSchedule,
		Location:       loc,
		ReportTo:       cfg.WhatsApp.ManagerNumber,
	}, engine, reportingService, messenger, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	sched.Stop()
	dispatcher.Close()
}

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"freightdesk/quote/internal/api"
	"freightdesk/quote/internal/cache"
	"freightdesk/quote/internal/config"
	"freightdesk/quote/internal/db"
	"freightdesk/quote/internal/email"
	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/notify"
	"freightdesk/quote/internal/offers"
	"freightdesk/quote/internal/reconcile"
	"freightdesk/quote/internal/services"
	"freightdesk/quote/internal/storage"
	"freightdesk/quote/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (event worker and sweeps), 'all' (default)")

const workerConcurrency = 10

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()
	if err := db.EnsureIndexes(ctx, mongoDb); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			slog.Error("error disconnecting from Redis", "error", err)
		}
	}()

	// Services
	offerService := services.NewOfferService(mongoDb)
	mailLogService := services.NewCachedMailLogService(services.NewMailLogService(mongoDb), redisClient)
	supplierService := services.NewSupplierService(mongoDb)
	offerConfigService := services.NewOfferConfigService(mongoDb, redisClient)
	go func() {
		if err := offerConfigService.SubscribeToChanges(ctx); err != nil {
			slog.Error("offer configuration subscription ended", "error", err)
		}
	}()

	templateOverrides, err := services.NewEmailTemplateService(mongoDb).ListTemplates(ctx)
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}
	catalog, err := notify.NewCatalog(templateOverrides)
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	if err := catalog.Validate(); err != nil {
		log.Fatalf("Email templates incomplete: %v", err)
	}

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	var mailbox api.Mailbox
	if cfg.MockServices {
		slog.Info("MOCK_SERVICES enabled: using Redis email sender")
		redisSender := email.NewRedisSender(redisClient)
		primaryEmailSender = redisSender
		mailbox = redisSender
	} else {
		primaryEmailSender = email.NewSMTPSender(cfg)
	}

	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)
	if cfg.LogEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(cfg.LogEmailsPath)
		if err != nil {
			slog.Warn("failed to initialize file email sender, proceeding without it", "path", cfg.LogEmailsPath, "error", err)
		} else {
			compositeSender.AddSender(fileSender)
			slog.Info("file email logger enabled", "path", cfg.LogEmailsPath)
		}
	}

	dispatcher := notify.NewDispatcher(compositeSender, mailLogService, catalog, cfg.SmtpFromAddress)
	controller := offers.NewController(offerService, mailLogService, supplierService, dispatcher, offerConfigService, offers.Settings{
		CorrectionExpiry:       cfg.CorrectionExpiry(),
		SupplierResponseExpiry: cfg.SupplierResponseExpiry(),
		CompletionPercentage:   cfg.CompletionPercentage,
		OpsEmail:               cfg.OpsEmail,
	})

	var fileSource storage.IFileEventSource
	if cfg.AwsS3Bucket != "" {
		fileSource, err = storage.NewS3FileEventSource(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 file source: %v", err)
		}
	} else {
		slog.Warn("AWS_S3_BUCKET not set, new file notifications are disabled")
	}

	reconciler := reconcile.NewReconciler(controller, offerService, mailLogService, supplierService, fileSource, dispatcher, reconcile.Settings{
		NewFilesInterval:         cfg.NewFilesInterval,
		OfferSweepInterval:       cfg.OfferSweepInterval,
		NewFilesLookback:         cfg.NewFilesLookback,
		MissingInfoReminderAfter: cfg.MissingInfoReminderAfter,
		SupplierReminderAfter:    cfg.SupplierReminderAfter,
		CompletionGrace:          cfg.CompletionGrace,
	})

	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	var wg sync.WaitGroup
	shutdownChan := make(chan struct{}, 1)

	// Service API always runs
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(cfg, mailbox, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("service API listening", "port", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
	}()

	var mainApiSrv *http.Server
	var taskSrv *asynq.Server
	var scheduler *asynq.Scheduler

	apiMode := func() {
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: api.SetupRouter(ctx, cfg, taskClient, offerService, offerConfigService),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			slog.Info("main API listening", "port", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
		}()
	}

	bgMode := func() {
		sweeps := reconciler.Sweeps()
		processor := tasks.NewTaskProcessor(controller, reconciler)
		taskSrv, err = tasks.SetupServer(redisClient, processor, sweeps, workerConcurrency)
		if err != nil {
			log.Fatalf("Failed to start task server: %v", err)
		}

		scheduler = tasks.NewScheduler(redisClient)
		if err := tasks.RegisterSweeps(scheduler, sweeps); err != nil {
			log.Fatalf("Failed to schedule sweeps: %v", err)
		}
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	slog.Info("starting application", "mode", cfg.RunMode)
	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified: %s", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("received signal, shutting down", "signal", sig.String())
	case <-shutdownChan:
		slog.Info("shutdown requested via service API")
	}
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		slog.Error("service API shutdown error", "error", err)
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			slog.Error("main API shutdown error", "error", err)
		}
	}
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if taskSrv != nil {
		taskSrv.Shutdown()
	}

	wg.Wait()
	slog.Info("server gracefully stopped")
}

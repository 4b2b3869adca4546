package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	changeStatusHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/change_status"
	createBookingHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/create_booking"
	createDisputeHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/create_dispute"
	createReviewHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/create_review"
	getBookingHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/get_booking"
	listBookingsHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/list_bookings"
	markCompletionHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/mark_completion"
	resolveDisputeHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/resolve_dispute"
	triggerSweepHandler "github.com/yovko123/uslugiBG-backend/internal/api/handlers/trigger_sweep"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/config"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	providerRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/provider"
	reviewRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/review"
	"github.com/yovko123/uslugiBG-backend/internal/integrations/notifier"
	autocompleteJob "github.com/yovko123/uslugiBG-backend/internal/jobs/autocomplete"
	bookingsService "github.com/yovko123/uslugiBG-backend/internal/service/bookings"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/penalty"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
	autoCompleteUC "github.com/yovko123/uslugiBG-backend/internal/usecase/auto_complete"
	changeStatusUC "github.com/yovko123/uslugiBG-backend/internal/usecase/change_status"
	createBookingUC "github.com/yovko123/uslugiBG-backend/internal/usecase/create_booking"
	createDisputeUC "github.com/yovko123/uslugiBG-backend/internal/usecase/create_dispute"
	createReviewUC "github.com/yovko123/uslugiBG-backend/internal/usecase/create_review"
	markCompletionUC "github.com/yovko123/uslugiBG-backend/internal/usecase/mark_completion"
	resolveDisputeUC "github.com/yovko123/uslugiBG-backend/internal/usecase/resolve_dispute"
	"github.com/yovko123/uslugiBG-backend/pkg/dbmetrics"
	"github.com/yovko123/uslugiBG-backend/pkg/logger"
	"github.com/yovko123/uslugiBG-backend/pkg/metrics"
	"github.com/yovko123/uslugiBG-backend/pkg/simpletxmanager"
	"github.com/yovko123/uslugiBG-backend/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting uslugiBG booking lifecycle service...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Клиент сервиса уведомлений (fire-and-forget)
	notifierClient := notifier.NewClient(
		cfg.Notification.URL,
		time.Duration(cfg.Notification.Timeout)*time.Second,
		log,
	)
	if cfg.Notification.URL != "" {
		log.Info("Notification client initialized (url=%s timeout=%ds)", cfg.Notification.URL, cfg.Notification.Timeout)
	} else {
		log.Warn("Notification client disabled: notification_service.url is empty")
	}

	// Репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		reviewRepository   *reviewRepo.Repository
		providerRepository *providerRepo.Repository
		txMgr              changeStatusUC.TransactionManager
		sinkMetrics        security.MetricsCollector
		sweeperMetrics     autoCompleteUC.MetricsObserver
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		reviewRepository = reviewRepo.NewRepository(wrappedDB)
		providerRepository = providerRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
		sinkMetrics = metricsCollector
		sweeperMetrics = metricsCollector
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		reviewRepository = reviewRepo.NewRepository(db)
		providerRepository = providerRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Доменные сервисы
	securitySink := security.NewSink(log, sinkMetrics, cfg.Metrics.ServiceName)
	fraudDetector := fraud.NewDetector(bookingRepository, fraud.Config{
		RapidChangeWindow: time.Duration(cfg.Lifecycle.RapidChangeWindowMinutes) * time.Minute,
		RapidChangeCount:  cfg.Lifecycle.RapidChangeCount,
		NoShowThreshold:   cfg.Lifecycle.NoShowClaimThreshold,
		NoShowWindow:      time.Duration(cfg.Lifecycle.NoShowClaimWindowDays) * 24 * time.Hour,
	}, log)
	penaltyCalculator := penalty.NewCalculator(time.Duration(cfg.Lifecycle.PenaltyWindowHours) * time.Hour)
	bookingSvc := bookingsService.NewService(bookingRepository, log)

	reviewWindow := time.Duration(cfg.Lifecycle.ReviewWindowDays) * 24 * time.Hour
	cancellationWindow := time.Duration(cfg.Lifecycle.CancellationWindowDays) * 24 * time.Hour
	anomalyWindow := time.Duration(cfg.Lifecycle.ReviewAnomalyWindowDays) * 24 * time.Hour

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(bookingRepository, log)
	changeStatusUseCase := changeStatusUC.NewUseCase(
		bookingRepository,
		fraudDetector,
		penaltyCalculator,
		securitySink,
		notifierClient,
		txMgr,
		cancellationWindow,
		cfg.Lifecycle.CancellationLimit,
		log,
	)
	markCompletionUseCase := markCompletionUC.NewUseCase(
		bookingRepository,
		fraudDetector,
		securitySink,
		txMgr,
		reviewWindow,
		log,
	)
	createDisputeUseCase := createDisputeUC.NewUseCase(
		bookingRepository,
		fraudDetector,
		securitySink,
		notifierClient,
		txMgr,
		log,
	)
	resolveDisputeUseCase := resolveDisputeUC.NewUseCase(
		bookingRepository,
		notifierClient,
		txMgr,
		reviewWindow,
		log,
	)
	createReviewUseCase := createReviewUC.NewUseCase(
		bookingRepository,
		reviewRepository,
		providerRepository,
		securitySink,
		txMgr,
		anomalyWindow,
		log,
	)
	autoCompleteUseCase := autoCompleteUC.NewUseCase(
		bookingRepository,
		notifierClient,
		sweeperMetrics,
		txMgr,
		cfg.Lifecycle.AutoCompleteGraceHours,
		reviewWindow,
		log,
	)

	// Свипер автозавершения: плановый запуск + ручной триггер
	sweepRunner := autocompleteJob.NewRunner(autoCompleteUseCase, cfg.Lifecycle.SweepHourUTC, log)
	runnerCtx, stopRunner := context.WithCancel(context.Background())
	defer stopRunner()
	go sweepRunner.Run(runnerCtx)

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	changeStatus := changeStatusHandler.NewHandler(changeStatusUseCase, log)
	markCompletion := markCompletionHandler.NewHandler(markCompletionUseCase, log)
	createDispute := createDisputeHandler.NewHandler(createDisputeUseCase, log)
	resolveDispute := resolveDisputeHandler.NewHandler(resolveDisputeUseCase, log)
	createReview := createReviewHandler.NewHandler(createReviewUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	triggerSweep := triggerSweepHandler.NewHandler(sweepRunner, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	authMW := middleware.NewAuth(cfg.Server.AdminToken, log)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// PROTECTED ROUTES (требуют X-User-ID header)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMW.Middleware)

	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", changeStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", markCompletion.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/dispute", createDispute.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reviews", createReview.Handle).Methods(http.MethodPost)

	// ADMIN ROUTES (требуют X-Admin-Token)
	admin := api.PathPrefix("").Subrouter()
	admin.Use(authMW.AdminMiddleware)
	admin.HandleFunc("/bookings/{bookingId}/dispute/resolve", resolveDispute.Handle).Methods(http.MethodPost)

	internalRoutes := r.PathPrefix("/internal").Subrouter()
	internalRoutes.Use(authMW.AdminMiddleware)
	internalRoutes.HandleFunc("/jobs/autocomplete", triggerSweep.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем свипер и сбор метрик connection pool
	stopRunner()
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

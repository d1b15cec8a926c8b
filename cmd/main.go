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
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-StudyRoomService/internal/api/handlers"
	cancelReservationHandler "github.com/m04kA/SMC-StudyRoomService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-StudyRoomService/internal/api/handlers/create_reservation"
	getMyReservationsHandler "github.com/m04kA/SMC-StudyRoomService/internal/api/handlers/get_my_reservations"
	getReservationHandler "github.com/m04kA/SMC-StudyRoomService/internal/api/handlers/get_reservation"
	getRoomBlackoutsHandler "github.com/m04kA/SMC-StudyRoomService/internal/api/handlers/get_room_blackouts"
	"github.com/m04kA/SMC-StudyRoomService/internal/api/middleware"
	"github.com/m04kA/SMC-StudyRoomService/internal/config"
	roomsCache "github.com/m04kA/SMC-StudyRoomService/internal/infra/cache/rooms"
	blackoutRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/blackout"
	reservationRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/reservation"
	roomRepo "github.com/m04kA/SMC-StudyRoomService/internal/infra/storage/room"
	"github.com/m04kA/SMC-StudyRoomService/internal/integrations/eventbus"
	reservationsService "github.com/m04kA/SMC-StudyRoomService/internal/service/reservations"
	cancelReservationUC "github.com/m04kA/SMC-StudyRoomService/internal/usecase/cancel_reservation"
	createReservationUC "github.com/m04kA/SMC-StudyRoomService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-StudyRoomService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudyRoomService/pkg/logger"
	"github.com/m04kA/SMC-StudyRoomService/pkg/metrics"
	"github.com/m04kA/SMC-StudyRoomService/pkg/txmanager"
)

// publisher издатель событий бронирования
type publisher interface {
	createReservationUC.EventPublisher
	cancelReservationUC.EventPublisher
	Close() error
}

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("SRS_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-StudyRoomService...")
	log.Info("Configuration loaded from %s", configPath)

	loc, err := cfg.Reservation.Location()
	if err != nil {
		log.Fatal("Invalid timezone: %v", err)
	}
	log.Info("Service timezone: %s", loc)

	// Метрики собираются всегда, endpoint публикуется только если включен
	metricsCollector := metrics.New(cfg.Metrics.ServiceName)
	stopMetricsCh := make(chan struct{})

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

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB, cfg.Database.TxTimeout())

	// Redis кэш справочника комнат (опционально)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable, cache will fail open: %v", err)
		} else {
			log.Info("Room cache enabled (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.TTL())
		}
		cancel()
	}

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB, loc)
	blackoutRepository := blackoutRepo.NewRepository(wrappedDB, loc)
	roomRepository := roomsCache.NewCache(
		redisClient,
		roomRepo.NewRepository(wrappedDB),
		log,
		cfg.Redis.Prefix,
		cfg.Redis.TTL(),
	)

	// Издатель событий
	var events publisher = eventbus.Noop{}
	if cfg.RabbitMQ.Enabled {
		amqpPublisher, err := eventbus.NewPublisher(cfg.RabbitMQ.URL, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
		if err != nil {
			log.Warn("RabbitMQ is unavailable, events are disabled: %v", err)
		} else {
			events = amqpPublisher
			log.Info("Event publisher connected to RabbitMQ")
		}
	}
	defer events.Close()

	// Use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		roomRepository,
		blackoutRepository,
		txMgr,
		events,
		metricsCollector,
		createReservationUC.Policy{
			BookingWindowDays: cfg.Reservation.BookingWindowDays,
			MaxDailyCredits:   cfg.Reservation.MaxDailyCredits,
			Location:          loc,
		},
		log,
	)
	cancelReservationUseCase := cancelReservationUC.NewUseCase(
		reservationRepository,
		txMgr,
		events,
		metricsCollector,
		cfg.Reservation.CancelNotice(),
		loc,
		log,
	)

	// Сервис чтения
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		roomRepository,
		blackoutRepository,
		log,
	)

	// Handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, loc, log)
	cancelReservation := cancelReservationHandler.NewHandler(cancelReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getMyReservations := getMyReservationsHandler.NewHandler(reservationSvc, log)
	getRoomBlackouts := getRoomBlackoutsHandler.NewHandler(reservationSvc, loc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, log))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := wrappedDB.PingContext(ctx); err != nil {
			handlers.RespondServiceUnavailable(w)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Окна недоступности комнаты на дату
	api.HandleFunc("/rooms/{roomId}/blackouts", getRoomBlackouts.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Создание бронирования
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Бронирования текущего студента; регистрируется до /{reservationId}
	protected.HandleFunc("/reservations/me", getMyReservations.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}", getReservation.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	close(stopMetricsCh)
	log.Info("Server stopped gracefully")
}

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

	cancelBookingHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/cancel_booking"
	convertHoldHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/convert_hold"
	createHoldHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/create_hold"
	deactivateSlotHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/deactivate_slot"
	finalizeBookingHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/finalize_booking"
	generateSlotsHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/generate_slots"
	getAvailabilityHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/get_booking"
	getSessionBookingsHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/get_session_bookings"
	getSessionHoldsHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/get_session_holds"
	listTimeslotsHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/list_timeslots"
	releaseHoldHandler "github.com/m04kA/MTB-ReservationService/internal/api/handlers/release_hold"
	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	"github.com/m04kA/MTB-ReservationService/internal/config"
	"github.com/m04kA/MTB-ReservationService/internal/infra/ratelimit"
	bookingRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/booking"
	holdRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	timeslotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/internal/integrations/notifier"
	bookingsService "github.com/m04kA/MTB-ReservationService/internal/service/bookings"
	reservationService "github.com/m04kA/MTB-ReservationService/internal/service/reservation"
	"github.com/m04kA/MTB-ReservationService/internal/sweeper"
	createHoldUC "github.com/m04kA/MTB-ReservationService/internal/usecase/create_hold"
	finalizeBookingUC "github.com/m04kA/MTB-ReservationService/internal/usecase/finalize_booking"
	generateSlotsUC "github.com/m04kA/MTB-ReservationService/internal/usecase/generate_slots"
	"github.com/m04kA/MTB-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/MTB-ReservationService/pkg/logger"
	"github.com/m04kA/MTB-ReservationService/pkg/metrics"
	"github.com/m04kA/MTB-ReservationService/pkg/simpletxmanager"
	"github.com/m04kA/MTB-ReservationService/pkg/txmanager"
)

// TxManager интерфейс транзакционного менеджера для сервисов и use cases
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

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

	log.Info("Starting MTB-ReservationService...")
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

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		timeslotRepository *timeslotRepo.Repository
		holdRepository     *holdRepo.Repository
		bookingRepository  *bookingRepo.Repository
		txMgr              TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		timeslotRepository = timeslotRepo.NewRepository(wrappedDB)
		holdRepository = holdRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		timeslotRepository = timeslotRepo.NewRepository(db)
		holdRepository = holdRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем публикацию событий подтверждения (если включена)
	var publisher *notifier.Publisher
	if cfg.Notifier.Enabled {
		publisher = notifier.NewPublisher(cfg.Notifier.URL, cfg.Notifier.Queue, log)
		defer publisher.Close()
		log.Info("Booking confirmation publisher initialized (queue=%s)", cfg.Notifier.Queue)
	}

	// Параметры жизненного цикла холдов
	holdTTL := time.Duration(cfg.Reservation.HoldTTLMinutes) * time.Minute
	sweepInterval := time.Duration(cfg.Reservation.SweepIntervalSeconds) * time.Second
	sweepGrace := time.Duration(cfg.Reservation.SweepGraceMinutes) * time.Minute

	// Инициализируем сервисы
	reservationSvc := reservationService.NewService(
		timeslotRepository,
		holdRepository,
		txMgr,
		sweepGrace,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		timeslotRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createHoldUseCase := createHoldUC.NewUseCase(
		timeslotRepository,
		holdRepository,
		txMgr,
		holdTTL,
		cfg.Reservation.MaxTicketsPerHold,
		log,
	)

	var notifyPublisher finalizeBookingUC.NotificationPublisher
	if publisher != nil {
		notifyPublisher = publisher
	}
	finalizeBookingUseCase := finalizeBookingUC.NewUseCase(
		holdRepository,
		timeslotRepository,
		bookingRepository,
		notifyPublisher,
		txMgr,
		log,
	)

	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		timeslotRepository,
		txMgr,
		log,
	)

	// Запускаем sweeper просроченных холдов
	var sweepMetrics sweeper.Metrics
	if cfg.Metrics.Enabled {
		sweepMetrics = metricsCollector
	}
	holdSweeper := sweeper.New(
		holdRepository,
		reservationSvc,
		sweepInterval,
		sweepGrace,
		cfg.Reservation.SweepBatchSize,
		sweepMetrics,
		log,
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go holdSweeper.Run(sweepCtx)

	// Инициализируем хранилище rate limit (Redis или память)
	var limitStore ratelimit.Store
	if cfg.RateLimit.Enabled {
		refill := time.Duration(cfg.RateLimit.RefillSeconds) * time.Second
		if cfg.RateLimit.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.RateLimit.RedisAddr,
				Password: cfg.RateLimit.RedisPassword,
				DB:       cfg.RateLimit.RedisDB,
			})
			defer rdb.Close()
			limitStore = ratelimit.NewRedisStore(rdb, cfg.RateLimit.Capacity, refill)
			log.Info("Rate limit store: redis at %s", cfg.RateLimit.RedisAddr)
		} else {
			limitStore = ratelimit.NewMemoryStore(cfg.RateLimit.Capacity, refill)
			log.Info("Rate limit store: in-memory")
		}
	}

	// Инициализируем handlers
	listTimeslots := listTimeslotsHandler.NewHandler(reservationSvc, log)
	getAvailability := getAvailabilityHandler.NewHandler(reservationSvc, log)
	createHold := createHoldHandler.NewHandler(createHoldUseCase, log)
	getSessionHolds := getSessionHoldsHandler.NewHandler(reservationSvc, log)
	releaseHold := releaseHoldHandler.NewHandler(reservationSvc, log)
	convertHold := convertHoldHandler.NewHandler(reservationSvc, log)
	finalizeBooking := finalizeBookingHandler.NewHandler(finalizeBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getSessionBookings := getSessionBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	deactivateSlot := deactivateSlotHandler.NewHandler(reservationSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без сессии)
	// ============================================================

	// Слоты на дату с доступной ёмкостью
	api.HandleFunc("/timeslots", listTimeslots.Handle).Methods(http.MethodGet)

	// Доступная ёмкость одного слота
	api.HandleFunc("/timeslots/{timeSlotId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// SESSION ROUTES (требуют X-Session-ID header)
	// ============================================================

	session := api.PathPrefix("").Subrouter()
	session.Use(middleware.SessionMiddleware)

	// --- Холды ---
	// Создание холда (под rate limit)
	session.Handle("/holds",
		middleware.RateLimitMiddleware(limitStore, log)(http.HandlerFunc(createHold.Handle)),
	).Methods(http.MethodPost)

	// Активные холды сессии
	session.HandleFunc("/holds", getSessionHolds.Handle).Methods(http.MethodGet)

	// Освобождение холда
	session.HandleFunc("/holds/{holdId}", releaseHold.Handle).Methods(http.MethodDelete)

	// Перевод холда в оплату
	session.HandleFunc("/holds/{holdId}/convert", convertHold.Handle).Methods(http.MethodPost)

	// Финализация брони из холда
	session.HandleFunc("/holds/{holdId}/finalize", finalizeBooking.Handle).Methods(http.MethodPost)

	// --- Брони ---
	// Брони сессии
	session.HandleFunc("/bookings", getSessionBookings.Handle).Methods(http.MethodGet)

	// Бронь по ID или коду (под rate limit: код не должен подбираться перебором)
	session.Handle("/bookings/{bookingId}",
		middleware.RateLimitMiddleware(limitStore, log)(http.HandlerFunc(getBooking.Handle)),
	).Methods(http.MethodGet)

	// Отмена брони
	session.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-Token header)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminMiddleware(cfg.Admin.Token))

	// Генерация сетки слотов
	admin.HandleFunc("/timeslots/generate", generateSlots.Handle).Methods(http.MethodPost)

	// Снятие слота с продажи
	admin.HandleFunc("/timeslots/{timeSlotId}/deactivate", deactivateSlot.Handle).Methods(http.MethodPatch)

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

	// Останавливаем sweeper
	stopSweeper()

	// Останавливаем сбор метрик connection pool
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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"babylon-engine/internal/config"
	"babylon-engine/internal/database"
	"babylon-engine/internal/messaging"
	"babylon-engine/internal/repository"
	"babylon-engine/internal/service"
	"babylon-engine/internal/worker"
)

func main() {
	log.Println("Запуск воркера генерации игр...")

	// .env для локального запуска; в контейнере файла нет, это не ошибка
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Sync()

	// HTTP-сервер метрик и health-проб
	metricsServer := startMetricsServer(cfg.MetricsPort)

	log.Println("Инициализация AI клиента...")
	aiClient, err := service.NewAIClient(cfg)
	if err != nil {
		log.Fatalf("Ошибка инициализации AI клиента: %v", err)
	}

	log.Println("Подключение к PostgreSQL...")
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}
	defer dbPool.Close()
	log.Println("Успешное подключение к PostgreSQL")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.RunMigrations(migrateCtx, dbPool); err != nil {
		migrateCancel()
		log.Fatalf("Ошибка применения миграций: %v", err)
	}
	migrateCancel()

	log.Println("Подключение к Redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("Не удалось подключиться к Redis: %v", err)
	}
	pingCancel()
	log.Println("Успешное подключение к Redis")

	conn, err := connectRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Не удалось подключиться к RabbitMQ: %v", err)
	}
	defer conn.Close()
	log.Println("Успешное подключение к RabbitMQ")

	// Отдельный канал для нотификатора: потребитель открывает свой
	notifyCh, err := conn.Channel()
	if err != nil {
		log.Fatalf("Не удалось открыть канал для уведомлений: %v", err)
	}
	defer notifyCh.Close()

	notifier, err := service.NewRabbitMQNotifier(notifyCh)
	if err != nil {
		log.Fatalf("Не удалось создать notifier: %v", err)
	}

	actorRepo := repository.NewPgActorRepository(dbPool, logger)
	gameRepo := repository.NewPgGameRepository(dbPool, logger)
	historyRing := repository.NewRedisHistoryRepository(redisClient, logger)
	historyArchive := repository.NewPgHistoryArchive(dbPool, logger)
	historyRepo := repository.NewArchivingHistoryRepository(historyRing, historyArchive, logger)
	ctxb := service.NewContextBuilder(logger, cfg.AIModel)

	handler := worker.NewGenerationHandler(cfg, aiClient, ctxb, actorRepo, gameRepo, historyRepo, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := messaging.NewTaskConsumer(conn, handler, logger)
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Не удалось запустить потребителя задач: %v", err)
	}

	log.Println(" [*] Ожидание задач генерации. Для выхода нажмите CTRL+C")

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan

	log.Println("Получен сигнал завершения. Завершение работы...")
	cancel()
	if err := consumer.Stop(); err != nil {
		log.Printf("Ошибка при остановке потребителя: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка при остановке сервера метрик: %v", err)
	}

	log.Println("Воркер генерации игр остановлен.")
}

// startMetricsServer запускает HTTP-сервер для эндпоинтов /metrics и /health.
func startMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	// /metrics объединяет метрики воркера и метрики AI клиента
	gatherers := prometheus.Gatherers{worker.MetricsRegistry(), service.MetricsGatherer()}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		log.Printf("Запуск HTTP-сервера метрик на :%s...", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Ошибка запуска HTTP-сервера метрик: %v", err)
		}
	}()
	return srv
}

// setupDatabase инициализирует и возвращает пул соединений с БД.
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	const (
		maxRetries = 50
		retryDelay = 3 * time.Second
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var dbPool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = dbPool.Ping(ctx)
			if err == nil {
				cancel()
				return dbPool, nil
			}
			dbPool.Close()
		}
		cancel()

		log.Printf("[Попытка %d/%d] PostgreSQL недоступен: %v", attempt, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("не удалось подключиться к PostgreSQL после %d попыток: %w", maxRetries, err)
}

// connectRabbitMQ подключается к RabbitMQ с повторными попытками.
func connectRabbitMQ(url string) (*amqp.Connection, error) {
	const (
		maxRetries = 50
		retryDelay = 3 * time.Second
	)

	var conn *amqp.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Printf("[Попытка %d/%d] RabbitMQ недоступен: %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("не удалось подключиться к RabbitMQ после %d попыток: %w", maxRetries, err)
}

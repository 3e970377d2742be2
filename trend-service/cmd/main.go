package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"trenddrop/pkg/logger"
	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/config"
	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/handler"
	"trenddrop/trend-service/internal/app/trend/infrastructure/messaging"
	"trenddrop/trend-service/internal/app/trend/processor"
	"trenddrop/trend-service/internal/app/trend/repository"
	"trenddrop/trend-service/internal/app/trend/service"
)

const serviceName = "trend-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if err := db.AutoMigrate(&entity.Product{}, &entity.Trend{}, &entity.Region{}, &entity.Video{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address()).Msg("Redis unavailable, cache disabled until it recovers")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")
	}
	pingCancel()

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	// Корневой контекст проходов сбора и фоновых задач
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	productRepo := repository.NewProductRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Redis.TTL)

	catalogService := service.NewCatalogService(productRepo, cacheRepo)
	generator := service.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	ingestionService := service.NewIngestionService(productRepo, cacheRepo, kafkaProducer, generator, cfg.Scraper.StepDelay)

	statusRegister := service.NewStatusRegister()
	scraperService := service.NewScraperService(rootCtx, ingestionService, statusRegister, cfg.Scraper.MaxProducts)

	scheduler, err := processor.NewCronScheduler(rootCtx, processor.SchedulerConfig{
		Spec:               cfg.Scheduler.Spec,
		MaxProducts:        cfg.Scraper.MaxProducts,
		AutoStartThreshold: cfg.Scraper.AutoStartThreshold,
	}, scraperService, catalogService, statusRegister)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	if _, err := scheduler.Bootstrap(rootCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to auto-start scraper")
	}

	if cfg.Scheduler.Enabled {
		if _, err := scheduler.Activate(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to activate scheduler")
		}
	}

	go reportDBStats(rootCtx, db)

	router := handler.SetupRoutes(handler.Router{
		Products:    handler.NewProductHandler(catalogService),
		Scraper:     handler.NewScraperHandler(scraperService, scheduler, catalogService),
		Health:      handler.NewHealthCheckHandler(db, redisClient),
		Auth:        handler.NewAuthMiddleware(cfg.JWT.Secret),
		RateLimiter: handler.NewRateLimiter(rootCtx, rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("scheduler_enabled", cfg.Scheduler.Enabled).
			Bool("auth_enabled", cfg.JWT.Secret != "").
			Msg("Starting Trend Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Trend Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Планировщик не должен запустить новый проход во время остановки
	scheduler.Stop()
	rootCancel()
	scraperService.Wait()

	logger.Info().Msg("Trend Service stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// reportDBStats периодически публикует состояние пула соединений
func reportDBStats(ctx context.Context, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.RecordDbStats(serviceName, sqlDB.Stats())
		}
	}
}

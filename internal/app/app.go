package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/lunawallet/luna/internal/cache"
	"github.com/lunawallet/luna/internal/config"
	"github.com/lunawallet/luna/internal/env"
	"github.com/lunawallet/luna/internal/errHandler"
	"github.com/lunawallet/luna/internal/file"
	"github.com/lunawallet/luna/internal/helper"
	"github.com/lunawallet/luna/internal/ledger"
	seeders "github.com/lunawallet/luna/internal/seeder"
	"github.com/lunawallet/luna/internal/smtp"
	"github.com/lunawallet/luna/internal/store"
	"github.com/lunawallet/luna/internal/store/memory"
	"github.com/lunawallet/luna/internal/store/postgres"
	"github.com/lunawallet/luna/internal/stream"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items as and when they need them
type Application struct {
	Config       config.Config
	Store        store.Store
	Ledger       *ledger.Ledger
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	WG           *sync.WaitGroup
	Cache        *cache.Cache
	Kafka        *stream.KafkaStream
	FileUploader *file.FileUploader
	Helper       *helper.HelperRepository
	errorHandler *errHandler.ErrorHandler
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	// The in-memory store is the default, a Postgres-backed store can be
	// switched on with DB_DRIVER=postgres.
	cfg.Db.Driver = env.GetString("DB_DRIVER", "memory")
	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.SeedDemoData = env.GetBool("SEED_DEMO_DATA", true)
	cfg.SimulatedDelayMs = env.GetInt("SIMULATED_DELAY_MS", 0)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Luna <no_reply@lunawallet.dev>")

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	st, err := newStore(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	if cfg.SeedDemoData {
		if err := seeders.New(st).Run(); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	errorHandler := errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)

	wg := &sync.WaitGroup{}
	helper := helper.New(&cfg.BaseURL, wg, errorHandler)

	redisCache := cache.New(cfg.RedisServer, 0)

	kafkaStream := stream.New(cfg.KafkaServers)

	fileUploader := file.New(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret)

	var ledgerOpts []ledger.Option
	if cfg.SimulatedDelayMs > 0 {
		delay := time.Duration(cfg.SimulatedDelayMs) * time.Millisecond
		ledgerOpts = append(ledgerOpts, ledger.WithDelay(func() {
			time.Sleep(delay)
		}))
	}

	app := &Application{
		Config:       cfg,
		Store:        st,
		Ledger:       ledger.New(st, ledgerOpts...),
		Logger:       logger,
		Mailer:       mailer,
		WG:           wg,
		Cache:        redisCache,
		Kafka:        kafkaStream,
		FileUploader: fileUploader,
		Helper:       helper,
		errorHandler: errorHandler,
	}

	return app, nil
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Db.Driver {
	case "", "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Db.Driver)
	}
}

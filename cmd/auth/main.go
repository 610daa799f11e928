package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/food_delivery/internal/config"
	"github.com/Skotchmaster/food_delivery/internal/es"
	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/hash"
	"github.com/Skotchmaster/food_delivery/internal/httpserver"
	"github.com/Skotchmaster/food_delivery/internal/logging"
	loggingmw "github.com/Skotchmaster/food_delivery/internal/middleware/logging"
	"github.com/Skotchmaster/food_delivery/internal/mykafka"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/service"
	"github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}

	l := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(l)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil && cfg.AutoMigrate {
		err = repo.Migrate(initCtx, gdb)
	}
	cancel()
	if err != nil {
		l.Error("db_init_error", "error", err)
		os.Exit(1)
	}

	minter, err := tokens.NewMinter(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		l.Error("token_minter_error", "error", err)
		os.Exit(1)
	}
	hasher, err := hash.NewHasher(cfg.BcryptCost)
	if err != nil {
		l.Error("hasher_error", "error", err)
		os.Exit(1)
	}

	publisher, producer := buildPublisher(l, cfg)

	gormRepo := &repo.GormRepo{
		DB:         gdb,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}

	authHTTP := &httpserver.AuthHTTP{
		Svc: &service.AuthService{
			Users:  gormRepo,
			Ledger: gormRepo,
			Minter: minter,
			Hasher: hasher,
			Events: publisher,
			Opts: service.Options{
				AccessTTL:      cfg.JWT.AccessTTL,
				StorageTimeout: cfg.StorageTimeout,
				EventTimeout:   cfg.EventTimeout,
			},
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("16K"))
	e.Use(loggingmw.RequestLogger(l))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: authHTTP,
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	go func() {
		l.Info("http_listen", "addr", cfg.HTTPAddr, "jwt_alg", minter.Algorithm(), "bcrypt_cost", hasher.Cost())
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("echo_start", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("echo_shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			l.Error("kafka_close", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		l.Error("db_close", "error", err)
	}
	l.Info("shutdown_complete")
}

// buildPublisher wires the configured event sinks. An unreachable
// Elasticsearch cluster is skipped so that login keeps working without it.
func buildPublisher(l *slog.Logger, cfg *config.Config) (events.Publisher, *mykafka.Producer) {
	if !cfg.EventsEnabled() {
		return events.Nop{}, nil
	}

	var (
		fanout   events.Fanout
		producer *mykafka.Producer
	)

	if len(cfg.Kafka.Brokers) > 0 {
		p, err := mykafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			l.Warn("kafka_disabled", "error", err)
		} else {
			producer = p
			fanout = append(fanout, p)
		}
	}

	if cfg.Elastic.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := es.NewClient(ctx, cfg.Elastic)
		cancel()
		if err != nil {
			l.Warn("elasticsearch_disabled", "error", err)
		} else {
			fanout = append(fanout, &es.AuditIndexer{Client: client, Index: cfg.Elastic.Index})
		}
	}

	if len(fanout) == 0 {
		return events.Nop{}, producer
	}
	return fanout, producer
}

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/cart"
	storecfg "github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := storecfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(dbCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	blobs := cart.NewRedisBlobs(rdb)
	carts := cart.NewRegistry(blobs, 0, 0)

	orderRepo := &repo.GormRepo{DB: db}
	svc := &service.OrderService{
		Repo:               orderRepo,
		AllowAnyTransition: !cfg.StrictStatusTransitions,
	}

	if cfg.ResendAPIKey != "" {
		svc.Notifier = notify.NewResendClient(notify.ResendConfig{
			BaseURL: cfg.ResendBaseURL,
			APIKey:  cfg.ResendAPIKey,
			From:    cfg.EmailFrom,
			Service: cfg.ServiceName,
		})
	} else {
		logger.Warn("RESEND_API_KEY is empty, confirmation mails go to the log")
		svc.Notifier = notify.LogSender{}
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		svc.Events = producer
	}

	var index *search.OrderIndex
	if cfg.ESURL != "" {
		esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		es, err := search.NewClient(esCtx, search.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		cancel()
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = search.NewOrderIndex(es, cfg.ESIndex)
		svc.Index = index
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware(cfg.ServiceName))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:  &httpserver.CartHTTP{Carts: carts, SecureCookie: cfg.SecureCookies},
		OrderHandler: &httpserver.OrderHTTP{Svc: svc, Carts: carts, SecureCookie: cfg.SecureCookies},
		AdminHandler: &httpserver.AdminHTTP{Svc: svc, Index: index},
		JWTSecret:    cfg.JWTAccessSecret,
		ReadyChecks: map[string]httpserver.ReadyCheck{
			"postgres": orderRepo.Ping,
			"redis":    blobs.Ping,
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	carts.Wait()

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka close", "error", err)
		}
	}
	_ = rdb.Close()
	_ = pkgdb.Close(db)

	logger.Info("storefront stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-backend.git/internal/cart"
	"github.com/ariefcatur/go-shop-backend.git/internal/catalog"
	"github.com/ariefcatur/go-shop-backend.git/internal/config"
	"github.com/ariefcatur/go-shop-backend.git/internal/expiry"
	"github.com/ariefcatur/go-shop-backend.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-backend.git/internal/kafka"
	"github.com/ariefcatur/go-shop-backend.git/internal/notify"
	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/ariefcatur/go-shop-backend.git/internal/payments"
	"github.com/ariefcatur/go-shop-backend.git/internal/postgres"
	"github.com/ariefcatur/go-shop-backend.git/internal/redisx"
	"github.com/ariefcatur/go-shop-backend.git/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, satu per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, logger)
	pCreated.Start(ctx)
	pSucceeded := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentSucceeded, 1024, logger)
	pSucceeded.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, logger)
	pCancelled.Start(ctx)

	// Repo & service
	repo := &orders.Repo{DB: db}
	sched := &expiry.RedisScheduler{R: rdb, Key: redisx.KeyPaymentExpiryQueue}
	svc := &orders.Service{
		Repo:        repo,
		Sched:       sched,
		Created:     pCreated,
		Cancelled:   pCancelled,
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName,
		Expiry:      cfg.PaymentExpiry,
	}
	rec := &payments.Reconciler{
		Repo:        repo,
		Sched:       sched,
		Succeeded:   pSucceeded,
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName,
		RefPrefix:   cfg.PaymentRefPrefix,
	}

	// Websocket hub + fanout consumer: event settlement dari proses manapun
	// (termasuk worker expiry) sampai ke room ws yang dipegang API ini.
	hub := ws.NewHub()
	noteRepo := &notify.Repo{DB: db}
	fan := &notify.Fanout{Repo: noteRepo, Hub: hub, Log: logger}

	for topic, handler := range map[string]kafkax.Handler{
		orders.TopicOrderCreated:     fan.HandleOrderCreated,
		orders.TopicPaymentSucceeded: fan.HandlePaymentSucceeded,
		orders.TopicOrderCancelled:   fan.HandleOrderCancelled,
	} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.FanoutGroup, topic, cfg.FanoutWorkers, logger)
		go func(topic string, c *kafkax.Consumer, h kafkax.Handler) {
			logger.Info("fanout consumer started", zap.String("topic", topic))
			if err := c.Start(ctx, h); err != nil {
				logger.Error("fanout consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic, cons, handler)
	}

	// Router
	router := httpx.NewRouter()

	ph := &httpx.ProductsHandler{Repo: &catalog.Repo{DB: db}, Hub: hub}
	ph.Register(router)

	// webhook gateway: API key, bukan token user
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireAPIKey(cfg.WebhookAPIKey))
		wh := &httpx.WebhookHandler{Rec: rec}
		wh.Register(r)
	})

	// semua yang lain butuh bearer token
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireUser([]byte(cfg.JWTSecret)))

		oh := &httpx.OrdersHandler{Svc: svc, Repo: repo, Redis: rdb}
		oh.Register(r)
		ch := &httpx.CartHandler{Repo: &cart.Repo{DB: db}}
		ch.Register(r)
		nh := &httpx.NotificationsHandler{Repo: noteRepo}
		nh.Register(r)
		wsh := &httpx.WSHandler{Hub: hub, Log: logger}
		wsh.Register(r)
		ph.RegisterAdmin(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel() // stop consumer loop & tutup inbox producer
	pCreated.WaitClosed()
	pSucceeded.WaitClosed()
	pCancelled.WaitClosed()
}

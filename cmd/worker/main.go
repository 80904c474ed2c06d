package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-backend.git/internal/config"
	"github.com/ariefcatur/go-shop-backend.git/internal/expiry"
	kafkax "github.com/ariefcatur/go-shop-backend.git/internal/kafka"
	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/ariefcatur/go-shop-backend.git/internal/postgres"
	"github.com/ariefcatur/go-shop-backend.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Worker expiry: consume delayed queue di Redis, jalankan path cancel yang
// idempotent. Proses terpisah dari API supaya restart API tidak menunda
// pembatalan order yang jatuh tempo, dan sebaliknya.
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

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, logger)
	pCancelled.Start(ctx)

	sched := &expiry.RedisScheduler{R: rdb, Key: redisx.KeyPaymentExpiryQueue}
	svc := &orders.Service{
		Repo:        &orders.Repo{DB: db},
		Sched:       sched,
		Cancelled:   pCancelled,
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName + "-worker",
		Expiry:      cfg.PaymentExpiry,
	}

	w := &expiry.Worker{
		Queue:    sched,
		Handle:   svc.ExpirePayment,
		Interval: time.Second,
		Batch:    100,
		Log:      logger,
	}

	go func() {
		logger.Info("expiry worker started",
			zap.Duration("payment_expiry", cfg.PaymentExpiry))
		if err := w.Run(ctx); err != nil {
			logger.Error("worker exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down worker...")
	cancel()
	pCancelled.WaitClosed()
}

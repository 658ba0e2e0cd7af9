package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-warehouse.git/internal/config"
	"github.com/ariefcatur/go-warehouse.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-warehouse.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse.git/internal/postgres"
	"github.com/ariefcatur/go-warehouse.git/internal/redisx"
	"github.com/ariefcatur/go-warehouse.git/internal/warehouse"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const version = "0.1"

func main() {
	_ = godotenv.Load()
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers (satu per topic)
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, warehouse.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, warehouse.TopicOrderStatus, 1024)
	pStatus.Start(ctx)

	// Repo & handlers
	router := httpx.NewRouter()
	(&httpx.SystemHandler{Service: cfg.ServiceName, Version: version}).Register(router)
	(&httpx.ProductsHandler{Repo: &warehouse.ProductRepo{DB: db}}).Register(router)
	(&httpx.OrdersHandler{
		Repo:            &warehouse.OrderRepo{DB: db},
		ProducerCreated: pCreated,
		ProducerStatus:  pStatus,
		Redis:           rdb,
		Service:         cfg.ServiceName,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close() // tutup inbox -> flush & close writer
	pStatus.Close()
	cancel()
	pCreated.WaitClosed()
	pStatus.WaitClosed()
}

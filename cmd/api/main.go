package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/karigarverse/karigarverse/internal/auth"
	"github.com/karigarverse/karigarverse/internal/cart"
	"github.com/karigarverse/karigarverse/internal/catalog"
	"github.com/karigarverse/karigarverse/internal/config"
	"github.com/karigarverse/karigarverse/internal/httpx"
	kafkax "github.com/karigarverse/karigarverse/internal/kafka"
	"github.com/karigarverse/karigarverse/internal/orders"
	"github.com/karigarverse/karigarverse/internal/postgres"
	"github.com/karigarverse/karigarverse/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)

	// Services & handlers
	authSvc := &auth.Service{DB: db, Redis: rdb, TokenTTL: cfg.TokenTTL}
	orderSvc := orders.NewService(&orders.Repo{DB: db})
	catalogRepo := &catalog.Repo{DB: db}

	requireAuth := httpx.RequireAuth(authSvc)
	router := httpx.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		(&httpx.AuthHandler{Auth: authSvc}).Register(r, requireAuth)
		(&httpx.CatalogHandler{Catalog: catalogRepo}).Register(r)
		(&httpx.CartHandler{Cart: &cart.Repo{DB: db}}).Register(r, requireAuth)
		(&httpx.ArtisansHandler{Artisans: catalogRepo}).Register(r, requireAuth)
		(&httpx.OrdersHandler{
			Orders:    orderSvc,
			Placed:    pPlaced,
			Cancelled: pCancelled,
			Redis:     rdb,
			Service:   cfg.ServiceName,
		}).Register(r, requireAuth)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // close inbox -> flush & close writer
	pCancelled.Close()
	cancel() // stop producer loops
	pPlaced.WaitClosed()
	pCancelled.WaitClosed()
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adihub26/kicks-shoe-store/internal/audit"
	"github.com/adihub26/kicks-shoe-store/internal/checkout"
	"github.com/adihub26/kicks-shoe-store/internal/config"
	"github.com/adihub26/kicks-shoe-store/internal/db"
	"github.com/adihub26/kicks-shoe-store/internal/engine"
	"github.com/adihub26/kicks-shoe-store/internal/kafka"
	"github.com/adihub26/kicks-shoe-store/internal/repository"
	"github.com/adihub26/kicks-shoe-store/internal/scheduler"
	"github.com/adihub26/kicks-shoe-store/internal/server"
	"github.com/adihub26/kicks-shoe-store/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	var orderStore store.Store
	if cfg.DSN != "" {
		database, err := db.NewDB(cfg.DSN, cfg.MigrationsDir)
		if err != nil {
			log.Fatalf("Error in connection to db: %v", err)
		}
		defer database.Close()
		orderStore = repository.NewOrderRepository(database)
	} else {
		orderStore = store.NewFileStore(cfg.DataFile)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processors := []audit.Processor{&audit.StdoutProcessor{Filter: cfg.FilterWord}}
	if cfg.KafkaEnabled {
		producer, err := kafka.NewSaramaProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("Error creating kafka producer: %v", err)
		}
		defer producer.Close()
		processors = append(processors, &audit.KafkaProcessor{Producer: producer, Topic: cfg.KafkaTopic})

		go kafka.StartStatusConsumer(ctx, cfg.KafkaBrokers, cfg.KafkaGroupID, []string{cfg.KafkaTopic})
	}

	auditPool := audit.NewWorkerPool(audit.PoolConfig{
		BatchSize:   10,
		Timeout:     2 * time.Second,
		ChannelSize: 256,
	}, processors...)
	auditPool.Start(ctx, 2)
	defer auditPool.Shutdown(cancel)

	eng, err := engine.New(orderStore, auditPool, engine.Timings{
		ProcessAfter:    cfg.ProcessAfter,
		ShipAfter:       cfg.ShipAfter,
		DeliverAfter:    cfg.DeliverAfter,
		EarlyShipAfter:  cfg.EarlyShipAfter,
		EarlyShipChance: cfg.EarlyShipChance,
		DeliveryDays:    cfg.DeliveryDays,
	})
	if err != nil {
		log.Fatalf("Error creating order engine: %v", err)
	}

	sweeper := scheduler.NewSweeper(eng, cfg.SweepInterval)
	go sweeper.Start(ctx)

	orch := checkout.NewOrchestrator(eng)
	srv := server.NewServer(eng, orch, auditPool, cfg)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}

	go func() {
		log.Printf("Server listen on %s...", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

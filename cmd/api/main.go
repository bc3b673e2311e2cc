package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/rmatos/payment-relay/internal/config/env"
	"github.com/rmatos/payment-relay/internal/database"
	"github.com/rmatos/payment-relay/internal/repository/redis"
	"github.com/rmatos/payment-relay/internal/router"
	"github.com/rmatos/payment-relay/internal/service"
	"github.com/rmatos/payment-relay/internal/worker"
	"github.com/rmatos/payment-relay/libs"
)

func main() {
	if err := env.Load(); err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}
	env.ShowEnvValues()

	rds, err := database.ConnectToRedisClient(env.Values.REDIS_ADDR)
	if err != nil {
		log.Fatalf("Erro ao obter o cliente Redis: %v", err)
	}
	defer database.CloseRedisClient()

	queueRepo := redis.NewPaymentQueueRepository(rds)
	breakerRepo := redis.NewCircuitBreakerRepository(rds)
	summaryRepo := redis.NewSummaryRepository(rds)

	processorClient := service.NewProcessorClient(
		env.Values.PAYMENT_PROCESSOR_URL_DEFAULT,
		env.Values.PAYMENT_PROCESSOR_URL_FALLBACK,
	)

	paymentSvc := service.NewPaymentService(queueRepo, summaryRepo)
	paymentHandler := router.NewPaymentHandler(paymentSvc)

	settlementCfg := worker.DefaultSettlementConfig()
	settlementCfg.Concurrency = env.Values.WORKER_CONCURRENCY
	settlementCfg.SyncSummaryWrite = env.Values.SUMMARY_SYNC_WRITE

	settlement := worker.NewSettlementWorker(queueRepo, breakerRepo, summaryRepo, processorClient, settlementCfg)
	sentinel := worker.NewHealthSentinel(breakerRepo, processorClient, worker.DefaultSentinelConfig())

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		settlement.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		sentinel.Run(workerCtx)
	}()
	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	paymentRoutes := router.Routes(paymentHandler)

	paymentRoutes.HandleFunc("/debug/pprof/", pprof.Index)
	paymentRoutes.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	paymentRoutes.HandleFunc("/debug/pprof/profile", pprof.Profile)
	paymentRoutes.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	paymentRoutes.HandleFunc("/debug/pprof/trace", pprof.Trace)

	SERVER_HOST := env.Values.SERVER_ADDR + ":" + fmt.Sprint(env.Values.SERVER_PORT)
	server := &http.Server{
		Addr:           SERVER_HOST,
		Handler:        paymentRoutes,
		ReadTimeout:    1 * time.Second,
		WriteTimeout:   2 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxHeaderBytes: 256 << 10, // 256 KB
	}

	log.Printf("Servidor iniciado em %s", SERVER_HOST)
	libs.GracefulShutdown(server, 5*time.Second, stopWorkers, workersDone)
}

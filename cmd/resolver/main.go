package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"pulse-market/internal/chain"
	"pulse-market/internal/config"
	"pulse-market/internal/database"
	"pulse-market/internal/jobs"
	"pulse-market/internal/oracle"
	"pulse-market/internal/services"
)

// Standalone resolution worker. Run this instead of the embedded worker
// (RESOLVER_ENABLED=false on the API) when resolution should scale and
// deploy independently of the HTTP tier.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	chainClient := chain.NewClient(cfg.Chain.NodeURL, cfg.Chain.PulseAddress)
	oracleClient := oracle.NewClient(cfg.Pyth.Endpoint, cfg.Pyth.CacheTTL)
	sender := chain.NewRemoteSender(cfg.Chain.SignerURL, cfg.Chain.SignerAddress, cfg.Chain.SignerTimeout)

	marketService := services.NewMarketService(chainClient, cfg.App.MinBet, cfg.App.MaxBet)
	resolutionService := services.NewResolutionService(database.DB, chainClient, marketService, oracleClient, sender)

	worker := jobs.NewResolutionWorker(resolutionService, cfg.Worker.Interval)
	go worker.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down resolver...")
	worker.Stop()
	log.Println("Resolver exited")
}

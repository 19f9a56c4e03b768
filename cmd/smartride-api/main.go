// README: Entry point; loads config, wires services, starts the RPC server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"smartride/internal/ai"
	"smartride/internal/config"
	"smartride/internal/geo"
	"smartride/internal/infra"
	"smartride/internal/logging"
	"smartride/internal/modules/decision"
	"smartride/internal/modules/intent"
	"smartride/internal/modules/providers"
	"smartride/internal/modules/rides"
	"smartride/internal/modules/weather"
	"smartride/internal/pipeline"
	"smartride/internal/rpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	llm, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer llm.Close()

	resolver, err := geo.NewResolver(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	providerList := make([]providers.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		providerList = append(providerList, providers.NewHTTPProvider(pc.Name, pc.BaseURL))
	}
	quoteCache := providers.NewQuoteCache(redisClient, cfg.Quotes.CacheTTL, logger)
	gateway := providers.NewGateway(providerList, cfg.Quotes.Timeout, quoteCache, logger)

	weatherSvc := weather.NewService(
		weather.NewHTTPClient(cfg.Weather.BaseURL),
		redisClient,
		cfg.Weather.CacheTTL,
		cfg.Weather.Timeout,
		logger,
	)

	intentSvc := intent.NewService(llm)
	engine := decision.NewEngine(decision.ConfigFrom(cfg.Decision))
	rideSvc := rides.NewService(rides.NewPostgresStore(dbPool))

	p := pipeline.New(intentSvc, resolver, gateway, weatherSvc, engine, rideSvc, logger)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: rpc.NewServer(p, logger).Routes()}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	logger.Info("smartride api listening", "addr", cfg.HTTP.Addr, "providers", len(providerList))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"time"

	"athletrack-backend/lib/configuration"
	"athletrack-backend/lib/scrapers/athle"
	"athletrack-backend/lib/serviceutil"
	"athletrack-backend/lib/telemetry"
	"athletrack-backend/services/rankings"
	rankingsdb "athletrack-backend/services/rankings/db"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(false)

	config, err := configuration.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	db, err := config.Database.OpenDB(rankingsdb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	defer db.Close()

	t, err := telemetry.SetupFromEnv(ctx, "athletrackd")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	client, err := athle.NewClient(athle.ClientOptions{
		BaseUrl:    config.Scraper.BaseUrl,
		Timeout:    time.Duration(config.Scraper.TimeoutSeconds) * time.Second,
		MaxRetries: config.Scraper.MaxRetries,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize scraper client", err)
	}

	store := rankings.NewStore(db)
	service := rankings.NewService(client, store)

	scheduler, err := rankings.NewScheduler(service, config.Scheduler)
	if err != nil {
		serviceutil.Fatal("failed to initialize scheduler", err)
	}
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
}

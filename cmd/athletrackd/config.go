package main

import (
	"athletrack-backend/lib/configuration"
	"athletrack-backend/services/rankings"
)

type ScraperConfig struct {
	BaseUrl        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`
}

type Config struct {
	Database  configuration.Storage    `json:"database"`
	Scraper   ScraperConfig            `json:"scraper"`
	Scheduler rankings.SchedulerConfig `json:"scheduler"`
}

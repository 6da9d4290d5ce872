package main

import (
	"github.com/retailcrm/backend/internal/infrastructure/config"
	"github.com/retailcrm/backend/internal/infrastructure/ecommerce"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// marketplaceConfigs overlays configured endpoints on the production defaults
func marketplaceConfigs(cfg config.MarketplaceConfig) (*ecommerce.WildberriesConfig, *ecommerce.OzonConfig) {
	wb := ecommerce.NewWildberriesConfig()
	if cfg.Wildberries.BaseURL != "" {
		wb.APIBaseURL = cfg.Wildberries.BaseURL
	}
	if cfg.Wildberries.Timeout > 0 {
		wb.TimeoutSeconds = int(cfg.Wildberries.Timeout.Seconds())
	}
	if cfg.Wildberries.MaxBatchSize > 0 {
		wb.MaxBatchSize = cfg.Wildberries.MaxBatchSize
	}

	ozon := ecommerce.NewOzonConfig()
	if cfg.Ozon.BaseURL != "" {
		ozon.APIBaseURL = cfg.Ozon.BaseURL
	}
	if cfg.Ozon.Timeout > 0 {
		ozon.TimeoutSeconds = int(cfg.Ozon.Timeout.Seconds())
	}
	if cfg.Ozon.MaxBatchSize > 0 {
		ozon.MaxBatchSize = cfg.Ozon.MaxBatchSize
	}
	return wb, ozon
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	out.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		out.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		out.AllowHeaders = cfg.CORSAllowHeaders
	}
	return out
}

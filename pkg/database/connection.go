package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gear-guard/pkg/config"
	"gear-guard/pkg/docstore"
	"gear-guard/pkg/docstore/mongostore"
	"gear-guard/pkg/docstore/pgstore"
)

// Opener выбирает бэкенд документного хранилища по STORE_DRIVER.
// Каждый открытый Store дополнительно инструментируется метриками.
func Opener(cfg *config.Config, logger *zap.Logger) docstore.OpenFunc {
	return func(ctx context.Context) (docstore.Store, error) {
		var (
			store docstore.Store
			err   error
		)
		switch cfg.Store.Driver {
		case config.DriverMemory:
			logger.Warn("Используется хранилище в памяти: данные пропадут после перезапуска")
			store = docstore.NewMemoryStore()
		case config.DriverMongo:
			store, err = mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
		case config.DriverPostgres:
			store, err = pgstore.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MigrateOnStart, logger)
		default:
			return nil, fmt.Errorf("неизвестный STORE_DRIVER %q (memory|mongo|postgres)", cfg.Store.Driver)
		}
		if err != nil {
			return nil, err
		}
		return docstore.Instrument(store), nil
	}
}

// Timeouts - ограничения для пути, которым пользуется браузер (HTTP API).
func Timeouts(cfg *config.Config) docstore.Timeouts {
	return docstore.Timeouts{Default: cfg.Store.Timeout, Lookup: cfg.Store.LookupTimeout}
}

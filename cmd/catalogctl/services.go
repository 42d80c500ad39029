package main

import (
	"context"

	config "github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/quote"
	"github.com/brasil-hosp/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/brasil-hosp/go-backend/internal/repository/pgdb/converter"
	"github.com/brasil-hosp/go-backend/internal/repository/redis"
	redisConv "github.com/brasil-hosp/go-backend/internal/repository/redis/converter"
	"github.com/brasil-hosp/go-backend/internal/repository/sheetdb"
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/clients"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/brasil-hosp/go-backend/pkg/postgres"
	"github.com/brasil-hosp/go-backend/pkg/telemetry"
)

type services struct {
	admin usecase.AdminUC
	auth  usecase.AuthUC
	close func()
}

// openServices подключается к PostgreSQL и Redis и применяет миграции.
// Архив импорта в MinIO из CLI не ведётся.
var openServices = func(ctx context.Context) (*services, error) {
	log, err := logger.New()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations("file://db/migrations", log); err != nil {
		db.Close()
		return nil, err
	}

	redisClient := clients.NewRedisClient(cfg.Redis)

	var products usecase.ProductRepository = pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	if cfg.Catalog.Backend == config.BackendSheetDB {
		products = sheetdb.NewProductRepo(telemetry.NewTracedHTTPClient(nil, cfg.Catalog.FetchTimeout), cfg.Catalog, log)
	}

	catalogUC := usecase.NewCatalogUC(
		products,
		pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{}),
		redis.NewCacheRepo(redisClient, redisConv.ProductConverter{}, cfg.Redis, log),
		catalog.NewSnapshot(cfg.Catalog.SnapshotTTL),
		quote.NewBuilder(cfg.Quote.BaseURL, cfg.Quote.WhatsAppPhone),
		log,
	)
	tx := pgdb.NewTransactor(db.Pool)
	outbox := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})

	return &services{
		admin: usecase.NewAdminUC(products, outbox, tx, catalogUC, nil, 0, log),
		auth: usecase.NewAuthUC(
			pgdb.NewAdminRepo(db.Pool, pgdbConv.AdminConverter{}),
			cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, log,
		),
		close: func() {
			_ = redisClient.Close()
			_ = db.Close()
			_ = log.Sync()
		},
	}, nil
}

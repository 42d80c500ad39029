package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/internal/catalog"
	v1Grpc "github.com/brasil-hosp/go-backend/internal/delivery/v1/grpc"
	v1Http "github.com/brasil-hosp/go-backend/internal/delivery/v1/http"
	"github.com/brasil-hosp/go-backend/internal/infrastructure/kafka"
	minioInfra "github.com/brasil-hosp/go-backend/internal/infrastructure/minio"
	"github.com/brasil-hosp/go-backend/internal/quote"
	s3Repo "github.com/brasil-hosp/go-backend/internal/repository/minio"
	"github.com/brasil-hosp/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/brasil-hosp/go-backend/internal/repository/pgdb/converter"
	"github.com/brasil-hosp/go-backend/internal/repository/redis"
	redisConv "github.com/brasil-hosp/go-backend/internal/repository/redis/converter"
	"github.com/brasil-hosp/go-backend/internal/repository/sheetdb"
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/clients"
	"github.com/brasil-hosp/go-backend/pkg/closer"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/brasil-hosp/go-backend/pkg/postgres"
	"github.com/brasil-hosp/go-backend/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	migrationsURL   = "file://db/migrations"
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	topicTimeout    = 10 * time.Second
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker

	// фоновая очистка архива импорта живёт до остановки приложения
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// NewApp поднимает все зависимости. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())

	defer func() {
		if err != nil {
			a.bgCancel()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if cerr := a.closer.Close(ctx); cerr != nil {
				log.Warnf("closing partially initialized app: %v", cerr)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	if err := a.setup(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) setup(ctx context.Context) error {
	cfg := a.cfg

	tp, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	a.closer.Add("telemetry", tp.Shutdown)

	db, err := initPGDB(ctx, a.logger, cfg)
	if err != nil {
		return err
	}
	a.closer.AddSimple("postgres", db.Close)

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.AddSimple("redis", redisClient.Close)
	if err := redisClient.WaitReady(ctx); err != nil {
		return err
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return err
	}
	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName, minioInfra.ArchivePrefix, cfg.Minio.RetentionDays); err != nil {
		return err
	}
	archive := minioInfra.NewMinioInfrastructure(s3Repo.NewArchiveRepo(minioClient, cfg.Minio), a.logger, a.bgCtx)
	a.closer.Add("minio cleanup", func(ctx context.Context) error {
		defer a.bgCancel()
		return archive.WaitForCleanup(ctx)
	})

	producer := kafka.NewProducer(a.logger, cfg.Kafka)
	a.closer.AddSimple("kafka producer", producer.Close)
	topicCtx, cancelTopic := context.WithTimeout(context.Background(), topicTimeout)
	defer cancelTopic()
	if err := producer.EnsureTopic(topicCtx); err != nil {
		// топик может создать оператор кластера, outbox дождётся брокера
		a.logger.Warnf("kafka topic %s not ensured: %v", cfg.Kafka.Topic, err)
	}

	tx := pgdb.NewTransactor(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
	quotes := quote.NewBuilder(cfg.Quote.BaseURL, cfg.Quote.WhatsAppPhone)

	catalogUC := usecase.NewCatalogUC(
		a.productRepo(db),
		pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{}),
		redis.NewCacheRepo(redisClient, redisConv.ProductConverter{}, cfg.Redis, a.logger),
		catalog.NewSnapshot(cfg.Catalog.SnapshotTTL),
		quotes,
		a.logger,
	)
	cartUC := usecase.NewCartUC(
		redis.NewCartRepo(redisClient, cfg.Cart.TTL),
		catalogUC,
		outboxRepo,
		tx,
		quotes,
		cfg.Cart.Namespace,
		a.logger,
	)
	adminUC := usecase.NewAdminUC(
		a.productRepo(db),
		outboxRepo,
		tx,
		catalogUC,
		archive,
		cfg.Minio.MaxImportSize,
		a.logger,
	)
	authUC := usecase.NewAuthUC(
		pgdb.NewAdminRepo(db.Pool, pgdbConv.AdminConverter{}),
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		cfg.Auth.TokenTTL,
		a.logger,
	)
	contactUC := usecase.NewContactUC(
		pgdb.NewContactRepo(db.Pool, pgdbConv.ContactRequestConverter{}),
		outboxRepo,
		tx,
		a.logger,
	)

	a.worker = kafka.NewOutboxWorker(
		outboxRepo,
		producer,
		kafka.NewPgListener(db.Dsn, pgdb.OutboxChannel, a.logger),
		cfg.Kafka.OutboxBatchSize,
		a.logger,
	)
	a.closer.Add("outbox worker", a.worker.Stop)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(catalogUC)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(&v1Http.Deps{
		CatalogUC:     catalogUC,
		CartUC:        cartUC,
		AdminUC:       adminUC,
		AuthUC:        authUC,
		ContactUC:     contactUC,
		CartCookie:    cfg.Cart.CookieName,
		CartTTL:       cfg.Cart.TTL,
		MaxImportSize: cfg.Minio.MaxImportSize,
		ServiceName:   cfg.Telemetry.ServiceName,
	})
	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// productRepo выбирает источник товаров по PRODUCT_BACKEND.
func (a *App) productRepo(db *postgres.PgDatabase) usecase.ProductRepository {
	if a.cfg.Catalog.Backend == config.BackendSheetDB {
		client := telemetry.NewTracedHTTPClient(nil, a.cfg.Catalog.FetchTimeout)
		return sheetdb.NewProductRepo(client, a.cfg.Catalog, a.logger)
	}
	return pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
}

// Run обслуживает запросы до сигнала остановки или падения сервера.
func (a *App) Run() error {
	a.worker.Start(a.bgCtx)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("grpc server", err)
		}
	}()
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("http server", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		appErr = errors.Join(appErr, err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(migrationsURL, logger); err != nil {
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront/internal/infrastructure/minio"
	"github.com/DRSN-tech/storefront/internal/infrastructure/password"
	"github.com/DRSN-tech/storefront/internal/infrastructure/token"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/repository/redis"
	redisConv "github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/internal/session"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	topicTimeout    = 10 * time.Second
	sessionBuffer   = 16
)

// App владеет всеми ресурсами процесса и освобождает их в обратном порядке через closer.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	outbox  *kafka.OutboxWorker
	hub     *session.Hub

	// отменяется при остановке, прерывая фоновые операции (очистку MinIO)
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:            cfg,
		logger:         log,
		closer:         closer.NewCloser(0),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(ctx); cerr != nil {
			log.Errorf(cerr, "failed to release resources after init error")
		}
		shutdownCancel()
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := a.initPGDB(ctx)
	if err != nil {
		return err
	}
	a.closer.AddSimple("postgres", db.Close)

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// Топик может создать администратор кластера, доставка просто подождёт
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}

	// Репозитории
	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl())
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.NewCategoryConverterImpl())
	profileConv := pgdbConv.NewProfileConverterImpl()
	profileRepo := pgdb.NewProfileRepo(db.Pool, profileConv)
	userRepo := pgdb.NewUserRepo(db.Pool, profileConv)
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.NewOrderConverterImpl())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl())
	statsRepo := pgdb.NewStatsRepo(db.Pool)
	cacheRepo := redis.NewCacheRepo(
		redisClient,
		redisConv.NewProductConverterImpl(),
		redisConv.NewCategoryConverterImpl(),
		a.cfg.Redis,
		a.logger,
	)
	imageRepo := s3Repo.NewImageRepo(minioClient, a.cfg.Minio)

	// Инфраструктура
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, a.cfg.Minio, a.logger, a.shutdownCtx)
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)

	hub := session.NewHub(sessionBuffer, a.logger)
	a.hub = hub

	txManager := tr.NewManager(db.Pool)
	tokens := token.NewJWTManager(a.cfg.Auth)
	hasher := password.NewBcryptHasher(a.cfg.Auth.BcryptCost)
	guard := usecase.NewGuard(tokens, cacheRepo, profileRepo)

	// Use case'ы
	catalogUC := usecase.NewCatalogUC(productRepo, categoryRepo, cacheRepo, a.logger)
	orderUC := usecase.NewOrderUC(guard, productRepo, orderRepo, outboxRepo, cacheRepo, producer, txManager, a.logger)
	adminUC := usecase.NewAdminUC(guard, productRepo, categoryRepo, statsRepo, cacheRepo, imagesInfra, a.logger)
	authUC := usecase.NewAuthUC(
		guard,
		userRepo,
		profileRepo,
		cacheRepo,
		tokens,
		hasher,
		txManager,
		hub,
		a.cfg.Auth.BootstrapAdmins,
		a.logger,
	)

	a.outbox = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, db.Dsn)

	// Транспорт
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := chi.NewRouter()
	v1Http.NewRouter(r, registry, a.logger).Init(
		v1Http.NewHandlers(catalogUC, orderUC, adminUC, authUC, hub, a.cfg.Minio.MaxImageSize, a.logger),
		map[string]v1Http.HealthCheck{
			"postgres": db.Ping,
			"redis":    redisClient.Ping,
		},
	)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(catalogUC)

	return nil
}

// Run запускает серверы и воркер outbox и блокируется до сигнала остановки или фатальной ошибки сервера.
func (a *App) Run() error {
	a.outbox.Start(context.Background())
	a.closer.Add("outbox worker", a.outbox.Stop)

	errCh := make(chan error, 2)

	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	a.closer.Add("gRPC server", a.grpcSrv.Stop)

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()
	a.closer.Add("HTTP server", a.httpSrv.Stop)
	// Потоки SSE держат соединения открытыми, поэтому хаб закрывается раньше HTTP-сервера
	a.closer.AddSimple("session hub", a.hub.Close)

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

	closeErr := a.closer.Close(ctx)
	a.shutdownCancel()
	if closeErr != nil {
		a.logger.Errorf(closeErr, "shutdown finished with errors")
	} else {
		a.logger.Infof("Application shutdown complete")
	}

	return errors.Join(appErr, closeErr)
}

func (a *App) initPGDB(ctx context.Context) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, a.cfg.Db)
	if err != nil {
		a.logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(a.logger); err != nil {
		db.Close()
		a.logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

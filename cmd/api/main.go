package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/ports"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	infracache "github.com/jhoicas/inventario-stock/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/events"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-stock/internal/interfaces/http"
	"github.com/jhoicas/inventario-stock/pkg/config"
	"github.com/jhoicas/inventario-stock/pkg/logger"
)

// storage repositorios y runner transaccional del driver elegido.
type storage struct {
	txRunner    inventory.TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	// Los defer de run cierran pool, Redis y Kafka antes del Fatal.
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("aplicación finalizada con error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("inicializar almacenamiento: %w", err)
	}
	defer store.close()

	// Caché: Redis si hay REDIS_ADDR; si no, caché del proceso
	var cache ports.Cache = infracache.NewMemoryCache(cfg.Redis.MaxEntries, cfg.Redis.TTL)
	if cfg.Redis.Addr != "" {
		client, err := infracache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis %s: %w", cfg.Redis.Addr, err)
		}
		defer client.Close()
		cache = infracache.NewRedisCache(client, cfg.Redis.TTL, log)
	}

	// Eventos de stock bajo: Kafka si hay brokers
	var publisher ports.LowStockPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka, cfg.App.Name, log)
		defer kp.Close()
		publisher = kp
	}

	m := metrics.New()

	productUC := usecase.NewProductUseCase(store.productRepo, store.txRunner, cache)
	adjustUC := inventory.NewAdjustStockUseCase(store.txRunner, inventory.AdjustStockOptions{
		Cache:        cache,
		Publisher:    publisher,
		Metrics:      m,
		MaxRetries:   cfg.Inventory.MaxRetries,
		RetryBackoff: cfg.Inventory.RetryBackoff,
	})
	alertsUC := inventory.NewAlertsUseCase(store.productRepo, infrapdf.NewMarotoReportGenerator("Productos bajo stock mínimo"))
	historyUC := inventory.NewHistoryUseCase(store.movRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())
	app.Use(httpRouter.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.DB.Driver})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		AdjustUC:  adjustUC,
		AlertsUC:  alertsUC,
		HistoryUC: historyUC,
		JWTSecret: cfg.JWT.Secret,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: las escrituras se registran sin actor")
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}

// openStorage abre PostgreSQL (con migraciones opcionales) o el almacén en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == "memory" {
		store := memory.NewStore()
		return &storage{
			txRunner:    memory.NewTxRunner(store),
			productRepo: memory.NewProductRepository(store),
			movRepo:     memory.NewStockMovementRepository(store),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		txRunner:    postgres.NewTxRunner(pool),
		productRepo: postgres.NewProductRepository(pool),
		movRepo:     postgres.NewStockMovementRepository(pool),
		close:       pool.Close,
	}, nil
}

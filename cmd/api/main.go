package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appanalytics "github.com/ravito-ci/ravito-api/internal/application/analytics"
	appcredit "github.com/ravito-ci/ravito-api/internal/application/credit"
	"github.com/ravito-ci/ravito-api/internal/application/grid"
	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/application/pricing"
	"github.com/ravito-ci/ravito-api/internal/application/usecase"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/lock"
	infrapdf "github.com/ravito-ci/ravito-api/internal/infrastructure/pdf"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/postgres"
	infraredis "github.com/ravito-ci/ravito-api/internal/infrastructure/redis"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/xlsx"
	httpRouter "github.com/ravito-ci/ravito-api/internal/interfaces/http"
	"github.com/ravito-ci/ravito-api/pkg/config"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("charger la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:       cfg.App.Env,
		Level:     cfg.App.LogLevel,
		Component: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("démarrage de l'application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion à PostgreSQL")
	}
	defer pool.Close()

	// Redis: verrous distribués et notifications. Sans Redis, verrou local et aucune diffusion.
	var (
		locker          ports.Locker          = lock.NewKeyedMutex(cfg.Credit.LockTTL)
		analyticsLocker ports.Locker          = lock.NewKeyedMutex(cfg.Analytics.LockTTL)
		publisher       ports.ChangePublisher = ports.NopPublisher{}
	)
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("connexion à Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb, cfg.Credit.LockTTL, cfg.Credit.LockTTL, log)
		analyticsLocker = infraredis.NewLocker(rdb, cfg.Analytics.LockTTL, cfg.Analytics.LockTTL, log)
		publisher = infraredis.NewNotifier(rdb, cfg.Redis.ChangesChannel, log)
	} else {
		log.Warn().Msg("Redis non configuré: verrou en mémoire, notifications désactivées")
	}

	productRepo := postgres.NewProductRepository(pool)
	zoneRepo := postgres.NewZoneRepository(pool)
	orgRepo := postgres.NewOrganizationRepository(pool)
	gridRepo := postgres.NewSupplierPriceGridRepository(pool)
	sampleRepo := postgres.NewPriceSampleRepository(pool)
	priceAnalyticsRepo := postgres.NewPriceAnalyticsRepository(pool)
	customerRepo := postgres.NewCreditCustomerRepository(pool)
	transactionRepo := postgres.NewCreditTransactionRepository(pool)
	dashboardRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	bands := domainpricing.NewBands(cfg.Pricing.BandLowPct, cfg.Pricing.BandHighPct)
	loc := cfg.App.Location()

	productUC := usecase.NewProductUseCase(productRepo, publisher, log)
	zoneUC := usecase.NewZoneUseCase(zoneRepo)
	moduleSvc := usecase.NewModuleService(orgRepo)
	varianceUC := pricing.NewVarianceUseCase(productRepo, gridRepo, bands)
	trendUC := pricing.NewTrendUseCase(productRepo, sampleRepo, loc)
	analyticsUC := pricing.NewAnalyticsUseCase(
		productRepo, zoneRepo, gridRepo, sampleRepo, priceAnalyticsRepo, txRunner,
		pricing.AnalyticsConfig{Bands: bands, Period: cfg.Analytics.Period, Location: loc, Locker: analyticsLocker},
		log,
	)
	dashboardUC := appanalytics.NewDashboardUseCase(dashboardRepo, bands)
	gridUC := grid.NewUseCase(gridRepo, productRepo, txRunner, xlsx.NewGridSheetCodec(), publisher, log)
	creditUC := appcredit.NewUseCase(
		customerRepo, transactionRepo, orgRepo, txRunner, locker, publisher,
		infrapdf.NewStatementGenerator(),
		domaincredit.AlertPolicy{
			WarningAfterDays:  cfg.Credit.WarningAfterDays,
			CriticalAfterDays: cfg.Credit.CriticalAfterDays,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // relevés PDF et exports XLSX
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "RAVITO API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		ZoneUC:      zoneUC,
		ModuleSvc:   moduleSvc,
		VarianceUC:  varianceUC,
		TrendUC:     trendUC,
		AnalyticsUC: analyticsUC,
		DashboardUC: dashboardUC,
		GridUC:      gridUC,
		CreditUC:    creditUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Location:    loc,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("serveur HTTP arrêté")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("signal d'arrêt reçu, fermeture du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arrêt du serveur")
	}

	log.Info().Msg("application arrêtée")
}

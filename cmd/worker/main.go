// Commande worker: recalcul périodique des instantanés d'analyse de prix et
// consommation des notifications de changement publiées par l'API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/application/pricing"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/lock"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/postgres"
	infraredis "github.com/ravito-ci/ravito-api/internal/infrastructure/redis"
	"github.com/ravito-ci/ravito-api/pkg/config"
	"github.com/ravito-ci/ravito-api/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("charger la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:       cfg.App.Env,
		Level:     cfg.App.LogLevel,
		Component: "worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion à PostgreSQL")
	}
	defer pool.Close()

	// Verrou de recalcul par (produit, zone): Redis si configuré, sinon en mémoire.
	var (
		locker ports.Locker = lock.NewKeyedMutex(cfg.Analytics.LockTTL)
		rdb    *goredis.Client
	)
	if cfg.Redis.Enabled() {
		rdb, err = infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("connexion à Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb, cfg.Analytics.LockTTL, cfg.Analytics.LockTTL, log)
	}

	bands := domainpricing.NewBands(cfg.Pricing.BandLowPct, cfg.Pricing.BandHighPct)
	analyticsUC := pricing.NewAnalyticsUseCase(
		postgres.NewProductRepository(pool),
		postgres.NewZoneRepository(pool),
		postgres.NewSupplierPriceGridRepository(pool),
		postgres.NewPriceSampleRepository(pool),
		postgres.NewPriceAnalyticsRepository(pool),
		postgres.NewTxRunner(pool),
		pricing.AnalyticsConfig{
			Bands:    bands,
			Period:   cfg.Analytics.Period,
			Location: cfg.App.Location(),
			Locker:   locker,
		},
		log,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return recomputeLoop(ctx, analyticsUC, cfg.Analytics.RefreshInterval, log)
	})

	if rdb != nil {
		notifier := infraredis.NewNotifier(rdb, cfg.Redis.ChangesChannel, log)
		invalidator := pricing.NewInvalidator(analyticsUC, log)
		g.Go(func() error {
			return notifier.Subscribe(ctx, invalidator.Handle)
		})
	} else {
		log.Warn().Msg("Redis non configuré: seul le recalcul périodique est actif")
	}

	log.Info().
		Dur("refresh_interval", cfg.Analytics.RefreshInterval).
		Str("period", cfg.Analytics.Period).
		Msg("worker démarré")

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("worker arrêté sur erreur")
		os.Exit(1)
	}
	log.Info().Msg("worker arrêté")
}

// recomputeLoop lance un recalcul complet au démarrage puis à chaque tick.
// Un échec de passe est journalisé; la passe suivante réessaie.
func recomputeLoop(ctx context.Context, uc *pricing.AnalyticsUseCase, every time.Duration, log *logger.Logger) error {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		start := time.Now()
		res, err := uc.RecomputeAll(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil:
			log.Error().Err(err).Msg("recalcul des instantanés échoué")
		default:
			ev := log.Info()
			if len(res.Failed) > 0 {
				ev = log.Warn().Strs("failed", res.Failed)
			}
			ev.Int("products", res.Products).
				Int("written", res.Written).
				Int("skipped", res.Skipped).
				Dur("duration", time.Since(start)).
				Msg("instantanés recalculés")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

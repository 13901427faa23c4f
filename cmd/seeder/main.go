package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"travel_guide/internal/adapters/observability"
	"travel_guide/internal/adapters/restcountries"
	"travel_guide/internal/app"
	"travel_guide/internal/domain"
	"travel_guide/internal/shared"
	"travel_guide/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("file", cfg.SeedFile).
		Str("meta", cfg.CountryMetaBase).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	f, err := os.Open(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open seed file")
	}
	countries, err := app.ReadSeed(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file")
	}

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store connection failed")
	}
	defer closeStore()

	// an empty base URL stores the seed data without enrichment
	var meta domain.CountryMetaClient
	if cfg.CountryMetaBase != "" {
		client, err := restcountries.New(cfg.CountryMetaBase, cfg.CountryMetaRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize metadata client")
		}
		meta = client
	}
	seeder := app.NewSeedService(meta, repo)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, c := range countries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("seeding interrupted")
			break
		}

		wg.Add(1)
		go func(c domain.Country) {
			defer wg.Done()
			defer sem.Release(1)

			stored, err := seeder.SeedCountry(ctx, c)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("id", c.ID).Str("alpha2", c.Alpha2Code).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("id", stored.ID).Int("sights", len(stored.Sights)).Msg("seed ok")
		}(c)
	}

	wg.Wait()
	n := failed.Load()
	log.Info().Int("countries", len(countries)).Int64("failed", n).Msg("seeding completed")
	if n > 0 || ctx.Err() != nil {
		closeStore()
		os.Exit(1)
	}
}

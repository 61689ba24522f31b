package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/paxcalc-backend/internal/config"
	"github.com/stemsi/paxcalc-backend/internal/database"
	"github.com/stemsi/paxcalc-backend/internal/dataset"
	"github.com/stemsi/paxcalc-backend/internal/logger"
	"github.com/stemsi/paxcalc-backend/internal/repository"
	"github.com/stemsi/paxcalc-backend/internal/service"
)

// seed-index stores the bundled indices, those in DATASET_DIR and any index
// files named on the command line into postgres, replacing stored copies.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	indices, err := dataset.Catalog(cfg.DatasetDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load index catalog")
	}
	for _, name := range os.Args[1:] {
		idx, err := dataset.LoadFile(name)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load index file")
		}
		indices = append(indices, idx)
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// The cache is optional here; a stale entry only lives for its TTL.
	var cache repository.PaxIndexCache
	if rdb, err := database.NewRedisClient(ctx, cfg, log); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, cached indices will not be invalidated")
	} else {
		defer rdb.Close()
		cache = repository.NewPaxIndexCache(rdb, cfg.IndexCacheTTL)
	}

	paxService := service.NewPaxService(repository.NewPaxIndexRepository(pool), cache, nil, cfg.DefaultIndexYear, log)

	failed := 0
	for _, idx := range indices {
		res, err := paxService.ImportIndex(ctx, idx)
		if err != nil {
			failed++
			log.Error().Err(err).
				Int("year", idx.Year).
				Str("index_type", string(idx.IndexType)).
				Strs("errors", res.Errors).
				Msg("Index not imported")
			continue
		}
		fmt.Printf("%d %-8s %-12s %d classes\n", idx.Year, idx.IndexType, idx.Version, res.ClassCount)
	}

	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(indices)).Msg("Seeding finished with errors")
		os.Exit(1)
	}
	log.Info().Int("total", len(indices)).Msgf("Seeded %d %s", len(indices), plural(len(indices)))
}

func plural(n int) string {
	if n == 1 {
		return "index"
	}
	return "indices"
}

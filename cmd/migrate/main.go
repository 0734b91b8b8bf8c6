package main

import (
	"context"
	"flag"
	"time"

	"adhub/internal/adspaces/repository"
	"adhub/internal/adspaces/seed"
	"adhub/internal/adspaces/service"
	"adhub/internal/adspaces/validator"
	mongoMigration "adhub/internal/migrations/mongo"
	postgresMigration "adhub/internal/migrations/postgres"
	"adhub/pkg/config"
)

const JobName = "adhub-migration"

func main() {
	seedInventory := flag.Bool("seed", false, "insert the demo ad space inventory when the store is empty")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetStore()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "store_driver", cfg.StoreDriver, "seed", *seedInventory)
	if err := migrate(ctx, cfg); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if *seedInventory {
		svc := service.NewAdSpaceService(repository.NewAdSpaceRepository(cfg), validator.NewAdSpaceValidator(cfg.Log), cfg)
		if _, err := seed.Run(ctx, svc, seed.DemoInventory(), cfg.Log); err != nil {
			cfg.Log.Fatal("Seeding failed", "error", err)
		}
	}

	cfg.Log.Info("Migration completed successfully")
}

func migrate(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreDriver == config.StorePostgres {
		return postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log)
	}
	return mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.Log)
}

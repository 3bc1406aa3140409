package main

import (
	"errors"
	"flag"

	"shop_checkout/internal/pkg/config"
	"shop_checkout/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	source := flag.String("source", "file://migrations", "migration source")
	down := flag.Bool("down", false, "roll back one migration")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := logger.InitLogger(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Named("migrate")

	m, err := migrate.New(*source, cfg.Database.URL())
	if err != nil {
		log.Fatal("open migrations", zap.Error(err))
	}
	defer m.Close()

	if *down {
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("roll back", zap.Error(err))
		}
		log.Info("rolled back one migration")
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		// 上次迁移中断导致 dirty，回退到前一个版本后重试
		var dirty migrate.ErrDirty
		if !errors.As(err, &dirty) {
			log.Fatal("migrate up", zap.Error(err))
		}
		log.Warn("database is dirty, forcing previous version", zap.Int("version", dirty.Version))
		if err := m.Force(dirty.Version - 1); err != nil {
			log.Fatal("force version", zap.Error(err))
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("migrate up", zap.Error(err))
		}
	}

	version, dirty, _ := m.Version()
	log.Info("migration successful", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

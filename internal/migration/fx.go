package migration

import (
	"github.com/smallbiznis/pokedex/internal/config"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dev and test stores (sqlite, mysql) skip the versioned
			// migrations and let gorm derive the schema.
			if err := conn.AutoMigrate(&pokemondomain.Pokemon{}); err != nil {
				return err
			}
		}

		if cfg.SeedStarters {
			return seed.EnsureStarters(conn)
		}
		return nil
	}),
)

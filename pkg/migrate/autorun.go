package migrate

import (
	"context"
	"fmt"

	"github.com/aresconnect/ares-connect-backend/pkg/config"
	"github.com/aresconnect/ares-connect-backend/pkg/db"
	"github.com/aresconnect/ares-connect-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot. It only fires in dev with ARES_AUTO_MIGRATE
// set; every other environment runs cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := DialectFor(cfg.DB)
	if err := Run(ctx, sqlDB, dialect, Embedded(), "up"); err != nil {
		return fmt.Errorf("dev auto-migrate: %w", err)
	}

	version, err := Version(ctx, sqlDB, dialect)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"dialect":        dialect,
		"schema_version": version,
	}), "dev auto-migrate complete")
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"adhub/pkg/logger"
	"adhub/pkg/model"

	"gorm.io/gorm"
)

// RunMigration creates or alters the tables and composite indexes declared on the
// model structs.
func RunMigration(ctx context.Context, db *gorm.DB, log *logger.Logger) error {
	log.Info("Running Postgres migrations")

	if err := db.WithContext(ctx).AutoMigrate(&model.AdSpace{}, &model.Booking{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	checks := []string{
		`DO $$ BEGIN
			ALTER TABLE booking_requests ADD CONSTRAINT chk_booking_dates CHECK (end_date > start_date);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
			ALTER TABLE ad_spaces ADD CONSTRAINT chk_price_non_negative CHECK (price_per_day >= 0);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}
	for _, stmt := range checks {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add constraint: %w", err)
		}
	}

	log.Info("All Postgres migrations applied successfully")
	return nil
}

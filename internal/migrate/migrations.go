package migrate

import (
	"gorm.io/gorm"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// All returns the service's migrations in apply order.
func All() []*Migration {
	return []*Migration{
		{
			Version: "20250812000001",
			Name:    "create_core_tables",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Property{},
					&models.Unit{},
					&models.Invitation{},
					&models.Profile{},
					&models.Tenant{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.Tenant{},
					&models.Profile{},
					&models.Invitation{},
					&models.Unit{},
					&models.Property{},
				)
			},
		},
		{
			Version: "20250902000002",
			Name:    "create_onboarding_attempts",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.OnboardingAttempt{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.OnboardingAttempt{})
			},
		},
	}
}

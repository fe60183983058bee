// Package migrate runs the code-registered schema migrations. Migrations are
// versioned values applied in order, with applied versions tracked in a
// migration_records table.
package migrate

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// Migration is one reversible schema change.
type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

// MigrationRecord tracks an applied migration version.
type MigrationRecord struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// Migrator handles the execution of migrations.
type Migrator struct {
	db         *gorm.DB
	migrations []*Migration
}

// NewMigrator creates a Migrator loaded with the service's migrations.
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: All(),
	}
}

// Migrations returns the registered migrations in apply order.
func (m *Migrator) Migrations() []*Migration {
	return m.migrations
}

// ensureVersionTable creates the version tracking table if it doesn't exist.
func (m *Migrator) ensureVersionTable() error {
	return m.db.AutoMigrate(&MigrationRecord{})
}

// GetAppliedVersions returns a map of applied migration versions.
func (m *Migrator) GetAppliedVersions() (map[string]bool, error) {
	if err := m.ensureVersionTable(); err != nil {
		return nil, err
	}

	var records []MigrationRecord
	if err := m.db.Find(&records).Error; err != nil {
		return nil, err
	}

	versions := make(map[string]bool)
	for _, record := range records {
		versions[record.Version] = true
	}
	return versions, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	applied, err := m.GetAppliedVersions()
	if err != nil {
		return err
	}

	for _, mr := range m.migrations {
		if !applied[mr.Version] {
			if err := mr.Up(m.db); err != nil {
				return err
			}

			record := MigrationRecord{
				Version:   mr.Version,
				Name:      mr.Name,
				AppliedAt: time.Now(),
			}

			if err := m.db.Create(&record).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// MissingTables reports registered models whose tables do not exist in the
// connected database, sorted by model name. An empty result means the schema
// covers every registered model.
func (m *Migrator) MissingTables() []string {
	var missing []string
	for name, model := range models.ModelTypeRegistry {
		if !m.db.Migrator().HasTable(model) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Down rolls back the last applied migration.
func (m *Migrator) Down() error {
	var lastRecord MigrationRecord
	if err := m.db.Order("applied_at DESC").First(&lastRecord).Error; err != nil {
		return err
	}

	var targetMigration *Migration
	for _, mr := range m.migrations {
		if mr.Version == lastRecord.Version {
			targetMigration = mr
			break
		}
	}

	if targetMigration == nil {
		return nil // Migration not found, might have been deleted
	}

	if err := targetMigration.Down(m.db); err != nil {
		return err
	}

	return m.db.Delete(&lastRecord).Error
}

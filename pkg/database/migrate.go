package database

import (
	"fmt"
	"log"

	"github.com/betonpro/tradelinkpro/internal/model"
	"gorm.io/gorm"
)

// migration is one schema step. Each step checks its own applicability
// instead of being attempted and caught, so the list stays idempotent
// across restarts and across databases migrated at different times.
type migration struct {
	name    string
	applied func(m gorm.Migrator) bool
	apply   func(db *gorm.DB) error
}

var migrations = []migration{
	{
		name:    "create users table",
		applied: func(m gorm.Migrator) bool { return m.HasTable(&model.User{}) },
		apply:   func(db *gorm.DB) error { return db.Migrator().CreateTable(&model.User{}) },
	},
	{
		name:    "create suppliers table",
		applied: func(m gorm.Migrator) bool { return m.HasTable(&model.Supplier{}) },
		apply:   func(db *gorm.DB) error { return db.Migrator().CreateTable(&model.Supplier{}) },
	},
	// The columns below were bolted onto early deployments one at a
	// time; tables created by the step above already have them.
	{
		name:    "add suppliers.description",
		applied: func(m gorm.Migrator) bool { return m.HasColumn(&model.Supplier{}, "description") },
		apply:   func(db *gorm.DB) error { return db.Migrator().AddColumn(&model.Supplier{}, "Description") },
	},
	{
		name:    "add suppliers.created_at",
		applied: func(m gorm.Migrator) bool { return m.HasColumn(&model.Supplier{}, "created_at") },
		apply:   func(db *gorm.DB) error { return db.Migrator().AddColumn(&model.Supplier{}, "CreatedAt") },
	},
	{
		name:    "add suppliers.user_id",
		applied: func(m gorm.Migrator) bool { return m.HasColumn(&model.Supplier{}, "user_id") },
		apply:   func(db *gorm.DB) error { return db.Migrator().AddColumn(&model.Supplier{}, "UserID") },
	},
}

// Migrate applies the ordered migration list, skipping steps that are
// already in place.
func Migrate(db *gorm.DB) error {
	for _, step := range migrations {
		if step.applied(db.Migrator()) {
			continue
		}
		log.Printf("applying migration: %s", step.name)
		if err := step.apply(db); err != nil {
			return fmt.Errorf("migration %q failed: %w", step.name, err)
		}
	}
	return nil
}

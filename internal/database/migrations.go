package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Membership lookups happen on both sides of the join
		{"memberships", "idx_memberships_organization_id", "organization_id"},
		{"memberships", "idx_memberships_user_id", "user_id"},

		// Invitation lookups: duplicate check by (email, org) and lazy
		// expiry filtering by expires_at
		{"invitations", "idx_invitations_organization_id", "organization_id"},
		{"invitations", "idx_invitations_email", "email"},
		{"invitations", "idx_invitations_expires_at", "expires_at"},
	}

	for _, idx := range indexes {
		var count int64
		var err error
		switch db.Dialector.Name() {
		case "postgres":
			err = db.Raw(`
				SELECT COUNT(*)
				FROM pg_indexes
				WHERE tablename = ? AND indexname = ?
			`, idx.table, idx.name).Count(&count).Error
		case "mysql":
			err = db.Raw(`
				SELECT COUNT(*)
				FROM information_schema.statistics
				WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
			`, idx.table, idx.name).Count(&count).Error
		default:
			if db.Migrator().HasIndex(idx.table, idx.name) {
				count = 1
			}
		}

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}

package migration

import (
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// Run executes AutoMigrate for the workflow tables. Tables are created on
// first run and altered in place afterwards.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Article{},
		&domain.Revision{},
		&domain.RevisionEditHistory{},
		&domain.RevisionInstruction{},
		&domain.ApprovalHistory{},
		&domain.Notification{},
	)
}

package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// EditHistoryRepository revision edit history data access. Records are
// append-only; there is deliberately no update or delete.
type EditHistoryRepository interface {
	WithTx(tx *gorm.DB) EditHistoryRepository
	Create(history *domain.RevisionEditHistory) error
	FindByRevision(revisionID uuid.UUID) ([]*domain.RevisionEditHistory, error)
	CountByRevision(revisionID uuid.UUID) (int64, error)
}

type editHistoryRepository struct {
	db *gorm.DB
}

// NewEditHistoryRepository creates a new EditHistoryRepository
func NewEditHistoryRepository(db *gorm.DB) EditHistoryRepository {
	return &editHistoryRepository{db: db}
}

func (r *editHistoryRepository) WithTx(tx *gorm.DB) EditHistoryRepository {
	if tx == nil {
		return r
	}
	return &editHistoryRepository{db: tx}
}

func (r *editHistoryRepository) Create(history *domain.RevisionEditHistory) error {
	return r.db.Create(history).Error
}

func (r *editHistoryRepository) FindByRevision(revisionID uuid.UUID) ([]*domain.RevisionEditHistory, error) {
	var histories []*domain.RevisionEditHistory
	err := r.db.Where("revision_id = ?", revisionID).
		Order("edited_at ASC").
		Find(&histories).Error
	return histories, err
}

func (r *editHistoryRepository) CountByRevision(revisionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&domain.RevisionEditHistory{}).
		Where("revision_id = ?", revisionID).
		Count(&count).Error
	return count, err
}

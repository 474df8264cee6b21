package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// ApprovalHistoryRepository approval audit trail data access. Append-only.
type ApprovalHistoryRepository interface {
	WithTx(tx *gorm.DB) ApprovalHistoryRepository
	Create(history *domain.ApprovalHistory) error
	FindByRevision(revisionID uuid.UUID) ([]*domain.ApprovalHistory, error)
}

type approvalHistoryRepository struct {
	db *gorm.DB
}

// NewApprovalHistoryRepository creates a new ApprovalHistoryRepository
func NewApprovalHistoryRepository(db *gorm.DB) ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}

func (r *approvalHistoryRepository) WithTx(tx *gorm.DB) ApprovalHistoryRepository {
	if tx == nil {
		return r
	}
	return &approvalHistoryRepository{db: tx}
}

func (r *approvalHistoryRepository) Create(history *domain.ApprovalHistory) error {
	return r.db.Create(history).Error
}

func (r *approvalHistoryRepository) FindByRevision(revisionID uuid.UUID) ([]*domain.ApprovalHistory, error) {
	var histories []*domain.ApprovalHistory
	err := r.db.Where("revision_id = ?", revisionID).
		Order("created_at DESC").
		Find(&histories).Error
	return histories, err
}

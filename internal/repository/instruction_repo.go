package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// InstructionRepository modification instruction data access
type InstructionRepository interface {
	WithTx(tx *gorm.DB) InstructionRepository
	Create(instruction *domain.RevisionInstruction) error
	FindByID(id uuid.UUID) (*domain.RevisionInstruction, error)
	FindByRevision(revisionID uuid.UUID) ([]*domain.RevisionInstruction, error)
	FindUnresolved(revisionID uuid.UUID) ([]*domain.RevisionInstruction, error)
	Save(instruction *domain.RevisionInstruction) error
}

type instructionRepository struct {
	db *gorm.DB
}

// NewInstructionRepository creates a new InstructionRepository
func NewInstructionRepository(db *gorm.DB) InstructionRepository {
	return &instructionRepository{db: db}
}

func (r *instructionRepository) WithTx(tx *gorm.DB) InstructionRepository {
	if tx == nil {
		return r
	}
	return &instructionRepository{db: tx}
}

func (r *instructionRepository) Create(instruction *domain.RevisionInstruction) error {
	return r.db.Create(instruction).Error
}

func (r *instructionRepository) FindByID(id uuid.UUID) (*domain.RevisionInstruction, error) {
	var instruction domain.RevisionInstruction
	err := r.db.Where("id = ?", id).First(&instruction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &instruction, nil
}

func (r *instructionRepository) FindByRevision(revisionID uuid.UUID) ([]*domain.RevisionInstruction, error) {
	var instructions []*domain.RevisionInstruction
	err := r.db.Where("revision_id = ?", revisionID).
		Order("created_at DESC").
		Find(&instructions).Error
	return instructions, err
}

func (r *instructionRepository) FindUnresolved(revisionID uuid.UUID) ([]*domain.RevisionInstruction, error) {
	var instructions []*domain.RevisionInstruction
	err := r.db.Where("revision_id = ? AND resolved_at IS NULL", revisionID).
		Order("created_at DESC").
		Find(&instructions).Error
	return instructions, err
}

func (r *instructionRepository) Save(instruction *domain.RevisionInstruction) error {
	return r.db.Save(instruction).Error
}

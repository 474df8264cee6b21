package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// UserRepository user data access
type UserRepository interface {
	FindByID(id uuid.UUID) (*domain.User, error)
	FindReviewers() ([]*domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindReviewers returns every active user who can act on submitted revisions:
// approver or supervisor role, or the supervisor flag.
func (r *userRepository) FindReviewers() ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.
		Where("is_active = ?", true).
		Where("role IN ? OR is_sv = ?", []domain.Role{domain.RoleApprover, domain.RoleSupervisor}, true).
		Find(&users).Error
	return users, err
}

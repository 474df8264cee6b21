package service

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
)

// MockRevisionRepository is a mock implementation of RevisionRepository
type MockRevisionRepository struct {
	mock.Mock
}

func (m *MockRevisionRepository) WithTx(tx *gorm.DB) repository.RevisionRepository {
	return m
}

func (m *MockRevisionRepository) FindByID(id uuid.UUID) (*domain.Revision, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revision), args.Error(1)
}

func (m *MockRevisionRepository) CreateExclusive(revision *domain.Revision) error {
	args := m.Called(revision)
	return args.Error(0)
}

func (m *MockRevisionRepository) Save(revision *domain.Revision) error {
	args := m.Called(revision)
	return args.Error(0)
}

func (m *MockRevisionRepository) UpdateContentWithVersion(revision *domain.Revision, loadedVersion int) error {
	args := m.Called(revision, loadedVersion)
	return args.Error(0)
}

func (m *MockRevisionRepository) Delete(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRevisionRepository) List(filter domain.RevisionFilter, offset, limit int) ([]*domain.Revision, int64, error) {
	args := m.Called(filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Revision), args.Get(1).(int64), args.Error(2)
}

func (m *MockRevisionRepository) ExistsActive(articleID string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(articleID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevisionRepository) CountByStatus(statuses []domain.RevisionStatus) (map[domain.RevisionStatus]int64, error) {
	args := m.Called(statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.RevisionStatus]int64), args.Error(1)
}

// MockEditHistoryRepository is a mock implementation of EditHistoryRepository
type MockEditHistoryRepository struct {
	mock.Mock
}

func (m *MockEditHistoryRepository) WithTx(tx *gorm.DB) repository.EditHistoryRepository {
	return m
}

func (m *MockEditHistoryRepository) Create(history *domain.RevisionEditHistory) error {
	args := m.Called(history)
	return args.Error(0)
}

func (m *MockEditHistoryRepository) FindByRevision(revisionID uuid.UUID) ([]*domain.RevisionEditHistory, error) {
	args := m.Called(revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RevisionEditHistory), args.Error(1)
}

func (m *MockEditHistoryRepository) CountByRevision(revisionID uuid.UUID) (int64, error) {
	args := m.Called(revisionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockApprovalHistoryRepository is a mock implementation of ApprovalHistoryRepository
type MockApprovalHistoryRepository struct {
	mock.Mock
}

func (m *MockApprovalHistoryRepository) WithTx(tx *gorm.DB) repository.ApprovalHistoryRepository {
	return m
}

func (m *MockApprovalHistoryRepository) Create(history *domain.ApprovalHistory) error {
	args := m.Called(history)
	return args.Error(0)
}

func (m *MockApprovalHistoryRepository) FindByRevision(revisionID uuid.UUID) ([]*domain.ApprovalHistory, error) {
	args := m.Called(revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalHistory), args.Error(1)
}

// MockInstructionRepository is a mock implementation of InstructionRepository
type MockInstructionRepository struct {
	mock.Mock
}

func (m *MockInstructionRepository) WithTx(tx *gorm.DB) repository.InstructionRepository {
	return m
}

func (m *MockInstructionRepository) Create(instruction *domain.RevisionInstruction) error {
	args := m.Called(instruction)
	return args.Error(0)
}

func (m *MockInstructionRepository) FindByID(id uuid.UUID) (*domain.RevisionInstruction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevisionInstruction), args.Error(1)
}

func (m *MockInstructionRepository) FindByRevision(revisionID uuid.UUID) ([]*domain.RevisionInstruction, error) {
	args := m.Called(revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RevisionInstruction), args.Error(1)
}

func (m *MockInstructionRepository) FindUnresolved(revisionID uuid.UUID) ([]*domain.RevisionInstruction, error) {
	args := m.Called(revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RevisionInstruction), args.Error(1)
}

func (m *MockInstructionRepository) Save(instruction *domain.RevisionInstruction) error {
	args := m.Called(instruction)
	return args.Error(0)
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) FindByArticleID(articleID string) (*domain.Article, error) {
	args := m.Called(articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(id uuid.UUID) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindReviewers() ([]*domain.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(notification *domain.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) CreateBatch(notifications []*domain.Notification) error {
	args := m.Called(notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(id uint64) (*domain.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByRecipient(recipientID uuid.UUID, offset, limit int) ([]*domain.Notification, int64, error) {
	args := m.Called(recipientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) UnreadCount(recipientID uuid.UUID) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(recipientID uuid.UUID) error {
	args := m.Called(recipientID)
	return args.Error(0)
}

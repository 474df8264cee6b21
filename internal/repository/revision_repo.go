package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// activeStatuses are the lifecycle states that block a second revision on the
// same article.
var activeStatuses = []domain.RevisionStatus{
	domain.StatusDraft,
	domain.StatusUnderReview,
	domain.StatusRevisionRequested,
}

// RevisionRepository revision data access
type RevisionRepository interface {
	WithTx(tx *gorm.DB) RevisionRepository
	FindByID(id uuid.UUID) (*domain.Revision, error)
	CreateExclusive(revision *domain.Revision) error
	Save(revision *domain.Revision) error
	UpdateContentWithVersion(revision *domain.Revision, loadedVersion int) error
	Delete(id uuid.UUID) error
	List(filter domain.RevisionFilter, offset, limit int) ([]*domain.Revision, int64, error)
	ExistsActive(articleID string, excludeID *uuid.UUID) (bool, error)
	CountByStatus(statuses []domain.RevisionStatus) (map[domain.RevisionStatus]int64, error)
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) WithTx(tx *gorm.DB) RevisionRepository {
	if tx == nil {
		return r
	}
	return &revisionRepository{db: tx}
}

func (r *revisionRepository) FindByID(id uuid.UUID) (*domain.Revision, error) {
	var revision domain.Revision
	err := r.db.Where("id = ?", id).First(&revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

// CreateExclusive inserts a revision while enforcing the single-active-revision
// invariant. The existence check and the insert run in one transaction with
// the candidate rows locked, so two concurrent creates for the same article
// cannot both pass the check.
func (r *revisionRepository) CreateExclusive(revision *domain.Revision) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.Revision{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("target_article_id = ? AND status IN ?", revision.TargetArticleID, activeStatuses).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return common.ErrActiveRevisionExists
		}
		return tx.Create(revision).Error
	})
}

func (r *revisionRepository) Save(revision *domain.Revision) error {
	return r.db.Save(revision).Error
}

// UpdateContentWithVersion persists a content edit with optimistic locking.
// The row is only written when it still carries the version the editor
// loaded; a zero-row update means someone else edited in between.
func (r *revisionRepository) UpdateContentWithVersion(revision *domain.Revision, loadedVersion int) error {
	result := r.db.Model(&domain.Revision{}).
		Where("id = ? AND version = ?", revision.ID, loadedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(revision)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrVersionConflict
	}
	return nil
}

func (r *revisionRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&domain.Revision{}).Error
}

func (r *revisionRepository) List(filter domain.RevisionFilter, offset, limit int) ([]*domain.Revision, int64, error) {
	var revisions []*domain.Revision
	var total int64

	query := r.db.Model(&domain.Revision{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProposerID != nil {
		query = query.Where("proposer_id = ?", *filter.ProposerID)
	}
	if filter.TargetArticleID != nil {
		query = query.Where("target_article_id = ?", *filter.TargetArticleID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&revisions).Error
	if err != nil {
		return nil, 0, err
	}
	return revisions, total, nil
}

func (r *revisionRepository) ExistsActive(articleID string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Revision{}).
		Where("target_article_id = ? AND status IN ?", articleID, activeStatuses)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *revisionRepository) CountByStatus(statuses []domain.RevisionStatus) (map[domain.RevisionStatus]int64, error) {
	type statusCount struct {
		Status domain.RevisionStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.Model(&domain.Revision{}).
		Select("status, COUNT(*) AS count").
		Where("status IN ?", statuses).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.RevisionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

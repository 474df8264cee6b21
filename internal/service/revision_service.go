package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/cache"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// RevisionService manages revision CRUD and diff computation. Content edits
// are optimistically versioned: a stale version is rejected, and every
// effective edit appends one edit-history record in the same transaction.
type RevisionService struct {
	db              *gorm.DB
	revisionRepo    repository.RevisionRepository
	articleRepo     repository.ArticleRepository
	userRepo        repository.UserRepository
	permissionSvc   *PermissionService
	workflowSvc     *WorkflowService
	editHistorySvc  *EditHistoryService
	notificationSvc *NotificationService
	cacheSvc        cache.Service
	log             *zerolog.Logger

	reasonMinLength int
}

// NewRevisionService creates a new RevisionService
func NewRevisionService(
	db *gorm.DB,
	revisionRepo repository.RevisionRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	permissionSvc *PermissionService,
	workflowSvc *WorkflowService,
	editHistorySvc *EditHistoryService,
	notificationSvc *NotificationService,
	cacheSvc cache.Service,
	reasonMinLength int,
) *RevisionService {
	return &RevisionService{
		db:              db,
		revisionRepo:    revisionRepo,
		articleRepo:     articleRepo,
		userRepo:        userRepo,
		permissionSvc:   permissionSvc,
		workflowSvc:     workflowSvc,
		editHistorySvc:  editHistorySvc,
		notificationSvc: notificationSvc,
		cacheSvc:        cacheSvc,
		reasonMinLength: reasonMinLength,
		log:             logger.GetLogger(),
	}
}

// Create proposes a new revision in draft for an article. The article's
// current values are snapshotted into before_*; the single-active-revision
// invariant is enforced inside the insert transaction.
func (s *RevisionService) Create(ctx context.Context, req domain.RevisionCreateRequest, proposer domain.Principal) (*domain.RevisionResponse, error) {
	if utf8.RuneCountInString(strings.TrimSpace(req.Reason)) < s.reasonMinLength {
		return nil, fmt.Errorf("%w: reason must be at least %d characters", common.ErrInvalidInput, s.reasonMinLength)
	}

	article, err := s.articleRepo.FindByArticleID(req.TargetArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: article %s", common.ErrArticleNotFound, req.TargetArticleID)
	}

	revision := &domain.Revision{
		ID:              uuid.New(),
		TargetArticleID: req.TargetArticleID,
		ProposerID:      proposer.ID,
		Status:          domain.StatusDraft,
		Reason:          req.Reason,
		Version:         1,

		BeforeTitle:             &article.Title,
		BeforeInfoCategory:      article.InfoCategoryCode,
		BeforeKeywords:          article.Keywords,
		BeforeImportance:        &article.Importance,
		BeforeTarget:            article.Target,
		BeforeQuestion:          article.Question,
		BeforeAnswer:            article.Answer,
		BeforeAdditionalComment: article.AdditionalComment,
		BeforePublishStart:      article.PublishStart,
		BeforePublishEnd:        article.PublishEnd,
	}
	applyModifications(revision, req.Modifications)

	if err := s.revisionRepo.CreateExclusive(revision); err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.InvalidateArticle(ctx, req.TargetArticleID); err != nil {
			s.log.Warn().Err(err).Str("article_id", req.TargetArticleID).Msg("article cache invalidation failed")
		}
	}

	s.log.Info().
		Str("revision_id", revision.ID.String()).
		Str("article_id", req.TargetArticleID).
		Str("proposer_id", proposer.ID.String()).
		Msg("revision created")

	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyRevisionCreated(revision); err != nil {
			s.log.Warn().Err(err).Msg("notification dispatch failed")
		}
	}

	return s.buildResponse(revision), nil
}

// Get returns one revision, gated by the view permission rule.
func (s *RevisionService) Get(revisionID uuid.UUID, actor domain.Principal) (*domain.RevisionResponse, error) {
	revision, err := s.loadRevision(revisionID)
	if err != nil {
		return nil, err
	}
	if ok, reason := s.permissionSvc.CanView(actor, revision); !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrForbidden, reason)
	}
	return s.buildResponse(revision), nil
}

// List returns revisions matching the filter, newest first.
func (s *RevisionService) List(filter domain.RevisionFilter, page, limit int) ([]*domain.RevisionResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	revisions, total, err := s.revisionRepo.List(filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*domain.RevisionResponse, 0, len(revisions))
	for _, r := range revisions {
		responses = append(responses, s.buildResponse(r))
	}
	return responses, total, nil
}

// Update applies a content edit. The request must carry the version the
// client loaded; both an early check and the compare-and-set write reject
// stale versions. An effective edit bumps the version and appends exactly one
// edit-history record in the same transaction.
func (s *RevisionService) Update(revisionID uuid.UUID, req domain.RevisionUpdateRequest, editor domain.Principal) (*domain.RevisionResponse, error) {
	var revision *domain.Revision

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		revision, err = s.revisionRepo.WithTx(tx).FindByID(revisionID)
		if err != nil {
			return err
		}
		if revision == nil {
			return fmt.Errorf("%w: revision %s", common.ErrRevisionNotFound, revisionID)
		}

		if ok, reason := s.permissionSvc.CanEdit(editor, revision); !ok {
			return fmt.Errorf("%w: %s", common.ErrForbidden, reason)
		}
		if req.Version != revision.Version {
			return fmt.Errorf("%w: loaded version %d, current %d", common.ErrVersionConflict, req.Version, revision.Version)
		}

		changes := domain.ChangeSet{}
		if req.Reason != nil && *req.Reason != revision.Reason {
			if utf8.RuneCountInString(strings.TrimSpace(*req.Reason)) < s.reasonMinLength {
				return fmt.Errorf("%w: reason must be at least %d characters", common.ErrInvalidInput, s.reasonMinLength)
			}
			changes["reason"] = domain.FieldChange{Before: revision.Reason, After: *req.Reason}
			revision.Reason = *req.Reason
		}
		if req.Modifications != nil {
			collectModificationChanges(revision, *req.Modifications, changes)
			applyModifications(revision, *req.Modifications)
		}

		if len(changes) == 0 {
			return nil
		}

		versionBefore := revision.Version
		revision.Version = versionBefore + 1
		if err := s.revisionRepo.WithTx(tx).UpdateContentWithVersion(revision, versionBefore); err != nil {
			return err
		}

		_, err = s.editHistorySvc.RecordEdit(
			tx, revisionID, editor.ID, editor.Role,
			changes, req.Comment, versionBefore, revision.Version,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.buildResponse(revision), nil
}

// Delete removes a draft revision. Only the proposer or an admin may delete.
func (s *RevisionService) Delete(revisionID uuid.UUID, actor domain.Principal) error {
	revision, err := s.loadRevision(revisionID)
	if err != nil {
		return err
	}

	if ok, reason := s.permissionSvc.CanDelete(actor, revision); !ok {
		if revision.Status != domain.StatusDraft {
			return fmt.Errorf("%w: %s", common.ErrInvalidState, reason)
		}
		return fmt.Errorf("%w: %s", common.ErrForbidden, reason)
	}

	if err := s.revisionRepo.Delete(revisionID); err != nil {
		return err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("actor_id", actor.ID.String()).
		Msg("revision deleted")
	return nil
}

// Submit moves a draft (or resubmits a modification-requested revision) into
// review and notifies the reviewer pool.
func (s *RevisionService) Submit(revisionID uuid.UUID, actor domain.Principal) (*domain.RevisionResponse, error) {
	revision, err := s.workflowSvc.TransitionStatus(revisionID, domain.StatusUnderReview, actor, nil)
	if err != nil {
		return nil, err
	}

	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyRevisionSubmitted(revision); err != nil {
			s.log.Warn().Err(err).Msg("notification dispatch failed")
		}
	}
	return s.buildResponse(revision), nil
}

// CalculateDiff reports the before/after pair of every editable field. A
// field without a proposal echoes its before value and is not modified.
func (s *RevisionService) CalculateDiff(revisionID uuid.UUID) (*domain.RevisionDetailDiff, error) {
	revision, err := s.loadRevision(revisionID)
	if err != nil {
		return nil, err
	}

	diff := &domain.RevisionDetailDiff{RevisionID: revisionID}
	for _, field := range domain.EditableFields {
		before := revision.BeforeValue(field)
		after := revision.AfterValue(field)

		isModified := after != nil && !valuesEqual(before, after)
		if isModified {
			diff.ModifiedFields = append(diff.ModifiedFields, field)
		}
		if after == nil {
			after = before
		}
		diff.Diffs = append(diff.Diffs, domain.RevisionDiff{
			Field:      field,
			Before:     before,
			After:      after,
			IsModified: isModified,
		})
	}
	return diff, nil
}

// AvailableActions evaluates the permission matrix for a revision.
func (s *RevisionService) AvailableActions(revisionID uuid.UUID, actor domain.Principal) ([]string, error) {
	revision, err := s.loadRevision(revisionID)
	if err != nil {
		return nil, err
	}
	return s.permissionSvc.AvailableActions(actor, revision), nil
}

func (s *RevisionService) inTransaction(fn func(tx *gorm.DB) error) error {
	if s.db == nil {
		return fn(nil)
	}
	return s.db.Transaction(fn)
}

func (s *RevisionService) loadRevision(revisionID uuid.UUID) (*domain.Revision, error) {
	revision, err := s.revisionRepo.FindByID(revisionID)
	if err != nil {
		return nil, err
	}
	if revision == nil {
		return nil, fmt.Errorf("%w: revision %s", common.ErrRevisionNotFound, revisionID)
	}
	return revision, nil
}

func (s *RevisionService) buildResponse(revision *domain.Revision) *domain.RevisionResponse {
	var proposerName, approverName, articleTitle string

	if proposer, err := s.userRepo.FindByID(revision.ProposerID); err == nil && proposer != nil {
		proposerName = proposer.FullName
	}
	if revision.ApproverID != nil {
		if approver, err := s.userRepo.FindByID(*revision.ApproverID); err == nil && approver != nil {
			approverName = approver.FullName
		}
	}
	if article, err := s.articleRepo.FindByArticleID(revision.TargetArticleID); err == nil && article != nil {
		articleTitle = article.Title
	}

	return domain.NewRevisionResponse(revision, proposerName, approverName, articleTitle)
}

// applyModifications writes the provided after_* values onto the revision.
// Nil pointers (and a nil keywords slice) leave the field untouched; an empty
// keywords slice clears the proposal back to "no change".
func applyModifications(revision *domain.Revision, m domain.ArticleModifications) {
	if m.Title != nil {
		revision.AfterTitle = m.Title
	}
	if m.InfoCategory != nil {
		revision.AfterInfoCategory = m.InfoCategory
	}
	if m.Keywords != nil {
		revision.AfterKeywords = domain.JoinKeywords(m.Keywords)
	}
	if m.Importance != nil {
		revision.AfterImportance = m.Importance
	}
	if m.Target != nil {
		revision.AfterTarget = m.Target
	}
	if m.Question != nil {
		revision.AfterQuestion = m.Question
	}
	if m.Answer != nil {
		revision.AfterAnswer = m.Answer
	}
	if m.AdditionalComment != nil {
		revision.AfterAdditionalComment = m.AdditionalComment
	}
	if m.PublishStart != nil {
		revision.AfterPublishStart = m.PublishStart
	}
	if m.PublishEnd != nil {
		revision.AfterPublishEnd = m.PublishEnd
	}
}

// collectModificationChanges records, per provided field, the transition from
// the current proposed value to the new one.
func collectModificationChanges(revision *domain.Revision, m domain.ArticleModifications, changes domain.ChangeSet) {
	record := func(field string, provided bool, newValue interface{}) {
		if !provided {
			return
		}
		current := revision.AfterValue(field)
		if !valuesEqual(current, newValue) {
			changes[field] = domain.FieldChange{Before: current, After: newValue}
		}
	}

	record("title", m.Title != nil, derefAny(m.Title))
	record("info_category", m.InfoCategory != nil, derefAny(m.InfoCategory))
	record("keywords", m.Keywords != nil, derefAny(domain.JoinKeywords(m.Keywords)))
	record("importance", m.Importance != nil, derefBoolAny(m.Importance))
	record("target", m.Target != nil, derefAny(m.Target))
	record("question", m.Question != nil, derefAny(m.Question))
	record("answer", m.Answer != nil, derefAny(m.Answer))
	record("additional_comment", m.AdditionalComment != nil, derefAny(m.AdditionalComment))
	record("publish_start", m.PublishStart != nil, derefTimeAny(m.PublishStart))
	record("publish_end", m.PublishEnd != nil, derefTimeAny(m.PublishEnd))
}

func derefAny(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefBoolAny(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

func derefTimeAny(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

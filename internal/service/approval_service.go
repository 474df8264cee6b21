package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/cache"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// ApprovalService orchestrates the terminal and near-terminal workflow
// actions. Each action validates, mutates the revision and writes its audit
// record in one transaction, then dispatches a notification after commit.
// Notification failures never roll back the committed transition.
type ApprovalService struct {
	db              *gorm.DB
	revisionRepo    repository.RevisionRepository
	approvalRepo    repository.ApprovalHistoryRepository
	instructionRepo repository.InstructionRepository
	articleRepo     repository.ArticleRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	cacheSvc        cache.Service
	log             *zerolog.Logger

	reviewDeadlineDays int
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	db *gorm.DB,
	revisionRepo repository.RevisionRepository,
	approvalRepo repository.ApprovalHistoryRepository,
	instructionRepo repository.InstructionRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	cacheSvc cache.Service,
	reviewDeadlineDays int,
) *ApprovalService {
	return &ApprovalService{
		db:                 db,
		revisionRepo:       revisionRepo,
		approvalRepo:       approvalRepo,
		instructionRepo:    instructionRepo,
		articleRepo:        articleRepo,
		userRepo:           userRepo,
		notificationSvc:    notificationSvc,
		cacheSvc:           cacheSvc,
		reviewDeadlineDays: reviewDeadlineDays,
		log:                logger.GetLogger(),
	}
}

// inTransaction wraps fn in a database transaction when a DB is configured.
func (s *ApprovalService) inTransaction(fn func(tx *gorm.DB) error) error {
	if s.db == nil {
		return fn(nil)
	}
	return s.db.Transaction(fn)
}

func (s *ApprovalService) buildResponse(revision *domain.Revision) *domain.RevisionResponse {
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

func (s *ApprovalService) loadRevision(tx *gorm.DB, revisionID uuid.UUID) (*domain.Revision, error) {
	revision, err := s.revisionRepo.WithTx(tx).FindByID(revisionID)
	if err != nil {
		return nil, err
	}
	if revision == nil {
		return nil, fmt.Errorf("%w: revision %s", common.ErrRevisionNotFound, revisionID)
	}
	return revision, nil
}

// ApproveRevision approves a revision under review (or awaiting modification)
// and stamps the approver fields.
func (s *ApprovalService) ApproveRevision(
	revisionID uuid.UUID,
	approver domain.Principal,
	comment *string,
) (*domain.RevisionResponse, error) {
	var revision *domain.Revision

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		revision, err = s.loadRevision(tx, revisionID)
		if err != nil {
			return err
		}

		if revision.Status != domain.StatusUnderReview && revision.Status != domain.StatusRevisionRequested {
			return fmt.Errorf("%w: cannot approve revision in status %s", common.ErrInvalidState, revision.Status)
		}
		if !approver.IsAdmin() && !approver.IsReviewer() {
			return fmt.Errorf("%w: no approval permission", common.ErrForbidden)
		}

		now := time.Now().UTC()
		revision.Status = domain.StatusApproved
		revision.ApproverID = &approver.ID
		revision.ApprovedAt = &now
		revision.ApprovalComment = comment
		if err := s.revisionRepo.WithTx(tx).Save(revision); err != nil {
			return err
		}

		return s.approvalRepo.WithTx(tx).Create(&domain.ApprovalHistory{
			ID:         uuid.New(),
			RevisionID: revisionID,
			ActorID:    approver.ID,
			Action:     domain.ActionApproved,
			Comment:    comment,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("approver_id", approver.ID.String()).
		Msg("revision approved")

	s.invalidateAfterTransition(revision, true)
	s.notifyAfterCommit(func() error {
		return s.notificationSvc.NotifyRevisionApproved(revision, approver.ID, revision.ProposerID)
	})
	return s.buildResponse(revision), nil
}

// RejectRevision rejects a revision; the comment explaining the rejection is
// mandatory.
func (s *ApprovalService) RejectRevision(
	revisionID uuid.UUID,
	rejector domain.Principal,
	comment string,
) (*domain.RevisionResponse, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: rejection comment is required", common.ErrInvalidInput)
	}

	var revision *domain.Revision

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		revision, err = s.loadRevision(tx, revisionID)
		if err != nil {
			return err
		}

		if revision.Status != domain.StatusUnderReview && revision.Status != domain.StatusRevisionRequested {
			return fmt.Errorf("%w: cannot reject revision in status %s", common.ErrInvalidState, revision.Status)
		}
		if !rejector.IsAdmin() && !rejector.IsReviewer() {
			return fmt.Errorf("%w: no rejection permission", common.ErrForbidden)
		}

		now := time.Now().UTC()
		revision.Status = domain.StatusRejected
		revision.ApproverID = &rejector.ID
		revision.ApprovedAt = &now
		revision.ApprovalComment = &comment
		if err := s.revisionRepo.WithTx(tx).Save(revision); err != nil {
			return err
		}

		return s.approvalRepo.WithTx(tx).Create(&domain.ApprovalHistory{
			ID:         uuid.New(),
			RevisionID: revisionID,
			ActorID:    rejector.ID,
			Action:     domain.ActionRejected,
			Comment:    &comment,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("rejector_id", rejector.ID.String()).
		Msg("revision rejected")

	s.invalidateAfterTransition(revision, false)
	s.notifyAfterCommit(func() error {
		return s.notificationSvc.NotifyRevisionRejected(revision, rejector.ID, revision.ProposerID, comment)
	})
	return s.buildResponse(revision), nil
}

// WithdrawRevision withdraws a non-terminal revision. Only the proposer or an
// admin may withdraw.
func (s *ApprovalService) WithdrawRevision(
	revisionID uuid.UUID,
	withdrawer domain.Principal,
	comment *string,
) (*domain.RevisionResponse, error) {
	var revision *domain.Revision

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		revision, err = s.loadRevision(tx, revisionID)
		if err != nil {
			return err
		}

		switch revision.Status {
		case domain.StatusDraft, domain.StatusUnderReview, domain.StatusRevisionRequested:
		default:
			return fmt.Errorf("%w: cannot withdraw revision in status %s", common.ErrInvalidState, revision.Status)
		}
		if !withdrawer.IsAdmin() && revision.ProposerID != withdrawer.ID {
			return fmt.Errorf("%w: only the proposer or an admin may withdraw a revision", common.ErrForbidden)
		}

		revision.Status = domain.StatusWithdrawn
		if err := s.revisionRepo.WithTx(tx).Save(revision); err != nil {
			return err
		}

		return s.approvalRepo.WithTx(tx).Create(&domain.ApprovalHistory{
			ID:         uuid.New(),
			RevisionID: revisionID,
			ActorID:    withdrawer.ID,
			Action:     domain.ActionWithdrawn,
			Comment:    comment,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("withdrawer_id", withdrawer.ID.String()).
		Msg("revision withdrawn")

	s.invalidateAfterTransition(revision, false)
	return s.buildResponse(revision), nil
}

// RequestModification moves a revision under review back to the proposer with
// a modification instruction, created in the same transaction.
func (s *ApprovalService) RequestModification(
	revisionID uuid.UUID,
	requester domain.Principal,
	req domain.InstructionCreateRequest,
) (*domain.RevisionResponse, error) {
	if strings.TrimSpace(req.InstructionText) == "" {
		return nil, fmt.Errorf("%w: instruction text is required", common.ErrInvalidInput)
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", common.ErrInvalidInput, priority)
	}

	var revision *domain.Revision

	err := s.inTransaction(func(tx *gorm.DB) error {
		var err error
		revision, err = s.loadRevision(tx, revisionID)
		if err != nil {
			return err
		}

		if revision.Status != domain.StatusUnderReview {
			return fmt.Errorf("%w: cannot request modification for revision in status %s", common.ErrInvalidState, revision.Status)
		}
		if !requester.IsAdmin() && !requester.IsReviewer() {
			return fmt.Errorf("%w: no modification-request permission", common.ErrForbidden)
		}

		revision.Status = domain.StatusRevisionRequested
		if req.DueDate != nil {
			revision.ReviewDeadlineDate = req.DueDate
		} else if s.reviewDeadlineDays > 0 {
			deadline := time.Now().UTC().AddDate(0, 0, s.reviewDeadlineDays)
			revision.ReviewDeadlineDate = &deadline
		}
		if err := s.revisionRepo.WithTx(tx).Save(revision); err != nil {
			return err
		}

		auditComment := fmt.Sprintf("修正指示: %s", req.InstructionText)
		if err := s.approvalRepo.WithTx(tx).Create(&domain.ApprovalHistory{
			ID:         uuid.New(),
			RevisionID: revisionID,
			ActorID:    requester.ID,
			Action:     domain.ActionRevisionRequested,
			Comment:    &auditComment,
		}); err != nil {
			return err
		}

		return s.instructionRepo.WithTx(tx).Create(&domain.RevisionInstruction{
			ID:              uuid.New(),
			RevisionID:      revisionID,
			InstructorID:    requester.ID,
			InstructionText: req.InstructionText,
			RequiredFields:  req.RequiredFields,
			Priority:        priority,
			DueDate:         req.DueDate,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("requester_id", requester.ID.String()).
		Str("priority", string(priority)).
		Msg("modification requested")

	s.invalidateAfterTransition(revision, false)
	s.notifyAfterCommit(func() error {
		return s.notificationSvc.NotifyModificationRequested(revision, requester.ID, revision.ProposerID, req.InstructionText)
	})
	return s.buildResponse(revision), nil
}

// GetApprovalHistory returns the audit trail of a revision. Visibility
// mirrors the view rule: admin, reviewers, or the proposer.
func (s *ApprovalService) GetApprovalHistory(revisionID uuid.UUID, actor domain.Principal) ([]*domain.ApprovalHistoryItem, error) {
	revision, err := s.loadRevision(nil, revisionID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !actor.IsReviewer() && revision.ProposerID != actor.ID {
		return nil, fmt.Errorf("%w: no permission to view approval history", common.ErrForbidden)
	}

	histories, err := s.approvalRepo.FindByRevision(revisionID)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.ApprovalHistoryItem, 0, len(histories))
	for _, h := range histories {
		item := &domain.ApprovalHistoryItem{
			ID:         h.ID,
			RevisionID: h.RevisionID,
			ActorID:    h.ActorID,
			Action:     h.Action,
			Comment:    h.Comment,
			CreatedAt:  h.CreatedAt,
		}
		if user, err := s.userRepo.FindByID(h.ActorID); err == nil && user != nil {
			item.ActorName = user.FullName
		}
		items = append(items, item)
	}
	return items, nil
}

// GetRevisionStatusCounts returns dashboard counts of revisions per review
// status, cached for a short interval. Non-reviewer roles get an empty
// result.
func (s *ApprovalService) GetRevisionStatusCounts(ctx context.Context, role domain.Role) (*domain.RevisionStatusCounts, error) {
	if !domain.CanAct(role) {
		return &domain.RevisionStatusCounts{}, nil
	}

	if s.cacheSvc != nil {
		var cached domain.RevisionStatusCounts
		if err := s.cacheSvc.GetStatusCounts(ctx, &cached); err == nil {
			return &cached, nil
		}
	}

	counts, err := s.revisionRepo.CountByStatus([]domain.RevisionStatus{
		domain.StatusUnderReview,
		domain.StatusRevisionRequested,
		domain.StatusApproved,
		domain.StatusRejected,
	})
	if err != nil {
		return nil, err
	}

	result := &domain.RevisionStatusCounts{
		UnderReview:       counts[domain.StatusUnderReview],
		RevisionRequested: counts[domain.StatusRevisionRequested],
		Approved:          counts[domain.StatusApproved],
		Rejected:          counts[domain.StatusRejected],
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetStatusCounts(ctx, result); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache status counts")
		}
	}
	return result, nil
}

// invalidateAfterTransition drops cache entries made stale by a committed
// status change. Approval publishes the proposed content, so the article
// snapshot goes too.
func (s *ApprovalService) invalidateAfterTransition(revision *domain.Revision, articleChanged bool) {
	if s.cacheSvc == nil {
		return
	}
	ctx := context.Background()
	if err := s.cacheSvc.InvalidateStatusCounts(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate status counts cache")
	}
	if articleChanged {
		if err := s.cacheSvc.InvalidateArticle(ctx, revision.TargetArticleID); err != nil {
			s.log.Warn().Err(err).
				Str("article_id", revision.TargetArticleID).
				Msg("failed to invalidate article cache")
		}
	}
}

// notifyAfterCommit runs a best-effort notification dispatch. Failures are
// logged, never propagated.
func (s *ApprovalService) notifyAfterCommit(fn func() error) {
	if s.notificationSvc == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.Warn().Err(err).Msg("notification dispatch failed")
	}
}

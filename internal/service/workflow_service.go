package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// WorkflowService owns the revision lifecycle state machine. It performs the
// bare transition only; audit records and notifications are the caller's
// responsibility.
type WorkflowService struct {
	revisionRepo repository.RevisionRepository
	log          *zerolog.Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(revisionRepo repository.RevisionRepository) *WorkflowService {
	return &WorkflowService{
		revisionRepo: revisionRepo,
		log:          logger.GetLogger(),
	}
}

// ValidateTransition checks structural validity against the transition table.
func (s *WorkflowService) ValidateTransition(from, to domain.RevisionStatus) bool {
	return from.CanTransition(to)
}

// AllowedTransitions lists the states reachable from the current one.
func (s *WorkflowService) AllowedTransitions(from domain.RevisionStatus) []domain.RevisionStatus {
	return domain.StatusTransitions[from]
}

// CanTransition checks whether the actor may move the revision to newStatus.
// Structural validity is evaluated before permission, so an impossible
// transition reports the same reason for every actor, admins included.
func (s *WorkflowService) CanTransition(revision *domain.Revision, newStatus domain.RevisionStatus, actor domain.Principal) (bool, string) {
	if !s.ValidateTransition(revision.Status, newStatus) {
		return false, fmt.Sprintf("transition from %s to %s is invalid", revision.Status, newStatus)
	}
	return s.checkTransitionPermission(revision, newStatus, actor)
}

// checkTransitionPermission gates a structurally valid transition by actor.
func (s *WorkflowService) checkTransitionPermission(revision *domain.Revision, newStatus domain.RevisionStatus, actor domain.Principal) (bool, string) {
	// Admin may perform any structurally valid transition
	if actor.IsAdmin() {
		return true, ""
	}

	from := revision.Status

	// Draft -> UnderReview (submit): proposer only
	if from == domain.StatusDraft && newStatus == domain.StatusUnderReview {
		if revision.ProposerID == actor.ID {
			return true, ""
		}
		return false, "only the proposer may submit a revision"
	}

	// Draft -> Withdrawn: proposer only
	if from == domain.StatusDraft && newStatus == domain.StatusWithdrawn {
		if revision.ProposerID == actor.ID {
			return true, ""
		}
		return false, "only the proposer may withdraw a revision"
	}

	// UnderReview -> Approved/Rejected/RevisionRequested: reviewers
	if from == domain.StatusUnderReview {
		if actor.IsReviewer() {
			return true, ""
		}
		return false, "only approvers may act on a revision under review"
	}

	// RevisionRequested -> UnderReview (resubmit): proposer only
	if from == domain.StatusRevisionRequested && newStatus == domain.StatusUnderReview {
		if revision.ProposerID == actor.ID {
			return true, ""
		}
		return false, "only the proposer may resubmit a revision"
	}

	return false, "no permission for this transition"
}

// TransitionStatus moves a revision to newStatus after structural and
// permission checks. An approval also stamps the approver fields; a
// submission opens the review period.
func (s *WorkflowService) TransitionStatus(
	revisionID uuid.UUID,
	newStatus domain.RevisionStatus,
	actor domain.Principal,
	comment *string,
) (*domain.Revision, error) {
	revision, err := s.revisionRepo.FindByID(revisionID)
	if err != nil {
		return nil, err
	}
	if revision == nil {
		return nil, fmt.Errorf("%w: revision %s", common.ErrRevisionNotFound, revisionID)
	}

	if !s.ValidateTransition(revision.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidState, revision.Status, newStatus)
	}

	if ok, reason := s.checkTransitionPermission(revision, newStatus, actor); !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrForbidden, reason)
	}

	oldStatus := revision.Status
	now := time.Now().UTC()
	revision.Status = newStatus

	switch newStatus {
	case domain.StatusApproved:
		revision.ApproverID = &actor.ID
		revision.ApprovedAt = &now
		revision.ApprovalComment = comment
	case domain.StatusUnderReview:
		if revision.ReviewStartDate == nil {
			revision.ReviewStartDate = &now
		}
	}

	if err := s.revisionRepo.Save(revision); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("from_status", string(oldStatus)).
		Str("to_status", string(newStatus)).
		Str("actor_id", actor.ID.String()).
		Str("actor_role", string(actor.Role)).
		Msg("revision status transitioned")

	return revision, nil
}

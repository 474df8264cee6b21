package service

import (
	"fmt"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// Revision actions exposed through AvailableActions
const (
	ActionView                = "view"
	ActionEdit                = "edit"
	ActionDelete              = "delete"
	ActionSubmit              = "submit"
	ActionWithdraw            = "withdraw"
	ActionApprove             = "approve"
	ActionReject              = "reject"
	ActionRequestModification = "request_modification"
)

// PermissionService is the pure permission matrix for revisions. Every method
// is a side-effect-free decision function of (actor, revision); admins
// short-circuit all of them. The denial reason is empty when allowed.
type PermissionService struct{}

// NewPermissionService creates a new PermissionService
func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// CanView checks view permission
func (s *PermissionService) CanView(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if actor.IsAdmin() {
		return true, ""
	}
	if actor.ID == revision.ProposerID {
		return true, ""
	}
	if actor.IsReviewer() {
		switch revision.Status {
		case domain.StatusUnderReview, domain.StatusRevisionRequested,
			domain.StatusApproved, domain.StatusRejected:
			return true, ""
		}
	}
	// Approved revisions are visible to everyone
	if revision.Status == domain.StatusApproved {
		return true, ""
	}
	return false, "no permission to view this revision"
}

// CanEdit checks edit permission, which depends on the revision's status
func (s *PermissionService) CanEdit(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if actor.IsAdmin() {
		return true, ""
	}

	switch revision.Status {
	case domain.StatusDraft:
		if actor.ID == revision.ProposerID {
			return true, ""
		}
		return false, "only the proposer may edit a draft revision"

	case domain.StatusUnderReview:
		if actor.IsReviewer() {
			return true, ""
		}
		return false, "only approvers may edit a revision under review"

	case domain.StatusRevisionRequested:
		if actor.ID == revision.ProposerID || actor.IsReviewer() {
			return true, ""
		}
		return false, "only the proposer or approvers may edit a revision awaiting modification"

	default:
		return false, fmt.Sprintf("cannot edit revision in status %s", revision.Status)
	}
}

// CanDelete checks delete permission; only drafts are deletable
func (s *PermissionService) CanDelete(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if actor.IsAdmin() {
		return true, ""
	}
	if revision.Status != domain.StatusDraft {
		return false, "only draft revisions may be deleted"
	}
	if actor.ID == revision.ProposerID {
		return true, ""
	}
	return false, "only the proposer may delete a revision"
}

// CanApprove checks approve permission
func (s *PermissionService) CanApprove(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if !actor.IsAdmin() && !actor.IsReviewer() {
		return false, "no approval permission"
	}
	switch revision.Status {
	case domain.StatusUnderReview, domain.StatusRevisionRequested:
		return true, ""
	}
	return false, fmt.Sprintf("cannot approve revision in status %s", revision.Status)
}

// CanReject checks reject permission
func (s *PermissionService) CanReject(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if !actor.IsAdmin() && !actor.IsReviewer() {
		return false, "no rejection permission"
	}
	switch revision.Status {
	case domain.StatusUnderReview, domain.StatusRevisionRequested:
		return true, ""
	}
	return false, fmt.Sprintf("cannot reject revision in status %s", revision.Status)
}

// CanRequestModification checks modification-request permission; only valid
// while the revision is under review
func (s *PermissionService) CanRequestModification(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if !actor.IsAdmin() && !actor.IsReviewer() {
		return false, "no modification-request permission"
	}
	if revision.Status != domain.StatusUnderReview {
		return false, fmt.Sprintf("cannot request modification for revision in status %s", revision.Status)
	}
	return true, ""
}

// CanSubmit checks submit permission (draft or resubmission after a
// modification request)
func (s *PermissionService) CanSubmit(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if actor.IsAdmin() || actor.ID == revision.ProposerID {
		switch revision.Status {
		case domain.StatusDraft, domain.StatusRevisionRequested:
			return true, ""
		}
		return false, fmt.Sprintf("cannot submit revision in status %s", revision.Status)
	}
	return false, "only the proposer may submit a revision"
}

// CanWithdraw checks withdraw permission
func (s *PermissionService) CanWithdraw(actor domain.Principal, revision *domain.Revision) (bool, string) {
	if actor.IsAdmin() || actor.ID == revision.ProposerID {
		switch revision.Status {
		case domain.StatusDraft, domain.StatusUnderReview, domain.StatusRevisionRequested:
			return true, ""
		}
		return false, fmt.Sprintf("cannot withdraw revision in status %s", revision.Status)
	}
	return false, "only the proposer may withdraw a revision"
}

// AvailableActions evaluates the whole matrix and returns the actions the
// actor may currently perform, in a fixed order. Derivable purely from the
// Can* rules above; used to drive client-side action visibility.
func (s *PermissionService) AvailableActions(actor domain.Principal, revision *domain.Revision) []string {
	checks := []struct {
		action string
		fn     func(domain.Principal, *domain.Revision) (bool, string)
	}{
		{ActionView, s.CanView},
		{ActionEdit, s.CanEdit},
		{ActionDelete, s.CanDelete},
		{ActionSubmit, s.CanSubmit},
		{ActionWithdraw, s.CanWithdraw},
		{ActionApprove, s.CanApprove},
		{ActionReject, s.CanReject},
		{ActionRequestModification, s.CanRequestModification},
	}

	var actions []string
	for _, check := range checks {
		if ok, _ := check.fn(actor, revision); ok {
			actions = append(actions, check.action)
		}
	}
	return actions
}

package service

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// EditHistoryService records and queries the versioned change history of
// revisions.
type EditHistoryService struct {
	editHistoryRepo repository.EditHistoryRepository
	userRepo        repository.UserRepository
	log             *zerolog.Logger
}

// NewEditHistoryService creates a new EditHistoryService
func NewEditHistoryService(
	editHistoryRepo repository.EditHistoryRepository,
	userRepo repository.UserRepository,
) *EditHistoryService {
	return &EditHistoryService{
		editHistoryRepo: editHistoryRepo,
		userRepo:        userRepo,
		log:             logger.GetLogger(),
	}
}

// RecordEdit persists one append-only change record. Callers inside a
// transaction pass it through tx so the history commits with the edit.
func (s *EditHistoryService) RecordEdit(
	tx *gorm.DB,
	revisionID uuid.UUID,
	editorID uuid.UUID,
	editorRole domain.Role,
	changes domain.ChangeSet,
	comment *string,
	versionBefore, versionAfter int,
) (*domain.RevisionEditHistory, error) {
	history := &domain.RevisionEditHistory{
		ID:            uuid.New(),
		RevisionID:    revisionID,
		EditorID:      editorID,
		EditorRole:    editorRole,
		Changes:       changes,
		Comment:       comment,
		VersionBefore: versionBefore,
		VersionAfter:  versionAfter,
	}

	if err := s.editHistoryRepo.WithTx(tx).Create(history); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("revision_id", revisionID.String()).
		Str("editor_id", editorID.String()).
		Int("changes_count", len(changes)).
		Int("version_before", versionBefore).
		Int("version_after", versionAfter).
		Msg("edit history recorded")

	return history, nil
}

// GetEditHistory returns a revision's edit records, oldest first, with
// editor names resolved.
func (s *EditHistoryService) GetEditHistory(revisionID uuid.UUID) ([]*domain.EditHistoryItem, error) {
	histories, err := s.editHistoryRepo.FindByRevision(revisionID)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.EditHistoryItem, 0, len(histories))
	for _, h := range histories {
		item := &domain.EditHistoryItem{
			ID:            h.ID,
			RevisionID:    h.RevisionID,
			EditorID:      h.EditorID,
			EditorRole:    h.EditorRole,
			EditedAt:      h.EditedAt,
			Changes:       h.Changes,
			Comment:       h.Comment,
			VersionBefore: h.VersionBefore,
			VersionAfter:  h.VersionAfter,
		}
		if editor, err := s.userRepo.FindByID(h.EditorID); err == nil && editor != nil {
			item.EditorName = editor.FullName
		}
		items = append(items, item)
	}
	return items, nil
}

// CalculateFieldChanges diffs two field maps. A field is included iff its
// value differs; a key missing from one side is treated as nil, so two equal
// nils are unchanged.
func (s *EditHistoryService) CalculateFieldChanges(before, after map[string]interface{}) domain.ChangeSet {
	changes := domain.ChangeSet{}

	seen := make(map[string]bool, len(before)+len(after))
	for field := range before {
		seen[field] = true
	}
	for field := range after {
		seen[field] = true
	}

	for field := range seen {
		beforeValue := before[field]
		afterValue := after[field]
		if !valuesEqual(beforeValue, afterValue) {
			changes[field] = domain.FieldChange{Before: beforeValue, After: afterValue}
		}
	}
	return changes
}

func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// GetVersionDiff aggregates all edit records between two versions into one
// consolidated per-field view.
func (s *EditHistoryService) GetVersionDiff(revisionID uuid.UUID, fromVersion, toVersion int) (*domain.VersionDiff, error) {
	histories, err := s.editHistoryRepo.FindByRevision(revisionID)
	if err != nil {
		return nil, err
	}

	diff := &domain.VersionDiff{
		RevisionID:  revisionID,
		FromVersion: fromVersion,
		ToVersion:   toVersion,
		Changes:     map[string]domain.FieldVersionDiff{},
	}

	for _, h := range histories {
		if h.VersionBefore < fromVersion || h.VersionAfter > toVersion {
			continue
		}
		diff.TotalEdits++

		for field, change := range h.Changes {
			entry, ok := diff.Changes[field]
			if !ok {
				entry = domain.FieldVersionDiff{
					InitialValue: change.Before,
					FinalValue:   change.After,
				}
			} else {
				entry.FinalValue = change.After
			}

			editedAt := h.EditedAt
			entry.ChangeHistory = append(entry.ChangeHistory, domain.VersionChange{
				Version:   h.VersionAfter,
				EditorID:  h.EditorID.String(),
				ChangedAt: &editedAt,
				From:      change.Before,
				To:        change.After,
			})
			diff.Changes[field] = entry
		}
	}

	return diff, nil
}

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

func TestRecordEdit(t *testing.T) {
	repo := new(MockEditHistoryRepository)
	userRepo := new(MockUserRepository)
	svc := NewEditHistoryService(repo, userRepo)

	revisionID := uuid.New()
	editorID := uuid.New()
	changes := domain.ChangeSet{
		"title": {Before: "旧タイトル", After: "新タイトル"},
	}

	repo.On("Create", mock.MatchedBy(func(h *domain.RevisionEditHistory) bool {
		return h.RevisionID == revisionID &&
			h.EditorID == editorID &&
			h.VersionBefore == 1 && h.VersionAfter == 2 &&
			len(h.Changes) == 1
	})).Return(nil)

	history, err := svc.RecordEdit(nil, revisionID, editorID, domain.RoleGeneral, changes, nil, 1, 2)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, history.ID)
	repo.AssertExpectations(t)
}

func TestGetEditHistory(t *testing.T) {
	repo := new(MockEditHistoryRepository)
	userRepo := new(MockUserRepository)
	svc := NewEditHistoryService(repo, userRepo)

	revisionID := uuid.New()
	editorID := uuid.New()

	repo.On("FindByRevision", revisionID).Return([]*domain.RevisionEditHistory{
		{
			ID:            uuid.New(),
			RevisionID:    revisionID,
			EditorID:      editorID,
			EditorRole:    domain.RoleApprover,
			Changes:       domain.ChangeSet{"answer": {Before: "A", After: "B"}},
			VersionBefore: 1,
			VersionAfter:  2,
		},
	}, nil)
	userRepo.On("FindByID", editorID).Return(&domain.User{ID: editorID, FullName: "田中 一郎"}, nil)

	items, err := svc.GetEditHistory(revisionID)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "田中 一郎", items[0].EditorName)
	assert.Equal(t, 2, items[0].VersionAfter)
}

func TestCalculateFieldChanges(t *testing.T) {
	svc := NewEditHistoryService(nil, nil)

	t.Run("identical maps yield no changes", func(t *testing.T) {
		fields := map[string]interface{}{
			"title":      "FAQタイトル",
			"importance": true,
			"keywords":   nil,
		}
		assert.Empty(t, svc.CalculateFieldChanges(fields, fields))
	})

	t.Run("only differing fields are reported", func(t *testing.T) {
		before := map[string]interface{}{"title": "旧", "answer": "同じ"}
		after := map[string]interface{}{"title": "新", "answer": "同じ"}

		changes := svc.CalculateFieldChanges(before, after)
		assert.Len(t, changes, 1)
		assert.Equal(t, "旧", changes["title"].Before)
		assert.Equal(t, "新", changes["title"].After)
	})

	t.Run("missing key is treated as nil", func(t *testing.T) {
		changes := svc.CalculateFieldChanges(
			map[string]interface{}{"keywords": "FAQ,手続き"},
			map[string]interface{}{},
		)
		assert.Len(t, changes, 1)
		assert.Nil(t, changes["keywords"].After)
	})

	t.Run("type difference is a change", func(t *testing.T) {
		changes := svc.CalculateFieldChanges(
			map[string]interface{}{"importance": true},
			map[string]interface{}{"importance": "true"},
		)
		assert.Len(t, changes, 1)
	})

	t.Run("nil to nil is unchanged", func(t *testing.T) {
		changes := svc.CalculateFieldChanges(
			map[string]interface{}{"target": nil},
			map[string]interface{}{"target": nil},
		)
		assert.Empty(t, changes)
	})
}

func TestGetVersionDiff(t *testing.T) {
	revisionID := uuid.New()
	editorA := uuid.New()
	editorB := uuid.New()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	histories := []*domain.RevisionEditHistory{
		{
			ID: uuid.New(), RevisionID: revisionID, EditorID: editorA,
			Changes:       domain.ChangeSet{"title": {Before: "v1", After: "v2"}},
			VersionBefore: 1, VersionAfter: 2, EditedAt: base,
		},
		{
			ID: uuid.New(), RevisionID: revisionID, EditorID: editorB,
			Changes: domain.ChangeSet{
				"title":  {Before: "v2", After: "v3"},
				"answer": {Before: "旧回答", After: "新回答"},
			},
			VersionBefore: 2, VersionAfter: 3, EditedAt: base.Add(time.Hour),
		},
		{
			ID: uuid.New(), RevisionID: revisionID, EditorID: editorA,
			Changes:       domain.ChangeSet{"title": {Before: "v3", After: "v4"}},
			VersionBefore: 3, VersionAfter: 4, EditedAt: base.Add(2 * time.Hour),
		},
	}

	t.Run("consolidates initial and final values across edits", func(t *testing.T) {
		repo := new(MockEditHistoryRepository)
		svc := NewEditHistoryService(repo, nil)
		repo.On("FindByRevision", revisionID).Return(histories, nil)

		diff, err := svc.GetVersionDiff(revisionID, 1, 4)
		assert.NoError(t, err)
		assert.Equal(t, 3, diff.TotalEdits)

		title := diff.Changes["title"]
		assert.Equal(t, "v1", title.InitialValue)
		assert.Equal(t, "v4", title.FinalValue)
		assert.Len(t, title.ChangeHistory, 3)

		answer := diff.Changes["answer"]
		assert.Equal(t, "旧回答", answer.InitialValue)
		assert.Equal(t, "新回答", answer.FinalValue)
	})

	t.Run("edits outside the version window are excluded", func(t *testing.T) {
		repo := new(MockEditHistoryRepository)
		svc := NewEditHistoryService(repo, nil)
		repo.On("FindByRevision", revisionID).Return(histories, nil)

		diff, err := svc.GetVersionDiff(revisionID, 2, 3)
		assert.NoError(t, err)
		assert.Equal(t, 1, diff.TotalEdits)

		title := diff.Changes["title"]
		assert.Equal(t, "v2", title.InitialValue)
		assert.Equal(t, "v3", title.FinalValue)
		_, hasAnswer := diff.Changes["answer"]
		assert.True(t, hasAnswer)
	})
}

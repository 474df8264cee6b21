package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kbdesk/kb-approval-backend/internal/domain"
)

// ArticleRepository read-only article lookup. Articles are only ever changed
// by applying an approved revision, which lives outside this service.
type ArticleRepository interface {
	FindByArticleID(articleID string) (*domain.Article, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new ArticleRepository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) FindByArticleID(articleID string) (*domain.Article, error) {
	var article domain.Article
	err := r.db.Where("article_id = ? AND is_active = ?", articleID, true).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

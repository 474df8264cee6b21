package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/pkg/cache"
	"github.com/kbdesk/kb-approval-backend/pkg/logger"
)

// ArticleService serves read-only article snapshots, cached in redis. The
// cache entry is invalidated whenever a revision touches the article.
type ArticleService struct {
	articleRepo repository.ArticleRepository
	cacheSvc    cache.Service
	log         *zerolog.Logger
}

// NewArticleService creates a new ArticleService
func NewArticleService(articleRepo repository.ArticleRepository, cacheSvc cache.Service) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		cacheSvc:    cacheSvc,
		log:         logger.GetLogger(),
	}
}

// Get returns one article by its portal identifier, cache first.
func (s *ArticleService) Get(ctx context.Context, articleID string) (*domain.ArticleResponse, error) {
	if s.cacheSvc != nil {
		var cached domain.Article
		if err := s.cacheSvc.GetArticle(ctx, articleID, &cached); err == nil {
			return domain.NewArticleResponse(&cached), nil
		}
	}

	article, err := s.articleRepo.FindByArticleID(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: article %s", common.ErrArticleNotFound, articleID)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetArticle(ctx, articleID, article); err != nil {
			s.log.Warn().Err(err).Str("article_id", articleID).Msg("article cache write failed")
		}
	}
	return domain.NewArticleResponse(article), nil
}

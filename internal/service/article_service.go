package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blogcms/internal/logger"
	"blogcms/internal/models"
	"blogcms/internal/repository"
)

type ArticleService struct {
	articleRepo repository.Articles
	images      ImageRemover
	log         *logger.Logger
}

func NewArticleService(articleRepo repository.Articles, images ImageRemover, log *logger.Logger) *ArticleService {
	return &ArticleService{articleRepo: articleRepo, images: images, log: log}
}

var _ Articles = (*ArticleService)(nil)

// ceilDiv computes ceil(a/b) for positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// List returns one page of published articles plus pagination aggregates.
// TotalPages is always ceil(total/perPage).
func (s *ArticleService) List(ctx context.Context, page, perPage int) (ArticlePage, error) {
	if page < 1 || perPage < 1 {
		return ArticlePage{}, fmt.Errorf("%w: page and per_page must be >= 1", ErrInvalidInput)
	}

	articles, err := s.articleRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return ArticlePage{}, err
	}
	total, err := s.articleRepo.Count(ctx)
	if err != nil {
		return ArticlePage{}, err
	}

	return ArticlePage{
		Articles:   articles,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: ceilDiv(total, perPage),
	}, nil
}

// GetByID fetches one article by id.
func (s *ArticleService) GetByID(ctx context.Context, id int) (models.Article, error) {
	a, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return models.Article{}, err
	}
	if a == nil {
		return models.Article{}, fmt.Errorf("%w: article id=%d", ErrNotFound, id)
	}
	return *a, nil
}

// Create validates and stores a new article, then reads it back so the
// response carries the server-assigned id and the joined author name.
func (s *ArticleService) Create(ctx context.Context, in CreateArticleInput) (models.Article, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return models.Article{}, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return models.Article{}, fmt.Errorf("%w: an image file or image_url is required", ErrInvalidInput)
	}

	id, err := s.articleRepo.Create(ctx, models.Article{
		Title:       in.Title,
		Content:     in.Content,
		AuthorID:    in.AuthorID,
		ImageURL:    in.ImageURL,
		IsPublished: true,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return models.Article{}, err
	}
	return s.GetByID(ctx, id)
}

// authorize loads the article and enforces the ownership rule: only the
// author or an admin may mutate. The check and the following write are not
// wrapped in a transaction; the later of two concurrent writes wins.
func (s *ArticleService) authorize(ctx context.Context, id int, req Requester) (*models.Article, error) {
	a, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: article id=%d", ErrNotFound, id)
	}
	if a.AuthorID != req.ID && !req.IsAdmin {
		return nil, fmt.Errorf("%w: user %d does not own article %d", ErrForbidden, req.ID, id)
	}
	return a, nil
}

// Update applies a merge-patch: only non-nil fields overwrite prior values.
// Replacing the image deletes the previously stored file best-effort.
func (s *ArticleService) Update(ctx context.Context, id int, req Requester, patch ArticlePatch) (models.Article, error) {
	a, err := s.authorize(ctx, id, req)
	if err != nil {
		return models.Article{}, err
	}

	oldImage := a.ImageURL
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return models.Article{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return models.Article{}, fmt.Errorf("%w: content must not be empty", ErrInvalidInput)
		}
		a.Content = *patch.Content
	}
	if patch.ImageURL != nil {
		a.ImageURL = *patch.ImageURL
	}
	now := time.Now().UTC()
	a.UpdatedAt = &now

	if err := s.articleRepo.Update(ctx, *a); err != nil {
		return models.Article{}, err
	}

	if patch.ImageURL != nil && oldImage != "" && oldImage != a.ImageURL {
		s.removeImage(oldImage)
	}

	return s.GetByID(ctx, id)
}

// Delete removes the article after the ownership check. The stored image
// file is deleted best-effort; a failure there is logged, never returned.
func (s *ArticleService) Delete(ctx context.Context, id int, req Requester) error {
	a, err := s.authorize(ctx, id, req)
	if err != nil {
		return err
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return err
	}

	if a.ImageURL != "" {
		s.removeImage(a.ImageURL)
	}
	return nil
}

func (s *ArticleService) removeImage(url string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(url); err != nil && s.log != nil {
		s.log.Errorw("article_image_remove_failed", "url", url, "err", err)
	}
}

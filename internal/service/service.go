package service

import (
	"context"

	"blogcms/internal/logger"
	"blogcms/internal/models"
	"blogcms/internal/repository"
)

// Requester identifies the authenticated caller of a mutating operation.
type Requester struct {
	ID      int
	IsAdmin bool
}

// CreateArticleInput carries the fields of a new article. ImageURL is the
// already-resolved public URL (either an uploaded file or an explicit one).
type CreateArticleInput struct {
	Title    string
	Content  string
	AuthorID int
	ImageURL string
}

// ArticlePatch is a merge-patch: nil fields keep their prior values.
type ArticlePatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

// ArticlePage is one page of a listing plus its aggregates.
type ArticlePage struct {
	Articles   []models.Article
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Articles exposes article CRUD with ownership enforcement and pagination aggregates.
type Articles interface {
	List(ctx context.Context, page, perPage int) (ArticlePage, error)
	GetByID(ctx context.Context, id int) (models.Article, error)
	Create(ctx context.Context, in CreateArticleInput) (models.Article, error)
	Update(ctx context.Context, id int, req Requester, patch ArticlePatch) (models.Article, error)
	Delete(ctx context.Context, id int, req Requester) error
}

// Authorization exposes registration, login and token handling.
type Authorization interface {
	Register(ctx context.Context, username, password, captchaResponse string) (models.PublicUser, error)
	Login(ctx context.Context, username, password string) (models.PublicUser, string, error)
	ParseToken(accessToken string) (*Claims, error)
	CurrentUser(ctx context.Context, id int) (models.PublicUser, error)
}

// ImageRemover deletes a stored image by its public URL. Best-effort use only.
type ImageRemover interface {
	Remove(publicURL string) error
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Articles
	Authorization
}

// AuthConfig carries token signing parameters from configuration.
type AuthConfig struct {
	SigningKey string
	TokenTTL   int // minutes
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, images ImageRemover, captcha CaptchaVerifier, auth AuthConfig, log *logger.Logger) *Service {
	return &Service{
		Articles:      NewArticleService(repos.Articles, images, log),
		Authorization: NewAuthService(repos.Users, captcha, auth),
	}
}

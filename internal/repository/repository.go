package repository

import (
	"blogcms/internal/models"
	"context"
	"database/sql"
)

type Users interface {
	Create(username, hash string, isAdmin bool) (int, error)
	GetByUsername(username string) (*models.User, error)
	GetByID(id int) (*models.User, error)
}

type Articles interface {
	List(ctx context.Context, limit, offset int) ([]models.Article, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int) (*models.Article, error)
	Create(ctx context.Context, a models.Article) (int, error)
	Update(ctx context.Context, a models.Article) error
	Delete(ctx context.Context, id int) error
}

type Repository struct {
	Articles Articles
	Users    Users
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Articles: NewArticleSQLite(db),
		Users:    NewUserRepository(db),
	}
}

package site

import (
	"context"

	"lsfd202201/internal/model"
)

// Store is the persistence interface for site content. Point lookups return
// (nil, nil) when the row does not exist; the service layer translates that
// into ErrNotFound where callers need an error.
type Store interface {
	// Articles
	CreateArticle(ctx context.Context, a *model.Article) (*model.Article, error)
	GetArticle(ctx context.Context, id int64) (*model.Article, error)
	ListArticles(ctx context.Context) ([]*model.Article, error)
	ListArticlePage(ctx context.Context, page, pageSize int) ([]*model.Article, int, error)
	UpdateArticleContent(ctx context.Context, id int64, content string) (bool, error)
	DeleteArticle(ctx context.Context, id int64) (bool, error)

	// Roles
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	SaveRole(ctx context.Context, r *model.Role) (*model.Role, error)

	// Users
	CreateUser(ctx context.Context, u *model.User) error
	FindUserByName(ctx context.Context, name string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) (bool, error)

	// Feedback
	CreateFeedback(ctx context.Context, f *model.Feedback) (*model.Feedback, error)
	ListFeedback(ctx context.Context) ([]*model.Feedback, error)

	// Maintenance
	CheckMigrations() error
	MigrateUp() error
	BackupTo(destPath string) error
	Close() error
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/internal/store"
)

// ArticleService coordinates the article lifecycle across the metadata and
// content stores. All operations are synchronous; the caller's context
// governs how long a multi-step operation may run.
type ArticleService interface {
	Create(ctx context.Context, table string, req *models.CreateArticleRequest) (*models.ArticleMetadata, error)
	Get(ctx context.Context, table, id string) (*models.ArticleMetadata, error)
	GetWithContent(ctx context.Context, table, id string) (*models.ArticleContent, error)
	Update(ctx context.Context, table, id string, req *models.UpdateArticleRequest) (*models.ArticleMetadata, error)
	Publish(ctx context.Context, id string) (*models.ArticleMetadata, error)
	Hide(ctx context.Context, id string) (*models.ArticleMetadata, error)
	Delete(ctx context.Context, table, id string) error
	Rate(ctx context.Context, id string, delta int64) (*models.ArticleMetadata, error)
	LikeArticle(ctx context.Context, username, id string) (*models.ArticleMetadata, error)
	UnlikeArticle(ctx context.Context, username, id string) (*models.ArticleMetadata, error)
	HasLiked(ctx context.Context, username, id string) (bool, error)
	BulkUpdateByAuthor(ctx context.Context, author string, delta map[string]interface{}) (*models.BulkResult, error)
	SyncAuthorProfile(ctx context.Context, author, profilePicture string) (*models.BulkResult, error)
	ListByCategory(ctx context.Context, table, category string, params models.ListParams) ([]models.ArticleMetadata, error)
	ListByAuthor(ctx context.Context, table, author string, params models.ListParams) ([]models.ArticleMetadata, error)
	ListByStatus(ctx context.Context, status string, params models.ListParams) ([]models.ArticleMetadata, error)
}

// Deps are the collaborators the services are built on. Clock defaults to
// the system clock when nil; tests inject a fixed one.
type Deps struct {
	Metadata store.MetadataStore
	Likes    store.LikeStore
	Content  store.ContentStore
	Clock    func() int64
}

// Services holds all service interfaces
type Services struct {
	Articles ArticleService
}

// NewServices creates all services
func NewServices(deps Deps, cfg *config.Config, log zerolog.Logger) *Services {
	clock := deps.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}

	return &Services{
		Articles: newArticleService(deps.Metadata, deps.Likes, deps.Content, clock, cfg, log),
	}
}

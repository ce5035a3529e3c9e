package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/internal/store"
	"github.com/LStepczynski/projectCatalog/internal/validation"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// Fields the coordinator manages itself; bulk updates must not touch them.
var managedFields = map[string]bool{
	"id":          true,
	"createdAt":   true,
	"publishedAt": true,
	"likes":       true,
	"status":      true,
}

// bulkWalkBatch bounds one index scan during bulk operations.
const bulkWalkBatch = 25

type articleService struct {
	meta    store.MetadataStore
	likes   store.LikeStore
	content store.ContentStore
	walker  *store.Walker
	now     func() int64
	cfg     *config.Config
	log     zerolog.Logger
}

func newArticleService(meta store.MetadataStore, likes store.LikeStore, content store.ContentStore, clock func() int64, cfg *config.Config, log zerolog.Logger) ArticleService {
	return &articleService{
		meta:    meta,
		likes:   likes,
		content: content,
		walker:  store.NewWalker(meta),
		now:     clock,
		cfg:     cfg,
		log:     log.With().Str("service", "articles").Logger(),
	}
}

// Create fills defaults, uploads the banner when present, and writes content
// before metadata so a crash leaves an orphaned content object rather than a
// metadata row pointing at nothing.
func (s *articleService) Create(ctx context.Context, table string, req *models.CreateArticleRequest) (*models.ArticleMetadata, error) {
	meta := req.Metadata.Clone()

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	now := s.now()
	if meta.CreatedAt == 0 {
		meta.CreatedAt = now
	}
	meta.Likes = 0
	switch table {
	case models.TableUnpublished:
		if meta.Status == "" {
			meta.Status = models.StatusPrivate
		}
		meta.PublishedAt = 0
	case models.TablePublished:
		meta.Status = ""
		if meta.PublishedAt == 0 {
			meta.PublishedAt = now
		}
	}

	if errs := validation.ValidateMetadata(meta, table); len(errs) > 0 {
		return nil, apperr.New(apperr.KindValidation, "%s", validation.Summarize(errs)).WithOp("articles.Create")
	}

	if len(req.Image) > 0 {
		url, err := s.content.PutImage(ctx, meta.ID, req.Image, s.cfg.AWS.MaxImageWidth, s.cfg.AWS.MaxImageHeight)
		if err != nil {
			return nil, err
		}
		meta.Image = url
	}

	if err := s.content.PutContent(ctx, table, meta.ID, req.Body, meta); err != nil {
		return nil, err
	}
	if err := s.meta.Put(ctx, table, meta); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", meta.ID).Str("table", table).Str("author", meta.Author).Msg("article created")
	return meta, nil
}

func (s *articleService) Get(ctx context.Context, table, id string) (*models.ArticleMetadata, error) {
	return s.meta.Get(ctx, table, id)
}

// GetWithContent fetches the metadata row and the body for a detail view.
// Content is only ever loaded one article at a time.
func (s *articleService) GetWithContent(ctx context.Context, table, id string) (*models.ArticleContent, error) {
	meta, err := s.meta.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.content.GetContent(ctx, table, id)
	if err != nil {
		return nil, err
	}
	// The metadata row, not the mirror, is authoritative.
	doc.Metadata = *meta
	return doc, nil
}

// Update is a full replace: content and metadata are re-serialized together.
// The id and the coordinator-managed fields of the existing row survive the
// merge. A metadata put replaces the whole row, so no delete step is needed
// and no reader ever observes the article as absent.
func (s *articleService) Update(ctx context.Context, table, id string, req *models.UpdateArticleRequest) (*models.ArticleMetadata, error) {
	existing, err := s.meta.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}

	merged := existing.Clone()
	merged.Title = req.Metadata.Title
	merged.Description = req.Metadata.Description
	merged.Category = req.Metadata.Category
	merged.Tags = append([]string(nil), req.Metadata.Tags...)
	merged.Difficulty = req.Metadata.Difficulty
	if table == models.TableUnpublished && req.Metadata.Status != "" {
		merged.Status = req.Metadata.Status
	}
	merged.LastEdited = s.now()

	if errs := validation.ValidateMetadata(merged, table); len(errs) > 0 {
		return nil, apperr.New(apperr.KindValidation, "%s", validation.Summarize(errs)).WithOp("articles.Update").WithID(id)
	}

	if len(req.Image) > 0 {
		url, err := s.content.PutImage(ctx, id, req.Image, s.cfg.AWS.MaxImageWidth, s.cfg.AWS.MaxImageHeight)
		if err != nil {
			return nil, err
		}
		merged.Image = url
	}

	if err := s.content.PutContent(ctx, table, id, req.Body, merged); err != nil {
		return nil, err
	}
	if err := s.meta.Put(ctx, table, merged); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", id).Str("table", table).Msg("article updated")
	return merged, nil
}

// Publish moves an article from the unpublished to the published table.
// Ordering is fail-safe: until the published insert succeeds nothing touches
// the source row, so a failed publish leaves the article exactly where it
// was. A failure during source cleanup leaves the article duplicated across
// tables and is surfaced as a partial failure for reconciliation.
func (s *articleService) Publish(ctx context.Context, id string) (*models.ArticleMetadata, error) {
	// A concurrent publish that already moved the row makes this NotFound;
	// that is the double-publish guard, not a lock.
	rec, err := s.meta.Get(ctx, models.TableUnpublished, id)
	if err != nil {
		return nil, err
	}

	doc, err := s.content.GetContent(ctx, models.TableUnpublished, id)
	if err != nil {
		return nil, err
	}

	moved := rec.Clone()
	moved.Status = ""
	moved.PublishedAt = s.now()

	if err := s.content.PutContent(ctx, models.TablePublished, id, doc.Body, moved); err != nil {
		return nil, err
	}
	if err := s.meta.PutNew(ctx, models.TablePublished, moved); err != nil {
		return nil, err
	}

	// Point of no return: the article now exists in the published table.
	// Cleanup failures below must not look like clean failures.
	if _, err := s.meta.Delete(ctx, models.TableUnpublished, id); err != nil && !apperr.IsNotFound(err) {
		s.log.Error().Err(err).Str("id", id).Str("step", "delete_source_row").Msg("publish left article duplicated across tables")
		return moved, apperr.Wrap(apperr.KindPartial, err, "published but failed to remove unpublished row").WithOp("articles.Publish").WithID(id).WithStep("delete_source_row")
	}
	if err := s.content.DeleteContent(ctx, models.TableUnpublished, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("step", "delete_source_content").Msg("publish left orphaned unpublished content")
		return moved, apperr.Wrap(apperr.KindPartial, err, "published but failed to remove unpublished content").WithOp("articles.Publish").WithID(id).WithStep("delete_source_content")
	}

	s.log.Info().Str("id", id).Int64("publishedAt", moved.PublishedAt).Msg("article published")
	return moved, nil
}

// Hide is the exact inverse of Publish: published back to unpublished with
// status reset to Private and publishedAt dropped.
func (s *articleService) Hide(ctx context.Context, id string) (*models.ArticleMetadata, error) {
	rec, err := s.meta.Get(ctx, models.TablePublished, id)
	if err != nil {
		return nil, err
	}

	doc, err := s.content.GetContent(ctx, models.TablePublished, id)
	if err != nil {
		return nil, err
	}

	moved := rec.Clone()
	moved.Status = models.StatusPrivate
	moved.PublishedAt = 0

	if err := s.content.PutContent(ctx, models.TableUnpublished, id, doc.Body, moved); err != nil {
		return nil, err
	}
	if err := s.meta.PutNew(ctx, models.TableUnpublished, moved); err != nil {
		return nil, err
	}

	if _, err := s.meta.Delete(ctx, models.TablePublished, id); err != nil && !apperr.IsNotFound(err) {
		s.log.Error().Err(err).Str("id", id).Str("step", "delete_source_row").Msg("hide left article duplicated across tables")
		return moved, apperr.Wrap(apperr.KindPartial, err, "hidden but failed to remove published row").WithOp("articles.Hide").WithID(id).WithStep("delete_source_row")
	}
	if err := s.content.DeleteContent(ctx, models.TablePublished, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("step", "delete_source_content").Msg("hide left orphaned published content")
		return moved, apperr.Wrap(apperr.KindPartial, err, "hidden but failed to remove published content").WithOp("articles.Hide").WithID(id).WithStep("delete_source_content")
	}

	s.log.Info().Str("id", id).Msg("article hidden")
	return moved, nil
}

// Delete removes the metadata row first, capturing the old value so the
// image key can be re-derived, then cleans up the content object and banner.
func (s *articleService) Delete(ctx context.Context, table, id string) error {
	old, err := s.meta.Delete(ctx, table, id)
	if err != nil {
		return err
	}

	if old.Image != "" {
		if err := s.content.DeleteImage(ctx, id); err != nil {
			s.log.Error().Err(err).Str("id", id).Str("step", "delete_image").Msg("delete left orphaned image")
			return apperr.Wrap(apperr.KindPartial, err, "metadata deleted but image cleanup failed").WithOp("articles.Delete").WithID(id).WithStep("delete_image")
		}
	}
	if err := s.content.DeleteContent(ctx, table, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("step", "delete_content").Msg("delete left orphaned content")
		return apperr.Wrap(apperr.KindPartial, err, "metadata deleted but content cleanup failed").WithOp("articles.Delete").WithID(id).WithStep("delete_content")
	}

	s.log.Info().Str("id", id).Str("table", table).Msg("article deleted")
	return nil
}

// Rate adjusts the likes counter of a published article. The front-matter
// mirror is refreshed best-effort first; the atomic add on the metadata row
// is the authoritative step and concurrent rates never lose an update there.
func (s *articleService) Rate(ctx context.Context, id string, delta int64) (*models.ArticleMetadata, error) {
	doc, err := s.content.GetContent(ctx, models.TablePublished, id)
	if err != nil {
		return nil, err
	}

	doc.Metadata.Likes += delta
	if err := s.content.PutContent(ctx, models.TablePublished, id, doc.Body, &doc.Metadata); err != nil {
		// Mirror drift is tolerated; the metadata row wins.
		s.log.Warn().Err(err).Str("id", id).Msg("likes mirror update failed")
	}

	return s.meta.AddLikes(ctx, models.TablePublished, id, delta)
}

// LikeArticle records the like row, then bumps the counter. The conditional
// put is the double-like guard.
func (s *articleService) LikeArticle(ctx context.Context, username, id string) (*models.ArticleMetadata, error) {
	like := &models.Like{
		Username:  username,
		ArticleID: id,
		CreatedAt: s.now(),
	}
	if err := s.likes.PutLike(ctx, like); err != nil {
		return nil, err
	}

	rec, err := s.Rate(ctx, id, +1)
	if err != nil {
		// The article was not ratable; removing the row we just wrote is a
		// single idempotent step, so the state stays clean.
		if delErr := s.likes.DeleteLike(ctx, username, id); delErr != nil && !apperr.IsNotFound(delErr) {
			s.log.Error().Err(delErr).Str("id", id).Str("username", username).Str("step", "rollback_like_row").Msg("like row left without counter increment")
			return nil, apperr.Wrap(apperr.KindPartial, err, "like recorded but counter update failed").WithOp("articles.LikeArticle").WithID(id).WithStep("rollback_like_row")
		}
		return nil, err
	}
	return rec, nil
}

// UnlikeArticle removes the like row, then decrements the counter.
func (s *articleService) UnlikeArticle(ctx context.Context, username, id string) (*models.ArticleMetadata, error) {
	if err := s.likes.DeleteLike(ctx, username, id); err != nil {
		return nil, err
	}

	rec, err := s.Rate(ctx, id, -1)
	if err != nil {
		if putErr := s.likes.PutLike(ctx, &models.Like{Username: username, ArticleID: id, CreatedAt: s.now()}); putErr != nil && !apperr.IsConflict(putErr) {
			s.log.Error().Err(putErr).Str("id", id).Str("username", username).Str("step", "restore_like_row").Msg("like row removed without counter decrement")
			return nil, apperr.Wrap(apperr.KindPartial, err, "like removed but counter update failed").WithOp("articles.UnlikeArticle").WithID(id).WithStep("restore_like_row")
		}
		return nil, err
	}
	return rec, nil
}

func (s *articleService) HasLiked(ctx context.Context, username, id string) (bool, error) {
	_, err := s.likes.GetLike(ctx, username, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BulkUpdateByAuthor patches every article of an author in both tables.
// Failures are collected, not short-circuited: one bad article must not
// block the rest.
func (s *articleService) BulkUpdateByAuthor(ctx context.Context, author string, delta map[string]interface{}) (*models.BulkResult, error) {
	if author == "" {
		return nil, apperr.New(apperr.KindValidation, "author is required").WithOp("articles.BulkUpdateByAuthor")
	}
	if len(delta) == 0 {
		return nil, apperr.New(apperr.KindValidation, "empty update").WithOp("articles.BulkUpdateByAuthor")
	}
	for field := range delta {
		if managedFields[field] {
			return nil, apperr.New(apperr.KindValidation, "field %q is managed by the lifecycle and cannot be bulk-updated", field).WithOp("articles.BulkUpdateByAuthor")
		}
	}

	result := &models.BulkResult{}
	tables := []struct {
		name  string
		index string
	}{
		{models.TableUnpublished, models.IndexAuthorCreated},
		{models.TablePublished, models.IndexAuthorPublished},
	}

	for _, t := range tables {
		records, err := s.walker.WalkAll(ctx, t.name, t.index, "author", author, bulkWalkBatch, true)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if err := s.updateOne(ctx, t.name, &rec, delta); err != nil {
				result.Failures = append(result.Failures, models.BulkFailure{
					Table: t.name,
					ID:    rec.ID,
					Error: err.Error(),
				})
				continue
			}
			result.Updated++
		}
	}

	s.log.Info().Str("author", author).Int("updated", result.Updated).Int("failed", len(result.Failures)).Msg("bulk update by author")
	return result, nil
}

// updateOne applies a bulk delta to a single article the way Update does:
// the merged record is validated before anything is written, and the
// front-matter mirror is re-serialized before the metadata row changes.
func (s *articleService) updateOne(ctx context.Context, table string, rec *models.ArticleMetadata, delta map[string]interface{}) error {
	merged := rec.Clone()
	if err := merged.Apply(delta); err != nil {
		return apperr.New(apperr.KindValidation, "%s", err.Error()).WithID(rec.ID)
	}
	if errs := validation.ValidateMetadata(merged, table); len(errs) > 0 {
		return apperr.New(apperr.KindValidation, "%s", validation.Summarize(errs)).WithID(rec.ID)
	}

	doc, err := s.content.GetContent(ctx, table, rec.ID)
	if err != nil {
		return err
	}
	if err := s.content.PutContent(ctx, table, rec.ID, doc.Body, merged); err != nil {
		return err
	}
	if _, err := s.meta.Update(ctx, table, rec.ID, delta); err != nil {
		return err
	}
	return nil
}

// SyncAuthorProfile refreshes the denormalized author snapshot on every
// article the author owns.
func (s *articleService) SyncAuthorProfile(ctx context.Context, author, profilePicture string) (*models.BulkResult, error) {
	return s.BulkUpdateByAuthor(ctx, author, map[string]interface{}{
		"authorProfilePicture": profilePicture,
	})
}

func (s *articleService) ListByCategory(ctx context.Context, table, category string, params models.ListParams) ([]models.ArticleMetadata, error) {
	if category == "" {
		return nil, apperr.New(apperr.KindValidation, "category is required")
	}
	index := models.IndexCategoryCreated
	if table == models.TablePublished {
		index = models.IndexCategoryPublished
	}
	return s.listPage(ctx, table, index, "category", category, params)
}

func (s *articleService) ListByAuthor(ctx context.Context, table, author string, params models.ListParams) ([]models.ArticleMetadata, error) {
	if author == "" {
		return nil, apperr.New(apperr.KindValidation, "author is required")
	}
	index := models.IndexAuthorCreated
	if table == models.TablePublished {
		index = models.IndexAuthorPublished
	}
	return s.listPage(ctx, table, index, "author", author, params)
}

// ListByStatus lists unpublished articles only; published rows carry no
// status attribute.
func (s *articleService) ListByStatus(ctx context.Context, status string, params models.ListParams) ([]models.ArticleMetadata, error) {
	if !models.ValidStatuses[status] {
		return nil, apperr.New(apperr.KindValidation, "invalid status %q", status)
	}
	return s.listPage(ctx, models.TableUnpublished, models.IndexStatusCreated, "status", status, params)
}

func (s *articleService) listPage(ctx context.Context, table, index, key, value string, params models.ListParams) ([]models.ArticleMetadata, error) {
	if params.PageSize == 0 {
		params.PageSize = s.cfg.Pagination.DefaultPageSize
	}
	if errs := validation.ValidateListParams(params, s.cfg.Pagination.MaxPageSize); len(errs) > 0 {
		return nil, apperr.New(apperr.KindValidation, "%s", validation.Summarize(errs))
	}
	return s.walker.GetPage(ctx, table, index, key, value, params.Page, params.PageSize, params.Forward)
}

package store

import (
	"context"

	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// Walker turns the forward-only continuation cursors of the metadata store
// into 1-based page access by walking pages from the start. Reaching page N
// costs N round trips; callers asking for deep pages accept that cost.
type Walker struct {
	store MetadataStore
}

// NewWalker creates a pagination walker over the given store.
func NewWalker(store MetadataStore) *Walker {
	return &Walker{store: store}
}

// GetPage returns the records of the target page. A page past the end of the
// data returns an empty slice, never the last page's records, so clients can
// detect the end by walking until empty.
func (w *Walker) GetPage(ctx context.Context, table, index, key, value string, page, size int, forward bool) ([]models.ArticleMetadata, error) {
	if page < 1 {
		return nil, apperr.New(apperr.KindValidation, "page must be >= 1, got %d", page)
	}
	if size < 1 {
		return nil, apperr.New(apperr.KindValidation, "page size must be >= 1, got %d", size)
	}

	cursor := ""
	for current := 1; ; current++ {
		records, next, err := w.store.QueryPage(ctx, table, index, key, value, int32(size), forward, cursor)
		if err != nil {
			return nil, err
		}
		if current == page {
			return records, nil
		}
		if next == "" {
			// Data ran out before the target page.
			return []models.ArticleMetadata{}, nil
		}
		cursor = next
	}
}

// WalkAll drains an index completely. Used by bulk operations that must see
// every row for an author regardless of page boundaries.
func (w *Walker) WalkAll(ctx context.Context, table, index, key, value string, batch int32, forward bool) ([]models.ArticleMetadata, error) {
	var all []models.ArticleMetadata
	cursor := ""
	for {
		records, next, err := w.store.QueryPage(ctx, table, index, key, value, batch, forward, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

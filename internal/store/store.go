// Package store implements the two backing stores of the article system:
// metadata rows in DynamoDB (the only queryable side) and content documents
// plus images in S3. Large bodies and binaries are kept out of the metadata
// store to respect its item-size and throughput limits.
package store

import (
	"context"

	"github.com/LStepczynski/projectCatalog/internal/models"
)

// MetadataStore is the key-value table abstraction over the published and
// unpublished article tables. The table name is a parameter on every call
// because the same operations apply to both tables.
type MetadataStore interface {
	// Put inserts or overwrites a record keyed by id. Last writer wins.
	Put(ctx context.Context, table string, rec *models.ArticleMetadata) error

	// PutNew inserts only when no record with the same id exists; a
	// pre-existing id is a conflict.
	PutNew(ctx context.Context, table string, rec *models.ArticleMetadata) error

	// Get returns the record or a NotFound error.
	Get(ctx context.Context, table, id string) (*models.ArticleMetadata, error)

	// Update applies a partial field update and returns the new record.
	// The record must exist; absence is checked via a write precondition,
	// not a read-then-write race.
	Update(ctx context.Context, table, id string, delta map[string]interface{}) (*models.ArticleMetadata, error)

	// AddLikes atomically adds delta to the likes counter. Concurrent calls
	// never lose an update.
	AddLikes(ctx context.Context, table, id string, delta int64) (*models.ArticleMetadata, error)

	// Delete removes the record and returns its previous value, so callers
	// can re-derive the image key or re-insert elsewhere.
	Delete(ctx context.Context, table, id string) (*models.ArticleMetadata, error)

	// QueryPage runs one bounded scan over a secondary index equality
	// condition. It returns up to limit records and an opaque continuation
	// cursor, empty when no more data remains. Pass an empty cursor to start.
	QueryPage(ctx context.Context, table, index, key, value string, limit int32, forward bool, cursor string) ([]models.ArticleMetadata, string, error)
}

// LikeStore persists the (username, articleId) join rows backing the likes
// counter.
type LikeStore interface {
	// PutLike records a like; liking twice is a conflict.
	PutLike(ctx context.Context, like *models.Like) error

	// DeleteLike removes a like; an absent row is a NotFound error.
	DeleteLike(ctx context.Context, username, articleID string) error

	// GetLike returns the like row or a NotFound error.
	GetLike(ctx context.Context, username, articleID string) (*models.Like, error)
}

// ContentStore holds article bodies (front-matter + markdown under
// "{table}/{id}.md") and banner images (under "images/{id}.png").
type ContentStore interface {
	// PutContent serializes the metadata snapshot as front-matter followed
	// by the body and writes it under the article's content key. Overwrites
	// silently.
	PutContent(ctx context.Context, table, id, body string, meta *models.ArticleMetadata) error

	// GetContent returns the parsed document or a NotFound error.
	GetContent(ctx context.Context, table, id string) (*models.ArticleContent, error)

	// DeleteContent is idempotent; deleting a missing key is not an error.
	DeleteContent(ctx context.Context, table, id string) error

	// PutImage resizes and stores a banner image, returning the durable URL
	// to record in the article metadata.
	PutImage(ctx context.Context, id string, raw []byte, width, height int) (string, error)

	// DeleteImage is idempotent.
	DeleteImage(ctx context.Context, id string) error
}

// Resizer scales raw image bytes to the given bounding box. Implemented by
// internal/imaging; kept as an interface so the content store never touches
// image codecs.
type Resizer interface {
	Resize(raw []byte, width, height int) ([]byte, error)
}

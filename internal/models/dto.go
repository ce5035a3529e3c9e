package models

// CreateArticleRequest is the validated input for creating an article.
// Image carries raw uploaded bytes when the author attached a banner.
type CreateArticleRequest struct {
	Metadata ArticleMetadata `json:"metadata"`
	Body     string          `json:"body"`
	Image    []byte          `json:"image,omitempty"`
}

// UpdateArticleRequest replaces an article's content and metadata in place.
type UpdateArticleRequest struct {
	Metadata ArticleMetadata `json:"metadata"`
	Body     string          `json:"body"`
	Image    []byte          `json:"image,omitempty"`
}

// ListParams selects one page of a secondary-index listing.
type ListParams struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Forward  bool `json:"forward"`
}

// BulkFailure records one article that a bulk operation could not update.
type BulkFailure struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult summarizes a bulk update: failures are collected, never
// short-circuited.
type BulkResult struct {
	Updated  int           `json:"updated"`
	Failures []BulkFailure `json:"failures,omitempty"`
}

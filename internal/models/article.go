package models

import "fmt"

// Table keys used by the metadata store. The same logical schema exists in
// both tables; an article id lives in exactly one of them at a time.
const (
	TableUnpublished = "unpublished"
	TablePublished   = "published"
)

// Secondary index names shared by both tables. The status index exists only
// on the unpublished table since published rows carry no status.
const (
	IndexCategoryCreated   = "category-createdAt-index"
	IndexCategoryPublished = "category-publishedAt-index"
	IndexAuthorCreated     = "author-createdAt-index"
	IndexAuthorPublished   = "author-publishedAt-index"
	IndexStatusCreated     = "status-createdAt-index"
)

// Status values meaningful in the unpublished table. Published rows have the
// status attribute stripped.
const (
	StatusPrivate  = "Private"
	StatusInReview = "In Review"
)

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[string]bool{
	StatusPrivate:  true,
	StatusInReview: true,
}

// ValidDifficulties defines allowed difficulty levels
var ValidDifficulties = map[string]bool{
	"Easy":   true,
	"Medium": true,
	"Hard":   true,
}

// ArticleMetadata is one row in the metadata store. Author fields are a
// denormalized snapshot taken at creation or last profile sync.
type ArticleMetadata struct {
	ID                   string   `json:"id" yaml:"id" dynamodbav:"id"`
	Title                string   `json:"title" yaml:"title" dynamodbav:"title"`
	Description          string   `json:"description" yaml:"description" dynamodbav:"description"`
	Category             string   `json:"category" yaml:"category" dynamodbav:"category"`
	Tags                 []string `json:"tags" yaml:"tags" dynamodbav:"tags"`
	Difficulty           string   `json:"difficulty" yaml:"difficulty" dynamodbav:"difficulty"`
	Image                string   `json:"image" yaml:"image" dynamodbav:"image"`
	Author               string   `json:"author" yaml:"author" dynamodbav:"author"`
	AuthorProfilePicture string   `json:"authorProfilePicture" yaml:"authorProfilePicture" dynamodbav:"authorProfilePicture"`
	Status               string   `json:"status,omitempty" yaml:"status,omitempty" dynamodbav:"status,omitempty"`
	CreatedAt            int64    `json:"createdAt" yaml:"createdAt" dynamodbav:"createdAt"`
	LastEdited           int64    `json:"lastEdited,omitempty" yaml:"lastEdited,omitempty" dynamodbav:"lastEdited,omitempty"`
	PublishedAt          int64    `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty" dynamodbav:"publishedAt,omitempty"`
	Likes                int64    `json:"likes" yaml:"likes" dynamodbav:"likes"`
	Deleted              bool     `json:"deleted,omitempty" yaml:"deleted,omitempty" dynamodbav:"deleted,omitempty"`
}

// Apply sets the named fields from a partial-update delta. Unknown fields
// and mismatched value types are rejected so a delta can be checked against
// a record before any store write happens.
func (m *ArticleMetadata) Apply(delta map[string]interface{}) error {
	for field, val := range delta {
		ok := true
		switch field {
		case "title":
			m.Title, ok = val.(string)
		case "description":
			m.Description, ok = val.(string)
		case "category":
			m.Category, ok = val.(string)
		case "tags":
			m.Tags, ok = val.([]string)
		case "difficulty":
			m.Difficulty, ok = val.(string)
		case "image":
			m.Image, ok = val.(string)
		case "author":
			m.Author, ok = val.(string)
		case "authorProfilePicture":
			m.AuthorProfilePicture, ok = val.(string)
		case "status":
			m.Status, ok = val.(string)
		case "lastEdited":
			m.LastEdited, ok = val.(int64)
		case "publishedAt":
			m.PublishedAt, ok = val.(int64)
		case "likes":
			m.Likes, ok = val.(int64)
		case "deleted":
			m.Deleted, ok = val.(bool)
		default:
			return fmt.Errorf("unknown field %q in update", field)
		}
		if !ok {
			return fmt.Errorf("invalid value type for field %q", field)
		}
	}
	return nil
}

// Clone returns a deep copy, so lifecycle moves can mutate freely.
func (m *ArticleMetadata) Clone() *ArticleMetadata {
	c := *m
	if m.Tags != nil {
		c.Tags = append([]string(nil), m.Tags...)
	}
	return &c
}

// ArticleContent is the object-store document for an article: the raw
// markdown body plus the front-matter mirror of its metadata. The mirror is
// best-effort; the metadata store is the source of truth for queries.
type ArticleContent struct {
	Metadata ArticleMetadata
	Body     string
}

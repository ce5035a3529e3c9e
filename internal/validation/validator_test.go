package validation

import (
	"strings"
	"testing"

	"github.com/LStepczynski/projectCatalog/internal/models"
)

func validMeta() models.ArticleMetadata {
	return models.ArticleMetadata{
		ID:         "550e8400-e29b-41d4-a716-446655440000",
		Title:      "Understanding Goroutines",
		Category:   "programming",
		Tags:       []string{"go", "concurrency"},
		Difficulty: "Medium",
		Author:     "jdoe",
		Status:     models.StatusPrivate,
		CreatedAt:  1700000000,
	}
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*models.ArticleMetadata)
		table      string
		wantErrors int
		wantFields []string
	}{
		{
			name:   "valid unpublished article",
			mutate: func(m *models.ArticleMetadata) {},
			table:  models.TableUnpublished,
		},
		{
			name: "valid published article",
			mutate: func(m *models.ArticleMetadata) {
				m.Status = ""
				m.PublishedAt = 1700000100
			},
			table: models.TablePublished,
		},
		{
			name:       "missing title",
			mutate:     func(m *models.ArticleMetadata) { m.Title = "" },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "title too long",
			mutate:     func(m *models.ArticleMetadata) { m.Title = strings.Repeat("x", maxTitleLen+1) },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "missing category and author",
			mutate:     func(m *models.ArticleMetadata) { m.Category = ""; m.Author = "" },
			table:      models.TableUnpublished,
			wantErrors: 2,
			wantFields: []string{"category", "author"},
		},
		{
			name:       "invalid difficulty",
			mutate:     func(m *models.ArticleMetadata) { m.Difficulty = "Impossible" },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"difficulty"},
		},
		{
			name:       "malformed id",
			mutate:     func(m *models.ArticleMetadata) { m.ID = "not-a-uuid" },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"id"},
		},
		{
			name:   "too many tags",
			mutate: func(m *models.ArticleMetadata) { m.Tags = []string{"a", "b", "c", "d", "e", "f"} },
			table:  models.TableUnpublished,

			wantErrors: 1,
			wantFields: []string{"tags"},
		},
		{
			name:       "blank tag",
			mutate:     func(m *models.ArticleMetadata) { m.Tags = []string{"go", "  "} },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"tags"},
		},
		{
			name:       "invalid status",
			mutate:     func(m *models.ArticleMetadata) { m.Status = "Scheduled" },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"status"},
		},
		{
			name:       "unpublished row must not carry publishedAt",
			mutate:     func(m *models.ArticleMetadata) { m.PublishedAt = 1700000100 },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"publishedAt"},
		},
		{
			name:       "published row must not carry status",
			mutate:     func(m *models.ArticleMetadata) { m.PublishedAt = 1700000100 },
			table:      models.TablePublished,
			wantErrors: 1,
			wantFields: []string{"status"},
		},
		{
			name:       "negative likes",
			mutate:     func(m *models.ArticleMetadata) { m.Likes = -1 },
			table:      models.TableUnpublished,
			wantErrors: 1,
			wantFields: []string{"likes"},
		},
		{
			name:       "unknown table",
			mutate:     func(m *models.ArticleMetadata) {},
			table:      "archive",
			wantErrors: 1,
			wantFields: []string{"table"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMeta()
			tt.mutate(&meta)

			errs := ValidateMetadata(&meta, tt.table)
			if len(errs) != tt.wantErrors {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, tt.wantErrors)
			}
			for _, field := range tt.wantFields {
				found := false
				for _, e := range errs {
					if e.Field == field {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected an error on field %q, got %v", field, errs)
				}
			}
		})
	}
}

func TestValidateListParams(t *testing.T) {
	tests := []struct {
		name       string
		params     models.ListParams
		wantFields []string
	}{
		{"valid", models.ListParams{Page: 1, PageSize: 10}, nil},
		{"zero page", models.ListParams{Page: 0, PageSize: 10}, []string{"page"}},
		{"negative page", models.ListParams{Page: -3, PageSize: 10}, []string{"page"}},
		{"zero page size", models.ListParams{Page: 1, PageSize: 0}, []string{"pageSize"}},
		{"page size over cap", models.ListParams{Page: 1, PageSize: 100}, []string{"pageSize"}},
		{"both invalid", models.ListParams{Page: 0, PageSize: 0}, []string{"page", "pageSize"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateListParams(tt.params, 50)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("error %d on field %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	errs := []ValidationError{
		{Field: "title", Message: "title is required"},
		{Field: "category", Message: "category is required"},
	}

	got := Summarize(errs)
	if !strings.Contains(got, "title: title is required") || !strings.Contains(got, "category: category is required") {
		t.Errorf("summary %q missing expected parts", got)
	}
}

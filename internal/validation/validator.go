package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/LStepczynski/projectCatalog/internal/models"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 500
	maxTags           = 5
	maxTagLen         = 30
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateMetadata validates an article metadata record against the closed
// schema. The table decides whether status or publishedAt is meaningful.
func ValidateMetadata(meta *models.ArticleMetadata, table string) []ValidationError {
	var errors []ValidationError

	// Validate ID (optional on create; the service generates one when absent)
	if meta.ID != "" && !isValidUUID(meta.ID) {
		errors = append(errors, ValidationError{Field: "id", Message: "invalid UUID format", Value: meta.ID})
	}

	// Validate title
	if meta.Title == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if len(meta.Title) > maxTitleLen {
		errors = append(errors, ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLen)})
	}

	// Validate description
	if len(meta.Description) > maxDescriptionLen {
		errors = append(errors, ValidationError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", maxDescriptionLen)})
	}

	// Validate category
	if meta.Category == "" {
		errors = append(errors, ValidationError{Field: "category", Message: "category is required"})
	}

	// Validate author
	if meta.Author == "" {
		errors = append(errors, ValidationError{Field: "author", Message: "author is required"})
	}

	// Validate difficulty
	if meta.Difficulty == "" {
		errors = append(errors, ValidationError{Field: "difficulty", Message: "difficulty is required"})
	} else if !models.ValidDifficulties[meta.Difficulty] {
		errors = append(errors, ValidationError{
			Field:   "difficulty",
			Message: "invalid difficulty, must be one of: Easy, Medium, Hard",
			Value:   meta.Difficulty,
		})
	}

	// Validate tags
	if len(meta.Tags) > maxTags {
		errors = append(errors, ValidationError{Field: "tags", Message: fmt.Sprintf("at most %d tags allowed", maxTags)})
	}
	for _, tag := range meta.Tags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{Field: "tags", Message: "tags must not be blank"})
		} else if len(tag) > maxTagLen {
			errors = append(errors, ValidationError{Field: "tags", Message: fmt.Sprintf("tag must be at most %d characters", maxTagLen), Value: tag})
		}
	}

	// Validate likes
	if meta.Likes < 0 {
		errors = append(errors, ValidationError{Field: "likes", Message: "likes must not be negative", Value: meta.Likes})
	}

	// Status is meaningful only in the unpublished table; published rows
	// carry publishedAt instead.
	switch table {
	case models.TableUnpublished:
		if meta.Status != "" && !models.ValidStatuses[meta.Status] {
			errors = append(errors, ValidationError{
				Field:   "status",
				Message: "invalid status, must be one of: Private, In Review",
				Value:   meta.Status,
			})
		}
		if meta.PublishedAt != 0 {
			errors = append(errors, ValidationError{Field: "publishedAt", Message: "unpublished articles must not have publishedAt"})
		}
	case models.TablePublished:
		if meta.Status != "" {
			errors = append(errors, ValidationError{Field: "status", Message: "published articles must not have a status", Value: meta.Status})
		}
	default:
		errors = append(errors, ValidationError{Field: "table", Message: "unknown table", Value: table})
	}

	return errors
}

// ValidateListParams checks pagination inputs before they reach the walker.
func ValidateListParams(params models.ListParams, maxPageSize int) []ValidationError {
	var errors []ValidationError

	if params.Page < 1 {
		errors = append(errors, ValidationError{Field: "page", Message: "page must be >= 1", Value: params.Page})
	}
	if params.PageSize < 1 {
		errors = append(errors, ValidationError{Field: "pageSize", Message: "pageSize must be >= 1", Value: params.PageSize})
	} else if maxPageSize > 0 && params.PageSize > maxPageSize {
		errors = append(errors, ValidationError{Field: "pageSize", Message: fmt.Sprintf("pageSize must be at most %d", maxPageSize), Value: params.PageSize})
	}

	return errors
}

// Summarize flattens validation errors into one message for error wrapping.
func Summarize(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

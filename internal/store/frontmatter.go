package store

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// Content documents are markdown front matter: a YAML header mirroring the
// article metadata fenced by "---" lines, then the raw body. The fences make
// the header/body split unambiguous: yaml.v3 serializes multi-line strings
// as indented block scalars, so a column-0 "---" line can never occur inside
// the header, while a bare blank line can.

const frontMatterFence = "---\n"

func encodeDocument(meta *models.ArticleMetadata, body string) (string, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, err, "serializing front-matter for article %s", meta.ID)
	}
	// yaml.Marshal terminates the header with a newline, so the closing
	// fence always starts at column 0.
	return frontMatterFence + string(header) + frontMatterFence + body, nil
}

func decodeDocument(doc string) (*models.ArticleContent, error) {
	rest, ok := strings.CutPrefix(doc, frontMatterFence)
	if !ok {
		return nil, apperr.New(apperr.KindUnavailable, "document has no front-matter fence")
	}
	header, body, ok := strings.Cut(rest, "\n"+frontMatterFence)
	if !ok {
		return nil, apperr.New(apperr.KindUnavailable, "front-matter fence is not closed")
	}

	var meta models.ArticleMetadata
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "parsing front-matter")
	}
	return &models.ArticleContent{Metadata: meta, Body: body}, nil
}

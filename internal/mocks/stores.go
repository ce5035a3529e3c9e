// Package mocks provides in-memory implementations of the store interfaces
// for service and handler tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// MockMetadataStore is a map-backed MetadataStore and LikeStore. Error
// fields, when set, are returned by the corresponding method. Safe for
// concurrent use so concurrency properties can be tested against it.
type MockMetadataStore struct {
	mu     sync.Mutex
	Tables map[string]map[string]*models.ArticleMetadata
	Likes  map[string]*models.Like

	PutErr         error
	GetErr         error
	UpdateErr      error
	UpdateErrForID map[string]error
	DeleteErr      error
	QueryErr       error
	LikeErr        error

	PutCalls    int
	QueryCalls  int
	UpdateCalls int
	DeleteCalls int
}

// NewMockMetadataStore creates an empty mock with both article tables.
func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{
		Tables: map[string]map[string]*models.ArticleMetadata{
			models.TableUnpublished: {},
			models.TablePublished:   {},
		},
		Likes: make(map[string]*models.Like),
	}
}

func (m *MockMetadataStore) table(name string) (map[string]*models.ArticleMetadata, error) {
	t, ok := m.Tables[name]
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "unknown table %q", name)
	}
	return t, nil
}

func (m *MockMetadataStore) Put(ctx context.Context, table string, rec *models.ArticleMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	t, err := m.table(table)
	if err != nil {
		return err
	}
	t[rec.ID] = rec.Clone()
	return nil
}

func (m *MockMetadataStore) PutNew(ctx context.Context, table string, rec *models.ArticleMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if _, exists := t[rec.ID]; exists {
		return apperr.New(apperr.KindConflict, "article %s already exists in %s", rec.ID, table)
	}
	t[rec.ID] = rec.Clone()
	return nil
}

func (m *MockMetadataStore) Get(ctx context.Context, table, id string) (*models.ArticleMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	rec, ok := t[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table)
	}
	return rec.Clone(), nil
}

func (m *MockMetadataStore) Update(ctx context.Context, table, id string, delta map[string]interface{}) (*models.ArticleMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if err, ok := m.UpdateErrForID[id]; ok {
		return nil, err
	}
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	rec, ok := t[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table)
	}
	if err := rec.Apply(delta); err != nil {
		return nil, apperr.New(apperr.KindValidation, "%s", err.Error())
	}
	return rec.Clone(), nil
}

func (m *MockMetadataStore) AddLikes(ctx context.Context, table, id string, delta int64) (*models.ArticleMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	rec, ok := t[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table)
	}
	rec.Likes += delta
	return rec.Clone(), nil
}

func (m *MockMetadataStore) Delete(ctx context.Context, table, id string) (*models.ArticleMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	rec, ok := t[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table)
	}
	delete(t, id)
	return rec, nil
}

func (m *MockMetadataStore) QueryPage(ctx context.Context, table, index, key, value string, limit int32, forward bool, cursor string) ([]models.ArticleMetadata, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls++
	if m.QueryErr != nil {
		return nil, "", m.QueryErr
	}
	t, err := m.table(table)
	if err != nil {
		return nil, "", err
	}
	if limit < 1 {
		return nil, "", apperr.New(apperr.KindValidation, "page size limit must be >= 1, got %d", limit)
	}

	var matched []models.ArticleMetadata
	for _, rec := range t {
		if keyField(rec, key) == value {
			matched = append(matched, *rec.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := sortField(&matched[i], index), sortField(&matched[j], index)
		if a == b {
			// Stable tiebreak so paging is deterministic.
			less := matched[i].ID < matched[j].ID
			if !forward {
				return !less
			}
			return less
		}
		if forward {
			return a < b
		}
		return a > b
	})

	offset := 0
	if cursor != "" {
		offset, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", apperr.New(apperr.KindValidation, "malformed continuation cursor %q", cursor)
		}
	}
	if offset >= len(matched) {
		return []models.ArticleMetadata{}, "", nil
	}

	end := offset + int(limit)
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[offset:end]

	next := ""
	if end < len(matched) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

func (m *MockMetadataStore) PutLike(ctx context.Context, like *models.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LikeErr != nil {
		return m.LikeErr
	}
	id := models.LikeID(like.Username, like.ArticleID)
	if _, exists := m.Likes[id]; exists {
		return apperr.New(apperr.KindConflict, "user %s already liked article %s", like.Username, like.ArticleID)
	}
	c := *like
	c.ID = id
	m.Likes[id] = &c
	return nil
}

func (m *MockMetadataStore) DeleteLike(ctx context.Context, username, articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LikeErr != nil {
		return m.LikeErr
	}
	id := models.LikeID(username, articleID)
	if _, exists := m.Likes[id]; !exists {
		return apperr.New(apperr.KindNotFound, "user %s has not liked article %s", username, articleID)
	}
	delete(m.Likes, id)
	return nil
}

func (m *MockMetadataStore) GetLike(ctx context.Context, username, articleID string) (*models.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LikeErr != nil {
		return nil, m.LikeErr
	}
	like, ok := m.Likes[models.LikeID(username, articleID)]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user %s has not liked article %s", username, articleID)
	}
	c := *like
	return &c, nil
}

func keyField(rec *models.ArticleMetadata, key string) string {
	switch key {
	case "category":
		return rec.Category
	case "author":
		return rec.Author
	case "status":
		return rec.Status
	default:
		return ""
	}
}

func sortField(rec *models.ArticleMetadata, index string) int64 {
	switch index {
	case models.IndexCategoryPublished, models.IndexAuthorPublished:
		return rec.PublishedAt
	default:
		return rec.CreatedAt
	}
}

// MockContentStore is a map-backed ContentStore.
type MockContentStore struct {
	mu       sync.Mutex
	Docs     map[string]*models.ArticleContent
	Images   map[string][]byte
	ImageDim map[string][2]int

	PutErr      error
	GetErr      error
	DeleteErr   error
	PutImageErr error

	PutCalls      int
	DeleteCalls   int
	PutImageCalls int
}

// NewMockContentStore creates an empty content store mock.
func NewMockContentStore() *MockContentStore {
	return &MockContentStore{
		Docs:     make(map[string]*models.ArticleContent),
		Images:   make(map[string][]byte),
		ImageDim: make(map[string][2]int),
	}
}

func docKey(table, id string) string { return fmt.Sprintf("%s/%s.md", table, id) }

func (m *MockContentStore) PutContent(ctx context.Context, table, id, body string, meta *models.ArticleMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Docs[docKey(table, id)] = &models.ArticleContent{Metadata: *meta.Clone(), Body: body}
	return nil
}

func (m *MockContentStore) GetContent(ctx context.Context, table, id string) (*models.ArticleContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	doc, ok := m.Docs[docKey(table, id)]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "content %s/%s.md not found", table, id)
	}
	return &models.ArticleContent{Metadata: *doc.Metadata.Clone(), Body: doc.Body}, nil
}

func (m *MockContentStore) DeleteContent(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Docs, docKey(table, id))
	return nil
}

func (m *MockContentStore) PutImage(ctx context.Context, id string, raw []byte, width, height int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutImageCalls++
	if m.PutImageErr != nil {
		return "", m.PutImageErr
	}
	m.Images[id] = raw
	m.ImageDim[id] = [2]int{width, height}
	return "https://cdn.test/images/" + id + ".png", nil
}

func (m *MockContentStore) DeleteImage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Images, id)
	delete(m.ImageDim, id)
	return nil
}

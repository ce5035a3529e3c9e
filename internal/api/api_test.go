package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LStepczynski/projectCatalog/internal/api"
	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/mocks"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func setupTestRouter() (*gin.Engine, *mocks.MockMetadataStore, *mocks.MockContentStore) {
	gin.SetMode(gin.TestMode)

	meta := mocks.NewMockMetadataStore()
	content := mocks.NewMockContentStore()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         "8080",
			WriteTimeout: 30 * time.Second,
		},
		Pagination: config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
	}
	cfg.AWS.MaxImageWidth = 1200
	cfg.AWS.MaxImageHeight = 800

	log := zerolog.Nop()
	services := service.NewServices(service.Deps{
		Metadata: meta,
		Likes:    meta,
		Content:  content,
	}, cfg, log)

	router := api.NewRouter(services, cfg, log)

	return router, meta, content
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createArticle(t *testing.T, router *gin.Engine, title string) models.ArticleMetadata {
	t.Helper()

	w := doJSON(t, router, "POST", "/v1/articles", models.CreateArticleRequest{
		Metadata: models.ArticleMetadata{
			Title:      title,
			Category:   "programming",
			Tags:       []string{"go"},
			Difficulty: "Easy",
			Author:     "jdoe",
		},
		Body: "# " + title,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}

	var rec models.ArticleMetadata
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestCreateArticle(t *testing.T) {
	router, _, _ := setupTestRouter()

	rec := createArticle(t, router, "HTTP test")
	if rec.ID == "" {
		t.Error("response should carry the generated id")
	}
	if rec.Status != models.StatusPrivate {
		t.Errorf("status = %q, want Private", rec.Status)
	}
}

func TestCreateArticle_InvalidBody(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("POST", "/v1/articles", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCreateArticle_ValidationFailure(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doJSON(t, router, "POST", "/v1/articles", models.CreateArticleRequest{
		Metadata: models.ArticleMetadata{Title: "", Category: "x"},
		Body:     "body",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetArticle(t *testing.T) {
	router, _, _ := setupTestRouter()
	rec := createArticle(t, router, "Readable")

	w := doJSON(t, router, "GET", "/v1/articles/"+rec.ID+"?table=unpublished", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got models.ArticleMetadata
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Readable" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestGetArticle_NotFound(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doJSON(t, router, "GET", "/v1/articles/ghost?table=unpublished", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetArticle_BadTable(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doJSON(t, router, "GET", "/v1/articles/any?table=archived", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestPublishFlow(t *testing.T) {
	router, _, _ := setupTestRouter()
	rec := createArticle(t, router, "Ship it")

	w := doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/publish", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("publish returned %d: %s", w.Code, w.Body.String())
	}

	// Default table for reads is published.
	w = doJSON(t, router, "GET", "/v1/articles/"+rec.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after publish returned %d", w.Code)
	}

	// Publishing again finds no unpublished row.
	w = doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/publish", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("double publish returned %d, want 404", w.Code)
	}

	// Hide moves it back.
	w = doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/hide", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("hide returned %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, "GET", "/v1/articles/"+rec.ID+"?table=unpublished", nil)
	if w.Code != http.StatusOK {
		t.Errorf("get after hide returned %d", w.Code)
	}
}

func TestDeleteArticle(t *testing.T) {
	router, _, _ := setupTestRouter()
	rec := createArticle(t, router, "Gone")

	w := doJSON(t, router, "DELETE", "/v1/articles/"+rec.ID+"?table=unpublished", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", w.Code)
	}

	w = doJSON(t, router, "GET", "/v1/articles/"+rec.ID+"?table=unpublished", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", w.Code)
	}
}

func TestLikeEndpoints(t *testing.T) {
	router, _, _ := setupTestRouter()
	rec := createArticle(t, router, "Popular")
	doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/publish", nil)

	w := doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/likes?username=alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like returned %d: %s", w.Code, w.Body.String())
	}

	// Second like conflicts.
	w = doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/likes?username=alice", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("double like returned %d, want 409", w.Code)
	}

	w = doJSON(t, router, "GET", "/v1/articles/"+rec.ID+"/likes?username=alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("liked check returned %d", w.Code)
	}
	var liked struct {
		Liked bool `json:"liked"`
	}
	json.Unmarshal(w.Body.Bytes(), &liked)
	if !liked.Liked {
		t.Error("liked should be true")
	}

	w = doJSON(t, router, "DELETE", "/v1/articles/"+rec.ID+"/likes?username=alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unlike returned %d", w.Code)
	}

	// Missing username is rejected up front.
	w = doJSON(t, router, "POST", "/v1/articles/"+rec.ID+"/likes", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("like without username returned %d, want 400", w.Code)
	}
}

func TestListArticles(t *testing.T) {
	router, _, _ := setupTestRouter()
	for _, title := range []string{"L1", "L2", "L3"} {
		createArticle(t, router, title)
	}

	w := doJSON(t, router, "GET", "/v1/articles?table=unpublished&category=programming&page=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Articles []models.ArticleMetadata `json:"articles"`
		Count    int                      `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 3 || len(resp.Articles) != 3 {
		t.Errorf("count = %d, articles = %d, want 3", resp.Count, len(resp.Articles))
	}

	// No selector at all.
	w = doJSON(t, router, "GET", "/v1/articles?table=unpublished", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("selector-less list returned %d, want 400", w.Code)
	}

	// Two selectors.
	w = doJSON(t, router, "GET", "/v1/articles?table=unpublished&category=programming&author=jdoe", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("double-selector list returned %d, want 400", w.Code)
	}
}

func TestListArticles_StatusIsUnpublishedOnly(t *testing.T) {
	router, _, _ := setupTestRouter()
	createArticle(t, router, "Draft")

	w := doJSON(t, router, "GET", "/v1/articles?status=Private&table=published", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status with table=published returned %d, want 400", w.Code)
	}

	// Without an explicit table the listing targets the unpublished table.
	w = doJSON(t, router, "GET", "/v1/articles?status=Private", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status listing returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestSyncAuthorProfile(t *testing.T) {
	router, _, _ := setupTestRouter()
	createArticle(t, router, "Mine")

	w := doJSON(t, router, "POST", "/v1/authors/jdoe/profile-sync", map[string]string{
		"profilePicture": "https://cdn.test/images/jdoe.png",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("profile sync returned %d: %s", w.Code, w.Body.String())
	}

	var result models.BulkResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Updated != 1 {
		t.Errorf("updated = %d, want 1", result.Updated)
	}
}

package api

import (
	"net/http"
	"strconv"

	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/internal/service"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "articles").Logger(),
	}
}

// tableParam reads the ?table= query parameter, falling back to the given
// default. Unknown table names are rejected before the service is called.
func tableParam(c *gin.Context, fallback string) (string, bool) {
	table := c.DefaultQuery("table", fallback)
	if table != models.TableUnpublished && table != models.TablePublished {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "table must be \"unpublished\" or \"published\"",
		})
		return "", false
	}
	return table, true
}

// writeError translates a service error into the HTTP response
func (h *ArticleHandler) writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}

// Create handles POST /v1/articles
// New articles always land in the unpublished table.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rec, err := h.services.Articles.Create(c.Request.Context(), models.TableUnpublished, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	table, ok := tableParam(c, models.TablePublished)
	if !ok {
		return
	}

	rec, err := h.services.Articles.Get(c.Request.Context(), table, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetContent handles GET /v1/articles/:id/content
func (h *ArticleHandler) GetContent(c *gin.Context) {
	table, ok := tableParam(c, models.TablePublished)
	if !ok {
		return
	}

	doc, err := h.services.Articles.GetWithContent(c.Request.Context(), table, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata": doc.Metadata,
		"body":     doc.Body,
	})
}

// Update handles PUT /v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	table, ok := tableParam(c, models.TableUnpublished)
	if !ok {
		return
	}

	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rec, err := h.services.Articles.Update(c.Request.Context(), table, c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	table, ok := tableParam(c, models.TableUnpublished)
	if !ok {
		return
	}

	if err := h.services.Articles.Delete(c.Request.Context(), table, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Publish handles POST /v1/articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	rec, err := h.services.Articles.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Hide handles POST /v1/articles/:id/hide
func (h *ArticleHandler) Hide(c *gin.Context) {
	rec, err := h.services.Articles.Hide(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Like handles POST /v1/articles/:id/likes
func (h *ArticleHandler) Like(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username parameter is required"})
		return
	}

	rec, err := h.services.Articles.LikeArticle(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Unlike handles DELETE /v1/articles/:id/likes
func (h *ArticleHandler) Unlike(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username parameter is required"})
		return
	}

	rec, err := h.services.Articles.UnlikeArticle(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HasLiked handles GET /v1/articles/:id/likes
func (h *ArticleHandler) HasLiked(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username parameter is required"})
		return
	}

	liked, err := h.services.Articles.HasLiked(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// List handles GET /v1/articles
// Exactly one of category, author, or status selects the index to list.
func (h *ArticleHandler) List(c *gin.Context) {
	table, ok := tableParam(c, models.TablePublished)
	if !ok {
		return
	}

	params := models.ListParams{
		Page:    1,
		Forward: false,
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		params.Page = page
	}
	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be an integer"})
			return
		}
		params.PageSize = size
	}
	if raw := c.Query("forward"); raw != "" {
		forward, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "forward must be a boolean"})
			return
		}
		params.Forward = forward
	}

	category := c.Query("category")
	author := c.Query("author")
	status := c.Query("status")

	selectors := 0
	for _, s := range []string{category, author, status} {
		if s != "" {
			selectors++
		}
	}
	if selectors != 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "exactly one of category, author, or status is required",
		})
		return
	}
	// Published rows carry no status attribute, so a status listing can only
	// ever target the unpublished table.
	if status != "" && c.Query("table") == models.TablePublished {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "status listings are unpublished-only; omit table or use table=unpublished",
		})
		return
	}

	ctx := c.Request.Context()
	var (
		records []models.ArticleMetadata
		err     error
	)
	switch {
	case category != "":
		records, err = h.services.Articles.ListByCategory(ctx, table, category, params)
	case author != "":
		records, err = h.services.Articles.ListByAuthor(ctx, table, author, params)
	default:
		records, err = h.services.Articles.ListByStatus(ctx, status, params)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": records,
		"page":     params.Page,
		"count":    len(records),
	})
}

// SyncAuthorProfile handles POST /v1/authors/:author/profile-sync
// Walks every article by the author in both tables; can take a while for
// prolific authors, so it runs under the server write timeout.
func (h *ArticleHandler) SyncAuthorProfile(c *gin.Context) {
	var req struct {
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.Server.WriteTimeout)
	defer cancel()

	result, err := h.services.Articles.SyncAuthorProfile(ctx, c.Param("author"), req.ProfilePicture)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusOK
	if len(result.Failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

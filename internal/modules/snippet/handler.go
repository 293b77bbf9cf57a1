package snippet

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snipvault/core/internal/middleware"
	"github.com/snipvault/core/internal/pkg/pagination"
	"github.com/snipvault/core/internal/pkg/response"
	"github.com/snipvault/core/internal/pkg/taskqueue"
)

// Enqueuer triggers the background enrichment pass for a snippet.
type Enqueuer interface {
	Enqueue(ctx context.Context, snippetID string) (*taskqueue.Record, error)
}

type Handler struct {
	svc      *Service
	enricher Enqueuer
	logger   *zap.Logger
}

func NewHandler(svc *Service, enricher Enqueuer, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, enricher: enricher, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	g := rg.Group("/snippets")

	o := g.Group("", optionalAuthMW)
	o.GET("", h.search)
	o.GET("/search", h.search)
	o.GET("/trending", h.trending)
	o.GET("/:id", h.get)
	o.GET("/:id/render", h.render)
	o.POST("/:id/copy", h.copy)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.POST("/:id/star", h.star)
	a.DELETE("/:id/star", h.unstar)
	a.POST("/:id/enrich", h.enrich)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSnippetDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Enrichment runs detached; the create response never waits on it.
	go func(id string) {
		if _, err := h.enricher.Enqueue(context.Background(), id); err != nil {
			h.logger.Warn("enqueue enrichment failed", zap.String("snippet", id), zap.Error(err))
		}
	}(item.ID)

	response.Created(c, toResponse(item))
}

func (h *Handler) get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	go func(id string) {
		if err := h.svc.IncrementViews(context.Background(), id); err != nil {
			h.logger.Warn("view bump failed", zap.String("snippet", id), zap.Error(err))
		}
	}(item.ID)

	response.OK(c, toResponse(item))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSnippetDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toResponse(item))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) copy(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.IncrementCopied(c.Request.Context(), item.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) star(c *gin.Context) {
	if err := h.svc.Star(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) unstar(c *gin.Context) {
	if err := h.svc.Unstar(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) enrich(c *gin.Context) {
	// Owner-only trigger; enrichment is one-shot, so re-triggering just
	// returns the existing record.
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if item.OwnerID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return
	}
	rec, err := h.enricher.Enqueue(c.Request.Context(), item.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) render(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	html, err := RenderDocumentation(item.Documentation)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"id": item.ID, "html": html})
}

func (h *Handler) search(c *gin.Context) {
	q := pagination.FromContext(c)
	f := Filters{
		Search:     c.Query("search"),
		Language:   c.Query("language"),
		Tags:       splitMulti(c, "tags"),
		Frameworks: splitMulti(c, "frameworks"),
		Category:   c.Query("category"),
		Domain:     c.Query("domain"),
		Complexity: c.Query("complexity"),
	}
	if raw := c.Query("min_quality"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			f.MinQuality = &v
		}
	}
	if raw := c.Query("max_age"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			f.MaxAgeDays = &v
		}
	}

	result, err := h.svc.Search(c.Request.Context(), middleware.CurrentUserID(c), f, q, c.DefaultQuery("sort", SortRecent))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) trending(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	entries, err := h.svc.Trending(c.Request.Context(),
		c.Query("timeframe"), c.Query("category"), c.Query("language"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// splitMulti accepts both repeated query params and comma-separated values.
func splitMulti(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

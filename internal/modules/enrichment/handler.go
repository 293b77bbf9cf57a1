package enrichment

import (
	"github.com/gin-gonic/gin"

	"github.com/snipvault/core/internal/pkg/pagination"
	"github.com/snipvault/core/internal/pkg/response"
	"github.com/snipvault/core/internal/pkg/taskqueue"
)

// Handler exposes the enrichment record endpoints. All of them require
// authentication; records expose processing internals.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/enrichment", authMW)
	g.GET("/records", h.list)
	g.GET("/records/:id", h.get)
	g.GET("/snippets/:id", h.getForSnippet)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var status *taskqueue.Status
	if raw := c.Query("status"); raw != "" {
		st := taskqueue.Status(raw)
		switch st {
		case taskqueue.StatusQueued, taskqueue.StatusRunning, taskqueue.StatusDone, taskqueue.StatusFailed:
			status = &st
		default:
			response.BadRequest(c, "unknown status")
			return
		}
	}

	records, total, err := h.service.ListRecords(c.Request.Context(), q.Page, q.Size, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, records, pagination.Meta(total, q))
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

func (h *Handler) getForSnippet(c *gin.Context) {
	rec, err := h.service.GetRecordForSnippet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

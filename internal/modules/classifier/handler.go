package classifier

import (
	"github.com/gin-gonic/gin"
	"github.com/snipvault/core/internal/pkg/response"
)

type classifyDTO struct {
	Code     string `json:"code"     binding:"required"`
	Filename string `json:"filename"`
}

// Handler exposes classification for client-side hinting before submission.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/classify")
	g.POST("", h.classify)
	g.GET("/languages", h.languages)
}

func (h *Handler) classify(c *gin.Context) {
	var dto classifyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, Classify(dto.Code, dto.Filename))
}

func (h *Handler) languages(c *gin.Context) {
	response.OK(c, Supported())
}

package handler

import (
	"github.com/gin-gonic/gin"

	appGraph "github.com/secondbrain/backend/internal/application/graph"
	"github.com/secondbrain/backend/internal/interfaces/http/response"
)

// GraphHandler 知识图谱处理器
type GraphHandler struct {
	builder *appGraph.Builder
}

// NewGraphHandler 创建知识图谱处理器
func NewGraphHandler(builder *appGraph.Builder) *GraphHandler {
	return &GraphHandler{builder: builder}
}

// Graph 用户的知识图谱
// @Summary 知识图谱
// @Tags 图谱
// @Produce json
// @Param user_id path string true "用户 ID"
// @Success 200 {object} graph.Graph
// @Router /graph/{user_id} [get]
func (h *GraphHandler) Graph(c *gin.Context) {
	g, err := h.builder.Graph(c.Request.Context(), resolveUserID(c, c.Param("user_id")))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, g)
}

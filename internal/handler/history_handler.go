package handler

import (
	"net/http"
	"strconv"

	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/service"

	"github.com/gin-gonic/gin"
)

// HistoryHandler 执行历史HTTP处理器
type HistoryHandler struct {
	service service.HistoryService
}

// NewHistoryHandler 创建处理器
func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: history}
}

// RegisterRoutes 注册路由
func (h *HistoryHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/history")
	{
		api.GET("", h.ListExecutions)
		api.GET("/:id", h.GetExecution)
		api.GET("/:id/logs", h.ListLogs)
		api.GET("/:id/tree", h.LogTree)
		api.GET("/:id/children", h.LogChildren)
		api.GET("/:id/attachments", h.ListAttachments)
	}
}

func (h *HistoryHandler) ListExecutions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requests, total, err := h.service.ListExecutions(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   requests,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *HistoryHandler) GetExecution(c *gin.Context) {
	id, ok := executionID(c)
	if !ok {
		return
	}
	er, err := h.service.GetExecution(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, er)
}

func (h *HistoryHandler) ListLogs(c *gin.Context) {
	id, ok := executionID(c)
	if !ok {
		return
	}
	logs, err := h.service.ListLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *HistoryHandler) LogTree(c *gin.Context) {
	id, ok := executionID(c)
	if !ok {
		return
	}
	tree, err := h.service.LogTree(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// LogChildren expects ?type=<log type>&stepId=<step id>.
func (h *HistoryHandler) LogChildren(c *gin.Context) {
	id, ok := executionID(c)
	if !ok {
		return
	}
	logs, err := h.service.LogChildren(c.Request.Context(), id, models.ItemLogType(c.Query("type")), c.Query("stepId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *HistoryHandler) ListAttachments(c *gin.Context) {
	id, ok := executionID(c)
	if !ok {
		return
	}
	attachments, err := h.service.ListAttachments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

func executionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid execution request id"})
		return 0, false
	}
	return uint(id), true
}

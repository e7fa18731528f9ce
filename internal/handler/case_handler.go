package handler

import (
	"net/http"

	"github.com/parthasarathygopu/orca/internal/service"

	"github.com/gin-gonic/gin"
)

// CaseHandler 测试用例HTTP处理器
type CaseHandler struct {
	service service.CaseService
	runs    service.RunService
}

// NewCaseHandler 创建处理器
func NewCaseHandler(cases service.CaseService, runs service.RunService) *CaseHandler {
	return &CaseHandler{service: cases, runs: runs}
}

// RegisterRoutes 注册路由
func (h *CaseHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/apps/:appId/cases")
	{
		api.GET("", h.ListCases)
		api.POST("", h.CreateCase)
		api.GET("/:caseId", h.GetCase)
		api.DELETE("/:caseId", h.DeleteCase)

		api.POST("/:caseId/blocks", h.InsertBlock)
		api.PUT("/:caseId/blocks/:blockId/reorder", h.MoveBlock)
		api.DELETE("/:caseId/blocks/:blockId", h.DeleteBlock)

		api.POST("/:caseId/run", h.RunCase)
	}
}

func (h *CaseHandler) ListCases(c *gin.Context) {
	cases, err := h.service.ListCases(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cases)
}

func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req service.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tc, err := h.service.CreateCase(c.Request.Context(), c.Param("appId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tc)
}

func (h *CaseHandler) GetCase(c *gin.Context) {
	tc, err := h.service.GetCase(c.Request.Context(), c.Param("appId"), c.Param("caseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tc)
}

func (h *CaseHandler) DeleteCase(c *gin.Context) {
	if err := h.service.DeleteCase(c.Request.Context(), c.Param("appId"), c.Param("caseId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CaseHandler) InsertBlock(c *gin.Context) {
	var req service.CaseBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	block, err := h.service.InsertBlock(c.Request.Context(), c.Param("appId"), c.Param("caseId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *CaseHandler) MoveBlock(c *gin.Context) {
	var req service.MoveBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	block, err := h.service.MoveBlock(c.Request.Context(), c.Param("appId"), c.Param("caseId"), c.Param("blockId"), req.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (h *CaseHandler) DeleteBlock(c *gin.Context) {
	if err := h.service.DeleteBlock(c.Request.Context(), c.Param("appId"), c.Param("caseId"), c.Param("blockId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CaseHandler) RunCase(c *gin.Context) {
	req, ok := bindRun(c)
	if !ok {
		return
	}
	er, err := h.runs.RunCase(c.Request.Context(), c.Param("appId"), c.Param("caseId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, er)
}

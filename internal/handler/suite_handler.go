package handler

import (
	"net/http"

	"github.com/parthasarathygopu/orca/internal/service"

	"github.com/gin-gonic/gin"
)

// SuiteHandler 测试套件HTTP处理器
type SuiteHandler struct {
	service service.SuiteService
	runs    service.RunService
}

// NewSuiteHandler 创建处理器
func NewSuiteHandler(suites service.SuiteService, runs service.RunService) *SuiteHandler {
	return &SuiteHandler{service: suites, runs: runs}
}

// RegisterRoutes 注册路由
func (h *SuiteHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/apps/:appId/suites")
	{
		api.GET("", h.ListSuites)
		api.POST("", h.CreateSuite)
		api.GET("/:suiteId", h.GetSuiteInfo)
		api.DELETE("/:suiteId", h.DeleteSuite)

		api.POST("/:suiteId/blocks", h.InsertBlock)
		api.POST("/:suiteId/blocks/batch", h.BatchInsertBlocks)
		api.PUT("/:suiteId/blocks/:blockId/reorder", h.MoveBlock)
		api.DELETE("/:suiteId/blocks/:blockId", h.DeleteBlock)

		api.POST("/:suiteId/run", h.RunSuite)
	}
}

func (h *SuiteHandler) ListSuites(c *gin.Context) {
	suites, err := h.service.ListSuites(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suites)
}

func (h *SuiteHandler) CreateSuite(c *gin.Context) {
	var req service.CreateSuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	suite, err := h.service.CreateSuite(c.Request.Context(), c.Param("appId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, suite)
}

func (h *SuiteHandler) GetSuiteInfo(c *gin.Context) {
	suite, err := h.service.GetSuiteInfo(c.Request.Context(), c.Param("appId"), c.Param("suiteId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suite)
}

func (h *SuiteHandler) DeleteSuite(c *gin.Context) {
	if err := h.service.DeleteSuite(c.Request.Context(), c.Param("appId"), c.Param("suiteId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SuiteHandler) InsertBlock(c *gin.Context) {
	var req service.SuiteBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	block, err := h.service.InsertBlock(c.Request.Context(), c.Param("appId"), c.Param("suiteId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *SuiteHandler) BatchInsertBlocks(c *gin.Context) {
	var reqs []service.SuiteBlockRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		badRequest(c, err)
		return
	}
	blocks, err := h.service.BatchInsertBlocks(c.Request.Context(), c.Param("appId"), c.Param("suiteId"), reqs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, blocks)
}

func (h *SuiteHandler) MoveBlock(c *gin.Context) {
	var req service.MoveBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	block, err := h.service.MoveBlock(c.Request.Context(), c.Param("appId"), c.Param("suiteId"), c.Param("blockId"), req.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (h *SuiteHandler) DeleteBlock(c *gin.Context) {
	if err := h.service.DeleteBlock(c.Request.Context(), c.Param("appId"), c.Param("suiteId"), c.Param("blockId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SuiteHandler) RunSuite(c *gin.Context) {
	req, ok := bindRun(c)
	if !ok {
		return
	}
	er, err := h.runs.RunSuite(c.Request.Context(), c.Param("appId"), c.Param("suiteId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, er)
}

// bindRun accepts an empty body as a default trigger.
func bindRun(c *gin.Context) (*service.RunRequest, bool) {
	var req service.RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return nil, false
		}
	}
	if c.Query("dryRun") == "true" {
		req.DryRun = true
	}
	return &req, true
}

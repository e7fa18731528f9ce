package handler

import (
	"net/http"

	"github.com/parthasarathygopu/orca/internal/service"

	"github.com/gin-gonic/gin"
)

// ActionGroupHandler 动作组HTTP处理器
type ActionGroupHandler struct {
	service service.ActionGroupService
}

// NewActionGroupHandler 创建处理器
func NewActionGroupHandler(groups service.ActionGroupService) *ActionGroupHandler {
	return &ActionGroupHandler{service: groups}
}

// RegisterRoutes 注册路由
func (h *ActionGroupHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/apps/:appId/action-groups")
	{
		api.GET("", h.ListActionGroups)
		api.POST("", h.CreateActionGroup)
		api.GET("/:groupId", h.GetActionGroup)
		api.DELETE("/:groupId", h.DeleteActionGroup)

		api.POST("/:groupId/actions", h.InsertAction)
		api.PUT("/:groupId/actions/:actionId/reorder", h.MoveAction)
		api.DELETE("/:groupId/actions/:actionId", h.DeleteAction)
	}
}

func (h *ActionGroupHandler) ListActionGroups(c *gin.Context) {
	groups, err := h.service.ListActionGroups(c.Request.Context(), c.Param("appId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *ActionGroupHandler) CreateActionGroup(c *gin.Context) {
	var req service.CreateActionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := h.service.CreateActionGroup(c.Request.Context(), c.Param("appId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *ActionGroupHandler) GetActionGroup(c *gin.Context) {
	group, err := h.service.GetActionGroup(c.Request.Context(), c.Param("appId"), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *ActionGroupHandler) DeleteActionGroup(c *gin.Context) {
	if err := h.service.DeleteActionGroup(c.Request.Context(), c.Param("appId"), c.Param("groupId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ActionGroupHandler) InsertAction(c *gin.Context) {
	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	action, err := h.service.InsertAction(c.Request.Context(), c.Param("appId"), c.Param("groupId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, action)
}

func (h *ActionGroupHandler) MoveAction(c *gin.Context) {
	var req service.MoveBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	action, err := h.service.MoveAction(c.Request.Context(), c.Param("appId"), c.Param("groupId"), c.Param("actionId"), req.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

func (h *ActionGroupHandler) DeleteAction(c *gin.Context) {
	if err := h.service.DeleteAction(c.Request.Context(), c.Param("appId"), c.Param("groupId"), c.Param("actionId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

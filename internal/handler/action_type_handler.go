// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"momcare-go/internal/service"
	"momcare-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ActionTypeHandler 负责处理行为类型注册表的管理 API 请求。
type ActionTypeHandler struct {
	actionTypeService service.ActionTypeService
}

// NewActionTypeHandler 创建一个新的 ActionTypeHandler 实例。
func NewActionTypeHandler(actionTypeService service.ActionTypeService) *ActionTypeHandler {
	return &ActionTypeHandler{actionTypeService: actionTypeService}
}

// ListActionTypes 返回所有行为类型。
func (h *ActionTypeHandler) ListActionTypes(c *gin.Context) {
	actionTypes, err := h.actionTypeService.ListActionTypes()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, actionTypes)
}

// CreateActionTypeRequest 定义了创建行为类型 API 的请求体结构。
type CreateActionTypeRequest struct {
	Name  string `json:"name" binding:"required"`
	Label string `json:"label" binding:"required"`
	Order int    `json:"order"`
}

// CreateActionType 处理创建自定义行为类型的请求。
func (h *ActionTypeHandler) CreateActionType(c *gin.Context) {
	var req CreateActionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：名称与标签不能为空")
		return
	}
	actionType, err := h.actionTypeService.CreateActionType(req.Name, req.Label, req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Infof("Action type '%s' created", actionType.Name)
	respondOK(c, actionType)
}

// UpdateActionTypeRequest 定义了更新行为类型 API 的请求体结构。名称不可变更。
type UpdateActionTypeRequest struct {
	Label string `json:"label" binding:"required"`
	Order int    `json:"order"`
}

// UpdateActionType 处理更新自定义行为类型的请求。
func (h *ActionTypeHandler) UpdateActionType(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateActionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：标签不能为空")
		return
	}
	actionType, err := h.actionTypeService.UpdateActionType(id, req.Label, req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, actionType)
}

// DeleteActionType 处理删除自定义行为类型的请求。
func (h *ActionTypeHandler) DeleteActionType(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.actionTypeService.DeleteActionType(id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "行为类型已删除")
}

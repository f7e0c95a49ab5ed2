// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"strconv"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/service"
	"momcare-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// MissionHandler 负责处理任务、文件夹、分类与子任务的管理 API 请求。
type MissionHandler struct {
	missionService service.MissionService
}

// NewMissionHandler 创建一个新的 MissionHandler 实例。
func NewMissionHandler(missionService service.MissionService) *MissionHandler {
	return &MissionHandler{missionService: missionService}
}

// parseUintParam 解析路径中的数字参数。
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondBadRequest(c, "无效的路径参数: "+name)
		return 0, false
	}
	return uint(value), true
}

// MissionRequest 定义了创建/更新任务 API 的请求体结构。
// 日期使用 "2006-01-02" 格式的字符串，空串表示不限。
type MissionRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	HeaderImageURL string `json:"headerImageUrl"`
	GiftImageURL   string `json:"giftImageUrl"`
	Visibility     string `json:"visibility" binding:"required"`
	HospitalID     *uint  `json:"hospitalId"`
	CategoryID     *uint  `json:"categoryId"`
	ParentID       *uint  `json:"parentId"`
	FolderID       *uint  `json:"folderId"`
	IsActive       bool   `json:"isActive"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

// toInput 把请求体转换为 service 层输入。
func (r *MissionRequest) toInput() (service.MissionInput, error) {
	input := service.MissionInput{
		Title:          r.Title,
		Description:    r.Description,
		HeaderImageURL: r.HeaderImageURL,
		GiftImageURL:   r.GiftImageURL,
		Visibility:     r.Visibility,
		HospitalID:     r.HospitalID,
		CategoryID:     r.CategoryID,
		ParentID:       r.ParentID,
		FolderID:       r.FolderID,
		IsActive:       r.IsActive,
	}
	var err error
	input.StartDate, err = parseDate(r.StartDate)
	if err != nil {
		return input, err
	}
	input.EndDate, err = parseDate(r.EndDate)
	return input, err
}

// parseDate 解析 "2006-01-02" 格式的日期，空串返回 nil。
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListMissions 返回任务树与文件夹列表。
func (h *MissionHandler) ListMissions(c *gin.Context) {
	resp, err := h.missionService.ListMissions()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// GetMission 返回单个任务详情。
func (h *MissionHandler) GetMission(c *gin.Context) {
	id, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	mission, err := h.missionService.GetMission(id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, mission)
}

// CreateMission 处理创建任务请求。
func (h *MissionHandler) CreateMission(c *gin.Context) {
	var req MissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateMission: Invalid request payload, error: %v", err)
		respondBadRequest(c, "无效的请求负载")
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondBadRequest(c, "无效的日期格式, 应为 yyyy-MM-dd")
		return
	}

	mission, err := h.missionService.CreateMission(input)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Infof("Mission '%s' created, id: %d", mission.Title, mission.ID)
	respondOK(c, mission)
}

// UpdateMission 处理更新任务请求。
func (h *MissionHandler) UpdateMission(c *gin.Context) {
	id, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	var req MissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载")
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondBadRequest(c, "无效的日期格式, 应为 yyyy-MM-dd")
		return
	}

	mission, err := h.missionService.UpdateMission(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, mission)
}

// DeleteMission 处理删除任务请求，级联删除子任务与提交。
func (h *MissionHandler) DeleteMission(c *gin.Context) {
	id, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	if err := h.missionService.DeleteMission(id); err != nil {
		respondError(c, err)
		return
	}
	log.Infof("Mission %d deleted", id)
	respondMessage(c, "任务已删除")
}

// ReorderMissionsRequest 定义了任务批量重排序 API 的请求体结构。
type ReorderMissionsRequest struct {
	Orders []model.MissionOrder `json:"orders" binding:"required"`
}

// ReorderMissions 处理任务批量重排序请求，整批原子生效。
func (h *MissionHandler) ReorderMissions(c *gin.Context) {
	var req ReorderMissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载")
		return
	}
	if err := h.missionService.ReorderMissions(req.Orders); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "排序已更新")
}

// FolderRequest 定义了创建/更新文件夹 API 的请求体结构。
type FolderRequest struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	IsCollapsed bool   `json:"isCollapsed"`
}

// ListFolders 返回所有文件夹。
func (h *MissionHandler) ListFolders(c *gin.Context) {
	folders, err := h.missionService.ListFolders()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, folders)
}

// CreateFolder 处理创建文件夹请求。
func (h *MissionHandler) CreateFolder(c *gin.Context) {
	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：文件夹名称不能为空")
		return
	}
	folder, err := h.missionService.CreateFolder(req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, folder)
}

// UpdateFolder 处理更新文件夹请求。
func (h *MissionHandler) UpdateFolder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：文件夹名称不能为空")
		return
	}
	folder, err := h.missionService.UpdateFolder(id, req.Name, req.Color, req.IsCollapsed)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, folder)
}

// DeleteFolder 处理删除文件夹请求，其中的任务回到"未分类"。
func (h *MissionHandler) DeleteFolder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.missionService.DeleteFolder(id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "文件夹已删除")
}

// ReorderIDsRequest 定义了按 ID 顺序重排的请求体结构，位置即顺序。
type ReorderIDsRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// ReorderFolders 处理文件夹批量重排序请求。
func (h *MissionHandler) ReorderFolders(c *gin.Context) {
	var req ReorderIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载")
		return
	}
	if err := h.missionService.ReorderFolders(req.IDs); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "排序已更新")
}

// ListSubMissions 返回任务下的所有子任务。
func (h *MissionHandler) ListSubMissions(c *gin.Context) {
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	subMissions, err := h.missionService.ListSubMissions(missionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, subMissions)
}

// CreateSubMission 处理创建子任务请求。
func (h *MissionHandler) CreateSubMission(c *gin.Context) {
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	var subMission model.SubMission
	if err := c.ShouldBindJSON(&subMission); err != nil {
		respondBadRequest(c, "无效的请求负载")
		return
	}
	created, err := h.missionService.CreateSubMission(missionID, &subMission)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, created)
}

// UpdateSubMission 处理更新子任务请求。
func (h *MissionHandler) UpdateSubMission(c *gin.Context) {
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var subMission model.SubMission
	if err := c.ShouldBindJSON(&subMission); err != nil {
		respondBadRequest(c, "无效的请求负载")
		return
	}
	updated, err := h.missionService.UpdateSubMission(missionID, id, &subMission)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, updated)
}

// DeleteSubMission 处理删除子任务请求。
func (h *MissionHandler) DeleteSubMission(c *gin.Context) {
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.missionService.DeleteSubMission(missionID, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "子任务已删除")
}

// ReorderSubMissions 处理子任务批量重排序请求。
func (h *MissionHandler) ReorderSubMissions(c *gin.Context) {
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	var req ReorderIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载")
		return
	}
	if err := h.missionService.ReorderSubMissions(missionID, req.IDs); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "排序已更新")
}

// ToggleSubMissionActive 处理子任务启用状态切换请求。
func (h *MissionHandler) ToggleSubMissionActive(c *gin.Context) {
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	subMission, err := h.missionService.ToggleSubMissionActive(missionID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, subMission)
}

// CategoryRequest 定义了创建/更新分类 API 的请求体结构。
type CategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Order int    `json:"order"`
}

// ListCategories 返回所有分类。
func (h *MissionHandler) ListCategories(c *gin.Context) {
	categories, err := h.missionService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, categories)
}

// CreateCategory 处理创建分类请求。
func (h *MissionHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：分类名称不能为空")
		return
	}
	category, err := h.missionService.CreateCategory(req.Name, req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}

// UpdateCategory 处理更新分类请求。
func (h *MissionHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：分类名称不能为空")
		return
	}
	category, err := h.missionService.UpdateCategory(id, req.Name, req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, category)
}

// DeleteCategory 处理删除分类请求。
func (h *MissionHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.missionService.DeleteCategory(id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "分类已删除")
}

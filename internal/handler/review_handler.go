// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"momcare-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler 负责处理审核看板的聚合查询 API 请求。
// 数据范围由 service 层根据调用者身份裁决，这里只透传 hospitalId 参数
// （医院 ID 或 all）。
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler 创建一个新的 ReviewHandler 实例。
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Stats 返回范围内每个任务（主题）的提交状态统计。
func (h *ReviewHandler) Stats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.reviewService.Stats(c.Request.Context(), user, c.Query("hospitalId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// ThemeMissions 返回某个任务下的子任务统计明细。
func (h *ReviewHandler) ThemeMissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	missionID, ok := parseUintParam(c, "missionId")
	if !ok {
		return
	}
	stats, err := h.reviewService.ThemeMissions(c.Request.Context(), user, c.Query("hospitalId"), missionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// Submissions 返回某个子任务下的提交列表，默认只看待审核的。
func (h *ReviewHandler) Submissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	subMissionID, ok := parseUintParam(c, "subMissionId")
	if !ok {
		return
	}
	submissions, err := h.reviewService.Submissions(
		c.Request.Context(), user, c.Query("hospitalId"), subMissionID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, submissions)
}

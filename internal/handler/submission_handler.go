// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"momcare-go/internal/model"
	"momcare-go/internal/service"
	"momcare-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SubmissionHandler 负责处理用户提交与管理员审核的 API 请求。
type SubmissionHandler struct {
	submissionService service.SubmissionService
}

// NewSubmissionHandler 创建一个新的 SubmissionHandler 实例。
func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// CreateSubmissionRequest 定义了创建提交 API 的请求体结构。
type CreateSubmissionRequest struct {
	SubMissionID uint                   `json:"subMissionId" binding:"required"`
	Slots        []model.SubmissionSlot `json:"slots" binding:"required"`
}

// CreateSubmission 处理用户创建提交的请求。
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateSubmission: Invalid request payload, error: %v", err)
		respondBadRequest(c, "无效的请求负载")
		return
	}

	submission, err := h.submissionService.CreateSubmission(user.ID, req.SubMissionID, req.Slots)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Infof("User %d submitted to sub-mission %d, submission id: %d", user.ID, req.SubMissionID, submission.ID)
	respondOK(c, submission)
}

// ListMySubmissions 返回当前用户的所有提交。
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	submissions, err := h.submissionService.ListMySubmissions(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, submissions)
}

// ReviewRequest 定义了审核 API 的请求体结构。
type ReviewRequest struct {
	ReviewerNote string `json:"reviewerNote"`
}

// ApproveSubmission 处理审核通过请求。
func (h *SubmissionHandler) ApproveSubmission(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 通过时审核意见可省略，空请求体也接受
		req.ReviewerNote = ""
	}

	submission, err := h.submissionService.ApproveSubmission(id, req.ReviewerNote)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Infof("Submission %d approved", id)
	respondOK(c, submission)
}

// RejectSubmission 处理驳回请求。驳回意见必填。
func (h *SubmissionHandler) RejectSubmission(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "无效的请求负载：驳回时必须填写审核意见")
		return
	}

	submission, err := h.submissionService.RejectSubmission(id, req.ReviewerNote)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Infof("Submission %d rejected", id)
	respondOK(c, submission)
}

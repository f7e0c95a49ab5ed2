// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/log"

	"gorm.io/gorm"
)

// SubmissionService 接口定义了提交的创建与审核操作。
type SubmissionService interface {
	// CreateSubmission 为指定子任务创建一次提交。
	// 服务端强制执行时间窗口与 level 闸门，不信任前端的展示状态。
	CreateSubmission(userID, subMissionID uint, slots []model.SubmissionSlot) (*model.Submission, error)
	ListMySubmissions(userID uint) ([]model.Submission, error)
	GetSubmission(id uint) (*model.Submission, error)
	// ApproveSubmission 将 submitted 状态的提交迁移为 approved。
	// 已被其他审核员处理过的提交返回 ErrConflict。
	ApproveSubmission(id uint, reviewerNote string) (*model.Submission, error)
	// RejectSubmission 将 submitted 状态的提交迁移为 rejected。驳回意见必填。
	RejectSubmission(id uint, reviewerNote string) (*model.Submission, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	subMissionRepo repository.SubMissionRepository
	missionRepo    repository.MissionRepository
	reviewCache    repository.ReviewCacheRepository
	// now 可注入以便测试窗口与闸门逻辑。
	now func() time.Time
}

// NewSubmissionService 创建一个新的 SubmissionService 实例。
// reviewCache 允许为 nil（此时跳过缓存失效），便于不依赖 Redis 的测试。
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	subMissionRepo repository.SubMissionRepository,
	missionRepo repository.MissionRepository,
	reviewCache repository.ReviewCacheRepository,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		subMissionRepo: subMissionRepo,
		missionRepo:    missionRepo,
		reviewCache:    reviewCache,
		now:            time.Now,
	}
}

// CreateSubmission 校验并落库一次提交。
func (s *submissionService) CreateSubmission(userID, subMissionID uint, slots []model.SubmissionSlot) (*model.Submission, error) {
	subMission, err := s.subMissionRepo.FindByID(subMissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("子任务不存在: %d", subMissionID)
		}
		return nil, err
	}
	if !subMission.IsActive {
		return nil, forbiddenf("子任务未启用: %d", subMissionID)
	}

	mission, err := s.missionRepo.FindByID(subMission.MissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("任务不存在: %d", subMission.MissionID)
		}
		return nil, err
	}
	if !mission.IsActive {
		return nil, forbiddenf("任务未启用: %d", mission.ID)
	}

	// 窗口在任务和子任务两级分别生效
	now := s.now()
	if status := mission.WindowStatus(now); status != model.WindowOpen {
		return nil, forbiddenf("任务当前不在开放窗口内: %s", status)
	}
	if status := subMission.WindowStatus(now); status != model.WindowOpen {
		return nil, forbiddenf("子任务当前不在开放窗口内: %s", status)
	}

	if err := s.checkLevelGate(userID, subMission); err != nil {
		return nil, err
	}
	if err := validateSlots(subMission, slots); err != nil {
		return nil, err
	}

	submission := &model.Submission{
		SubMissionID: subMissionID,
		UserID:       userID,
		Slots:        slots,
		Status:       model.SubmissionStatusSubmitted,
	}
	if err := s.submissionRepo.Create(submission); err != nil {
		return nil, err
	}
	s.invalidateReviewCache()
	return submission, nil
}

// checkLevelGate 执行顺序闸门：level 非零时，
// 必须先完成（有已通过的提交）同一任务下所有更低 level 的子任务。
func (s *submissionService) checkLevelGate(userID uint, subMission *model.SubMission) error {
	if subMission.Level == 0 {
		return nil
	}
	siblings, err := s.subMissionRepo.FindByMissionID(subMission.MissionID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if !sibling.IsActive || sibling.Level >= subMission.Level {
			continue
		}
		approved, err := s.submissionRepo.HasApproved(userID, sibling.ID)
		if err != nil {
			return err
		}
		if !approved {
			return forbiddenf("需要先完成前置子任务: %s", sibling.Title)
		}
	}
	return nil
}

// validateSlots 校验提交槽位与子任务声明的类型一一对应。
func validateSlots(subMission *model.SubMission, slots []model.SubmissionSlot) error {
	if len(slots) != len(subMission.Types) {
		return validationf("提交槽位数量不匹配: 期望 %d 个, 实际 %d 个", len(subMission.Types), len(slots))
	}
	seen := make(map[int]bool, len(slots))
	for _, slot := range slots {
		if slot.SlotIndex < 0 || slot.SlotIndex >= len(subMission.Types) {
			return validationf("提交槽位下标越界: %d", slot.SlotIndex)
		}
		if seen[slot.SlotIndex] {
			return validationf("提交槽位重复: %d", slot.SlotIndex)
		}
		seen[slot.SlotIndex] = true
		if slot.Type != subMission.Types[slot.SlotIndex] {
			return validationf("槽位 %d 类型不匹配: 期望 %s, 实际 %s",
				slot.SlotIndex, subMission.Types[slot.SlotIndex], slot.Type)
		}
		if slot.Value == "" {
			return validationf("槽位 %d 内容不能为空", slot.SlotIndex)
		}
	}
	return nil
}

// ListMySubmissions 返回用户自己的所有提交。
func (s *submissionService) ListMySubmissions(userID uint) ([]model.Submission, error) {
	return s.submissionRepo.FindByUserID(userID)
}

// GetSubmission 返回单条提交。
func (s *submissionService) GetSubmission(id uint) (*model.Submission, error) {
	submission, err := s.submissionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("提交不存在: %d", id)
		}
		return nil, err
	}
	return submission, nil
}

// ApproveSubmission 审核通过一条提交。
func (s *submissionService) ApproveSubmission(id uint, reviewerNote string) (*model.Submission, error) {
	return s.review(id, model.SubmissionStatusApproved, reviewerNote)
}

// RejectSubmission 驳回一条提交。驳回意见必填，用户需要据此修改后重新提交。
func (s *submissionService) RejectSubmission(id uint, reviewerNote string) (*model.Submission, error) {
	if reviewerNote == "" {
		return nil, validationf("驳回时必须填写审核意见")
	}
	return s.review(id, model.SubmissionStatusRejected, reviewerNote)
}

// review 以比较并交换的方式执行状态迁移，防止并发的重复审核。
func (s *submissionService) review(id uint, toStatus, reviewerNote string) (*model.Submission, error) {
	submission, err := s.GetSubmission(id)
	if err != nil {
		return nil, err
	}
	if submission.Status != model.SubmissionStatusSubmitted {
		return nil, conflictf("提交已被审核过, 当前状态: %s", submission.Status)
	}

	updated, err := s.submissionRepo.UpdateStatusCAS(id, model.SubmissionStatusSubmitted, toStatus, reviewerNote, s.now())
	if err != nil {
		return nil, err
	}
	// 读取与更新之间被其他审核员抢先处理
	if !updated {
		return nil, conflictf("提交已被其他审核员处理: %d", id)
	}

	s.invalidateReviewCache()
	return s.GetSubmission(id)
}

// invalidateReviewCache 使审核看板缓存失效。失败只记录日志，不影响主流程。
func (s *submissionService) invalidateReviewCache() {
	if s.reviewCache == nil {
		return
	}
	if err := s.reviewCache.InvalidateAll(context.Background()); err != nil {
		log.Warnf("审核看板缓存失效失败: %v", err)
	}
}

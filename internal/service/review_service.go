// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/log"

	"gorm.io/gorm"
)

// ReviewScopeAll 是审核看板"全部医院"的范围参数，仅 superadmin 可用。
const ReviewScopeAll = "all"

// reviewScope 是解析后的审核数据范围。
// hospitalID 为 nil 表示不限医院（superadmin 的 all 视角）。
type reviewScope struct {
	hospitalID *uint
}

func (s reviewScope) cacheKey() string {
	if s.hospitalID == nil {
		return ReviewScopeAll
	}
	return fmt.Sprintf("hospital:%d", *s.hospitalID)
}

// ThemeStats 是审核看板的顶层聚合：一个任务（主题）下的提交状态统计。
type ThemeStats struct {
	MissionID uint               `json:"missionId"`
	Title     string             `json:"title"`
	Counts    model.StatusCounts `json:"counts"`
	Total     int64              `json:"total"`
}

// SubMissionStats 是单个子任务的提交状态统计。
type SubMissionStats struct {
	SubMissionID uint               `json:"subMissionId"`
	Title        string             `json:"title"`
	Counts       model.StatusCounts `json:"counts"`
	Total        int64              `json:"total"`
}

// ReviewService 接口定义了审核看板的聚合查询操作。
// 所有操作都以调用者为准解析数据范围：非 superadmin 的请求无论传什么范围参数，
// 都被钉在自己所属的医院上。
type ReviewService interface {
	// Stats 返回范围内每个任务（主题）的提交状态统计。结果带 Redis 缓存。
	Stats(ctx context.Context, caller *model.User, requestedScope string) ([]ThemeStats, error)
	// ThemeMissions 返回范围内某个任务下的子任务统计明细。
	ThemeMissions(ctx context.Context, caller *model.User, requestedScope string, missionID uint) ([]SubMissionStats, error)
	// Submissions 返回某个子任务下待审核（或指定状态）的提交列表。
	Submissions(ctx context.Context, caller *model.User, requestedScope string, subMissionID uint, status string) ([]model.Submission, error)
}

type reviewService struct {
	missionRepo    repository.MissionRepository
	subMissionRepo repository.SubMissionRepository
	submissionRepo repository.SubmissionRepository
	cache          repository.ReviewCacheRepository
	cacheTTL       time.Duration
}

// NewReviewService 创建一个新的 ReviewService 实例。
// cache 允许为 nil（此时每次都直接聚合），便于不依赖 Redis 的测试。
func NewReviewService(
	missionRepo repository.MissionRepository,
	subMissionRepo repository.SubMissionRepository,
	submissionRepo repository.SubmissionRepository,
	cache repository.ReviewCacheRepository,
	cacheTTL time.Duration,
) ReviewService {
	return &reviewService{
		missionRepo:    missionRepo,
		subMissionRepo: subMissionRepo,
		submissionRepo: submissionRepo,
		cache:          cache,
		cacheTTL:       cacheTTL,
	}
}

// resolveScope 把调用者身份与请求的范围参数解析为生效范围。
// superadmin 可以请求 all 或任意医院；hospital_admin 始终被钉在自己的医院，
// 请求 all 时静默收窄而不是报错。
func resolveScope(caller *model.User, requestedScope string) (reviewScope, error) {
	if caller == nil {
		return reviewScope{}, forbiddenf("缺少调用者身份")
	}
	if caller.IsSuperAdmin() {
		if requestedScope == "" || requestedScope == ReviewScopeAll {
			return reviewScope{}, nil
		}
		var hospitalID uint
		if _, err := fmt.Sscanf(requestedScope, "%d", &hospitalID); err != nil || hospitalID == 0 {
			return reviewScope{}, validationf("无效的范围参数: %s", requestedScope)
		}
		return reviewScope{hospitalID: &hospitalID}, nil
	}
	if caller.MemberType != model.MemberTypeHospitalAdmin {
		return reviewScope{}, forbiddenf("当前用户无审核权限")
	}
	if caller.HospitalID == nil {
		return reviewScope{}, forbiddenf("医院管理员未关联任何医院")
	}
	return reviewScope{hospitalID: caller.HospitalID}, nil
}

// missionsInScope 返回范围内的顶层任务。
// 医院范围包括该医院专属的任务与所有 public 任务。
func (s *reviewService) missionsInScope(scope reviewScope) ([]model.Mission, error) {
	missions, err := s.missionRepo.FindTopLevel()
	if err != nil {
		return nil, err
	}
	if scope.hospitalID == nil {
		return missions, nil
	}
	filtered := make([]model.Mission, 0, len(missions))
	for _, m := range missions {
		switch m.Visibility {
		case model.VisibilityPublic:
			filtered = append(filtered, m)
		case model.VisibilityHospital:
			if m.HospitalID != nil && *m.HospitalID == *scope.hospitalID {
				filtered = append(filtered, m)
			}
		}
	}
	return filtered, nil
}

// Stats 返回范围内每个任务的提交状态统计。
func (s *reviewService) Stats(ctx context.Context, caller *model.User, requestedScope string) ([]ThemeStats, error) {
	scope, err := resolveScope(caller, requestedScope)
	if err != nil {
		return nil, err
	}

	if cached := s.readCache(ctx, scope); cached != nil {
		return cached, nil
	}

	missions, err := s.missionsInScope(scope)
	if err != nil {
		return nil, err
	}

	stats := make([]ThemeStats, 0, len(missions))
	for _, m := range missions {
		subMissions, err := s.subMissionsInTree(m.ID)
		if err != nil {
			return nil, err
		}
		subMissionIDs := make([]uint, 0, len(subMissions))
		for _, sm := range subMissions {
			subMissionIDs = append(subMissionIDs, sm.ID)
		}
		counts, err := s.submissionRepo.CountByStatus(subMissionIDs)
		if err != nil {
			return nil, err
		}
		stats = append(stats, ThemeStats{
			MissionID: m.ID,
			Title:     m.Title,
			Counts:    counts,
			Total:     counts.Total(),
		})
	}

	s.writeCache(ctx, scope, stats)
	return stats, nil
}

// ThemeMissions 返回范围内某个任务下的子任务统计明细。
func (s *reviewService) ThemeMissions(ctx context.Context, caller *model.User, requestedScope string, missionID uint) ([]SubMissionStats, error) {
	scope, err := resolveScope(caller, requestedScope)
	if err != nil {
		return nil, err
	}
	if err := s.checkMissionInScope(scope, missionID); err != nil {
		return nil, err
	}

	subMissions, err := s.subMissionsInTree(missionID)
	if err != nil {
		return nil, err
	}
	subMissionIDs := make([]uint, 0, len(subMissions))
	for _, sm := range subMissions {
		subMissionIDs = append(subMissionIDs, sm.ID)
	}
	grouped, err := s.submissionRepo.CountByStatusGrouped(subMissionIDs)
	if err != nil {
		return nil, err
	}

	stats := make([]SubMissionStats, 0, len(subMissions))
	for _, sm := range subMissions {
		counts := grouped[sm.ID]
		stats = append(stats, SubMissionStats{
			SubMissionID: sm.ID,
			Title:        sm.Title,
			Counts:       counts,
			Total:        counts.Total(),
		})
	}
	return stats, nil
}

// Submissions 返回某个子任务下的提交列表，status 非空时按状态过滤。
func (s *reviewService) Submissions(ctx context.Context, caller *model.User, requestedScope string, subMissionID uint, status string) ([]model.Submission, error) {
	scope, err := resolveScope(caller, requestedScope)
	if err != nil {
		return nil, err
	}
	if status != "" {
		switch status {
		case model.SubmissionStatusSubmitted, model.SubmissionStatusApproved, model.SubmissionStatusRejected:
		default:
			return nil, validationf("无效的提交状态: %s", status)
		}
	}

	subMission, err := s.subMissionRepo.FindByID(subMissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("子任务不存在: %d", subMissionID)
		}
		return nil, err
	}
	if err := s.checkMissionInScope(scope, subMission.MissionID); err != nil {
		return nil, err
	}

	return s.submissionRepo.FindBySubMissionIDs([]uint{subMissionID}, status)
}

// subMissionsInTree 收集任务自身与所有后代任务下的子任务项。
// 统计口径是整棵任务树：挂在子任务（子主题）下的提交要汇总到顶层任务上。
func (s *reviewService) subMissionsInTree(missionID uint) ([]model.SubMission, error) {
	missionIDs := []uint{missionID}
	frontier := []uint{missionID}
	for len(frontier) > 0 {
		var next []uint
		for _, id := range frontier {
			children, err := s.missionRepo.FindByParentID(id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				next = append(next, child.ID)
			}
		}
		missionIDs = append(missionIDs, next...)
		frontier = next
	}

	var all []model.SubMission
	for _, id := range missionIDs {
		subMissions, err := s.subMissionRepo.FindByMissionID(id)
		if err != nil {
			return nil, err
		}
		all = append(all, subMissions...)
	}
	return all, nil
}

// checkMissionInScope 校验任务对当前范围可见。
// 范围外的任务以 not found 处理，不泄露其存在性。
func (s *reviewService) checkMissionInScope(scope reviewScope, missionID uint) error {
	mission, err := s.missionRepo.FindByID(missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("任务不存在: %d", missionID)
		}
		return err
	}
	if scope.hospitalID == nil {
		return nil
	}
	switch mission.Visibility {
	case model.VisibilityPublic:
		return nil
	case model.VisibilityHospital:
		if mission.HospitalID != nil && *mission.HospitalID == *scope.hospitalID {
			return nil
		}
	}
	return notFoundf("任务不存在: %d", missionID)
}

// readCache 尝试读取缓存的聚合结果，任何失败都退化为直接聚合。
func (s *reviewService) readCache(ctx context.Context, scope reviewScope) []ThemeStats {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.GetStats(ctx, scope.cacheKey())
	if err != nil {
		log.Warnf("读取审核看板缓存失败: %v", err)
		return nil
	}
	if data == nil {
		return nil
	}
	var stats []ThemeStats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.Warnf("解析审核看板缓存失败: %v", err)
		return nil
	}
	return stats
}

// writeCache 回写聚合结果。失败只记录日志。
func (s *reviewService) writeCache(ctx context.Context, scope reviewScope, stats []ThemeStats) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		log.Warnf("序列化审核看板缓存失败: %v", err)
		return
	}
	if err := s.cache.SetStats(ctx, scope.cacheKey(), data, s.cacheTTL); err != nil {
		log.Warnf("写入审核看板缓存失败: %v", err)
	}
}

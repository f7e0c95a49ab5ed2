// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"time"

	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// SubmissionRepository 接口定义了提交记录的数据操作方法。
type SubmissionRepository interface {
	Create(submission *model.Submission) error
	FindByID(id uint) (*model.Submission, error)
	FindByUserID(userID uint) ([]model.Submission, error)
	FindBySubMissionIDs(subMissionIDs []uint, status string) ([]model.Submission, error)
	// UpdateStatusCAS 仅当提交仍处于 fromStatus 时才迁移状态（比较并交换）。
	// 返回值指示是否真的发生了更新；并发的第二次审核会得到 false。
	UpdateStatusCAS(id uint, fromStatus, toStatus, reviewerNote string, reviewedAt time.Time) (bool, error)
	// CountByStatus 统计一组子任务下按状态分组的提交数量。
	CountByStatus(subMissionIDs []uint) (model.StatusCounts, error)
	// CountByStatusGrouped 按子任务分别统计各状态的提交数量。
	CountByStatusGrouped(subMissionIDs []uint) (map[uint]model.StatusCounts, error)
	// HasApproved 判断用户对指定子任务是否存在已通过的提交。
	HasApproved(userID, subMissionID uint) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建一个新的 SubmissionRepository 实例。
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create 在数据库中插入一条新的提交记录。
func (r *submissionRepository) Create(submission *model.Submission) error {
	return r.db.Create(submission).Error
}

// FindByID 根据给定的 ID 查找一条提交记录。
func (r *submissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByUserID 检索指定用户的所有提交记录。
func (r *submissionRepository) FindByUserID(userID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&submissions).Error
	return submissions, err
}

// FindBySubMissionIDs 检索一组子任务下的提交记录，status 非空时附加状态过滤。
func (r *submissionRepository) FindBySubMissionIDs(subMissionIDs []uint, status string) ([]model.Submission, error) {
	var submissions []model.Submission
	if len(subMissionIDs) == 0 {
		return submissions, nil
	}
	db := r.db.Where("sub_mission_id IN ?", subMissionIDs)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at asc").Find(&submissions).Error
	return submissions, err
}

// UpdateStatusCAS 以状态前置条件执行审核状态迁移。
func (r *submissionRepository) UpdateStatusCAS(id uint, fromStatus, toStatus, reviewerNote string, reviewedAt time.Time) (bool, error) {
	result := r.db.Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":        toStatus,
			"reviewer_note": reviewerNote,
			"reviewed_at":   reviewedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// statusCountRow 承接按状态分组的统计查询结果。
type statusCountRow struct {
	SubMissionID uint
	Status       string
	Cnt          int64
}

// CountByStatus 统计一组子任务下按状态分组的提交总量。
// 没有任何提交时返回全零，而不是错误。
func (r *submissionRepository) CountByStatus(subMissionIDs []uint) (model.StatusCounts, error) {
	var counts model.StatusCounts
	if len(subMissionIDs) == 0 {
		return counts, nil
	}

	var rows []statusCountRow
	err := r.db.Model(&model.Submission{}).
		Select("status, count(*) as cnt").
		Where("sub_mission_id IN ?", subMissionIDs).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}

	for _, row := range rows {
		switch row.Status {
		case model.SubmissionStatusSubmitted:
			counts.Submitted = row.Cnt
		case model.SubmissionStatusApproved:
			counts.Approved = row.Cnt
		case model.SubmissionStatusRejected:
			counts.Rejected = row.Cnt
		}
	}
	return counts, nil
}

// CountByStatusGrouped 按子任务分别统计各状态的提交数量。
func (r *submissionRepository) CountByStatusGrouped(subMissionIDs []uint) (map[uint]model.StatusCounts, error) {
	result := make(map[uint]model.StatusCounts)
	if len(subMissionIDs) == 0 {
		return result, nil
	}

	var rows []statusCountRow
	err := r.db.Model(&model.Submission{}).
		Select("sub_mission_id, status, count(*) as cnt").
		Where("sub_mission_id IN ?", subMissionIDs).
		Group("sub_mission_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts := result[row.SubMissionID]
		switch row.Status {
		case model.SubmissionStatusSubmitted:
			counts.Submitted = row.Cnt
		case model.SubmissionStatusApproved:
			counts.Approved = row.Cnt
		case model.SubmissionStatusRejected:
			counts.Rejected = row.Cnt
		}
		result[row.SubMissionID] = counts
	}
	return result, nil
}

// HasApproved 判断用户对指定子任务是否已有通过的提交。
func (r *submissionRepository) HasApproved(userID, subMissionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Submission{}).
		Where("user_id = ? AND sub_mission_id = ? AND status = ?", userID, subMissionID, model.SubmissionStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

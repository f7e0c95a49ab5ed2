// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// SubMissionRepository 接口定义了子任务的数据操作方法。
type SubMissionRepository interface {
	Create(subMission *model.SubMission) error
	FindByID(id uint) (*model.SubMission, error)
	FindByMissionID(missionID uint) ([]model.SubMission, error)
	FindByMissionIDs(missionIDs []uint) ([]model.SubMission, error)
	Update(subMission *model.SubMission) error
	// Delete 在一个事务中删除子任务及其全部提交记录。
	Delete(id uint) error
	// ApplyOrders 在一个事务中按给定的 ID 顺序重排某个任务下的子任务。
	ApplyOrders(missionID uint, ids []uint) error
}

type subMissionRepository struct {
	db *gorm.DB
}

// NewSubMissionRepository 创建一个新的 SubMissionRepository 实例。
func NewSubMissionRepository(db *gorm.DB) SubMissionRepository {
	return &subMissionRepository{db: db}
}

// Create 在数据库中插入一个新的子任务记录。
func (r *subMissionRepository) Create(subMission *model.SubMission) error {
	return r.db.Create(subMission).Error
}

// FindByID 根据给定的 ID 查找一个子任务。
func (r *subMissionRepository) FindByID(id uint) (*model.SubMission, error) {
	var subMission model.SubMission
	err := r.db.First(&subMission, id).Error
	if err != nil {
		return nil, err
	}
	return &subMission, nil
}

// FindByMissionID 检索指定任务下的所有子任务，按展示顺序排列。
func (r *subMissionRepository) FindByMissionID(missionID uint) ([]model.SubMission, error) {
	var subMissions []model.SubMission
	err := r.db.Where("mission_id = ?", missionID).Order("display_order asc, id asc").Find(&subMissions).Error
	return subMissions, err
}

// FindByMissionIDs finds sub-missions by a slice of mission IDs.
func (r *subMissionRepository) FindByMissionIDs(missionIDs []uint) ([]model.SubMission, error) {
	var subMissions []model.SubMission
	if len(missionIDs) == 0 {
		return subMissions, nil
	}
	err := r.db.Where("mission_id IN ?", missionIDs).Order("display_order asc, id asc").Find(&subMissions).Error
	return subMissions, err
}

// Update 更新数据库中一个已存在的子任务记录。
func (r *subMissionRepository) Update(subMission *model.SubMission) error {
	return r.db.Save(subMission).Error
}

// Delete 删除子任务及其全部提交记录。
func (r *subMissionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sub_mission_id = ?", id).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.SubMission{}, id).Error
	})
}

// ApplyOrders 按给定的 ID 顺序重排某个任务下的子任务。
// 限定 mission_id 以避免批次误带其他任务的子任务。
func (r *subMissionRepository) ApplyOrders(missionID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			err := tx.Model(&model.SubMission{}).
				Where("id = ? AND mission_id = ?", id, missionID).
				Update("display_order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

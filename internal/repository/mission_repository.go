// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// MissionOrderUpdate 是任务重排序的单条落库指令。
// FolderID 为 nil 表示移动到"未分类"。
type MissionOrderUpdate struct {
	ID       uint
	Order    int
	FolderID *uint
}

// MissionRepository 接口定义了任务的数据操作方法。
type MissionRepository interface {
	Create(mission *model.Mission) error
	FindByID(id uint) (*model.Mission, error)
	FindAll() ([]model.Mission, error)
	FindTopLevel() ([]model.Mission, error)
	FindByParentID(parentID uint) ([]model.Mission, error)
	FindBatchByIDs(ids []uint) ([]model.Mission, error)
	FindByHospitalID(hospitalID uint) ([]model.Mission, error)
	Update(mission *model.Mission) error
	// DeleteCascade 在一个事务中删除任务及其子任务、所有关联的子任务项与提交。
	DeleteCascade(id uint) error
	// ApplyOrders 在一个事务中应用整批顺序与文件夹变更：要么全部生效，要么全部失败。
	ApplyOrders(updates []MissionOrderUpdate) error
	// ReleaseFolder 将指定文件夹下的所有任务置为"未分类"。
	ReleaseFolder(folderID uint) error
}

type missionRepository struct {
	db *gorm.DB
}

// NewMissionRepository 创建一个新的 MissionRepository 实例。
func NewMissionRepository(db *gorm.DB) MissionRepository {
	return &missionRepository{db: db}
}

// Create 在数据库中插入一个新的任务记录。
func (r *missionRepository) Create(mission *model.Mission) error {
	return r.db.Create(mission).Error
}

// FindByID 根据给定的 ID 查找一个任务。
func (r *missionRepository) FindByID(id uint) (*model.Mission, error) {
	var mission model.Mission
	err := r.db.First(&mission, id).Error
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// FindAll 检索所有任务记录，按文件夹与顺序排列。
func (r *missionRepository) FindAll() ([]model.Mission, error) {
	var missions []model.Mission
	err := r.db.Order("display_order asc, id asc").Find(&missions).Error
	return missions, err
}

// FindTopLevel 检索所有顶层任务（无父任务）。
func (r *missionRepository) FindTopLevel() ([]model.Mission, error) {
	var missions []model.Mission
	err := r.db.Where("parent_id IS NULL").Order("display_order asc, id asc").Find(&missions).Error
	return missions, err
}

// FindByParentID 检索指定父任务下的所有子任务。
func (r *missionRepository) FindByParentID(parentID uint) ([]model.Mission, error) {
	var missions []model.Mission
	err := r.db.Where("parent_id = ?", parentID).Order("display_order asc, id asc").Find(&missions).Error
	return missions, err
}

// FindBatchByIDs finds missions by a slice of IDs.
func (r *missionRepository) FindBatchByIDs(ids []uint) ([]model.Mission, error) {
	var missions []model.Mission
	if len(ids) == 0 {
		return missions, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&missions).Error
	return missions, err
}

// FindByHospitalID 检索指定医院的所有任务。
func (r *missionRepository) FindByHospitalID(hospitalID uint) ([]model.Mission, error) {
	var missions []model.Mission
	err := r.db.Where("hospital_id = ?", hospitalID).Order("display_order asc, id asc").Find(&missions).Error
	return missions, err
}

// Update 更新数据库中一个已存在的任务记录。
func (r *missionRepository) Update(mission *model.Mission) error {
	return r.db.Save(mission).Error
}

// DeleteCascade 删除任务及其全部附属数据。
// 任务树是浅层的，但这里仍按层收集后代，避免依赖深度假设。
func (r *missionRepository) DeleteCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 收集任务自身与所有后代任务的 ID
		missionIDs := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var childIDs []uint
			if err := tx.Model(&model.Mission{}).Where("parent_id IN ?", frontier).Pluck("id", &childIDs).Error; err != nil {
				return err
			}
			missionIDs = append(missionIDs, childIDs...)
			frontier = childIDs
		}

		// 收集这些任务下的所有子任务项
		var subMissionIDs []uint
		if err := tx.Model(&model.SubMission{}).Where("mission_id IN ?", missionIDs).Pluck("id", &subMissionIDs).Error; err != nil {
			return err
		}

		if len(subMissionIDs) > 0 {
			if err := tx.Where("sub_mission_id IN ?", subMissionIDs).Delete(&model.Submission{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", subMissionIDs).Delete(&model.SubMission{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("id IN ?", missionIDs).Delete(&model.Mission{}).Error
	})
}

// ApplyOrders 在一个事务中应用整批顺序变更。
func (r *missionRepository) ApplyOrders(updates []MissionOrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&model.Mission{}).Where("id = ?", u.ID).
				Updates(map[string]interface{}{
					"display_order": u.Order,
					"folder_id":     u.FolderID,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ReleaseFolder 将文件夹下所有任务的 folder_id 置空。
func (r *missionRepository) ReleaseFolder(folderID uint) error {
	return r.db.Model(&model.Mission{}).Where("folder_id = ?", folderID).
		Update("folder_id", nil).Error
}

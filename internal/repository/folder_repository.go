// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// FolderRepository 接口定义了任务文件夹的数据操作方法。
type FolderRepository interface {
	Create(folder *model.MissionFolder) error
	FindByID(id uint) (*model.MissionFolder, error)
	FindAll() ([]model.MissionFolder, error)
	Update(folder *model.MissionFolder) error
	// DeleteAndReleaseMissions 在一个事务中删除文件夹，并把其中的任务移入"未分类"。
	DeleteAndReleaseMissions(id uint) error
	// ApplyOrders 在一个事务中按给定的 ID 顺序重排全部文件夹。
	ApplyOrders(ids []uint) error
}

type folderRepository struct {
	db *gorm.DB
}

// NewFolderRepository 创建一个新的 FolderRepository 实例。
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

// Create 在数据库中插入一个新的文件夹记录。
func (r *folderRepository) Create(folder *model.MissionFolder) error {
	return r.db.Create(folder).Error
}

// FindByID 根据给定的 ID 查找一个文件夹。
func (r *folderRepository) FindByID(id uint) (*model.MissionFolder, error) {
	var folder model.MissionFolder
	err := r.db.First(&folder, id).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// FindAll 检索所有文件夹记录，按展示顺序排列。
func (r *folderRepository) FindAll() ([]model.MissionFolder, error) {
	var folders []model.MissionFolder
	err := r.db.Order("display_order asc, id asc").Find(&folders).Error
	return folders, err
}

// Update 更新数据库中一个已存在的文件夹记录。
func (r *folderRepository) Update(folder *model.MissionFolder) error {
	return r.db.Save(folder).Error
}

// DeleteAndReleaseMissions 删除文件夹并释放其中的任务。
// 任务本身不会被删除，只是回到"未分类"。
func (r *folderRepository) DeleteAndReleaseMissions(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Mission{}).Where("folder_id = ?", id).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.MissionFolder{}, id).Error
	})
}

// ApplyOrders 按给定的 ID 顺序重排文件夹：位置即顺序。
func (r *folderRepository) ApplyOrders(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			err := tx.Model(&model.MissionFolder{}).Where("id = ?", id).
				Update("display_order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

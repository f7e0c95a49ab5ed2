// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// ActionTypeRepository 接口定义了行为类型注册表的数据操作方法。
type ActionTypeRepository interface {
	Create(actionType *model.ActionType) error
	FindByID(id uint) (*model.ActionType, error)
	FindByName(name string) (*model.ActionType, error)
	FindAll() ([]model.ActionType, error)
	Update(actionType *model.ActionType) error
	Delete(id uint) error
}

type actionTypeRepository struct {
	db *gorm.DB
}

// NewActionTypeRepository 创建一个新的 ActionTypeRepository 实例。
func NewActionTypeRepository(db *gorm.DB) ActionTypeRepository {
	return &actionTypeRepository{db: db}
}

// Create 在数据库中插入一条新的行为类型记录。
func (r *actionTypeRepository) Create(actionType *model.ActionType) error {
	return r.db.Create(actionType).Error
}

// FindByID 根据给定的 ID 查找一条行为类型。
func (r *actionTypeRepository) FindByID(id uint) (*model.ActionType, error) {
	var actionType model.ActionType
	err := r.db.First(&actionType, id).Error
	if err != nil {
		return nil, err
	}
	return &actionType, nil
}

// FindByName 根据名称查找一条行为类型。
func (r *actionTypeRepository) FindByName(name string) (*model.ActionType, error) {
	var actionType model.ActionType
	err := r.db.Where("name = ?", name).First(&actionType).Error
	if err != nil {
		return nil, err
	}
	return &actionType, nil
}

// FindAll 检索所有行为类型，按展示顺序排列，并列时按 id 先后。
func (r *actionTypeRepository) FindAll() ([]model.ActionType, error) {
	var actionTypes []model.ActionType
	err := r.db.Order("display_order asc, id asc").Find(&actionTypes).Error
	return actionTypes, err
}

// Update 更新数据库中一条已存在的行为类型记录。
func (r *actionTypeRepository) Update(actionType *model.ActionType) error {
	return r.db.Save(actionType).Error
}

// Delete 根据给定的 ID 删除一条行为类型记录。
func (r *actionTypeRepository) Delete(id uint) error {
	return r.db.Delete(&model.ActionType{}, id).Error
}

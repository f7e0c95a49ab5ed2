// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// CategoryRepository 接口定义了任务分类的数据操作方法。
type CategoryRepository interface {
	Create(category *model.Category) error
	FindByID(id uint) (*model.Category, error)
	FindAll() ([]model.Category, error)
	Update(category *model.Category) error
	// Delete 删除分类，并把引用它的任务的 category_id 置空。
	Delete(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建一个新的 CategoryRepository 实例。
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create 在数据库中插入一条新的分类记录。
func (r *categoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

// FindByID 根据给定的 ID 查找一条分类。
func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindAll 检索所有分类，按展示顺序排列。
func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Order("display_order asc, id asc").Find(&categories).Error
	return categories, err
}

// Update 更新数据库中一条已存在的分类记录。
func (r *categoryRepository) Update(category *model.Category) error {
	return r.db.Save(category).Error
}

// Delete 删除分类并清理任务上的引用。
func (r *categoryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Mission{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Category{}, id).Error
	})
}

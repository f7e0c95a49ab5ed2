// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"momcare-go/internal/model"

	"gorm.io/gorm"
)

// GenerationRepository 接口定义了 AI 生成记录的数据操作方法。
type GenerationRepository interface {
	Create(generation *model.Generation) error
	FindByID(id uint) (*model.Generation, error)
	FindByUserID(userID uint) ([]model.Generation, error)
	Update(generation *model.Generation) error
	// MarkProcessing 将 pending 状态的记录迁移为 processing（幂等：重复消费不会回退状态）。
	MarkProcessing(id uint) error
	// MarkCompleted 记录产物信息并迁移为 completed。
	MarkCompleted(id uint, objectName, resultURL string) error
	// MarkFailed 记录失败原因并迁移为 failed。
	MarkFailed(id uint, errorMsg string) error
}

type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository 创建一个新的 GenerationRepository 实例。
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

// Create 在数据库中插入一条新的生成记录。
func (r *generationRepository) Create(generation *model.Generation) error {
	return r.db.Create(generation).Error
}

// FindByID 根据给定的 ID 查找一条生成记录。
func (r *generationRepository) FindByID(id uint) (*model.Generation, error) {
	var generation model.Generation
	err := r.db.First(&generation, id).Error
	if err != nil {
		return nil, err
	}
	return &generation, nil
}

// FindByUserID 检索指定用户的所有生成记录。
func (r *generationRepository) FindByUserID(userID uint) ([]model.Generation, error) {
	var generations []model.Generation
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&generations).Error
	return generations, err
}

// Update 更新数据库中一条已存在的生成记录。
func (r *generationRepository) Update(generation *model.Generation) error {
	return r.db.Save(generation).Error
}

// MarkProcessing 将记录状态从 pending 迁移为 processing。
func (r *generationRepository) MarkProcessing(id uint) error {
	return r.db.Model(&model.Generation{}).
		Where("id = ? AND status = ?", id, model.GenerationStatusPending).
		Update("status", model.GenerationStatusProcessing).Error
}

// MarkCompleted 记录产物并迁移为 completed。
func (r *generationRepository) MarkCompleted(id uint, objectName, resultURL string) error {
	return r.db.Model(&model.Generation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.GenerationStatusCompleted,
			"object_name": objectName,
			"result_url":  resultURL,
			"error_msg":   "",
		}).Error
}

// MarkFailed 记录失败原因并迁移为 failed。
func (r *generationRepository) MarkFailed(id uint, errorMsg string) error {
	return r.db.Model(&model.Generation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.GenerationStatusFailed,
			"error_msg": errorMsg,
		}).Error
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/log"

	"gorm.io/gorm"
)

// ActionTypeService 接口定义了行为类型注册表的业务操作。
// 系统内置条目只读：不可修改也不可删除。
type ActionTypeService interface {
	ListActionTypes() ([]model.ActionType, error)
	CreateActionType(name, label string, order int) (*model.ActionType, error)
	UpdateActionType(id uint, label string, order int) (*model.ActionType, error)
	DeleteActionType(id uint) error
	// Seed 确保系统内置条目存在，服务启动时调用，幂等。
	Seed() error
}

type actionTypeService struct {
	actionTypeRepo repository.ActionTypeRepository
}

// NewActionTypeService 创建一个新的 ActionTypeService 实例。
func NewActionTypeService(actionTypeRepo repository.ActionTypeRepository) ActionTypeService {
	return &actionTypeService{actionTypeRepo: actionTypeRepo}
}

// systemActionTypes 是随服务内置的行为类型，与子任务的提交类型一一对应。
var systemActionTypes = []model.ActionType{
	{Name: model.SubmissionTypeFile, Label: "文件上传", Order: 0, IsSystem: true},
	{Name: model.SubmissionTypeImage, Label: "图片上传", Order: 1, IsSystem: true},
	{Name: model.SubmissionTypeLink, Label: "链接", Order: 2, IsSystem: true},
	{Name: model.SubmissionTypeText, Label: "文字", Order: 3, IsSystem: true},
	{Name: model.SubmissionTypeReview, Label: "点评", Order: 4, IsSystem: true},
	{Name: model.SubmissionTypeStudioSubmit, Label: "影楼提交", Order: 5, IsSystem: true},
	{Name: model.SubmissionTypeAttendance, Label: "到店打卡", Order: 6, IsSystem: true},
}

// ListActionTypes 返回所有行为类型，按展示顺序排列。
func (s *actionTypeService) ListActionTypes() ([]model.ActionType, error) {
	return s.actionTypeRepo.FindAll()
}

// CreateActionType 创建一个自定义行为类型。名称全局唯一。
func (s *actionTypeService) CreateActionType(name, label string, order int) (*model.ActionType, error) {
	if name == "" {
		return nil, validationf("行为类型名称不能为空")
	}
	if label == "" {
		return nil, validationf("行为类型标签不能为空")
	}
	if _, err := s.actionTypeRepo.FindByName(name); err == nil {
		return nil, conflictf("行为类型名称已存在: %s", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	actionType := &model.ActionType{
		Name:     name,
		Label:    label,
		Order:    order,
		IsSystem: false,
	}
	if err := s.actionTypeRepo.Create(actionType); err != nil {
		return nil, err
	}
	return actionType, nil
}

// UpdateActionType 更新自定义行为类型的标签与顺序。名称不可变更。
func (s *actionTypeService) UpdateActionType(id uint, label string, order int) (*model.ActionType, error) {
	actionType, err := s.findActionType(id)
	if err != nil {
		return nil, err
	}
	if actionType.IsSystem {
		return nil, forbiddenf("系统内置行为类型不可修改: %s", actionType.Name)
	}
	if label == "" {
		return nil, validationf("行为类型标签不能为空")
	}
	actionType.Label = label
	actionType.Order = order
	if err := s.actionTypeRepo.Update(actionType); err != nil {
		return nil, err
	}
	return actionType, nil
}

// DeleteActionType 删除自定义行为类型。
func (s *actionTypeService) DeleteActionType(id uint) error {
	actionType, err := s.findActionType(id)
	if err != nil {
		return err
	}
	if actionType.IsSystem {
		return forbiddenf("系统内置行为类型不可删除: %s", actionType.Name)
	}
	return s.actionTypeRepo.Delete(id)
}

// Seed 补齐缺失的系统内置行为类型。已存在的条目保持不动。
func (s *actionTypeService) Seed() error {
	for _, at := range systemActionTypes {
		_, err := s.actionTypeRepo.FindByName(at.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		seed := at
		if err := s.actionTypeRepo.Create(&seed); err != nil {
			return err
		}
		log.Infof("已创建系统内置行为类型: %s", at.Name)
	}
	return nil
}

func (s *actionTypeService) findActionType(id uint) (*model.ActionType, error) {
	actionType, err := s.actionTypeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("行为类型不存在: %d", id)
		}
		return nil, err
	}
	return actionType, nil
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/tasks"

	"gorm.io/gorm"
)

// ProduceTaskFunc 把生成任务投递到消息队列。注入函数而不是具体客户端，
// 便于测试时用内存实现替换 Kafka。
type ProduceTaskFunc func(task tasks.GenerationTask) error

// GenerationService 接口定义了 AI 生成请求的业务操作。
// 请求先落库为 pending 记录，再投递到队列异步处理。
type GenerationService interface {
	// RequestGeneration 创建一条生成记录并投递异步任务。
	RequestGeneration(userID uint, kind, prompt, style string) (*model.Generation, error)
	// GetGeneration 返回一条生成记录，只有属主可见。
	GetGeneration(userID, id uint) (*model.Generation, error)
	ListMyGenerations(userID uint) ([]model.Generation, error)
}

type generationService struct {
	generationRepo repository.GenerationRepository
	produce        ProduceTaskFunc
}

// NewGenerationService 创建一个新的 GenerationService 实例。
func NewGenerationService(generationRepo repository.GenerationRepository, produce ProduceTaskFunc) GenerationService {
	return &generationService{
		generationRepo: generationRepo,
		produce:        produce,
	}
}

// RequestGeneration 校验参数、落库并投递任务。
// 投递失败时记录直接标记为 failed，用户可以重新发起。
func (s *generationService) RequestGeneration(userID uint, kind, prompt, style string) (*model.Generation, error) {
	switch kind {
	case model.GenerationKindImage, model.GenerationKindMusic:
	default:
		return nil, validationf("无效的生成类型: %s", kind)
	}
	if prompt == "" {
		return nil, validationf("生成提示词不能为空")
	}

	generation := &model.Generation{
		UserID: userID,
		Kind:   kind,
		Prompt: prompt,
		Style:  style,
		Status: model.GenerationStatusPending,
	}
	if err := s.generationRepo.Create(generation); err != nil {
		return nil, err
	}

	task := tasks.GenerationTask{
		GenerationID: generation.ID,
		Kind:         kind,
		Prompt:       prompt,
		Style:        style,
		UserID:       userID,
	}
	if err := s.produce(task); err != nil {
		if markErr := s.generationRepo.MarkFailed(generation.ID, "任务投递失败"); markErr != nil {
			return nil, markErr
		}
		return nil, err
	}
	return generation, nil
}

// GetGeneration 返回生成记录并校验属主。
// 非属主访问以 not found 处理，不泄露记录的存在性。
func (s *generationService) GetGeneration(userID, id uint) (*model.Generation, error) {
	generation, err := s.generationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("生成记录不存在: %d", id)
		}
		return nil, err
	}
	if generation.UserID != userID {
		return nil, notFoundf("生成记录不存在: %d", id)
	}
	return generation, nil
}

// ListMyGenerations 返回用户自己的所有生成记录。
func (s *generationService) ListMyGenerations(userID uint) ([]model.Generation, error) {
	return s.generationRepo.FindByUserID(userID)
}

// Package pipeline 定义了 AI 生成任务的异步处理流程。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"momcare-go/internal/config"
	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/imagegen"
	"momcare-go/pkg/log"
	"momcare-go/pkg/musicgen"
	"momcare-go/pkg/storage"
	"momcare-go/pkg/tasks"
)

// 产物预签名 URL 的有效期。
const resultURLExpiry = 7 * 24 * time.Hour

// Processor 封装了生成任务处理的所有依赖和逻辑。
// 流程：标记 processing → 调用上游模型 → 产物写入对象存储 → 生成预签名 URL → 标记终态。
type Processor struct {
	imageClient    imagegen.Client
	musicClient    musicgen.Client
	minioCfg       config.MinIOConfig
	generationRepo repository.GenerationRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	imageClient imagegen.Client,
	musicClient musicgen.Client,
	minioCfg config.MinIOConfig,
	generationRepo repository.GenerationRepository,
) *Processor {
	return &Processor{
		imageClient:    imageClient,
		musicClient:    musicClient,
		minioCfg:       minioCfg,
		generationRepo: generationRepo,
	}
}

// Process 处理一个生成任务。实现 kafka.TaskProcessor 接口。
func (p *Processor) Process(ctx context.Context, task tasks.GenerationTask) error {
	generation, err := p.generationRepo.FindByID(task.GenerationID)
	if err != nil {
		return fmt.Errorf("查找生成记录失败: %w", err)
	}
	// 重复投递的消息直接跳过
	if generation.IsTerminal() {
		log.Infof("生成任务已是终态，跳过: ID=%d, Status=%s", generation.ID, generation.Status)
		return nil
	}

	if err := p.generationRepo.MarkProcessing(task.GenerationID); err != nil {
		return fmt.Errorf("标记 processing 失败: %w", err)
	}

	data, objectName, contentType, err := p.generate(ctx, task)
	if err != nil {
		log.Errorf("调用生成模型失败: ID=%d, Error: %v", task.GenerationID, err)
		if markErr := p.generationRepo.MarkFailed(task.GenerationID, err.Error()); markErr != nil {
			log.Errorf("标记 failed 失败: ID=%d, Error: %v", task.GenerationID, markErr)
		}
		return err
	}

	if err := storage.PutBytes(ctx, p.minioCfg.BucketName, objectName, data, contentType); err != nil {
		if markErr := p.generationRepo.MarkFailed(task.GenerationID, "产物上传失败"); markErr != nil {
			log.Errorf("标记 failed 失败: ID=%d, Error: %v", task.GenerationID, markErr)
		}
		return fmt.Errorf("上传产物到对象存储失败: %w", err)
	}

	resultURL, err := storage.GetPresignedURL(p.minioCfg.BucketName, objectName, resultURLExpiry)
	if err != nil {
		if markErr := p.generationRepo.MarkFailed(task.GenerationID, "生成下载链接失败"); markErr != nil {
			log.Errorf("标记 failed 失败: ID=%d, Error: %v", task.GenerationID, markErr)
		}
		return fmt.Errorf("生成预签名 URL 失败: %w", err)
	}

	if err := p.generationRepo.MarkCompleted(task.GenerationID, objectName, resultURL); err != nil {
		return fmt.Errorf("标记 completed 失败: %w", err)
	}

	log.Infof("生成任务完成: ID=%d, Kind=%s, Object=%s", task.GenerationID, task.Kind, objectName)
	return nil
}

// generate 按任务种类调用相应的上游模型，返回产物字节、对象名与内容类型。
func (p *Processor) generate(ctx context.Context, task tasks.GenerationTask) ([]byte, string, string, error) {
	switch task.Kind {
	case model.GenerationKindImage:
		data, err := p.imageClient.GenerateImage(ctx, task.Prompt, task.Style)
		if err != nil {
			return nil, "", "", err
		}
		objectName := fmt.Sprintf("generations/image/%d/%d.png", task.UserID, task.GenerationID)
		return data, objectName, "image/png", nil
	case model.GenerationKindMusic:
		data, err := p.musicClient.GenerateMusic(ctx, task.Prompt, task.Style)
		if err != nil {
			return nil, "", "", err
		}
		objectName := fmt.Sprintf("generations/music/%d/%d.mp3", task.UserID, task.GenerationID)
		return data, objectName, "audio/mpeg", nil
	default:
		return nil, "", "", fmt.Errorf("未知的生成类型: %s", task.Kind)
	}
}

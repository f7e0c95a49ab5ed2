// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"momcare-go/internal/model"
	"momcare-go/pkg/es"
)

// SearchService 接口定义了任务全文检索的业务操作。
// 索引维护由任务 CRUD 触发，检索供管理后台使用。
type SearchService interface {
	IndexMission(ctx context.Context, mission *model.Mission) error
	RemoveMission(ctx context.Context, missionID uint) error
	// Search 按关键词检索任务。caller 决定医院范围：hospitalID 非零时只返回该医院的任务。
	Search(ctx context.Context, keyword string, hospitalID uint) ([]model.MissionSearchHit, error)
}

type searchService struct {
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(indexName string) SearchService {
	return &searchService{indexName: indexName}
}

// IndexMission 将任务文档同步到 Elasticsearch。
func (s *searchService) IndexMission(ctx context.Context, mission *model.Mission) error {
	doc := model.EsMission{
		MissionID:   mission.ID,
		Title:       mission.Title,
		Description: mission.Description,
		Visibility:  mission.Visibility,
		IsActive:    mission.IsActive,
	}
	if mission.HospitalID != nil {
		doc.HospitalID = *mission.HospitalID
	}
	return es.IndexMission(ctx, s.indexName, doc)
}

// RemoveMission 从 Elasticsearch 删除任务文档。
func (s *searchService) RemoveMission(ctx context.Context, missionID uint) error {
	return es.DeleteMission(ctx, s.indexName, missionID)
}

// Search 按关键词检索任务。
func (s *searchService) Search(ctx context.Context, keyword string, hospitalID uint) ([]model.MissionSearchHit, error) {
	if keyword == "" {
		return nil, validationf("搜索关键词不能为空")
	}
	return es.SearchMissions(ctx, s.indexName, keyword, hospitalID)
}

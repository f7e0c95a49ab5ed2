// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/log"

	"gorm.io/gorm"
)

// MissionInput 是创建/更新任务的输入。
// FolderID 使用 0 作为"未分类"的哨兵值。
type MissionInput struct {
	Title          string
	Description    string
	HeaderImageURL string
	GiftImageURL   string
	Visibility     string
	HospitalID     *uint
	CategoryID     *uint
	ParentID       *uint
	FolderID       *uint
	IsActive       bool
	StartDate      *time.Time
	EndDate        *time.Time
}

// MissionListResponse 是管理后台任务列表的响应：任务树加文件夹列表。
type MissionListResponse struct {
	Missions []*MissionNode        `json:"missions"`
	Folders  []model.MissionFolder `json:"folders"`
}

// MissionNode 是任务树中的一个节点，附带计算出的窗口状态。
type MissionNode struct {
	model.Mission
	WindowStatus string         `json:"windowStatus"`
	Children     []*MissionNode `json:"children"`
}

// MissionService 接口定义了任务、文件夹、分类及其排序的所有业务操作。
type MissionService interface {
	// Mission CRUD
	ListMissions() (*MissionListResponse, error)
	GetMission(id uint) (*model.Mission, error)
	CreateMission(input MissionInput) (*model.Mission, error)
	UpdateMission(id uint, input MissionInput) (*model.Mission, error)
	DeleteMission(id uint) error
	// ReorderMissions 应用前端整批提交的权威顺序。
	ReorderMissions(orders []model.MissionOrder) error

	// Folder management
	ListFolders() ([]model.MissionFolder, error)
	CreateFolder(name, color string) (*model.MissionFolder, error)
	UpdateFolder(id uint, name, color string, isCollapsed bool) (*model.MissionFolder, error)
	DeleteFolder(id uint) error
	ReorderFolders(ids []uint) error

	// Sub-mission management
	ListSubMissions(missionID uint) ([]model.SubMission, error)
	CreateSubMission(missionID uint, subMission *model.SubMission) (*model.SubMission, error)
	UpdateSubMission(missionID, id uint, subMission *model.SubMission) (*model.SubMission, error)
	DeleteSubMission(missionID, id uint) error
	ReorderSubMissions(missionID uint, ids []uint) error
	ToggleSubMissionActive(missionID, id uint) (*model.SubMission, error)

	// Category management
	ListCategories() ([]model.Category, error)
	CreateCategory(name string, order int) (*model.Category, error)
	UpdateCategory(id uint, name string, order int) (*model.Category, error)
	DeleteCategory(id uint) error
}

// missionService 是 MissionService 接口的实现。
type missionService struct {
	missionRepo    repository.MissionRepository
	folderRepo     repository.FolderRepository
	subMissionRepo repository.SubMissionRepository
	categoryRepo   repository.CategoryRepository
	hospitalRepo   repository.HospitalRepository
	search         SearchService
}

// NewMissionService 创建一个新的 MissionService 实例。
// search 允许为 nil（此时跳过索引维护），便于不依赖 Elasticsearch 的部署与测试。
func NewMissionService(
	missionRepo repository.MissionRepository,
	folderRepo repository.FolderRepository,
	subMissionRepo repository.SubMissionRepository,
	categoryRepo repository.CategoryRepository,
	hospitalRepo repository.HospitalRepository,
	search SearchService,
) MissionService {
	return &missionService{
		missionRepo:    missionRepo,
		folderRepo:     folderRepo,
		subMissionRepo: subMissionRepo,
		categoryRepo:   categoryRepo,
		hospitalRepo:   hospitalRepo,
		search:         search,
	}
}

// validateInput 校验任务输入的业务不变量。
func (s *missionService) validateInput(input MissionInput) error {
	if input.Title == "" {
		return validationf("任务标题不能为空")
	}
	switch input.Visibility {
	case model.VisibilityPublic, model.VisibilityHospital, model.VisibilityDev:
	default:
		return validationf("无效的可见范围: %s", input.Visibility)
	}
	// visibility=hospital 时必须引用一个存在的医院
	if input.Visibility == model.VisibilityHospital {
		if input.HospitalID == nil {
			return validationf("hospital 可见范围的任务必须指定医院")
		}
		if _, err := s.hospitalRepo.FindByID(*input.HospitalID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("指定的医院不存在")
			}
			return err
		}
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return validationf("结束日期不能早于开始日期")
	}
	return nil
}

// normalizeFolderID 把"未分类"的哨兵值 0 转换为 NULL。
func normalizeFolderID(folderID *uint) *uint {
	if folderID == nil || *folderID == 0 {
		return nil
	}
	return folderID
}

// ListMissions 返回顶层任务树与文件夹列表。
func (s *missionService) ListMissions() (*MissionListResponse, error) {
	missions, err := s.missionRepo.FindAll()
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.FindAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nodes := make(map[uint]*MissionNode)
	var tree []*MissionNode

	for i := range missions {
		m := missions[i]
		nodes[m.ID] = &MissionNode{
			Mission:      m,
			WindowStatus: m.WindowStatus(now),
			Children:     []*MissionNode{},
		}
	}

	// 任务顺序已由查询保证，这里只需按父子关系组树
	for i := range missions {
		node := nodes[missions[i].ID]
		if missions[i].ParentID != nil {
			if parent, ok := nodes[*missions[i].ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}

	return &MissionListResponse{Missions: tree, Folders: folders}, nil
}

// GetMission 返回单个任务。
func (s *missionService) GetMission(id uint) (*model.Mission, error) {
	mission, err := s.missionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("任务不存在: %d", id)
		}
		return nil, err
	}
	return mission, nil
}

// CreateMission 处理创建新任务的逻辑。
func (s *missionService) CreateMission(input MissionInput) (*model.Mission, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		parent, err := s.GetMission(*input.ParentID)
		if err != nil {
			return nil, err
		}
		// 任务树保持浅层：子任务不能再有子任务
		if parent.ParentID != nil {
			return nil, validationf("子任务下不能再创建子任务")
		}
	}

	mission := &model.Mission{
		Title:          input.Title,
		Description:    input.Description,
		HeaderImageURL: input.HeaderImageURL,
		GiftImageURL:   input.GiftImageURL,
		Visibility:     input.Visibility,
		HospitalID:     input.HospitalID,
		CategoryID:     input.CategoryID,
		ParentID:       input.ParentID,
		FolderID:       normalizeFolderID(input.FolderID),
		IsActive:       input.IsActive,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
	}

	if err := s.missionRepo.Create(mission); err != nil {
		return nil, err
	}
	s.indexMission(mission)
	return mission, nil
}

// UpdateMission 处理更新任务的逻辑，包括通过 folderId 调整所属文件夹。
func (s *missionService) UpdateMission(id uint, input MissionInput) (*model.Mission, error) {
	mission, err := s.GetMission(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	mission.Title = input.Title
	mission.Description = input.Description
	mission.HeaderImageURL = input.HeaderImageURL
	mission.GiftImageURL = input.GiftImageURL
	mission.Visibility = input.Visibility
	mission.HospitalID = input.HospitalID
	mission.CategoryID = input.CategoryID
	mission.FolderID = normalizeFolderID(input.FolderID)
	mission.IsActive = input.IsActive
	mission.StartDate = input.StartDate
	mission.EndDate = input.EndDate

	if err := s.missionRepo.Update(mission); err != nil {
		return nil, err
	}
	s.indexMission(mission)
	return mission, nil
}

// DeleteMission 删除任务并级联其子任务与提交。
func (s *missionService) DeleteMission(id uint) error {
	if _, err := s.GetMission(id); err != nil {
		return err
	}
	if err := s.missionRepo.DeleteCascade(id); err != nil {
		return err
	}
	s.removeMissionFromIndex(id)
	return nil
}

// ReorderMissions 应用整批任务顺序变更。
// 批次要么全部生效要么全部失败；命中子任务（有父任务的任务）直接拒绝；
// 与当前状态一致的条目跳过写入。
func (s *missionService) ReorderMissions(orders []model.MissionOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	missions, err := s.missionRepo.FindBatchByIDs(ids)
	if err != nil {
		return err
	}
	current := make(map[uint]*model.Mission, len(missions))
	for i := range missions {
		current[missions[i].ID] = &missions[i]
	}

	updates := make([]repository.MissionOrderUpdate, 0, len(orders))
	for _, o := range orders {
		m, ok := current[o.ID]
		if !ok {
			return notFoundf("任务不存在: %d", o.ID)
		}
		// 只有顶层任务参与拖拽排序
		if m.ParentID != nil {
			return validationf("子任务不能参与拖拽排序: %d", o.ID)
		}

		var folderID *uint
		if o.FolderID != 0 {
			fid := o.FolderID
			if _, err := s.folderRepo.FindByID(fid); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundf("文件夹不存在: %d", fid)
				}
				return err
			}
			folderID = &fid
		}

		// 跳过无变化的条目，避免无谓写入
		sameFolder := (m.FolderID == nil && folderID == nil) ||
			(m.FolderID != nil && folderID != nil && *m.FolderID == *folderID)
		if m.Order == o.Order && sameFolder {
			continue
		}

		updates = append(updates, repository.MissionOrderUpdate{
			ID:       o.ID,
			Order:    o.Order,
			FolderID: folderID,
		})
	}

	return s.missionRepo.ApplyOrders(updates)
}

// ListFolders 返回所有文件夹，按展示顺序排列。
func (s *missionService) ListFolders() ([]model.MissionFolder, error) {
	return s.folderRepo.FindAll()
}

// CreateFolder 处理创建新文件夹的逻辑，新文件夹追加在末尾。
func (s *missionService) CreateFolder(name, color string) (*model.MissionFolder, error) {
	if name == "" {
		return nil, validationf("文件夹名称不能为空")
	}
	folders, err := s.folderRepo.FindAll()
	if err != nil {
		return nil, err
	}
	folder := &model.MissionFolder{
		Name:  name,
		Color: color,
		Order: len(folders),
	}
	if err := s.folderRepo.Create(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// UpdateFolder 处理更新文件夹的逻辑。
func (s *missionService) UpdateFolder(id uint, name, color string, isCollapsed bool) (*model.MissionFolder, error) {
	folder, err := s.folderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("文件夹不存在: %d", id)
		}
		return nil, err
	}
	if name == "" {
		return nil, validationf("文件夹名称不能为空")
	}
	folder.Name = name
	folder.Color = color
	folder.IsCollapsed = isCollapsed
	if err := s.folderRepo.Update(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder 删除文件夹，其中的任务回到"未分类"。
func (s *missionService) DeleteFolder(id uint) error {
	if _, err := s.folderRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("文件夹不存在: %d", id)
		}
		return err
	}
	return s.folderRepo.DeleteAndReleaseMissions(id)
}

// ReorderFolders 按给定的 ID 顺序整批重排文件夹。
func (s *missionService) ReorderFolders(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	folders, err := s.folderRepo.FindAll()
	if err != nil {
		return err
	}
	known := make(map[uint]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return notFoundf("文件夹不存在: %d", id)
		}
	}
	return s.folderRepo.ApplyOrders(ids)
}

// ListSubMissions 返回任务下的所有子任务。
func (s *missionService) ListSubMissions(missionID uint) ([]model.SubMission, error) {
	if _, err := s.GetMission(missionID); err != nil {
		return nil, err
	}
	return s.subMissionRepo.FindByMissionID(missionID)
}

// validateSubMission 校验子任务声明的提交类型。
func validateSubMission(subMission *model.SubMission) error {
	if subMission.Title == "" {
		return validationf("子任务标题不能为空")
	}
	if len(subMission.Types) == 0 {
		return validationf("子任务至少声明一个提交类型")
	}
	for _, t := range subMission.Types {
		if !model.ValidSubmissionTypes[t] {
			return validationf("无效的提交类型: %s", t)
		}
	}
	for _, l := range subMission.SlotLabels {
		if l.SlotIndex < 0 || l.SlotIndex >= len(subMission.Types) {
			return validationf("槽位标签下标越界: %d", l.SlotIndex)
		}
	}
	if subMission.Level < 0 {
		return validationf("level 不能为负数")
	}
	return nil
}

// CreateSubMission 在任务下创建一个子任务。
func (s *missionService) CreateSubMission(missionID uint, subMission *model.SubMission) (*model.SubMission, error) {
	if _, err := s.GetMission(missionID); err != nil {
		return nil, err
	}
	if err := validateSubMission(subMission); err != nil {
		return nil, err
	}
	existing, err := s.subMissionRepo.FindByMissionID(missionID)
	if err != nil {
		return nil, err
	}
	subMission.ID = 0
	subMission.MissionID = missionID
	subMission.Order = len(existing)
	if err := s.subMissionRepo.Create(subMission); err != nil {
		return nil, err
	}
	return subMission, nil
}

// UpdateSubMission 更新任务下的一个子任务。
func (s *missionService) UpdateSubMission(missionID, id uint, input *model.SubMission) (*model.SubMission, error) {
	subMission, err := s.findSubMissionInMission(missionID, id)
	if err != nil {
		return nil, err
	}
	if err := validateSubMission(input); err != nil {
		return nil, err
	}

	subMission.Title = input.Title
	subMission.Description = input.Description
	subMission.Types = input.Types
	subMission.SlotLabels = input.SlotLabels
	subMission.ReviewRequired = input.ReviewRequired
	subMission.StartDate = input.StartDate
	subMission.EndDate = input.EndDate
	subMission.Level = input.Level
	subMission.StudioConfig = input.StudioConfig
	subMission.AttendanceConfig = input.AttendanceConfig

	if err := s.subMissionRepo.Update(subMission); err != nil {
		return nil, err
	}
	return subMission, nil
}

// DeleteSubMission 删除任务下的一个子任务及其提交。
func (s *missionService) DeleteSubMission(missionID, id uint) error {
	if _, err := s.findSubMissionInMission(missionID, id); err != nil {
		return err
	}
	return s.subMissionRepo.Delete(id)
}

// ReorderSubMissions 按给定的 ID 顺序整批重排任务下的子任务。
func (s *missionService) ReorderSubMissions(missionID uint, ids []uint) error {
	subMissions, err := s.ListSubMissions(missionID)
	if err != nil {
		return err
	}
	known := make(map[uint]bool, len(subMissions))
	for _, sm := range subMissions {
		known[sm.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return notFoundf("子任务不存在: %d", id)
		}
	}
	return s.subMissionRepo.ApplyOrders(missionID, ids)
}

// ToggleSubMissionActive 翻转子任务的启用状态。
func (s *missionService) ToggleSubMissionActive(missionID, id uint) (*model.SubMission, error) {
	subMission, err := s.findSubMissionInMission(missionID, id)
	if err != nil {
		return nil, err
	}
	subMission.IsActive = !subMission.IsActive
	if err := s.subMissionRepo.Update(subMission); err != nil {
		return nil, err
	}
	return subMission, nil
}

// findSubMissionInMission 查找子任务并校验其归属任务。
func (s *missionService) findSubMissionInMission(missionID, id uint) (*model.SubMission, error) {
	subMission, err := s.subMissionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("子任务不存在: %d", id)
		}
		return nil, err
	}
	if subMission.MissionID != missionID {
		return nil, notFoundf("子任务 %d 不属于任务 %d", id, missionID)
	}
	return subMission, nil
}

// ListCategories 返回所有分类。
func (s *missionService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

// CreateCategory 处理创建新分类的逻辑。
func (s *missionService) CreateCategory(name string, order int) (*model.Category, error) {
	if name == "" {
		return nil, validationf("分类名称不能为空")
	}
	category := &model.Category{Name: name, Order: order}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory 处理更新分类的逻辑。
func (s *missionService) UpdateCategory(id uint, name string, order int) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("分类不存在: %d", id)
		}
		return nil, err
	}
	if name == "" {
		return nil, validationf("分类名称不能为空")
	}
	category.Name = name
	category.Order = order
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory 删除分类并清理任务上的引用。
func (s *missionService) DeleteCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("分类不存在: %d", id)
		}
		return err
	}
	return s.categoryRepo.Delete(id)
}

// indexMission 同步任务到搜索索引。索引失败不影响主流程，只记录日志。
func (s *missionService) indexMission(mission *model.Mission) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexMission(context.Background(), mission); err != nil {
		log.Warnf("同步任务到搜索索引失败, missionID: %d, error: %v", mission.ID, err)
	}
}

// removeMissionFromIndex 从搜索索引删除任务。
func (s *missionService) removeMissionFromIndex(id uint) {
	if s.search == nil {
		return
	}
	if err := s.search.RemoveMission(context.Background(), id); err != nil {
		log.Warnf("从搜索索引删除任务失败, missionID: %d, error: %v", id, err)
	}
}

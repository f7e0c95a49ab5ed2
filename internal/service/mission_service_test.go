package service

import (
	"errors"
	"testing"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMissionService(t *testing.T, db *gorm.DB) MissionService {
	t.Helper()
	return NewMissionService(
		repository.NewMissionRepository(db),
		repository.NewFolderRepository(db),
		repository.NewSubMissionRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewHospitalRepository(db),
		nil, // 测试不连 Elasticsearch
	)
}

func TestCreateMissionHospitalVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	// hospital 可见范围必须指定医院
	_, err := svc.CreateMission(MissionInput{
		Title:      "院内任务",
		Visibility: model.VisibilityHospital,
	})
	require.ErrorIs(t, err, ErrValidation)

	// 指定不存在的医院同样被拒绝
	_, err = svc.CreateMission(MissionInput{
		Title:      "院内任务",
		Visibility: model.VisibilityHospital,
		HospitalID: uintPtr(99),
	})
	require.ErrorIs(t, err, ErrValidation)

	hospital := &model.Hospital{Name: "第一妇产医院"}
	require.NoError(t, db.Create(hospital).Error)

	mission, err := svc.CreateMission(MissionInput{
		Title:      "院内任务",
		Visibility: model.VisibilityHospital,
		HospitalID: &hospital.ID,
		IsActive:   true,
	})
	require.NoError(t, err)
	require.Equal(t, hospital.ID, *mission.HospitalID)
}

func TestCreateMissionInvalidVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	_, err := svc.CreateMission(MissionInput{Title: "任务", Visibility: "internal"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestMissionWindowStatus(t *testing.T) {
	mission := &model.Mission{
		StartDate: date(2025, time.January, 1),
		EndDate:   date(2025, time.January, 31),
	}

	require.Equal(t, model.WindowUpcoming,
		mission.WindowStatus(time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC)))
	// 开始当天即开放
	require.Equal(t, model.WindowOpen,
		mission.WindowStatus(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	// 结束当天整天仍开放
	require.Equal(t, model.WindowOpen,
		mission.WindowStatus(time.Date(2025, time.January, 31, 23, 59, 0, 0, time.UTC)))
	require.Equal(t, model.WindowClosed,
		mission.WindowStatus(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))

	// 无窗口限制的任务始终开放
	open := &model.Mission{}
	require.Equal(t, model.WindowOpen, open.WindowStatus(time.Now()))
}

func TestReorderMissionsAppliesBatch(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	folder, err := svc.CreateFolder("产检", "#ff8800")
	require.NoError(t, err)

	var ids []uint
	for _, title := range []string{"A", "B", "C"} {
		m, err := svc.CreateMission(MissionInput{Title: title, Visibility: model.VisibilityPublic, IsActive: true})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	// C 排第一并进入文件夹，A、B 顺延
	err = svc.ReorderMissions([]model.MissionOrder{
		{ID: ids[2], Order: 0, FolderID: folder.ID},
		{ID: ids[0], Order: 1},
		{ID: ids[1], Order: 2},
	})
	require.NoError(t, err)

	c, err := svc.GetMission(ids[2])
	require.NoError(t, err)
	require.Equal(t, 0, c.Order)
	require.NotNil(t, c.FolderID)
	require.Equal(t, folder.ID, *c.FolderID)

	a, err := svc.GetMission(ids[0])
	require.NoError(t, err)
	require.Equal(t, 1, a.Order)
	require.Nil(t, a.FolderID)
}

func TestReorderMissionsFolderZeroMeansUncategorized(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	folder, err := svc.CreateFolder("文件夹", "")
	require.NoError(t, err)
	mission, err := svc.CreateMission(MissionInput{
		Title:      "任务",
		Visibility: model.VisibilityPublic,
		FolderID:   &folder.ID,
		IsActive:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, mission.FolderID)

	// folderId=0 把任务移出文件夹
	err = svc.ReorderMissions([]model.MissionOrder{{ID: mission.ID, Order: 0, FolderID: 0}})
	require.NoError(t, err)

	got, err := svc.GetMission(mission.ID)
	require.NoError(t, err)
	require.Nil(t, got.FolderID)
}

func TestReorderMissionsRejectsChildMission(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	parent, err := svc.CreateMission(MissionInput{Title: "父任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)
	child, err := svc.CreateMission(MissionInput{
		Title:      "子任务",
		Visibility: model.VisibilityPublic,
		ParentID:   &parent.ID,
		IsActive:   true,
	})
	require.NoError(t, err)

	err = svc.ReorderMissions([]model.MissionOrder{{ID: child.ID, Order: 0}})
	require.ErrorIs(t, err, ErrValidation)
}

func TestReorderMissionsUnknownIDFailsWholeBatch(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	mission, err := svc.CreateMission(MissionInput{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)
	original := mission.Order

	err = svc.ReorderMissions([]model.MissionOrder{
		{ID: mission.ID, Order: 5},
		{ID: 9999, Order: 0},
	})
	require.ErrorIs(t, err, ErrNotFound)

	// 批次整体失败，已有任务顺序不变
	got, err := svc.GetMission(mission.ID)
	require.NoError(t, err)
	require.Equal(t, original, got.Order)
}

func TestReorderMissionsUnknownFolder(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	mission, err := svc.CreateMission(MissionInput{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)

	err = svc.ReorderMissions([]model.MissionOrder{{ID: mission.ID, Order: 0, FolderID: 42}})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFolderReleasesMissions(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	folder, err := svc.CreateFolder("待删除", "")
	require.NoError(t, err)
	mission, err := svc.CreateMission(MissionInput{
		Title:      "任务",
		Visibility: model.VisibilityPublic,
		FolderID:   &folder.ID,
		IsActive:   true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFolder(folder.ID))

	// 任务未被删除，只是回到"未分类"
	got, err := svc.GetMission(mission.ID)
	require.NoError(t, err)
	require.Nil(t, got.FolderID)

	_, err = svc.UpdateFolder(folder.ID, "x", "", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReorderFolders(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	f1, err := svc.CreateFolder("一", "")
	require.NoError(t, err)
	f2, err := svc.CreateFolder("二", "")
	require.NoError(t, err)

	require.NoError(t, svc.ReorderFolders([]uint{f2.ID, f1.ID}))

	folders, err := svc.ListFolders()
	require.NoError(t, err)
	require.Equal(t, f2.ID, folders[0].ID)
	require.Equal(t, f1.ID, folders[1].ID)
}

func TestDeleteMissionCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	mission, err := svc.CreateMission(MissionInput{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)
	child, err := svc.CreateMission(MissionInput{
		Title:      "子任务",
		Visibility: model.VisibilityPublic,
		ParentID:   &mission.ID,
		IsActive:   true,
	})
	require.NoError(t, err)

	subMission, err := svc.CreateSubMission(mission.ID, &model.SubMission{
		Title:    "提交项",
		Types:    []string{model.SubmissionTypeText},
		IsActive: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Submission{
		SubMissionID: subMission.ID,
		UserID:       1,
		Status:       model.SubmissionStatusSubmitted,
	}).Error)

	require.NoError(t, svc.DeleteMission(mission.ID))

	_, err = svc.GetMission(child.ID)
	require.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&model.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListMissionsBuildsTree(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	parent, err := svc.CreateMission(MissionInput{Title: "父任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)
	_, err = svc.CreateMission(MissionInput{
		Title:      "子任务",
		Visibility: model.VisibilityPublic,
		ParentID:   &parent.ID,
		IsActive:   true,
	})
	require.NoError(t, err)

	resp, err := svc.ListMissions()
	require.NoError(t, err)
	require.Len(t, resp.Missions, 1)
	require.Len(t, resp.Missions[0].Children, 1)
	require.Equal(t, "子任务", resp.Missions[0].Children[0].Title)
	require.Equal(t, model.WindowOpen, resp.Missions[0].WindowStatus)
}

func TestSubMissionValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	mission, err := svc.CreateMission(MissionInput{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)

	_, err = svc.CreateSubMission(mission.ID, &model.SubMission{Title: "无类型"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSubMission(mission.ID, &model.SubMission{
		Title: "坏类型",
		Types: []string{"video"},
	})
	require.ErrorIs(t, err, ErrValidation)

	// 槽位标签下标必须落在声明的类型范围内
	_, err = svc.CreateSubMission(mission.ID, &model.SubMission{
		Title:      "坏标签",
		Types:      []string{model.SubmissionTypeText},
		SlotLabels: []model.SlotLabel{{SlotIndex: 3, Label: "x"}},
	})
	require.ErrorIs(t, err, ErrValidation)

	subMission, err := svc.CreateSubMission(mission.ID, &model.SubMission{
		Title:      "合法",
		Types:      []string{model.SubmissionTypeImage, model.SubmissionTypeText},
		SlotLabels: []model.SlotLabel{{SlotIndex: 0, Label: "宝宝照片"}},
		IsActive:   true,
	})
	require.NoError(t, err)
	require.Equal(t, mission.ID, subMission.MissionID)
}

func TestSubMissionScopedToMission(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	m1, err := svc.CreateMission(MissionInput{Title: "一", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)
	m2, err := svc.CreateMission(MissionInput{Title: "二", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)

	subMission, err := svc.CreateSubMission(m1.ID, &model.SubMission{
		Title:    "提交项",
		Types:    []string{model.SubmissionTypeText},
		IsActive: true,
	})
	require.NoError(t, err)

	// 从别的任务路径访问视为不存在
	err = svc.DeleteSubMission(m2.ID, subMission.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestToggleSubMissionActive(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	mission, err := svc.CreateMission(MissionInput{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true})
	require.NoError(t, err)
	subMission, err := svc.CreateSubMission(mission.ID, &model.SubMission{
		Title:    "提交项",
		Types:    []string{model.SubmissionTypeText},
		IsActive: true,
	})
	require.NoError(t, err)

	toggled, err := svc.ToggleSubMissionActive(mission.ID, subMission.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	toggled, err = svc.ToggleSubMissionActive(mission.ID, subMission.ID)
	require.NoError(t, err)
	require.True(t, toggled.IsActive)
}

func TestDeleteCategoryClearsMissionReference(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	category, err := svc.CreateCategory("孕期知识", 0)
	require.NoError(t, err)
	mission, err := svc.CreateMission(MissionInput{
		Title:      "任务",
		Visibility: model.VisibilityPublic,
		CategoryID: &category.ID,
		IsActive:   true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(category.ID))

	got, err := svc.GetMission(mission.ID)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)
}

func TestGetMissionNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newMissionService(t, db)

	_, err := svc.GetMission(12345)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, errors.Is(err, ErrValidation))
}

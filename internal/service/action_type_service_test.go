package service

import (
	"testing"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"

	"github.com/stretchr/testify/require"
)

func newActionTypeService(t *testing.T) ActionTypeService {
	t.Helper()
	db := newTestDB(t)
	return NewActionTypeService(repository.NewActionTypeRepository(db))
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newActionTypeService(t)

	require.NoError(t, svc.Seed())
	actionTypes, err := svc.ListActionTypes()
	require.NoError(t, err)
	seeded := len(actionTypes)
	require.Equal(t, len(model.ValidSubmissionTypes), seeded)

	// 重复种子化不产生重复条目
	require.NoError(t, svc.Seed())
	actionTypes, err = svc.ListActionTypes()
	require.NoError(t, err)
	require.Len(t, actionTypes, seeded)

	for _, at := range actionTypes {
		require.True(t, at.IsSystem)
	}
}

func TestSystemActionTypesImmutable(t *testing.T) {
	svc := newActionTypeService(t)
	require.NoError(t, svc.Seed())

	actionTypes, err := svc.ListActionTypes()
	require.NoError(t, err)
	system := actionTypes[0]

	_, err = svc.UpdateActionType(system.ID, "改名", 0)
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteActionType(system.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCustomActionTypeLifecycle(t *testing.T) {
	svc := newActionTypeService(t)
	require.NoError(t, svc.Seed())

	created, err := svc.CreateActionType("video", "视频上传", 10)
	require.NoError(t, err)
	require.False(t, created.IsSystem)

	// 名称唯一
	_, err = svc.CreateActionType("video", "另一个", 11)
	require.ErrorIs(t, err, ErrConflict)
	// 与系统条目同名也被拒绝
	_, err = svc.CreateActionType(model.SubmissionTypeText, "覆盖", 0)
	require.ErrorIs(t, err, ErrConflict)

	updated, err := svc.UpdateActionType(created.ID, "短视频上传", 5)
	require.NoError(t, err)
	require.Equal(t, "短视频上传", updated.Label)
	require.Equal(t, 5, updated.Order)

	require.NoError(t, svc.DeleteActionType(created.ID))
	err = svc.DeleteActionType(created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestActionTypeValidation(t *testing.T) {
	svc := newActionTypeService(t)

	_, err := svc.CreateActionType("", "标签", 0)
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateActionType("name", "", 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestActionTypesOrderedByDisplayOrder(t *testing.T) {
	svc := newActionTypeService(t)

	_, err := svc.CreateActionType("b", "乙", 2)
	require.NoError(t, err)
	_, err = svc.CreateActionType("a", "甲", 1)
	require.NoError(t, err)

	actionTypes, err := svc.ListActionTypes()
	require.NoError(t, err)
	require.Equal(t, "a", actionTypes[0].Name)
	require.Equal(t, "b", actionTypes[1].Name)
}

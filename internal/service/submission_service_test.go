package service

import (
	"testing"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type submissionFixture struct {
	db    *gorm.DB
	svc   *submissionService
	cache *fakeReviewCache
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	db := newTestDB(t)
	cache := newFakeReviewCache()
	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewSubMissionRepository(db),
		repository.NewMissionRepository(db),
		cache,
	).(*submissionService)
	return &submissionFixture{db: db, svc: svc, cache: cache}
}

// createSubMission 建立一个开放窗口内的任务与子任务。
func (f *submissionFixture) createSubMission(t *testing.T, subMission model.SubMission) *model.SubMission {
	t.Helper()
	mission := &model.Mission{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true}
	require.NoError(t, f.db.Create(mission).Error)
	subMission.MissionID = mission.ID
	if subMission.Title == "" {
		subMission.Title = "提交项"
	}
	subMission.IsActive = true
	require.NoError(t, f.db.Create(&subMission).Error)
	return &subMission
}

func textSlots() []model.SubmissionSlot {
	return []model.SubmissionSlot{{SlotIndex: 0, Type: model.SubmissionTypeText, Value: "内容"}}
}

func TestCreateSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{Types: []string{model.SubmissionTypeText}})

	submission, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)
	require.Equal(t, model.SubmissionStatusSubmitted, submission.Status)
	require.Equal(t, 1, f.cache.invalidated)
}

func TestCreateSubmissionSlotValidation(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{
		Types: []string{model.SubmissionTypeImage, model.SubmissionTypeText},
	})

	// 槽位数量不匹配
	_, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.ErrorIs(t, err, ErrValidation)

	// 类型与声明不一致
	_, err = f.svc.CreateSubmission(1, subMission.ID, []model.SubmissionSlot{
		{SlotIndex: 0, Type: model.SubmissionTypeText, Value: "x"},
		{SlotIndex: 1, Type: model.SubmissionTypeImage, Value: "y"},
	})
	require.ErrorIs(t, err, ErrValidation)

	// 重复槽位
	_, err = f.svc.CreateSubmission(1, subMission.ID, []model.SubmissionSlot{
		{SlotIndex: 0, Type: model.SubmissionTypeImage, Value: "x"},
		{SlotIndex: 0, Type: model.SubmissionTypeImage, Value: "y"},
	})
	require.ErrorIs(t, err, ErrValidation)

	// 空内容
	_, err = f.svc.CreateSubmission(1, subMission.ID, []model.SubmissionSlot{
		{SlotIndex: 0, Type: model.SubmissionTypeImage, Value: ""},
		{SlotIndex: 1, Type: model.SubmissionTypeText, Value: "y"},
	})
	require.ErrorIs(t, err, ErrValidation)

	// 合法提交
	_, err = f.svc.CreateSubmission(1, subMission.ID, []model.SubmissionSlot{
		{SlotIndex: 0, Type: model.SubmissionTypeImage, Value: "https://cdn/x.png"},
		{SlotIndex: 1, Type: model.SubmissionTypeText, Value: "y"},
	})
	require.NoError(t, err)
}

func TestCreateSubmissionWindowClosed(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{
		Types:     []string{model.SubmissionTypeText},
		StartDate: date(2025, time.January, 1),
		EndDate:   date(2025, time.January, 31),
	})

	// 窗口开启前
	f.svc.now = func() time.Time { return time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC) }
	_, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.ErrorIs(t, err, ErrForbidden)

	// 结束当天整天仍可提交
	f.svc.now = func() time.Time { return time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC) }
	_, err = f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)

	// 窗口关闭后
	f.svc.now = func() time.Time { return time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC) }
	_, err = f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateSubmissionInactiveSubMission(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{Types: []string{model.SubmissionTypeText}})
	require.NoError(t, f.db.Model(subMission).Update("is_active", false).Error)

	_, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateSubmissionLevelGate(t *testing.T) {
	f := newSubmissionFixture(t)

	mission := &model.Mission{Title: "任务", Visibility: model.VisibilityPublic, IsActive: true}
	require.NoError(t, f.db.Create(mission).Error)

	first := &model.SubMission{
		MissionID: mission.ID, Title: "第一步",
		Types: []string{model.SubmissionTypeText}, Level: 0, IsActive: true,
	}
	second := &model.SubMission{
		MissionID: mission.ID, Title: "第二步",
		Types: []string{model.SubmissionTypeText}, Level: 1, IsActive: true,
	}
	require.NoError(t, f.db.Create(first).Error)
	require.NoError(t, f.db.Create(second).Error)

	// 未完成第一步时第二步被闸门拦截
	_, err := f.svc.CreateSubmission(1, second.ID, textSlots())
	require.ErrorIs(t, err, ErrForbidden)

	// 第一步提交但未通过，仍被拦截
	pending, err := f.svc.CreateSubmission(1, first.ID, textSlots())
	require.NoError(t, err)
	_, err = f.svc.CreateSubmission(1, second.ID, textSlots())
	require.ErrorIs(t, err, ErrForbidden)

	// 第一步审核通过后放行
	_, err = f.svc.ApproveSubmission(pending.ID, "")
	require.NoError(t, err)
	_, err = f.svc.CreateSubmission(1, second.ID, textSlots())
	require.NoError(t, err)

	// 闸门按用户隔离：另一个用户仍被拦截
	_, err = f.svc.CreateSubmission(2, second.ID, textSlots())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestApproveSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{Types: []string{model.SubmissionTypeText}})

	submission, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)

	approved, err := f.svc.ApproveSubmission(submission.ID, "很好")
	require.NoError(t, err)
	require.Equal(t, model.SubmissionStatusApproved, approved.Status)
	require.Equal(t, "很好", approved.ReviewerNote)
	require.NotNil(t, approved.ReviewedAt)
	require.GreaterOrEqual(t, f.cache.invalidated, 2)
}

func TestRejectSubmissionRequiresNote(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{Types: []string{model.SubmissionTypeText}})

	submission, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)

	_, err = f.svc.RejectSubmission(submission.ID, "")
	require.ErrorIs(t, err, ErrValidation)

	rejected, err := f.svc.RejectSubmission(submission.ID, "照片模糊，请重新上传")
	require.NoError(t, err)
	require.Equal(t, model.SubmissionStatusRejected, rejected.Status)
}

func TestReviewTwiceConflicts(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{Types: []string{model.SubmissionTypeText}})

	submission, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)

	_, err = f.svc.ApproveSubmission(submission.ID, "")
	require.NoError(t, err)

	// 第二次审核同一条提交得到冲突
	_, err = f.svc.RejectSubmission(submission.ID, "重复审核")
	require.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.ApproveSubmission(submission.ID, "")
	require.ErrorIs(t, err, ErrConflict)

	// 状态保持首次审核的结果
	got, err := f.svc.GetSubmission(submission.ID)
	require.NoError(t, err)
	require.Equal(t, model.SubmissionStatusApproved, got.Status)
}

func TestResubmitAfterReject(t *testing.T) {
	f := newSubmissionFixture(t)
	subMission := f.createSubMission(t, model.SubMission{Types: []string{model.SubmissionTypeText}})

	first, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)
	_, err = f.svc.RejectSubmission(first.ID, "内容不完整")
	require.NoError(t, err)

	// 驳回后可以生成一条新的提交，旧记录保留
	second, err := f.svc.CreateSubmission(1, subMission.ID, textSlots())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	mine, err := f.svc.ListMySubmissions(1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
}

func TestReviewNotFound(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.ApproveSubmission(404, "")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.RejectSubmission(404, "x")
	require.ErrorIs(t, err, ErrNotFound)
}

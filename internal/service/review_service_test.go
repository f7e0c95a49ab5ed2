package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reviewFixture struct {
	db    *gorm.DB
	svc   ReviewService
	cache *fakeReviewCache

	hospitalA *model.Hospital
	hospitalB *model.Hospital

	publicMission    *model.Mission
	hospitalAMission *model.Mission
	hospitalBMission *model.Mission

	superAdmin *model.User
	adminA     *model.User
	plainUser  *model.User
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := newTestDB(t)
	cache := newFakeReviewCache()
	f := &reviewFixture{
		db:    db,
		cache: cache,
		svc: NewReviewService(
			repository.NewMissionRepository(db),
			repository.NewSubMissionRepository(db),
			repository.NewSubmissionRepository(db),
			cache,
			time.Minute,
		),
	}

	f.hospitalA = &model.Hospital{Name: "医院A"}
	f.hospitalB = &model.Hospital{Name: "医院B"}
	require.NoError(t, db.Create(f.hospitalA).Error)
	require.NoError(t, db.Create(f.hospitalB).Error)

	f.publicMission = &model.Mission{Title: "公开任务", Visibility: model.VisibilityPublic, IsActive: true}
	f.hospitalAMission = &model.Mission{
		Title: "医院A任务", Visibility: model.VisibilityHospital,
		HospitalID: &f.hospitalA.ID, IsActive: true,
	}
	f.hospitalBMission = &model.Mission{
		Title: "医院B任务", Visibility: model.VisibilityHospital,
		HospitalID: &f.hospitalB.ID, IsActive: true,
	}
	require.NoError(t, db.Create(f.publicMission).Error)
	require.NoError(t, db.Create(f.hospitalAMission).Error)
	require.NoError(t, db.Create(f.hospitalBMission).Error)

	f.superAdmin = &model.User{Username: "root", Password: "x", MemberType: model.MemberTypeSuperAdmin}
	f.adminA = &model.User{
		Username: "adminA", Password: "x",
		MemberType: model.MemberTypeHospitalAdmin, HospitalID: &f.hospitalA.ID,
	}
	f.plainUser = &model.User{Username: "mom", Password: "x", MemberType: model.MemberTypeUser}
	require.NoError(t, db.Create(f.superAdmin).Error)
	require.NoError(t, db.Create(f.adminA).Error)
	require.NoError(t, db.Create(f.plainUser).Error)

	return f
}

// seedSubmissions 在任务下建一个子任务并写入各状态的提交。
func (f *reviewFixture) seedSubmissions(t *testing.T, mission *model.Mission, submitted, approved, rejected int) *model.SubMission {
	t.Helper()
	subMission := &model.SubMission{
		MissionID: mission.ID, Title: mission.Title + "-提交项",
		Types: []string{model.SubmissionTypeText}, IsActive: true,
	}
	require.NoError(t, f.db.Create(subMission).Error)

	add := func(status string, n int) {
		for i := 0; i < n; i++ {
			require.NoError(t, f.db.Create(&model.Submission{
				SubMissionID: subMission.ID,
				UserID:       uint(i + 1),
				Status:       status,
			}).Error)
		}
	}
	add(model.SubmissionStatusSubmitted, submitted)
	add(model.SubmissionStatusApproved, approved)
	add(model.SubmissionStatusRejected, rejected)
	return subMission
}

func TestReviewStatsSuperAdminSeesAll(t *testing.T) {
	f := newReviewFixture(t)
	f.seedSubmissions(t, f.publicMission, 2, 1, 0)
	f.seedSubmissions(t, f.hospitalAMission, 1, 0, 1)
	f.seedSubmissions(t, f.hospitalBMission, 3, 0, 0)

	stats, err := f.svc.Stats(context.Background(), f.superAdmin, "all")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	byID := make(map[uint]ThemeStats)
	for _, s := range stats {
		byID[s.MissionID] = s
	}
	require.Equal(t, int64(2), byID[f.publicMission.ID].Counts.Submitted)
	require.Equal(t, int64(3), byID[f.publicMission.ID].Total)
	require.Equal(t, int64(1), byID[f.hospitalAMission.ID].Counts.Rejected)
	require.Equal(t, int64(3), byID[f.hospitalBMission.ID].Counts.Submitted)
}

func TestReviewStatsRollUpChildMissions(t *testing.T) {
	f := newReviewFixture(t)
	f.seedSubmissions(t, f.publicMission, 1, 0, 0)

	// 两层子任务（子主题与孙主题），其下的提交都要汇总到顶层任务上
	child := &model.Mission{
		Title: "子主题", Visibility: model.VisibilityPublic,
		ParentID: &f.publicMission.ID, IsActive: true,
	}
	require.NoError(t, f.db.Create(child).Error)
	grandchild := &model.Mission{
		Title: "孙主题", Visibility: model.VisibilityPublic,
		ParentID: &child.ID, IsActive: true,
	}
	require.NoError(t, f.db.Create(grandchild).Error)
	childSM := f.seedSubmissions(t, child, 2, 1, 0)
	f.seedSubmissions(t, grandchild, 0, 0, 3)

	stats, err := f.svc.Stats(context.Background(), f.superAdmin, "all")
	require.NoError(t, err)

	byID := make(map[uint]ThemeStats)
	for _, s := range stats {
		byID[s.MissionID] = s
	}
	// 子主题不单独成行
	require.NotContains(t, byID, child.ID)
	require.NotContains(t, byID, grandchild.ID)
	require.Equal(t, int64(3), byID[f.publicMission.ID].Counts.Submitted)
	require.Equal(t, int64(1), byID[f.publicMission.ID].Counts.Approved)
	require.Equal(t, int64(3), byID[f.publicMission.ID].Counts.Rejected)
	require.Equal(t, int64(7), byID[f.publicMission.ID].Total)

	// 子任务明细同样覆盖整棵树
	detail, err := f.svc.ThemeMissions(context.Background(), f.superAdmin, "all", f.publicMission.ID)
	require.NoError(t, err)
	require.Len(t, detail, 3)
	bySM := make(map[uint]SubMissionStats)
	for _, s := range detail {
		bySM[s.SubMissionID] = s
	}
	require.Equal(t, int64(2), bySM[childSM.ID].Counts.Submitted)
}

func TestReviewStatsHospitalAdminPinnedToOwnHospital(t *testing.T) {
	f := newReviewFixture(t)
	f.seedSubmissions(t, f.publicMission, 1, 0, 0)
	f.seedSubmissions(t, f.hospitalAMission, 2, 0, 0)
	f.seedSubmissions(t, f.hospitalBMission, 5, 0, 0)

	// 即使请求 all，医院管理员也只能看到公开任务与自己医院的任务
	stats, err := f.svc.Stats(context.Background(), f.adminA, "all")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	for _, s := range stats {
		require.NotEqual(t, f.hospitalBMission.ID, s.MissionID)
	}
}

func TestReviewStatsPlainUserForbidden(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.svc.Stats(context.Background(), f.plainUser, "all")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestReviewStatsSuperAdminScopedToHospital(t *testing.T) {
	f := newReviewFixture(t)
	f.seedSubmissions(t, f.hospitalAMission, 2, 0, 0)
	f.seedSubmissions(t, f.hospitalBMission, 5, 0, 0)

	stats, err := f.svc.Stats(context.Background(), f.superAdmin, fmt.Sprintf("%d", f.hospitalB.ID))
	require.NoError(t, err)
	for _, s := range stats {
		require.NotEqual(t, f.hospitalAMission.ID, s.MissionID)
	}

	_, err = f.svc.Stats(context.Background(), f.superAdmin, "bogus")
	require.ErrorIs(t, err, ErrValidation)
}

func TestReviewStatsServedFromCache(t *testing.T) {
	f := newReviewFixture(t)
	f.seedSubmissions(t, f.publicMission, 1, 0, 0)

	first, err := f.svc.Stats(context.Background(), f.superAdmin, "all")
	require.NoError(t, err)

	// 绕过 service 直接写库，缓存未失效时读到旧值
	f.seedSubmissions(t, f.hospitalAMission, 9, 0, 0)
	cached, err := f.svc.Stats(context.Background(), f.superAdmin, "all")
	require.NoError(t, err)
	require.Equal(t, len(first), len(cached))

	// 失效后重新聚合
	require.NoError(t, f.cache.InvalidateAll(context.Background()))
	fresh, err := f.svc.Stats(context.Background(), f.superAdmin, "all")
	require.NoError(t, err)
	require.Len(t, fresh, 3)
}

func TestThemeMissionsPerSubMissionCounts(t *testing.T) {
	f := newReviewFixture(t)
	sm1 := f.seedSubmissions(t, f.publicMission, 2, 1, 0)
	sm2 := f.seedSubmissions(t, f.publicMission, 0, 0, 3)

	stats, err := f.svc.ThemeMissions(context.Background(), f.superAdmin, "all", f.publicMission.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byID := make(map[uint]SubMissionStats)
	for _, s := range stats {
		byID[s.SubMissionID] = s
	}
	require.Equal(t, int64(2), byID[sm1.ID].Counts.Submitted)
	require.Equal(t, int64(1), byID[sm1.ID].Counts.Approved)
	require.Equal(t, int64(3), byID[sm2.ID].Counts.Rejected)
	require.Equal(t, int64(3), byID[sm2.ID].Total)
}

func TestThemeMissionsOutOfScopeIsNotFound(t *testing.T) {
	f := newReviewFixture(t)
	f.seedSubmissions(t, f.hospitalBMission, 1, 0, 0)

	// 医院A的管理员访问医院B的任务，以不存在处理
	_, err := f.svc.ThemeMissions(context.Background(), f.adminA, "all", f.hospitalBMission.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReviewSubmissionsListing(t *testing.T) {
	f := newReviewFixture(t)
	subMission := f.seedSubmissions(t, f.publicMission, 2, 1, 1)

	all, err := f.svc.Submissions(context.Background(), f.superAdmin, "all", subMission.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 4)

	pending, err := f.svc.Submissions(context.Background(), f.superAdmin, "all", subMission.ID, model.SubmissionStatusSubmitted)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	_, err = f.svc.Submissions(context.Background(), f.superAdmin, "all", subMission.ID, "pending")
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Submissions(context.Background(), f.superAdmin, "all", 9999, "")
	require.ErrorIs(t, err, ErrNotFound)
}

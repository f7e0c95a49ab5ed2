package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"momcare-go/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 创建一个内存 SQLite 数据库并迁移全部数据表。
// 使用 shared cache 确保连接池中的连接看到同一个库。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Hospital{},
		&model.Mission{},
		&model.MissionFolder{},
		&model.Category{},
		&model.SubMission{},
		&model.Submission{},
		&model.ActionType{},
		&model.Generation{},
	)
	require.NoError(t, err)
	return db
}

// date 构造一个测试用日期。
func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// uintPtr 返回指向给定值的指针。
func uintPtr(v uint) *uint {
	return &v
}

// fakeReviewCache 是 ReviewCacheRepository 的内存实现，记录失效次数。
type fakeReviewCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated int
}

func newFakeReviewCache() *fakeReviewCache {
	return &fakeReviewCache{data: make(map[string][]byte)}
}

func (f *fakeReviewCache) GetStats(ctx context.Context, scope string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[scope], nil
}

func (f *fakeReviewCache) SetStats(ctx context.Context, scope string, data []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[scope] = data
	return nil
}

func (f *fakeReviewCache) InvalidateAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string][]byte)
	f.invalidated++
	return nil
}

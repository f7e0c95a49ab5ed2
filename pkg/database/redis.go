package database

import (
	"context"
	"time"

	"momcare-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接。
// 审核看板的统计缓存与生成任务的重试计数都走这条连接，
// 池子按看板的读放大预留。
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 4,
	})

	// 启动时校验连通性，连不上直接失败而不是带病运行
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis 连接失败", err)
	}

	log.Info("Redis 连接成功")
}

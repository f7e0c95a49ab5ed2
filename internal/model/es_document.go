// Package model 定义了与数据库表对应的 Go 结构体。
package model

// EsMission 代表存储在 Elasticsearch 任务索引中的文档结构。
type EsMission struct {
	MissionID   uint   `json:"mission_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	HospitalID  uint   `json:"hospital_id"`
	IsActive    bool   `json:"is_active"`
}

// MissionSearchHit 定义了返回给管理后台的任务搜索结果结构。
type MissionSearchHit struct {
	MissionID  uint    `json:"missionId"`
	Title      string  `json:"title"`
	Visibility string  `json:"visibility"`
	Score      float64 `json:"score"`
}

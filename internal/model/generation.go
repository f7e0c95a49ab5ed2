// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// AI 生成任务的种类与状态。
const (
	GenerationKindImage = "image"
	GenerationKindMusic = "music"

	GenerationStatusPending    = "pending"
	GenerationStatusProcessing = "processing"
	GenerationStatusCompleted  = "completed"
	GenerationStatusFailed     = "failed"
)

// Generation 对应于数据库中的 'generations' 表。
// 它记录一次 AI 图片/音乐生成请求的元数据与结果。
// 产物本体保存在对象存储中，这里只保留对象名与预签名 URL。
type Generation struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint   `gorm:"not null;index" json:"userId"`
	Kind   string `gorm:"type:varchar(20);not null" json:"kind"`
	Prompt string `gorm:"type:text;not null" json:"prompt"`
	// Style 是可选的风格/流派参数，原样传给上游模型。
	Style string `gorm:"type:varchar(100)" json:"style"`
	// Status 是 pending / processing / completed / failed 之一。
	Status string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// ObjectName 是产物在 MinIO 中的对象名。
	ObjectName string `gorm:"type:varchar(255)" json:"objectName"`
	// ResultURL 是产物的预签名下载 URL。
	ResultURL string `gorm:"type:varchar(1000)" json:"resultUrl"`
	// ErrorMsg 在 status=failed 时记录失败原因。
	ErrorMsg  string    `gorm:"type:text" json:"errorMsg"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Generation) TableName() string {
	return "generations"
}

// IsTerminal 判断生成任务是否已到达终态。
func (g *Generation) IsTerminal() bool {
	return g.Status == GenerationStatusCompleted || g.Status == GenerationStatusFailed
}

// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// ActionType 对应于数据库中的 'action_types' 表。
// 它是用户行为的标签枚举（如"申请"、"出席"）。
// IsSystem 为 true 的行由系统内置，拒绝任何编辑和删除。
type ActionType struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Label string `gorm:"type:varchar(100);not null" json:"label"`
	// Order 决定展示顺序；允许并列，并列时按 id 先后排列。
	Order     int       `gorm:"column:display_order;not null;default:0" json:"order"`
	IsSystem  bool      `gorm:"not null;default:false" json:"isSystem"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ActionType) TableName() string {
	return "action_types"
}

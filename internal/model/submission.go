// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 提交的审核状态机：submitted → approved | rejected。
// rejected 之后用户可以重新提交（生成一条新记录）。
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
)

// SubmissionSlot 是一次提交中某个槽位的内容，
// 类型必须与子任务在相同下标声明的类型一致。
type SubmissionSlot struct {
	SlotIndex int    `json:"slotIndex"`
	Type      string `json:"type"`
	// Value 依类型而定：file/image 为对象存储 URL，link 为外部 URL，text 为正文。
	Value string `json:"value"`
}

// Submission 对应于数据库中的 'submissions' 表。
// 它是用户针对某个子任务的一次完成尝试。
type Submission struct {
	ID           uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SubMissionID uint `gorm:"not null;index" json:"subMissionId"`
	UserID       uint `gorm:"not null;index" json:"userId"`
	// Slots 保存各槽位的提交内容，数量与子任务声明的类型一一对应。
	Slots []SubmissionSlot `gorm:"type:text;serializer:json" json:"slots"`
	// Status 是 submitted / approved / rejected 之一。
	Status string `gorm:"type:varchar(20);not null;default:'submitted';index" json:"status"`
	// ReviewerNote 记录审核意见。驳回时必填。
	ReviewerNote string     `gorm:"type:text" json:"reviewerNote"`
	ReviewedAt   *time.Time `json:"reviewedAt"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Submission) TableName() string {
	return "submissions"
}

// StatusCounts 是按审核状态分组的提交数量，审核看板的基本聚合单元。
type StatusCounts struct {
	Submitted int64 `json:"submitted"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
}

// Total 返回三种状态的总数。
func (c StatusCounts) Total() int64 {
	return c.Submitted + c.Approved + c.Rejected
}

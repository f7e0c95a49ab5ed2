// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 子任务允许的提交内容类型。
const (
	SubmissionTypeFile         = "file"
	SubmissionTypeImage        = "image"
	SubmissionTypeLink         = "link"
	SubmissionTypeText         = "text"
	SubmissionTypeReview       = "review"
	SubmissionTypeStudioSubmit = "studio_submit"
	SubmissionTypeAttendance   = "attendance"
)

// ValidSubmissionTypes 是所有合法提交类型的集合，供 API 边界校验使用。
var ValidSubmissionTypes = map[string]bool{
	SubmissionTypeFile:         true,
	SubmissionTypeImage:        true,
	SubmissionTypeLink:         true,
	SubmissionTypeText:         true,
	SubmissionTypeReview:       true,
	SubmissionTypeStudioSubmit: true,
	SubmissionTypeAttendance:   true,
}

// SlotLabel 是某个提交槽位的展示标签，按槽位下标显式寻址，
// 取代按字符串化下标 key 的松散 map。
type SlotLabel struct {
	SlotIndex int    `json:"slotIndex"`
	Label     string `json:"label"`
}

// StudioConfig 是 studio_submit 类型子任务的附加配置。
type StudioConfig struct {
	StudioName  string `json:"studioName"`
	ContactInfo string `json:"contactInfo"`
}

// AttendanceConfig 是 attendance 类型子任务的附加配置。
type AttendanceConfig struct {
	Location     string `json:"location"`
	RequiredDays int    `json:"requiredDays"`
}

// SubMission 对应于数据库中的 'sub_missions' 表。
// 它是任务下的一个可提交要求，声明了提交内容的类型与数量。
type SubMission struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	MissionID uint `gorm:"not null;index" json:"missionId"`
	Title     string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// Types 声明了每个槽位的提交类型，按槽位顺序排列。
	Types []string `gorm:"type:text;serializer:json" json:"types"`
	// SlotLabels 是各槽位的展示标签，可以只覆盖部分槽位。
	SlotLabels []SlotLabel `gorm:"type:text;serializer:json" json:"slotLabels"`
	// ReviewRequired 为 true 时提交需要管理员审核才算完成。
	ReviewRequired bool `gorm:"not null;default:true" json:"reviewRequired"`
	// StartDate/EndDate 限定子任务自身的开放窗口，叠加在父任务窗口之上。
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	// Level 是顺序闸门：非零时，须先在同一任务下完成所有更低 level 的子任务。
	Level int `gorm:"not null;default:0" json:"level"`
	// Order 是子任务在任务内的展示顺序。
	Order    int  `gorm:"column:display_order;not null;default:0" json:"order"`
	IsActive bool `gorm:"not null;default:true" json:"isActive"`
	// StudioConfig / AttendanceConfig 仅对相应类型的子任务有意义。
	StudioConfig     *StudioConfig     `gorm:"type:text;serializer:json" json:"studioConfig,omitempty"`
	AttendanceConfig *AttendanceConfig `gorm:"type:text;serializer:json" json:"attendanceConfig,omitempty"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (SubMission) TableName() string {
	return "sub_missions"
}

// WindowStatus 根据给定时间计算子任务的三态窗口状态，语义与 Mission 一致。
func (s *SubMission) WindowStatus(now time.Time) string {
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return WindowUpcoming
	}
	if s.EndDate != nil && now.After(s.EndDate.Add(24*time.Hour-time.Nanosecond)) {
		return WindowClosed
	}
	return WindowOpen
}

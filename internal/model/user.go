// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 用户成员类型。hospital_admin 的审核视角始终被限制在自己所属的医院。
const (
	MemberTypeSuperAdmin    = "superadmin"
	MemberTypeHospitalAdmin = "hospital_admin"
	MemberTypeUser          = "user"
)

// User 对应于数据库中的 'users' 表。
type User struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// Username 是登录名，全局唯一。
	Username string `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	// Password 存储 bcrypt 哈希后的密码，绝不以明文形式出现。
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	// Role 是访问控制角色：USER 或 ADMIN。
	Role string `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	// MemberType 决定审核看板的数据范围：superadmin / hospital_admin / user。
	MemberType string `gorm:"type:varchar(20);not null;default:'user'" json:"memberType"`
	// HospitalID 指向用户所属的医院。普通用户与 superadmin 可以为空。
	HospitalID *uint     `json:"hospitalId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}

// IsSuperAdmin 判断用户是否为超级管理员。
func (u *User) IsSuperAdmin() bool {
	return u.MemberType == MemberTypeSuperAdmin
}

// Hospital 对应于数据库中的 'hospitals' 表。
type Hospital struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Region   string `gorm:"type:varchar(100)" json:"region"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`
	// CreatedAt 由 GORM 自动管理，记录创建时间。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Hospital) TableName() string {
	return "hospitals"
}

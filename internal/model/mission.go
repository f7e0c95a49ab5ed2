// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 任务可见范围。visibility=hospital 时必须指定所属医院。
const (
	VisibilityPublic   = "public"
	VisibilityHospital = "hospital"
	VisibilityDev      = "dev"
)

// 任务的时间窗口状态，由 start/end 日期与当前时间推导。
const (
	WindowUpcoming = "upcoming"
	WindowOpen     = "open"
	WindowClosed   = "closed"
)

// Mission 对应于数据库中的 'missions' 表。
// 它是展示给终端用户的顶层内容单元，可按医院限定可见性并设置时间窗口。
type Mission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// HeaderImageURL / GiftImageURL 是由对象存储上传接口返回的 URL，这里只保存引用。
	HeaderImageURL string `gorm:"type:varchar(500)" json:"headerImageUrl"`
	GiftImageURL   string `gorm:"type:varchar(500)" json:"giftImageUrl"`
	// Visibility 是 public / hospital / dev 之一。
	Visibility string `gorm:"type:varchar(20);not null;default:'public'" json:"visibility"`
	// HospitalID 在 visibility=hospital 时必填。
	HospitalID *uint `json:"hospitalId"`
	CategoryID *uint `json:"categoryId"`
	// ParentID 指向父任务，构成浅层的子任务树。顶层任务为 NULL。
	ParentID *uint `json:"parentId"`
	// FolderID 是展示分组，NULL 表示"未分类"。与 ParentID 相互独立。
	FolderID *uint `json:"folderId"`
	// Order 是同一分组（文件夹）内的展示顺序，由前端整批提交。
	Order    int  `gorm:"column:display_order;not null;default:0" json:"order"`
	IsActive bool `gorm:"not null;default:true" json:"isActive"`
	// StartDate/EndDate 限定任务的开放窗口（含两端）。为空表示不限。
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Children 由服务层组树时填充，不映射数据库列。
	Children []*Mission `gorm:"-" json:"children,omitempty"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Mission) TableName() string {
	return "missions"
}

// WindowStatus 根据给定时间计算任务的三态窗口状态。
// 边界日期是包含的：开始当天即 open，结束当天仍 open。
func (m *Mission) WindowStatus(now time.Time) string {
	if m.StartDate != nil && now.Before(*m.StartDate) {
		return WindowUpcoming
	}
	if m.EndDate != nil && now.After(m.EndDate.Add(24*time.Hour-time.Nanosecond)) {
		return WindowClosed
	}
	return WindowOpen
}

// MissionFolder 对应于数据库中的 'mission_folders' 表。
// 文件夹只是顶层任务的展示分组，删除文件夹不会删除其中的任务。
type MissionFolder struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Color string `gorm:"type:varchar(20)" json:"color"`
	// Order 是文件夹之间的展示顺序。
	Order       int       `gorm:"column:display_order;not null;default:0" json:"order"`
	IsCollapsed bool      `gorm:"not null;default:false" json:"isCollapsed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (MissionFolder) TableName() string {
	return "mission_folders"
}

// Category 对应于数据库中的 'categories' 表。
// 分类是与文件夹无关的扁平归类。
type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Order     int       `gorm:"column:display_order;not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Category) TableName() string {
	return "categories"
}

// MissionOrder 是任务重排序批量请求中的一项：目标顺序与目标文件夹。
// FolderID 为 0 是"未分类"的哨兵值，落库时转换为 NULL。
type MissionOrder struct {
	ID       uint `json:"id" binding:"required"`
	Order    int  `json:"order"`
	FolderID uint `json:"folderId"`
}

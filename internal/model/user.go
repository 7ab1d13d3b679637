package model

// ── 角色常量 ──

const (
	RoleTeacher  = "teacher"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// User 用户表 — 对应 users
// teacher 归属于一所学校；reviewer / admin 为平台工作人员，SchoolID 为空
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'teacher'"    json:"role"`
	SchoolID     *string `gorm:"type:uuid"                                      json:"school_id,omitempty"`
	VersionedModel

	// 关联
	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

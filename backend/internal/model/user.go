package model

// User 用户表，对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'resident'"   json:"role"`
	Area         string `gorm:"type:varchar(100);not null;default:''"          json:"area"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "users" }

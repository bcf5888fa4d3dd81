package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"` // bcrypt哈希，响应前必须经过 Sanitized
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	Verified  bool      `json:"verified"`
}

// Sanitized 返回去掉密码哈希的副本
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

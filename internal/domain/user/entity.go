package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleDeveloper, RoleModerator, RoleUser:
		return r, true
	}
	return "", false
}

// IsStaff 员工（可进入后台）
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleDeveloper || r == RoleModerator
}

// User 用户实体（聚合根）
// Password为bcrypt哈希值
type User struct {
	ID        string
	Email     string
	Password  string
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户
func NewUser(id, email, hashedPassword, nickname string, role Role, now time.Time) *User {
	return &User{
		ID:        id,
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ChangeRole 修改角色
func (u *User) ChangeRole(role Role, now time.Time) {
	u.Role = role
	u.UpdatedAt = now
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string, now time.Time) {
	u.Nickname = nickname
	u.UpdatedAt = now
}

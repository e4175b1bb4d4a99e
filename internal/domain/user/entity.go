package user

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User 用户(聚合根)
// Password只保存bcrypt哈希，不提供取回明文的方法
type User struct {
	ID        uint
	Email     string
	Password  string
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser hashedPassword必须是已经加密后的密码
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hashedPassword,
		Nickname:  strings.TrimSpace(nickname),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateNickname 修改昵称
func (u *User) UpdateNickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if err := ValidateNickname(nickname); err != nil {
		return err
	}
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
	return nil
}

// ValidateNickname 昵称2-50个字符
func ValidateNickname(nickname string) error {
	if n := utf8.RuneCountInString(nickname); n < 2 || n > 50 {
		return ErrInvalidNickname
	}
	return nil
}

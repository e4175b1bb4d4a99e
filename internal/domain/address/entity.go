package address

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\- ]{5,19}$`)

// Address 收货地址
type Address struct {
	ID        uint
	UserID    uint
	Receiver  string
	Phone     string
	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAddress 创建收货地址（校验每个字段）
func NewAddress(userID uint, receiver, phone, detail string) (*Address, error) {
	if userID == 0 {
		return nil, ErrInvalidAddress.WithMessage("用户ID不能为空")
	}

	receiver = strings.TrimSpace(receiver)
	if n := utf8.RuneCountInString(receiver); n == 0 || n > 50 {
		return nil, ErrInvalidAddress.WithMessage("收货人长度必须在1-50之间")
	}

	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidAddress.WithMessage("手机号格式错误")
	}

	detail = strings.TrimSpace(detail)
	if n := utf8.RuneCountInString(detail); n == 0 || n > 255 {
		return nil, ErrInvalidAddress.WithMessage("详细地址长度必须在1-255之间")
	}

	now := time.Now()
	return &Address{
		UserID:    userID,
		Receiver:  receiver,
		Phone:     phone,
		Detail:    detail,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BelongsTo 地址是否属于该用户
func (a *Address) BelongsTo(userID uint) bool {
	return a.UserID == userID
}

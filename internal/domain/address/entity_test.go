package address

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name     string
		userID   uint
		receiver string
		phone    string
		detail   string
		wantErr  bool
	}{
		{"合法地址", 1, " 张三 ", "13800138000", "北京市海淀区1号", false},
		{"带国家码", 1, "Li", "+86 138-0013-8000", "Shanghai", false},
		{"缺少用户", 0, "张三", "13800138000", "北京", true},
		{"收货人为空", 1, "  ", "13800138000", "北京", true},
		{"手机号非法", 1, "张三", "abc", "北京", true},
		{"地址为空", 1, "张三", "13800138000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewAddress(tt.userID, tt.receiver, tt.phone, tt.detail)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidAddress))
				assert.Nil(t, addr)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, addr.Receiver, " ")
			assert.True(t, addr.BelongsTo(tt.userID))
			assert.False(t, addr.BelongsTo(tt.userID+1))
		})
	}
}

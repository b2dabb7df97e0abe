package user

import (
	"testing"
	"time"

	"alipan-client/internal/models"
)

func TestNeedExpiryRefresh(t *testing.T) {
	// ExpireTime 只保留秒级精度，基准时间取整秒避免边界误差
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		remaining time.Duration
		want      bool
	}{
		{"已过期", -time.Hour, true},
		{"剩余1秒", time.Second, true},
		{"剩余179秒_窗口内", 179 * time.Second, true},
		{"剩余整180秒_窗口外", 180 * time.Second, false},
		{"剩余181秒_窗口外", 181 * time.Second, false},
		{"剩余2小时", 2 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := models.DefaultTokenInfo()
			token.ExpireTime = now.Add(tt.remaining).Format(models.TimeFormat)
			if got := NeedExpiryRefresh(token, now); got != tt.want {
				t.Errorf("NeedExpiryRefresh() = %v, 期望 %v", got, tt.want)
			}
		})
	}

	t.Run("过期时间为空视为已过期", func(t *testing.T) {
		token := models.DefaultTokenInfo()
		if !NeedExpiryRefresh(token, now) {
			t.Error("缺少过期时间的记录应判定为需要刷新")
		}
	})
}

func TestNeedFullRefresh(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		elapsed time.Duration
		force   bool
		want    bool
	}{
		{"非强制不做完整刷新", time.Hour, false, false},
		{"强制但签发不足600秒", 599 * time.Second, true, false},
		{"强制且签发整600秒", 600 * time.Second, true, true},
		{"强制且签发超过600秒", 20 * time.Minute, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := models.DefaultTokenInfo()
			token.SetExpiresIn(now.Add(-tt.elapsed), 7200)
			if got := NeedFullRefresh(token, now, tt.force); got != tt.want {
				t.Errorf("NeedFullRefresh() = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

func TestNeedSign(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		signMon int
		signDay int
		want    bool
	}{
		{"从未签到", -1, -1, true},
		{"当天已签到", 8, 30, false},
		{"昨天签到过", 8, 29, true},
		{"上个月同一天签到过", 7, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := models.DefaultTokenInfo()
			token.SignInfo.SignMon = tt.signMon
			token.SignInfo.SignDay = tt.signDay
			if got := NeedSign(token, now); got != tt.want {
				t.Errorf("NeedSign() = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

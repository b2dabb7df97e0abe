package user

import (
	"context"
	"time"

	"alipan-client/internal/logger"
)

// RefreshAllUserToken 对缓存中的所有账号做一轮过期检查：
// 进入 3 分钟过期窗口的账号依次刷新主 Token 和 Session。
// 单个账号失败只记录日志，不中断本轮其余账号；
// 本方法不改变活跃状态，也不触碰签到记录
func (d *DAL) RefreshAllUserToken(ctx context.Context) {
	now := time.Now()
	for _, token := range d.tokens.List() {
		if !NeedExpiryRefresh(token, now) {
			continue
		}

		ok, err := d.api.TokenRefreshAccount(ctx, token, false)
		if err != nil {
			logger.Error("定时刷新: 刷新 Token 失败 - ID: %s, 错误: %v", token.UserID, err)
			continue
		}
		if !ok {
			logger.Warn("定时刷新: 账号凭证已失效 - ID: %s, 名称: %s", token.UserID, token.Name)
			continue
		}
		if _, err := d.api.SessionRefreshAccount(ctx, token, false); err != nil {
			logger.Error("定时刷新: 刷新 Session 失败 - ID: %s, 错误: %v", token.UserID, err)
		}
		d.saveToken(ctx, token)
	}
}

// RunTokenRefreshLoop 按固定间隔执行过期检查，直到 ctx 结束
func (d *DAL) RunTokenRefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Token 定时刷新已启动 - 间隔: %v", interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Token 定时刷新已停止")
			return
		case <-ticker.C:
			d.RefreshAllUserToken(ctx)
		}
	}
}

package user

import (
	"time"

	"alipan-client/internal/models"
)

// TokenExpireWindow 过期窗口：距离过期不足 3 分钟即提前刷新，
// 为时钟偏差和网络延迟留出余量，避免请求在途中失效
const TokenExpireWindow = 3 * time.Minute

// FullRefreshAfter 强制刷新的二级阈值：签发不足 600 秒只刷新资料，
// 避免界面轮询反复击打远程服务
const FullRefreshAfter = 600 * time.Second

// NeedExpiryRefresh 判断主 Token 是否已进入过期窗口
// 恰好剩余 3 分钟时尚未到期，不刷新
func NeedExpiryRefresh(token *models.TokenInfo, now time.Time) bool {
	return token.ExpireAt().Sub(now) < TokenExpireWindow
}

// NeedSign 判断当天是否还未签到（月或日与今天不符即需要签到）
func NeedSign(token *models.TokenInfo, today time.Time) bool {
	return token.SignInfo.SignMon != int(today.Month()) || token.SignInfo.SignDay != today.Day()
}

// NeedFullRefresh 强制刷新的两级判定：
// 非强制或签发后不足 600 秒走轻量资料刷新，否则执行完整的 Token+Session+OpenApi 刷新
func NeedFullRefresh(token *models.TokenInfo, now time.Time, force bool) bool {
	if !force {
		return false
	}
	return now.Sub(token.IssuedAt()) >= FullRefreshAfter
}

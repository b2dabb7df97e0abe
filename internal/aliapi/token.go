package aliapi

import (
	"context"
	"encoding/json"
	"time"

	"alipan-client/internal/logger"
	"alipan-client/internal/models"
	"alipan-client/internal/user"
)

// tokenResponse 主 Token 刷新响应
type tokenResponse struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	ExpiresIn          int64  `json:"expires_in"`
	TokenType          string `json:"token_type"`
	UserID             string `json:"user_id"`
	UserName           string `json:"user_name"`
	NickName           string `json:"nick_name"`
	Avatar             string `json:"avatar"`
	DefaultDriveID     string `json:"default_drive_id"`
	DefaultSBoxDriveID string `json:"default_sbox_drive_id"`
	Role               string `json:"role"`
	Status             string `json:"status"`
	State              string `json:"state"`
	PinSetup           bool   `json:"pin_setup"`
	IsFirstLogin       bool   `json:"is_first_login"`
	NeedRpVerify       bool   `json:"need_rp_verify"`
	DeviceID           string `json:"device_id"`
}

// TokenRefreshAccount 校验并刷新主 Token
// 非强制模式下，未进入过期窗口的 Token 视为有效，直接返回成功
func (c *Client) TokenRefreshAccount(ctx context.Context, token *models.TokenInfo, force bool) (bool, error) {
	if token.RefreshToken == "" {
		return false, nil
	}
	if !force && token.AccessToken != "" && !user.NeedExpiryRefresh(token, time.Now()) {
		return true, nil
	}

	payload := map[string]string{
		"refresh_token": token.RefreshToken,
		"grant_type":    "refresh_token",
	}

	now := time.Now()
	status, body, err := c.postJSON(ctx, TokenURL, payload, nil)
	if err != nil {
		return false, err
	}
	if status >= 400 {
		logger.Warn("刷新 Token 被拒绝 - ID: %s, 状态码: %d, 响应: %s", token.UserID, status, string(body))
		return false, nil
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, err
	}
	if resp.AccessToken == "" {
		logger.Warn("刷新 Token 响应无效 - ID: %s, 缺少 access_token", token.UserID)
		return false, nil
	}

	token.UserID = resp.UserID
	token.UserName = resp.UserName
	token.NickName = resp.NickName
	token.Avatar = resp.Avatar
	token.AccessToken = resp.AccessToken
	token.RefreshToken = resp.RefreshToken
	token.TokenType = resp.TokenType
	token.SetExpiresIn(now, resp.ExpiresIn)
	token.DefaultDriveID = resp.DefaultDriveID
	token.DefaultSBoxDriveID = resp.DefaultSBoxDriveID
	token.Role = resp.Role
	token.Status = resp.Status
	token.State = resp.State
	token.PinSetup = resp.PinSetup
	token.IsFirstLogin = resp.IsFirstLogin
	token.NeedRpVerify = resp.NeedRpVerify
	token.IsExpires = false
	if resp.DeviceID != "" {
		token.DeviceID = resp.DeviceID
	}
	if token.Name == "" {
		token.Name = resp.NickName
		if token.Name == "" {
			token.Name = resp.UserName
		}
	}
	c.EnsureDevice(token)

	logger.Debug("主 Token 已刷新 - ID: %s, 有效期: %d 秒", token.UserID, resp.ExpiresIn)
	return true, nil
}

// sessionResponse 设备会话创建响应
type sessionResponse struct {
	Result struct {
		Success bool `json:"success"`
	} `json:"result"`
	Success bool `json:"success"`
}

// SessionRefreshAccount 刷新设备会话（上报设备公钥并重新签名）
func (c *Client) SessionRefreshAccount(ctx context.Context, token *models.TokenInfo, force bool) (bool, error) {
	if token.UserID == "" || token.AccessToken == "" {
		return false, nil
	}
	c.EnsureDevice(token)
	token.Signature = deviceSignature(token.DeviceID, token.UserID, 0)

	payload := map[string]string{
		"deviceName": "Edge浏览器",
		"modelName":  "Windows网页版",
		"pubKey":     devicePubKey(token.DeviceID),
	}

	status, body, err := c.postJSON(ctx, SessionURL, payload, token)
	if err != nil {
		return false, err
	}
	if status >= 400 {
		logger.Warn("刷新 Session 被拒绝 - ID: %s, 状态码: %d", token.UserID, status)
		return false, nil
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, err
	}
	ok := resp.Success || resp.Result.Success
	if ok {
		logger.Debug("设备会话已刷新 - ID: %s", token.UserID)
	}
	return ok, nil
}

// openTokenResponse OpenApi Token 刷新响应
type openTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// OpenApiTokenRefreshAccount 刷新 OpenApi（第二套）凭证
// 未启用 OpenApi 时默认跳过并视为成功；strict 模式下未启用即失败
// 非强制模式下，距过期尚早的凭证不重复刷新
func (c *Client) OpenApiTokenRefreshAccount(ctx context.Context, token *models.TokenInfo, force, strict bool) (bool, error) {
	if !token.OpenApiEnable {
		return !strict, nil
	}
	if token.OpenApiRefreshToken == "" {
		return false, nil
	}

	now := time.Now()
	if !force && token.OpenApiAccessToken != "" {
		expireAt := time.Unix(token.OpenApiExpiresIn, 0)
		if expireAt.Sub(now) >= user.TokenExpireWindow {
			return true, nil
		}
	}

	payload := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": token.OpenApiRefreshToken,
	}

	status, body, err := c.postJSON(ctx, OpenTokenURL, payload, nil)
	if err != nil {
		return false, err
	}
	if status >= 400 {
		logger.Warn("刷新 OpenApiToken 被拒绝 - ID: %s, 状态码: %d, 响应: %s", token.UserID, status, string(body))
		return false, nil
	}

	var resp openTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, err
	}
	if resp.AccessToken == "" {
		return false, nil
	}

	token.OpenApiAccessToken = resp.AccessToken
	token.OpenApiRefreshToken = resp.RefreshToken
	token.OpenApiExpiresIn = now.Unix() + resp.ExpiresIn

	logger.Debug("OpenApiToken 已刷新 - ID: %s, 有效期: %d 秒", token.UserID, resp.ExpiresIn)
	return true, nil
}

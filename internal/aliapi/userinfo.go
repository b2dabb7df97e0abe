package aliapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alipan-client/internal/logger"
	"alipan-client/internal/models"

	"github.com/dustin/go-humanize"
)

// userInfoResponse 用户基础信息响应
type userInfoResponse struct {
	UserID             string `json:"user_id"`
	UserName           string `json:"user_name"`
	NickName           string `json:"nick_name"`
	Avatar             string `json:"avatar"`
	DefaultDriveID     string `json:"default_drive_id"`
	DefaultSBoxDriveID string `json:"default_sbox_drive_id"`
	Role               string `json:"role"`
	Status             string `json:"status"`
}

// spaceInfoResponse 空间配额响应
type spaceInfoResponse struct {
	PersonalSpaceInfo struct {
		UsedSize  int64 `json:"used_size"`
		TotalSize int64 `json:"total_size"`
	} `json:"personal_space_info"`
}

// UserInfo 拉取用户基础信息与空间配额，写入记录
func (c *Client) UserInfo(ctx context.Context, token *models.TokenInfo) error {
	status, body, err := c.postJSON(ctx, UserInfoURL, map[string]string{}, token)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("获取用户信息失败: HTTP %d", status)
	}

	var info userInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return err
	}

	if info.UserName != "" {
		token.UserName = info.UserName
	}
	if info.NickName != "" {
		token.NickName = info.NickName
	}
	if info.Avatar != "" {
		token.Avatar = info.Avatar
	}
	if info.DefaultDriveID != "" {
		token.DefaultDriveID = info.DefaultDriveID
	}
	if info.DefaultSBoxDriveID != "" {
		token.DefaultSBoxDriveID = info.DefaultSBoxDriveID
	}
	if info.Role != "" {
		token.Role = info.Role
	}
	if info.Status != "" {
		token.Status = info.Status
	}
	token.Name = token.NickName
	if token.Name == "" {
		token.Name = token.UserName
	}

	// 空间配额
	status, body, err = c.postJSON(ctx, SpaceInfoURL, map[string]string{}, token)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("获取空间信息失败: HTTP %d", status)
	}

	var space spaceInfoResponse
	if err := json.Unmarshal(body, &space); err != nil {
		return err
	}
	token.UsedSize = space.PersonalSpaceInfo.UsedSize
	token.TotalSize = space.PersonalSpaceInfo.TotalSize
	token.SpaceInfo = humanize.IBytes(uint64(token.UsedSize)) + "/" + humanize.IBytes(uint64(token.TotalSize))

	logger.Debug("用户信息已更新 - %s, 空间: %s", token.Name, token.SpaceInfo)
	return nil
}

// albumsInfoResponse 相册盘信息响应
type albumsInfoResponse struct {
	Code string `json:"code"`
	Data struct {
		DriveID   string `json:"driveId"`
		DriveName string `json:"driveName"`
	} `json:"data"`
}

// UserPic 拉取相册盘 drive_id，写入记录
func (c *Client) UserPic(ctx context.Context, token *models.TokenInfo) error {
	status, body, err := c.postJSON(ctx, AlbumsInfoURL, map[string]string{}, token)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("获取相册信息失败: HTTP %d", status)
	}

	var albums albumsInfoResponse
	if err := json.Unmarshal(body, &albums); err != nil {
		return err
	}
	if albums.Data.DriveID != "" {
		token.PicDriveID = albums.Data.DriveID
	}
	return nil
}

// vipInfoResponse 会员信息响应
type vipInfoResponse struct {
	Identity string `json:"identity"`
	Icon     string `json:"icon"`
	VipList  []struct {
		Name   string `json:"name"`
		SpuID  string `json:"spuId"`
		Expire int64  `json:"expire"`
	} `json:"vipList"`
}

// UserVip 拉取会员身份与到期时间，写入记录
func (c *Client) UserVip(ctx context.Context, token *models.TokenInfo) error {
	status, body, err := c.postJSON(ctx, VipInfoURL, map[string]string{}, token)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("获取会员信息失败: HTTP %d", status)
	}

	var vip vipInfoResponse
	if err := json.Unmarshal(body, &vip); err != nil {
		return err
	}

	token.VipIcon = vip.Icon
	if len(vip.VipList) > 0 {
		first := vip.VipList[0]
		expireAt := time.Unix(first.Expire, 0)
		token.VipName = first.Name
		token.SpuID = first.SpuID
		token.VipExpire = expireAt.Format("2006-01-02 15:04:05")
		token.IsExpires = expireAt.Before(time.Now())
	} else {
		token.VipName = vip.Identity
		token.VipExpire = ""
		token.IsExpires = false
	}
	return nil
}

// signInResponse 签到响应
type signInResponse struct {
	Success bool `json:"success"`
	Result  struct {
		SignInCount int `json:"signInCount"`
	} `json:"result"`
}

// UserSign 执行每日签到，成功返回累计签到天数
// ok=false 表示服务端拒绝本次签到，err 表示传输失败
func (c *Client) UserSign(ctx context.Context, token *models.TokenInfo) (int, bool, error) {
	payload := map[string]interface{}{"isReward": false}
	status, body, err := c.postJSON(ctx, SignInListURL+"?_rx-s=mobile", payload, token)
	if err != nil {
		return 0, false, err
	}
	if status >= 400 {
		logger.Warn("签到被拒绝 - ID: %s, 状态码: %d, 响应: %s", token.UserID, status, string(body))
		return 0, false, nil
	}

	var resp signInResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, false, err
	}
	if !resp.Success {
		return 0, false, nil
	}
	return resp.Result.SignInCount, true, nil
}

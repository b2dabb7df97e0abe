package models

import "time"

// TimeFormat 持久化时间戳的统一格式（带时区的 RFC3339 秒级精度）
const TimeFormat = "2006-01-02T15:04:05Z07:00"

// Token 来源标记
const (
	TokenFromToken   = "token"   // 交互式登录换取
	TokenFromAccount = "account" // 账号关联导入
)

// SignInfo 签到记录：最近一次签到成功的月/日，-1/-1 表示从未签到
type SignInfo struct {
	SignMon int `gorm:"column:sign_mon;default:-1" json:"signMon"`
	SignDay int `gorm:"column:sign_day;default:-1" json:"signDay"`
}

// TokenInfo 表示一个账号的完整凭证与资料快照
// 注意：access_token 为空的记录是占位记录，不是真实账号，禁止持久化
type TokenInfo struct {
	// 身份
	UserID   string `gorm:"column:user_id;primaryKey;size:64" json:"user_id"`
	UserName string `gorm:"column:user_name;size:255" json:"user_name"`
	NickName string `gorm:"column:nick_name;size:255" json:"nick_name"`
	Name     string `gorm:"column:name;size:255" json:"name"`
	Avatar   string `gorm:"column:avatar;type:text" json:"avatar"`

	// 主凭证
	AccessToken  string `gorm:"column:access_token;type:text" json:"access_token"`
	RefreshToken string `gorm:"column:refresh_token;type:text" json:"refresh_token"`
	TokenType    string `gorm:"column:token_type;size:32" json:"token_type"`
	ExpiresIn    int64  `gorm:"column:expires_in" json:"expires_in"`
	ExpireTime   string `gorm:"column:expire_time;size:50" json:"expire_time"`
	TokenFrom    string `gorm:"column:tokenfrom;size:32" json:"tokenfrom"`

	// OpenApi（第二套）凭证
	OpenApiEnable       bool   `gorm:"column:open_api_enable" json:"open_api_enable"`
	OpenApiAccessToken  string `gorm:"column:open_api_access_token;type:text" json:"open_api_access_token"`
	OpenApiRefreshToken string `gorm:"column:open_api_refresh_token;type:text" json:"open_api_refresh_token"`
	OpenApiExpiresIn    int64  `gorm:"column:open_api_expires_in" json:"open_api_expires_in"` // 过期时刻（Unix时间戳）

	// 网盘与空间配额快照
	DefaultDriveID     string `gorm:"column:default_drive_id;size:64" json:"default_drive_id"`
	DefaultSBoxDriveID string `gorm:"column:default_sbox_drive_id;size:64" json:"default_sbox_drive_id"`
	PicDriveID         string `gorm:"column:pic_drive_id;size:64" json:"pic_drive_id"`
	UsedSize           int64  `gorm:"column:used_size;default:0" json:"used_size"`
	TotalSize          int64  `gorm:"column:total_size;default:0" json:"total_size"`
	SpaceInfo          string `gorm:"column:spaceinfo;size:64" json:"spaceinfo"`

	// 会员信息快照
	VipName   string `gorm:"column:vipname;size:64" json:"vipname"`
	VipExpire string `gorm:"column:vipexpire;size:50" json:"vipexpire"`
	VipIcon   string `gorm:"column:vip_icon;type:text" json:"vipIcon"`
	SpuID     string `gorm:"column:spu_id;size:64" json:"spu_id"`
	IsExpires bool   `gorm:"column:is_expires" json:"is_expires"`

	// 账号状态标记
	Status       string `gorm:"column:status;size:32" json:"status"`
	Role         string `gorm:"column:role;size:32" json:"role"`
	State        string `gorm:"column:state;size:32" json:"state"`
	PinSetup     bool   `gorm:"column:pin_setup" json:"pin_setup"`
	IsFirstLogin bool   `gorm:"column:is_first_login" json:"is_first_login"`
	NeedRpVerify bool   `gorm:"column:need_rp_verify" json:"need_rp_verify"`

	// 签到记录
	SignInfo SignInfo `gorm:"embedded" json:"signInfo"`

	// 设备标识，每个安装实例固定，随请求头发送
	DeviceID  string `gorm:"column:device_id;size:64" json:"device_id"`
	Signature string `gorm:"column:signature;type:text" json:"signature"`
}

// TableName 指定表名
func (TokenInfo) TableName() string {
	return "users"
}

// DefaultTokenInfo 返回全零占位记录（签到记录 -1/-1 表示从未签到）
func DefaultTokenInfo() *TokenInfo {
	return &TokenInfo{
		TokenFrom: TokenFromToken,
		SignInfo:  SignInfo{SignMon: -1, SignDay: -1},
	}
}

// Clone 返回记录的独立副本（扁平结构，浅拷贝即为深拷贝）
func (t *TokenInfo) Clone() *TokenInfo {
	clone := *t
	return &clone
}

// ExpireAt 解析主 Token 的绝对过期时刻，解析失败返回零值（视为已过期）
func (t *TokenInfo) ExpireAt() time.Time {
	if t.ExpireTime == "" {
		return time.Time{}
	}
	at, err := time.Parse(TimeFormat, t.ExpireTime)
	if err != nil {
		return time.Time{}
	}
	return at
}

// IssuedAt 根据过期时刻与有效期倒推签发时刻
func (t *TokenInfo) IssuedAt() time.Time {
	return t.ExpireAt().Add(-time.Duration(t.ExpiresIn) * time.Second)
}

// SetExpiresIn 记录有效期并计算绝对过期时刻
func (t *TokenInfo) SetExpiresIn(now time.Time, seconds int64) {
	t.ExpiresIn = seconds
	t.ExpireTime = now.Add(time.Duration(seconds) * time.Second).Format(TimeFormat)
}

// CurrentTime 返回当前时间的统一格式字符串
func CurrentTime() string {
	return time.Now().Format(TimeFormat)
}

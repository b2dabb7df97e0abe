package user

import (
	"context"

	"alipan-client/internal/models"
)

// Store 持久层协作者（由 database.DB 实现）
type Store interface {
	GetUserAll(ctx context.Context) ([]*models.TokenInfo, error)
	GetUser(ctx context.Context, userID string) (*models.TokenInfo, error)
	SaveUser(ctx context.Context, user *models.TokenInfo) error
	DeleteUser(ctx context.Context, userID string) error
	GetValueString(ctx context.Context, key string) (string, error)
	SaveValueString(ctx context.Context, key, value string) error
	LaunchAutoSign(ctx context.Context) bool
	ClearOpenApi(ctx context.Context) error
}

// AccountAPI 远程账号服务协作者（由 aliapi.Client 实现）
// 每个方法就地修改传入的记录；ok=false 且 err=nil 表示服务端拒绝凭证，
// err != nil 表示网络等意外传输错误，由调用方按瞬时失败处理
type AccountAPI interface {
	TokenRefreshAccount(ctx context.Context, token *models.TokenInfo, force bool) (bool, error)
	SessionRefreshAccount(ctx context.Context, token *models.TokenInfo, force bool) (bool, error)
	OpenApiTokenRefreshAccount(ctx context.Context, token *models.TokenInfo, force, strict bool) (bool, error)
	UserInfo(ctx context.Context, token *models.TokenInfo) error
	UserPic(ctx context.Context, token *models.TokenInfo) error
	UserVip(ctx context.Context, token *models.TokenInfo) error
	UserSign(ctx context.Context, token *models.TokenInfo) (int, bool, error)
}

// Notifier 面向界面层的通知协作者：账号切换后重置各业务子状态
type Notifier interface {
	// ResetTab 重置导航页签
	ResetTab()
	// ResetLists 重置分享/关注/最近访问列表
	ResetLists()
	// ResetPan 重置网盘目录树与文件列表（所有账号都注销时调用）
	ResetPan()
	// ReloadDrive 按账号默认网盘重新加载目录树
	ReloadDrive(userID, driveID string)
	// ReloadQuickFile 重新加载快捷访问文件
	ReloadQuickFile(userID string)
	// ShowWarning 展示用户可见的警告
	ShowWarning(msg string)
}

// UserTokenMessage 广播给兄弟窗口/进程的活跃账号标识
type UserTokenMessage struct {
	UserID             string `json:"user_id"`
	Name               string `json:"name"`
	AccessToken        string `json:"access_token"`
	OpenApiAccessToken string `json:"open_api_access_token"`
	Login              bool   `json:"login"`
}

// Broadcaster 跨进程广播协作者（由 winmsg.Client 实现），全部为尽力而为
type Broadcaster interface {
	ClearUserToken()
	SendUserToken(msg UserTokenMessage)
}

// NopNotifier 空实现，无界面运行或测试时使用
type NopNotifier struct{}

func (NopNotifier) ResetTab()                          {}
func (NopNotifier) ResetLists()                        {}
func (NopNotifier) ResetPan()                          {}
func (NopNotifier) ReloadDrive(userID, driveID string) {}
func (NopNotifier) ReloadQuickFile(userID string)      {}
func (NopNotifier) ShowWarning(msg string)             {}

// NopBroadcaster 空实现
type NopBroadcaster struct{}

func (NopBroadcaster) ClearUserToken()                    {}
func (NopBroadcaster) SendUserToken(msg UserTokenMessage) {}

package user

import (
	"context"
	"fmt"
	"time"

	"alipan-client/internal/logger"
	"alipan-client/internal/models"
)

// DAL 账号会话生命周期控制器：登录、注销、切换、启动加载与定时刷新
// 都经由它驱动，凭证缓存只通过这里变更
type DAL struct {
	store  Store
	api    AccountAPI
	notify Notifier
	msg    Broadcaster
	tokens *TokenMap
	state  *UserStore
}

// NewDAL 创建生命周期控制器，notify/msg 传 nil 时使用空实现
func NewDAL(store Store, api AccountAPI, notify Notifier, msg Broadcaster) *DAL {
	if notify == nil {
		notify = NopNotifier{}
	}
	if msg == nil {
		msg = NopBroadcaster{}
	}
	return &DAL{
		store:  store,
		api:    api,
		notify: notify,
		msg:    msg,
		tokens: NewTokenMap(store, msg),
		state:  NewUserStore(),
	}
}

// Tokens 返回凭证缓存
func (d *DAL) Tokens() *TokenMap {
	return d.tokens
}

// State 返回会话状态
func (d *DAL) State() *UserStore {
	return d.state
}

// LoadFromDB 启动加载：读出全部持久化账号，逐个校验刷新；
// 最后活跃账号执行完整登录，其余只做自动签到入库；
// 单个账号出错只记录日志，不中断后续账号
func (d *DAL) LoadFromDB(ctx context.Context) {
	tokenList, err := d.store.GetUserAll(ctx)
	if err != nil {
		logger.Error("启动加载: 读取账号列表失败: %v", err)
	}
	defaultUser, err := d.store.GetValueString(ctx, models.KeyDefaultUser)
	if err != nil {
		logger.Error("启动加载: 读取最后活跃账号失败: %v", err)
	}

	defaultUserAdd := false
	d.tokens.Clear()
	for _, token := range tokenList {
		if token.UserID == "" {
			continue
		}
		ok, err := d.api.TokenRefreshAccount(ctx, token, false)
		if err != nil {
			logger.Error("启动加载: 刷新账号失败 - ID: %s, 错误: %v", token.UserID, err)
			continue
		}
		if !ok {
			logger.Warn("启动加载: 账号凭证已失效 - ID: %s, 名称: %s", token.UserID, token.Name)
			continue
		}
		if token.UserID == defaultUser {
			defaultUserAdd = true
			if err := d.UserLogin(ctx, token); err != nil {
				logger.Error("启动加载: 登录最后活跃账号失败 - ID: %s, 错误: %v", token.UserID, err)
			}
		} else {
			d.AutoUserSign(ctx, token)
		}
	}

	if !defaultUserAdd {
		d.state.SetShowLogin(true)
	}
}

// UserLogin 将账号设为活跃账号的标准流程，步骤顺序固定：
// 入缓存 -> 并行拉取资料/头像/会员 -> 记录最后活跃 -> 标记登录 ->
// 自动签到 -> 广播标识 -> 刷新 Session 与 OpenApi Token -> 重置界面子状态
// 资料拉取或最后活跃落盘失败会中止登录；已入缓存的记录不回滚
func (d *DAL) UserLogin(ctx context.Context, token *models.TokenInfo) error {
	logger.Info("加载用户信息中 - ID: %s", token.UserID)
	d.tokens.Set(token)

	if err := d.fetchUserProfile(ctx, token); err != nil {
		return fmt.Errorf("加载用户信息失败: %w", err)
	}

	if err := d.store.SaveValueString(ctx, models.KeyDefaultUser, token.UserID); err != nil {
		return fmt.Errorf("保存登录信息失败: %w", err)
	}
	d.state.Login(token.UserID)

	// 登录后自动签到，失败不影响登录
	d.AutoUserSign(ctx, token)

	d.msg.SendUserToken(UserTokenMessage{
		UserID:             token.UserID,
		Name:               token.UserName,
		AccessToken:        token.AccessToken,
		OpenApiAccessToken: token.OpenApiAccessToken,
		Login:              true,
	})

	// 刷新 Session 与 OpenApiToken，失败只记录日志
	if _, err := d.api.SessionRefreshAccount(ctx, token, false); err != nil {
		logger.Error("登录: 刷新 Session 失败 - ID: %s, 错误: %v", token.UserID, err)
	}
	if _, err := d.api.OpenApiTokenRefreshAccount(ctx, token, false, false); err != nil {
		logger.Error("登录: 刷新 OpenApiToken 失败 - ID: %s, 错误: %v", token.UserID, err)
	}
	d.saveToken(ctx, token)

	// 重置账号相关的界面子状态并重载网盘数据
	d.notify.ResetTab()
	d.notify.ResetLists()
	d.notify.ReloadDrive(token.UserID, token.DefaultDriveID)
	d.notify.ReloadQuickFile(token.UserID)

	logger.Info("加载用户成功 - %s (%s)", token.Name, token.UserID)
	return nil
}

// UserChange 切换到缓存中的另一个账号
// 凭证已失效时提示重新登录并丢弃该账号，返回 false
func (d *DAL) UserChange(ctx context.Context, userID string) bool {
	token, ok := d.tokens.GetLoaded(userID)
	if !ok {
		return false
	}

	refreshed, err := d.api.TokenRefreshAccount(ctx, token, false)
	isLogin := token.UserID != "" && err == nil && refreshed
	if !isLogin {
		d.notify.ShowWarning("该账号需要重新登陆[" + token.Name + "]")
		if err := d.store.DeleteUser(ctx, userID); err != nil {
			logger.Error("切换账号: 删除失效账号失败 - ID: %s, 错误: %v", userID, err)
		}
		d.tokens.Remove(userID)
		return false
	}

	if err := d.UserLogin(ctx, token); err != nil {
		logger.Error("切换账号: 登录失败 - ID: %s, 错误: %v", userID, err)
	}
	return true
}

// UserLogOff 注销账号：删除持久化与缓存记录后，
// 依次尝试激活剩余账号中第一个凭证仍有效的；全部无效时清空会话并提示登录
// 返回是否有其他账号接替成为活跃账号
func (d *DAL) UserLogOff(ctx context.Context, userID string) bool {
	if err := d.store.DeleteUser(ctx, userID); err != nil {
		logger.Error("注销: 删除账号失败 - ID: %s, 错误: %v", userID, err)
	}
	d.tokens.Remove(userID)

	newUserID := ""
	for _, token := range d.tokens.List() {
		refreshed, err := d.api.TokenRefreshAccount(ctx, token, false)
		if token.UserID == "" || err != nil || !refreshed {
			continue
		}
		if err := d.UserLogin(ctx, token); err != nil {
			logger.Error("注销: 切换到账号失败 - ID: %s, 错误: %v", token.UserID, err)
		}
		newUserID = token.UserID
		break
	}

	if newUserID == "" {
		if err := d.store.ClearOpenApi(ctx); err != nil {
			logger.Error("注销: 清除 OpenApi 配置失败: %v", err)
		}
		d.state.Logoff()
		d.notify.ResetPan()
		d.state.SetShowLogin(true)
	}
	return newUserID != ""
}

// UserClearFromDB 丢弃账号记录（持久化与缓存），不触发任何激活副作用
func (d *DAL) UserClearFromDB(ctx context.Context, userID string) {
	if err := d.store.DeleteUser(ctx, userID); err != nil {
		logger.Error("丢弃账号: 删除失败 - ID: %s, 错误: %v", userID, err)
	}
	d.tokens.Remove(userID)
}

// UserRefreshByUserFace 界面触发的账号刷新：
// 非强制或签发不足 600 秒只刷新资料/头像/会员信息；
// 否则强制刷新 Token+Session+OpenApiToken 后再刷新资料
func (d *DAL) UserRefreshByUserFace(ctx context.Context, userID string, force bool) bool {
	token := d.tokens.Get(userID)
	if token.AccessToken == "" {
		return false
	}

	if !NeedFullRefresh(token, time.Now(), force) {
		// 仅刷新个人信息
		if err := d.fetchUserProfile(ctx, token); err != nil {
			logger.Error("刷新资料失败 - ID: %s, 错误: %v", userID, err)
			return false
		}
		d.saveToken(ctx, token)
		return true
	}

	// 强制刷新 Token 和 Session
	refreshed, err := d.api.TokenRefreshAccount(ctx, token, true)
	if token.UserID == "" || err != nil || !refreshed {
		return false
	}
	if _, err := d.api.SessionRefreshAccount(ctx, token, true); err != nil {
		logger.Error("强制刷新: Session 刷新失败 - ID: %s, 错误: %v", userID, err)
	}
	if _, err := d.api.OpenApiTokenRefreshAccount(ctx, token, true, true); err != nil {
		logger.Error("强制刷新: OpenApiToken 刷新失败 - ID: %s, 错误: %v", userID, err)
	}

	if err := d.fetchUserProfile(ctx, token); err != nil {
		logger.Error("强制刷新: 刷新资料失败 - ID: %s, 错误: %v", userID, err)
		return false
	}
	d.state.Login(token.UserID)
	d.saveToken(ctx, token)
	return true
}

// AutoUserSign 自动签到：开关打开且当天未签到时调用远程签到，
// 成功后记录签到月/日；无论是否签到都会把记录写回缓存与持久层，
// 以保证外围登录流程对 Token 的修改落盘
func (d *DAL) AutoUserSign(ctx context.Context, token *models.TokenInfo) {
	if token.UserID != "" && d.store.LaunchAutoSign(ctx) {
		now := time.Now()
		if NeedSign(token, now) {
			signDay, ok, err := d.api.UserSign(ctx, token)
			if err != nil {
				logger.Error("自动签到失败 - ID: %s, 错误: %v", token.UserID, err)
			} else if ok {
				token.SignInfo.SignMon = int(now.Month())
				token.SignInfo.SignDay = signDay
				logger.Info("自动签到成功 - %s, 累计 %d 天", token.Name, signDay)
			}
		}
	}
	d.saveToken(ctx, token)
}

// saveToken 写回缓存并同步落盘，持久化失败只记录日志：
// 本进程生命周期内以内存缓存为准，接受与存储的短暂不一致
func (d *DAL) saveToken(ctx context.Context, token *models.TokenInfo) {
	if err := d.tokens.PutSync(ctx, token); err != nil {
		logger.Error("保存账号失败 - ID: %s, 错误: %v", token.UserID, err)
	}
}

// fetchUserProfile 并行拉取资料、头像、会员信息，三者全部完成后返回首个错误
func (d *DAL) fetchUserProfile(ctx context.Context, token *models.TokenInfo) error {
	calls := []func(context.Context, *models.TokenInfo) error{
		d.api.UserInfo,
		d.api.UserPic,
		d.api.UserVip,
	}

	errs := make(chan error, len(calls))
	for _, call := range calls {
		go func(call func(context.Context, *models.TokenInfo) error) {
			errs <- call(ctx, token)
		}(call)
	}

	var firstErr error
	for range calls {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

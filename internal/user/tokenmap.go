package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"alipan-client/internal/logger"
	"alipan-client/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TokenMap 进程内唯一的账号凭证缓存：user_id -> TokenInfo
// 缓存是持久层的易失视图，启动时整体重建；所有变更通过 Set/Put/Remove/Clear 进行
// 存取两侧都复制记录：读方拿到的是快照，写方以整条记录替换（同一 id 后写覆盖），
// 刷新流程在自己的副本上修改后写回，记录字段不存在跨 goroutine 的共享修改
type TokenMap struct {
	mu     sync.RWMutex
	tokens map[string]*models.TokenInfo
	store  Store
	msg    Broadcaster
}

// NewTokenMap 创建凭证缓存，写穿透到 store，保存成功后向兄弟窗口广播
func NewTokenMap(store Store, msg Broadcaster) *TokenMap {
	if msg == nil {
		msg = NopBroadcaster{}
	}
	return &TokenMap{
		tokens: make(map[string]*models.TokenInfo),
		store:  store,
		msg:    msg,
	}
}

// Get 按 user_id 取记录快照，缓存缺失或 id 为空时返回全默认值的占位记录
func (m *TokenMap) Get(userID string) *models.TokenInfo {
	if userID != "" {
		m.mu.RLock()
		token, ok := m.tokens[userID]
		m.mu.RUnlock()
		if ok {
			return token.Clone()
		}
	}
	return models.DefaultTokenInfo()
}

// GetLoaded 按 user_id 取记录快照，并报告缓存中是否存在（区分占位与缺失）
func (m *TokenMap) GetLoaded(userID string) (*models.TokenInfo, bool) {
	if userID == "" {
		return nil, false
	}
	m.mu.RLock()
	token, ok := m.tokens[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return token.Clone(), true
}

// Set 仅写入缓存，不触发持久化（登录流程第一步使用）
// 入缓存的是记录的快照，调用方之后对记录的修改需再次写入才可见
func (m *TokenMap) Set(token *models.TokenInfo) {
	if token == nil || token.UserID == "" {
		return
	}
	m.mu.Lock()
	m.tokens[token.UserID] = token.Clone()
	m.mu.Unlock()
}

// Put 写入缓存并异步写穿透到持久层，保存成功后广播凭证变更
// 持久化失败只记录日志：对界面而言读到旧数据好过阻塞
// 界面侧不关心落盘结果的写入走这里；需要确认落盘的流程使用 PutSync
func (m *TokenMap) Put(token *models.TokenInfo) {
	if token == nil || token.UserID == "" {
		return
	}
	snapshot := token.Clone()
	m.Set(snapshot)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.flush(ctx, snapshot); err != nil {
			logger.Error("凭证缓存: 写穿透失败 - ID: %s, 错误: %v", snapshot.UserID, err)
		}
	}()
}

// PutSync 写入缓存并同步完成持久化与广播（测试与需要确认落盘的场景）
func (m *TokenMap) PutSync(ctx context.Context, token *models.TokenInfo) error {
	if token == nil || token.UserID == "" {
		return nil
	}
	m.Set(token)
	return m.flush(ctx, token)
}

func (m *TokenMap) flush(ctx context.Context, token *models.TokenInfo) error {
	if err := m.store.SaveUser(ctx, token); err != nil {
		return err
	}
	m.msg.ClearUserToken()
	return nil
}

// Remove 从缓存删除一条记录
func (m *TokenMap) Remove(userID string) {
	if userID == "" {
		return
	}
	m.mu.Lock()
	delete(m.tokens, userID)
	m.mu.Unlock()
}

// Clear 清空缓存
func (m *TokenMap) Clear() {
	m.mu.Lock()
	m.tokens = make(map[string]*models.TokenInfo)
	m.mu.Unlock()
}

// Len 返回缓存中的账号数量
func (m *TokenMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// List 返回全部记录的快照，按显示名称中文排序（供界面枚举）
func (m *TokenMap) List() []*models.TokenInfo {
	m.mu.RLock()
	list := make([]*models.TokenInfo, 0, len(m.tokens))
	for _, token := range m.tokens {
		list = append(list, token.Clone())
	}
	m.mu.RUnlock()

	c := collate.New(language.Chinese)
	sort.Slice(list, func(i, j int) bool {
		if r := c.CompareString(list[i].Name, list[j].Name); r != 0 {
			return r < 0
		}
		return list[i].UserID < list[j].UserID
	})
	return list
}

package user

import "sync"

// UserState 会话状态快照
type UserState struct {
	UserID    string `json:"user_id"`
	Logined   bool   `json:"logined"`
	ShowLogin bool   `json:"show_login"`
}

// UserStore 轻量会话状态：最多一个活跃账号，活跃标识不进 TokenInfo 本身
type UserStore struct {
	mu        sync.RWMutex
	userID    string
	logined   bool
	showLogin bool
}

// NewUserStore 创建会话状态
func NewUserStore() *UserStore {
	return &UserStore{}
}

// Login 将指定账号标记为活跃
func (s *UserStore) Login(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.logined = true
	s.showLogin = false
	s.mu.Unlock()
}

// Logoff 清除活跃账号
func (s *UserStore) Logoff() {
	s.mu.Lock()
	s.userID = ""
	s.logined = false
	s.mu.Unlock()
}

// UserID 返回当前活跃账号 id，无活跃账号时为空串
func (s *UserStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// IsLogined 返回是否有活跃账号
func (s *UserStore) IsLogined() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logined
}

// SetShowLogin 设置是否提示用户登录
func (s *UserStore) SetShowLogin(show bool) {
	s.mu.Lock()
	s.showLogin = show
	s.mu.Unlock()
}

// ShowLogin 返回是否提示用户登录
func (s *UserStore) ShowLogin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showLogin
}

// State 返回会话状态快照
func (s *UserStore) State() UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return UserState{UserID: s.userID, Logined: s.logined, ShowLogin: s.showLogin}
}

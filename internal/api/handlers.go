package api

import (
	"fmt"
	"io"
	"net/http"

	"alipan-client/internal/logger"
	"alipan-client/internal/models"

	"github.com/gin-gonic/gin"
)

// userSummary 账号列表条目（不暴露凭证本体）
type userSummary struct {
	UserID    string          `json:"user_id"`
	UserName  string          `json:"user_name"`
	Name      string          `json:"name"`
	Avatar    string          `json:"avatar"`
	VipName   string          `json:"vipname"`
	VipExpire string          `json:"vipexpire"`
	SpaceInfo string          `json:"spaceinfo"`
	UsedSize  int64           `json:"used_size"`
	TotalSize int64           `json:"total_size"`
	SignInfo  models.SignInfo `json:"signInfo"`
	IsActive  bool            `json:"is_active"`
}

func summarize(token *models.TokenInfo, activeID string) userSummary {
	return userSummary{
		UserID:    token.UserID,
		UserName:  token.UserName,
		Name:      token.Name,
		Avatar:    token.Avatar,
		VipName:   token.VipName,
		VipExpire: token.VipExpire,
		SpaceInfo: token.SpaceInfo,
		UsedSize:  token.UsedSize,
		TotalSize: token.TotalSize,
		SignInfo:  token.SignInfo,
		IsActive:  token.UserID == activeID && activeID != "",
	}
}

// handleListUsers 列出缓存中的全部账号（按显示名称排序）
func (s *Server) handleListUsers(c *gin.Context) {
	activeID := s.dal.State().UserID()
	list := s.dal.Tokens().List()

	summaries := make([]userSummary, 0, len(list))
	for _, token := range list {
		summaries = append(summaries, summarize(token, activeID))
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}

// handleActiveUser 返回会话状态与当前活跃账号
func (s *Server) handleActiveUser(c *gin.Context) {
	state := s.dal.State().State()
	resp := gin.H{"state": state}
	if state.UserID != "" {
		token := s.dal.Tokens().Get(state.UserID)
		resp["user"] = summarize(token, state.UserID)
	}
	c.JSON(http.StatusOK, resp)
}

// loginRequest 导入凭证并登录的请求体
type loginRequest struct {
	RefreshToken        string `json:"refresh_token" binding:"required"`
	TokenFrom           string `json:"tokenfrom"`
	OpenApiEnable       bool   `json:"open_api_enable"`
	OpenApiRefreshToken string `json:"open_api_refresh_token"`
}

// handleLogin 用 refresh_token 换取凭证并执行完整登录
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体: " + err.Error()})
		return
	}

	token := models.DefaultTokenInfo()
	token.RefreshToken = req.RefreshToken
	if req.TokenFrom == models.TokenFromAccount {
		token.TokenFrom = models.TokenFromAccount
	}
	token.OpenApiEnable = req.OpenApiEnable
	token.OpenApiRefreshToken = req.OpenApiRefreshToken

	ok, err := s.aliClient.TokenRefreshAccount(c.Request.Context(), token, true)
	if err != nil {
		logger.Error("登录: 换取凭证失败: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "无法连接账号服务"})
		return
	}
	if !ok || token.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh_token 无效"})
		return
	}

	if err := s.dal.UserLogin(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("登录失败: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": summarize(token, token.UserID)})
}

// handleChange 切换活跃账号
func (s *Server) handleChange(c *gin.Context) {
	userID := c.Param("id")
	if ok := s.dal.UserChange(c.Request.Context(), userID); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"changed": false, "error": "该账号需要重新登陆"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true})
}

// handleLogoff 注销账号，返回是否有其他账号接替
func (s *Server) handleLogoff(c *gin.Context) {
	userID := c.Param("id")
	switched := s.dal.UserLogOff(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{
		"switched":   switched,
		"show_login": s.dal.State().ShowLogin(),
	})
}

// handleRefresh 刷新账号（force=true 时按两级策略可能执行完整刷新）
func (s *Server) handleRefresh(c *gin.Context) {
	userID := c.Param("id")
	force := c.Query("force") == "true"
	ok := s.dal.UserRefreshByUserFace(c.Request.Context(), userID, force)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"refreshed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}

// handleForget 丢弃账号记录，不触发激活副作用
func (s *Server) handleForget(c *gin.Context) {
	userID := c.Param("id")
	s.dal.UserClearFromDB(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// handleGetSettings 返回运行时设置
func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"launch_auto_sign": s.db.LaunchAutoSign(c.Request.Context()),
	})
}

// settingsRequest 设置更新请求体
type settingsRequest struct {
	LaunchAutoSign *bool `json:"launch_auto_sign"`
}

// handleUpdateSettings 更新运行时设置
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体: " + err.Error()})
		return
	}

	if req.LaunchAutoSign != nil {
		if err := s.db.SetLaunchAutoSign(c.Request.Context(), *req.LaunchAutoSign); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"launch_auto_sign": s.db.LaunchAutoSign(c.Request.Context()),
	})
}

// handleLogStream 以 SSE 推送日志流
func (s *Server) handleLogStream(c *gin.Context) {
	ch := logger.Subscribe()
	defer logger.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("log", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"alipan-client/internal/aliapi"
	"alipan-client/internal/config"
	"alipan-client/internal/database"
	"alipan-client/internal/logger"
	"alipan-client/internal/user"

	"github.com/gin-gonic/gin"
)

// Server 本地控制台服务器：界面层通过它查看/操作账号
type Server struct {
	cfg        *config.Config
	db         *database.DB
	dal        *user.DAL
	aliClient  *aliapi.Client
	httpServer *http.Server
	version    string
}

// NewServer 创建控制台服务器
func NewServer(cfg *config.Config, db *database.DB, dal *user.DAL, aliClient *aliapi.Client, version string) *Server {
	return &Server{
		cfg:       cfg,
		db:        db,
		dal:       dal,
		aliClient: aliClient,
		version:   version,
	}
}

// Start 启动 HTTP 服务（阻塞直到服务退出）
func (s *Server) Start() error {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.loggingMiddleware())
	s.setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}

	logger.Info("本地控制台已启动 - http://%s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware 记录每个请求
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s from %s - Status: %d - Duration: %v",
			c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}

// setupRoutes 配置所有 HTTP 路由
func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealthCheck)
	r.GET("/version", s.handleVersion)

	api := r.Group("/api")
	{
		api.GET("/users", s.handleListUsers)
		api.GET("/users/active", s.handleActiveUser)
		api.POST("/users/login", s.handleLogin)
		api.POST("/users/:id/change", s.handleChange)
		api.POST("/users/:id/logoff", s.handleLogoff)
		api.POST("/users/:id/refresh", s.handleRefresh)
		api.DELETE("/users/:id", s.handleForget)

		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleUpdateSettings)

		api.GET("/logs/stream", s.handleLogStream)
	}
}

func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version})
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alipan-client/internal/aliapi"
	"alipan-client/internal/api"
	"alipan-client/internal/config"
	"alipan-client/internal/database"
	"alipan-client/internal/logger"
	"alipan-client/internal/user"
	"alipan-client/internal/winmsg"

	_ "time/tzdata" // 嵌入时区数据库，解决 Windows 下时区加载失败问题
)

// Version 版本号，通过 ldflags 注入
var Version = "dev"

func main() {
	portFlag := flag.Int("port", 0, "本地控制台监听端口（0 表示使用配置文件或默认值）")
	flag.IntVar(portFlag, "p", 0, "本地控制台监听端口（-port 的简写）")
	dataDirFlag := flag.String("data-dir", "", "数据目录路径（存放数据库和日志，不指定则使用当前工作目录）")
	flag.Parse()

	// 设置时区为北京时间（UTC+8）
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		log.Printf("警告: 加载时区失败，使用 UTC+8: %v", err)
		loc = time.FixedZone("CST", 8*3600)
	}
	time.Local = loc

	if dataDir := *dataDirFlag; dataDir != "" {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Fatalf("创建数据目录失败: %v", err)
		}
		if err := os.Chdir(dataDir); err != nil {
			log.Fatalf("切换到数据目录失败: %v", err)
		}
	}

	if err := logger.Init(); err != nil {
		log.Fatalf("初始化日志系统失败: %v", err)
	}
	defer logger.Close()
	logger.Info("=== 阿里云盘多账号客户端 %s 启动中 ===", Version)
	logger.Info("系统时区: %s", time.Local.String())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Load()
	}
	if *portFlag > 0 {
		cfg.Server.Port = *portFlag
	}
	logger.SetDebugEnabled(cfg.Debug)

	db, err := database.New(cfg)
	if err != nil {
		logger.Error("初始化数据库失败: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	aliClient := aliapi.NewClient(cfg)
	msg := winmsg.NewClient(cfg.SiblingEndpoints)
	dal := user.NewDAL(db, aliClient, nil, msg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动加载全部账号
	dal.LoadFromDB(ctx)
	if dal.State().ShowLogin() {
		logger.Warn("没有可用的活跃账号，请通过控制台导入 refresh_token 登录")
	}

	// 后台定时刷新过期窗口内的 Token
	go dal.RunTokenRefreshLoop(ctx, time.Duration(cfg.TokenRefreshInterval)*time.Second)

	server := api.NewServer(cfg, db, dal, aliClient, Version)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("收到退出信号: %v", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("控制台服务异常退出: %v", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭控制台服务失败: %v", err)
	}
	logger.Info("已退出")
}

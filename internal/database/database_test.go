package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"alipan-client/internal/config"
	"alipan-client/internal/models"
)

// setupTestDB 创建测试数据库（使用 SQLite 内存数据库）
func setupTestDB(t *testing.T) *DB {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: config.DatabaseTypeSQLite,
			SQLite: config.SQLiteConfig{
				Path: ":memory:",
			},
		},
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("创建测试数据库失败: %v", err)
	}

	return db
}

// testToken 构造一条可入库的账号记录
func testToken(userID, name string) *models.TokenInfo {
	token := models.DefaultTokenInfo()
	token.UserID = userID
	token.UserName = "user_" + userID
	token.Name = name
	token.AccessToken = "at-" + userID
	token.RefreshToken = "rt-" + userID
	token.SetExpiresIn(time.Now(), 7200)
	return token
}

// TestUserCRUD 测试账号记录的增删改查
func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	t.Run("SaveUser", func(t *testing.T) {
		token := testToken("u1", "张三")
		token.SignInfo = models.SignInfo{SignMon: 8, SignDay: 30}

		if err := db.SaveUser(ctx, token); err != nil {
			t.Fatalf("保存账号失败: %v", err)
		}

		got, err := db.GetUser(ctx, "u1")
		if err != nil {
			t.Fatalf("获取账号失败: %v", err)
		}
		if got == nil {
			t.Fatal("账号不存在")
		}
		if got.Name != "张三" {
			t.Errorf("Name 不匹配: got %s, want 张三", got.Name)
		}
		if got.RefreshToken != token.RefreshToken {
			t.Errorf("RefreshToken 不匹配: got %s, want %s", got.RefreshToken, token.RefreshToken)
		}
		if got.SignInfo.SignMon != 8 || got.SignInfo.SignDay != 30 {
			t.Errorf("签到记录不匹配: got %+v", got.SignInfo)
		}
	})

	t.Run("SaveUser覆盖更新", func(t *testing.T) {
		token := testToken("u1", "张三改名")
		token.VipName = "超级会员"

		if err := db.SaveUser(ctx, token); err != nil {
			t.Fatalf("覆盖保存失败: %v", err)
		}

		list, err := db.GetUserAll(ctx)
		if err != nil {
			t.Fatalf("读取账号列表失败: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("覆盖保存不应产生新记录: 数量 = %d", len(list))
		}
		if list[0].Name != "张三改名" || list[0].VipName != "超级会员" {
			t.Errorf("更新未生效: %+v", list[0])
		}
	})

	t.Run("SaveUser跳过占位记录", func(t *testing.T) {
		placeholder := models.DefaultTokenInfo()
		placeholder.UserID = "placeholder"

		if err := db.SaveUser(ctx, placeholder); err != nil {
			t.Fatalf("占位记录保存不应报错: %v", err)
		}
		got, err := db.GetUser(ctx, "placeholder")
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if got != nil {
			t.Error("access_token 为空的占位记录不应入库")
		}
	})

	t.Run("GetUser不存在时返回nil", func(t *testing.T) {
		got, err := db.GetUser(ctx, "nobody")
		if err != nil {
			t.Fatalf("查询不存在的账号不应报错: %v", err)
		}
		if got != nil {
			t.Error("不存在的账号应返回 nil")
		}

		got, err = db.GetUser(ctx, "")
		if err != nil || got != nil {
			t.Error("空 ID 应返回 nil, nil")
		}
	})

	t.Run("DeleteUser", func(t *testing.T) {
		if err := db.DeleteUser(ctx, "u1"); err != nil {
			t.Fatalf("删除账号失败: %v", err)
		}
		got, _ := db.GetUser(ctx, "u1")
		if got != nil {
			t.Error("删除后账号仍存在")
		}

		// 重复删除不报错
		if err := db.DeleteUser(ctx, "u1"); err != nil {
			t.Errorf("删除不存在的账号不应报错: %v", err)
		}
	})
}

// TestTestModeNoFile 测试模式使用内存数据库，不创建数据库文件
func TestTestModeNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "should-not-exist.sqlite3")
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: config.DatabaseTypeSQLite,
			SQLite: config.SQLiteConfig{
				Path: path,
			},
		},
		Test: true,
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("创建测试模式数据库失败: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.SaveUser(ctx, testToken("u1", "张三")); err != nil {
		t.Fatalf("测试模式下保存账号失败: %v", err)
	}
	got, err := db.GetUser(ctx, "u1")
	if err != nil || got == nil {
		t.Fatalf("测试模式下读取账号失败: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("测试模式不应创建数据库文件: %s", path)
	}
}

// TestValues 测试键值表读写
func TestValues(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	t.Run("不存在的键返回空串", func(t *testing.T) {
		value, err := db.GetValueString(ctx, "no-such-key")
		if err != nil {
			t.Fatalf("读取失败: %v", err)
		}
		if value != "" {
			t.Errorf("不存在的键应返回空串, got %q", value)
		}
	})

	t.Run("写入后读回", func(t *testing.T) {
		if err := db.SaveValueString(ctx, models.KeyDefaultUser, "u1"); err != nil {
			t.Fatalf("保存失败: %v", err)
		}
		value, err := db.GetValueString(ctx, models.KeyDefaultUser)
		if err != nil {
			t.Fatalf("读取失败: %v", err)
		}
		if value != "u1" {
			t.Errorf("读回值 = %q, want u1", value)
		}
	})

	t.Run("覆盖写入", func(t *testing.T) {
		if err := db.SaveValueString(ctx, models.KeyDefaultUser, "u2"); err != nil {
			t.Fatalf("覆盖保存失败: %v", err)
		}
		value, _ := db.GetValueString(ctx, models.KeyDefaultUser)
		if value != "u2" {
			t.Errorf("覆盖后读回值 = %q, want u2", value)
		}
	})
}

// TestSettings 测试运行时设置
func TestSettings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	t.Run("自动签到默认开启", func(t *testing.T) {
		if !db.LaunchAutoSign(ctx) {
			t.Error("未设置时自动签到应默认开启")
		}
	})

	t.Run("关闭后再开启", func(t *testing.T) {
		if err := db.SetLaunchAutoSign(ctx, false); err != nil {
			t.Fatalf("关闭自动签到失败: %v", err)
		}
		if db.LaunchAutoSign(ctx) {
			t.Error("关闭后开关应为 false")
		}

		if err := db.SetLaunchAutoSign(ctx, true); err != nil {
			t.Fatalf("开启自动签到失败: %v", err)
		}
		if !db.LaunchAutoSign(ctx) {
			t.Error("开启后开关应为 true")
		}
	})

	t.Run("保存并清除OpenApi配置", func(t *testing.T) {
		if err := db.SaveOpenApi(ctx, true, "oa-access", "oa-refresh"); err != nil {
			t.Fatalf("保存 OpenApi 配置失败: %v", err)
		}
		enable, _ := db.GetValueString(ctx, models.KeyEnableOpenApi)
		access, _ := db.GetValueString(ctx, models.KeyOpenApiAccessToken)
		if enable != "true" || access != "oa-access" {
			t.Errorf("OpenApi 配置未保存: enable=%q access=%q", enable, access)
		}

		if err := db.ClearOpenApi(ctx); err != nil {
			t.Fatalf("清除 OpenApi 配置失败: %v", err)
		}
		enable, _ = db.GetValueString(ctx, models.KeyEnableOpenApi)
		access, _ = db.GetValueString(ctx, models.KeyOpenApiAccessToken)
		refresh, _ := db.GetValueString(ctx, models.KeyOpenApiRefreshToken)
		if enable != "false" || access != "" || refresh != "" {
			t.Errorf("OpenApi 配置未清除: enable=%q access=%q refresh=%q", enable, access, refresh)
		}
	})
}

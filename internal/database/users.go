package database

import (
	"context"
	"fmt"

	"alipan-client/internal/logger"
	"alipan-client/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUserAll 读取所有已保存的账号记录
func (db *DB) GetUserAll(ctx context.Context) ([]*models.TokenInfo, error) {
	var users []*models.TokenInfo
	if err := db.gorm.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询账号列表失败: %w", err)
	}

	logger.Debug("数据库: 读取账号列表 - 数量: %d", len(users))
	return users, nil
}

// GetUser 根据 user_id 获取账号记录，不存在时返回 nil
func (db *DB) GetUser(ctx context.Context, userID string) (*models.TokenInfo, error) {
	if userID == "" {
		return nil, nil
	}

	var user models.TokenInfo
	err := db.gorm.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询账号失败: %w", err)
	}
	return &user, nil
}

// SaveUser 插入或覆盖账号记录
// access_token 为空的占位记录不允许入库，静默忽略
func (db *DB) SaveUser(ctx context.Context, user *models.TokenInfo) error {
	if user == nil || user.UserID == "" {
		return nil
	}
	if user.AccessToken == "" {
		logger.Debug("数据库: 跳过保存占位账号 - ID: %s", user.UserID)
		return nil
	}

	err := db.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("保存账号失败: %w", err)
	}

	logger.Debug("数据库: 账号已保存 - ID: %s, 名称: %s", user.UserID, user.Name)
	return nil
}

// DeleteUser 删除账号记录，记录不存在不视为错误
func (db *DB) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	result := db.gorm.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.TokenInfo{})
	if result.Error != nil {
		return fmt.Errorf("删除账号失败: %w", result.Error)
	}

	logger.Debug("数据库: 账号已删除 - ID: %s", userID)
	return nil
}

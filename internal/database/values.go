package database

import (
	"context"
	"fmt"

	"alipan-client/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValueString 读取单个命名配置值，不存在时返回空串
func (db *DB) GetValueString(ctx context.Context, key string) (string, error) {
	var value models.ConfigValue
	err := db.gorm.WithContext(ctx).Where("config_key = ?", key).First(&value).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("查询配置值失败: %w", err)
	}
	return value.Value, nil
}

// SaveValueString 写入单个命名配置值
func (db *DB) SaveValueString(ctx context.Context, key, value string) error {
	cv := models.ConfigValue{Key: key, Value: value}
	err := db.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"config_value"}),
	}).Create(&cv).Error
	if err != nil {
		return fmt.Errorf("保存配置值失败: %w", err)
	}
	return nil
}

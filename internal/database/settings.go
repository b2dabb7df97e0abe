package database

import (
	"context"

	"alipan-client/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LaunchAutoSign 返回自动签到开关（默认开启，仅保存过 "false" 时关闭）
func (db *DB) LaunchAutoSign(ctx context.Context) bool {
	value, err := db.GetValueString(ctx, models.KeyLaunchAutoSign)
	if err != nil {
		return true
	}
	return value != "false"
}

// SetLaunchAutoSign 设置自动签到开关
func (db *DB) SetLaunchAutoSign(ctx context.Context, enabled bool) error {
	value := "true"
	if !enabled {
		value = "false"
	}
	return db.SaveValueString(ctx, models.KeyLaunchAutoSign, value)
}

// SaveOpenApi 保存全局 OpenApi 凭证配置
func (db *DB) SaveOpenApi(ctx context.Context, enable bool, accessToken, refreshToken string) error {
	enableValue := "false"
	if enable {
		enableValue = "true"
	}

	return db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func(key, value string) error {
			cv := models.ConfigValue{Key: key, Value: value}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "config_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"config_value"}),
			}).Create(&cv).Error
		}

		if err := upsert(models.KeyEnableOpenApi, enableValue); err != nil {
			return err
		}
		if err := upsert(models.KeyOpenApiAccessToken, accessToken); err != nil {
			return err
		}
		return upsert(models.KeyOpenApiRefreshToken, refreshToken)
	})
}

// ClearOpenApi 清除全局 OpenApi 凭证配置（最后一个账号注销时调用）
func (db *DB) ClearOpenApi(ctx context.Context) error {
	return db.SaveOpenApi(ctx, false, "", "")
}

package models

// ConfigValue 单个命名配置值（键值表，保存最后活跃账号等标量状态）
type ConfigValue struct {
	Key   string `gorm:"column:config_key;primaryKey;size:64" json:"key"`
	Value string `gorm:"column:config_value;type:text" json:"value"`
}

// TableName 指定表名
func (ConfigValue) TableName() string {
	return "config_values"
}

// 键值表中使用的固定键名
const (
	KeyDefaultUser         = "uiDefaultUser"         // 最后活跃账号的 user_id
	KeyLaunchAutoSign      = "uiLaunchAutoSign"      // 启动时自动签到开关
	KeyEnableOpenApi       = "uiEnableOpenApi"       // 全局 OpenApi 开关
	KeyOpenApiAccessToken  = "uiOpenApiAccessToken"  // 全局 OpenApi 访问令牌
	KeyOpenApiRefreshToken = "uiOpenApiRefreshToken" // 全局 OpenApi 刷新令牌
)

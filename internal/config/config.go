package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DatabaseType 数据库类型
type DatabaseType string

const (
	DatabaseTypeSQLite DatabaseType = "sqlite"
	DatabaseTypeMySQL  DatabaseType = "mysql"
)

// SQLiteConfig SQLite 数据库配置
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

// MySQLConfig MySQL 数据库配置
type MySQLConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database"`
	Charset  string `yaml:"charset" json:"charset"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type   DatabaseType `yaml:"type" json:"type"`
	SQLite SQLiteConfig `yaml:"sqlite" json:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql" json:"mysql"`
}

// ServerConfig 本地控制台监听配置
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// Config 应用配置
type Config struct {
	// 数据库配置
	Database DatabaseConfig

	// 本地控制台配置
	Server ServerConfig

	// 访问远程服务时使用的代理（http/https/socks5）
	HTTPProxy string

	// Token 定时刷新间隔（秒）
	TokenRefreshInterval int

	// 兄弟窗口/进程的消息接收端点（凭证变更广播）
	SiblingEndpoints []string

	// Debug 打开调试日志；Test 使用内存数据库，不落盘
	Debug bool
	Test  bool
}

// Load 返回默认配置
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type: DatabaseTypeSQLite,
			SQLite: SQLiteConfig{
				Path: "user.sqlite3",
			},
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "",
				Database: "alipan-client",
				Charset:  "utf8mb4",
			},
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 62390,
		},
		HTTPProxy:            "",
		TokenRefreshInterval: 60,
		SiblingEndpoints:     nil,
		Debug:                false,
		Test:                 false,
	}
}

// YAMLFileConfig YAML 配置文件结构
type YAMLFileConfig struct {
	Database             DatabaseConfig `yaml:"database"`
	Server               ServerConfig   `yaml:"server"`
	HTTPProxy            string         `yaml:"http_proxy"`
	TokenRefreshInterval int            `yaml:"token_refresh_interval"`
	SiblingEndpoints     []string       `yaml:"sibling_endpoints"`
	Debug                bool           `yaml:"debug"`
	Test                 bool           `yaml:"test"`
}

// LoadFromYAML 从 YAML 配置文件加载配置
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var yamlConfig YAMLFileConfig
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	cfg := Load()

	if yamlConfig.Database.Type != "" {
		cfg.Database.Type = yamlConfig.Database.Type
	}
	if yamlConfig.Database.SQLite.Path != "" {
		cfg.Database.SQLite.Path = yamlConfig.Database.SQLite.Path
	}
	if yamlConfig.Database.MySQL.Host != "" {
		cfg.Database.MySQL.Host = yamlConfig.Database.MySQL.Host
	}
	if yamlConfig.Database.MySQL.Port != 0 {
		cfg.Database.MySQL.Port = yamlConfig.Database.MySQL.Port
	}
	if yamlConfig.Database.MySQL.User != "" {
		cfg.Database.MySQL.User = yamlConfig.Database.MySQL.User
	}
	if yamlConfig.Database.MySQL.Password != "" {
		cfg.Database.MySQL.Password = yamlConfig.Database.MySQL.Password
	}
	if yamlConfig.Database.MySQL.Database != "" {
		cfg.Database.MySQL.Database = yamlConfig.Database.MySQL.Database
	}
	if yamlConfig.Database.MySQL.Charset != "" {
		cfg.Database.MySQL.Charset = yamlConfig.Database.MySQL.Charset
	}
	if yamlConfig.Server.Host != "" {
		cfg.Server.Host = yamlConfig.Server.Host
	}
	if yamlConfig.Server.Port != 0 {
		cfg.Server.Port = yamlConfig.Server.Port
	}
	if yamlConfig.HTTPProxy != "" {
		cfg.HTTPProxy = yamlConfig.HTTPProxy
	}
	if yamlConfig.TokenRefreshInterval > 0 {
		cfg.TokenRefreshInterval = yamlConfig.TokenRefreshInterval
	}
	if len(yamlConfig.SiblingEndpoints) > 0 {
		cfg.SiblingEndpoints = yamlConfig.SiblingEndpoints
	}
	cfg.Debug = yamlConfig.Debug
	cfg.Test = yamlConfig.Test

	return cfg, nil
}

// LoadConfig 加载配置文件（config.yaml 优先，其次 config.yml，无配置文件则使用默认值）
func LoadConfig() (*Config, error) {
	if _, err := os.Stat("config.yaml"); err == nil {
		return LoadFromYAML("config.yaml")
	}

	if _, err := os.Stat("config.yml"); err == nil {
		return LoadFromYAML("config.yml")
	}

	return Load(), nil
}

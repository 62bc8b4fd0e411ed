// Package config 负责加载和管理应用程序的配置
// 使用 viper 库支持 YAML 配置文件和环境变量覆盖，启动时先读取 .env
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 是应用程序的根配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`  // 数据库配置
	Redis     RedisConfig     `mapstructure:"redis"`     // Redis 配置
	JWT       JWTConfig       `mapstructure:"jwt"`       // JWT 配置
	Log       LogConfig       `mapstructure:"log"`       // 日志配置
	OpenAI    OpenAIConfig    `mapstructure:"openai"`    // 文本生成配置
	Search    SearchConfig    `mapstructure:"search"`    // 实时搜索配置
	Places    PlacesConfig    `mapstructure:"places"`    // 地点检索配置
	Apps      AppsConfig      `mapstructure:"apps"`      // 本地应用控制
	Assistant AssistantConfig `mapstructure:"assistant"` // 助手行为
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`          // 监听端口，默认 8080
	Mode         string        `mapstructure:"mode"`          // 运行模式: debug / release
	CORS         []string      `mapstructure:"cors"`          // CORS 允许的域名
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写超时，需要覆盖 LLM 调用耗时
}

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`         // sqlite / postgres / mysql
	DSN          string `mapstructure:"dsn"`            // 连接串，sqlite 时为文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `mapstructure:"max_open_conns"` // 最大打开连接数
	MaxLifetime  int    `mapstructure:"max_lifetime"`   // 连接最大生命周期（秒）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`    // 关闭时使用进程内缓存
	Host      string        `mapstructure:"host"`       // Redis 主机地址
	Port      int           `mapstructure:"port"`       // Redis 端口
	Username  string        `mapstructure:"username"`   // Redis 用户名
	Password  string        `mapstructure:"password"`   // Redis 密码
	DB        int           `mapstructure:"db"`         // 数据库索引 (0-15)
	PoolSize  int           `mapstructure:"pool_size"`  // 连接池大小
	RecentTTL time.Duration `mapstructure:"recent_ttl"` // 最近推荐菜品的保留时长
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`         // JWT 签名密钥，至少32字符
	AccessExpire  time.Duration `mapstructure:"access_expire"`  // Access Token 过期时间
	RefreshExpire time.Duration `mapstructure:"refresh_expire"` // Refresh Token 过期时间
	CookieName    string        `mapstructure:"cookie_name"`    // 浏览器端保存 Token 的 Cookie 名
	CookieSecure  bool          `mapstructure:"cookie_secure"`  // 是否只在 HTTPS 下发送
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug/info/warn/error
	Format string `mapstructure:"format"` // 日志格式: json/console
}

// OpenAIConfig 文本生成服务配置
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"` // 为空使用官方地址
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// SearchConfig Google Programmable Search 配置
type SearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	CX       string `mapstructure:"cx"`       // 搜索引擎 ID
	Endpoint string `mapstructure:"endpoint"` // 接口根地址，为空时使用官方地址
	Results  int    `mapstructure:"results"`  // 取前几条结果
}

// PlacesConfig Google Places 配置
type PlacesConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Region   string `mapstructure:"region"`   // 检索词前缀，例如 "서울, 경기"
	Language string `mapstructure:"language"` // 结果语言
}

// AppsConfig 本地应用控制配置
type AppsConfig struct {
	Enabled bool `mapstructure:"enabled"` // 服务端部署时通常关闭
}

// AssistantConfig 助手行为配置
type AssistantConfig struct {
	GeneralTasks bool `mapstructure:"general_tasks"` // 非情绪输入是否进入任务分发
	RecentFoods  int  `mapstructure:"recent_foods"`  // 记忆的最近推荐菜品数量
}

// Load 从指定路径加载配置文件
// 参数:
//   - configPath: 配置文件目录路径 (如 "./configs")
//
// 返回:
//   - *Config: 配置对象
//   - error: 如果加载失败则返回错误
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// 例如: DATABASE_DSN -> database.dsn
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnvVariables 绑定环境变量到配置项
func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.username", "REDIS_USERNAME")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("jwt.secret", "JWT_SECRET", "SECRET_KEY")

	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.base_url", "OPENAI_BASE_URL")

	v.BindEnv("search.api_key", "GOOGLE_SEARCH_API_KEY")
	v.BindEnv("search.cx", "GOOGLE_SEARCH_CX")

	v.BindEnv("places.api_key", "GOOGLE_MAPS_API_KEY")
}

// setDefaults 设置配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/mealmood.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_lifetime", 3600)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)
	v.SetDefault("redis.recent_ttl", "72h")

	v.SetDefault("jwt.access_expire", "3h")
	v.SetDefault("jwt.refresh_expire", "168h")
	v.SetDefault("jwt.cookie_name", "token")
	v.SetDefault("jwt.cookie_secure", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("openai.temperature", 0.7)

	v.SetDefault("search.results", 3)

	v.SetDefault("places.region", "서울, 경기")
	v.SetDefault("places.language", "ko")

	v.SetDefault("apps.enabled", false)

	v.SetDefault("assistant.general_tasks", true)
	v.SetDefault("assistant.recent_foods", 5)
}

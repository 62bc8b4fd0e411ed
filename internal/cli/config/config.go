// Package config 管理命令行客户端的本地配置
// 配置保存在 ~/.mealmood/config.yaml，包括服务器地址和登录凭证
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// DefaultServerURL 未配置时使用的服务器地址
const DefaultServerURL = "http://localhost:8080"

// Config 客户端配置
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

// ServerConfig 服务器地址
type ServerConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig 登录凭证
type AuthConfig struct {
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	Email        string `mapstructure:"email"`
}

var (
	mu  sync.RWMutex
	v   *viper.Viper
	cfg *Config
)

// DefaultDir 返回默认配置目录 ~/.mealmood
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户目录失败: %w", err)
	}
	return filepath.Join(home, ".mealmood"), nil
}

// Init 从 dir 加载配置，文件不存在时写入默认配置
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	nv := viper.New()
	nv.SetConfigFile(filepath.Join(dir, "config.yaml"))
	nv.SetConfigType("yaml")
	nv.SetDefault("server.url", DefaultServerURL)
	nv.SetDefault("auth.access_token", "")
	nv.SetDefault("auth.refresh_token", "")
	nv.SetDefault("auth.email", "")

	if err := nv.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("读取配置失败: %w", err)
			}
		}
		if err := nv.WriteConfig(); err != nil {
			return fmt.Errorf("写入默认配置失败: %w", err)
		}
	}

	loaded := &Config{}
	if err := nv.Unmarshal(loaded); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}

	mu.Lock()
	v, cfg = nv, loaded
	mu.Unlock()
	return nil
}

// Get 返回当前配置的副本
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		return Config{Server: ServerConfig{URL: DefaultServerURL}}
	}
	return *cfg
}

// ServerURL 服务器 HTTP 地址，不带结尾斜杠
func ServerURL() string {
	return strings.TrimRight(Get().Server.URL, "/")
}

// AccessToken 当前保存的 Access Token
func AccessToken() string {
	return Get().Auth.AccessToken
}

// IsLoggedIn 本地是否保存了凭证
func IsLoggedIn() bool {
	return AccessToken() != ""
}

// SetServerURL 仅对本次运行生效，不写回文件
func SetServerURL(url string) {
	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Server.URL = url
}

// SaveAuth 保存登录凭证
func SaveAuth(email, accessToken, refreshToken string) error {
	return update(func(c *Config) {
		c.Auth = AuthConfig{AccessToken: accessToken, RefreshToken: refreshToken, Email: email}
	})
}

// SaveAccessToken 刷新后只替换 Access Token
func SaveAccessToken(accessToken string) error {
	return update(func(c *Config) {
		c.Auth.AccessToken = accessToken
	})
}

// ClearAuth 清除本地凭证
func ClearAuth() error {
	return update(func(c *Config) {
		c.Auth = AuthConfig{}
	})
}

func update(fn func(c *Config)) error {
	mu.Lock()
	defer mu.Unlock()
	if v == nil || cfg == nil {
		return errors.New("配置尚未初始化")
	}

	fn(cfg)
	v.Set("auth.access_token", cfg.Auth.AccessToken)
	v.Set("auth.refresh_token", cfg.Auth.RefreshToken)
	v.Set("auth.email", cfg.Auth.Email)
	return v.WriteConfig()
}

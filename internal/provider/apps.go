package provider

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrAppControlDisabled = errors.New("app control is disabled")
	ErrEmptyAppName       = errors.New("app name is empty")
)

// commandRunner 执行一条外部命令
// wait 为 false 时只启动不等待（打开应用）
type commandRunner func(ctx context.Context, wait bool, name string, args ...string) error

// LocalApps 通过系统命令打开、关闭本机应用
// 服务端部署时通常关闭，关闭时所有操作返回 ErrAppControlDisabled
type LocalApps struct {
	enabled bool
	goos    string
	run     commandRunner
	logger  *zap.Logger
}

// NewLocalApps 创建 LocalApps 实例
func NewLocalApps(enabled bool, logger *zap.Logger) *LocalApps {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalApps{
		enabled: enabled,
		goos:    runtime.GOOS,
		run:     execCommand,
		logger:  logger,
	}
}

// Open 打开应用
func (a *LocalApps) Open(ctx context.Context, name string) error {
	if err := a.check(name); err != nil {
		return err
	}
	bin, args := openCommand(a.goos, strings.TrimSpace(name))
	a.logger.Info("Opening application", zap.String("app", name), zap.String("command", bin))
	return a.run(ctx, false, bin, args...)
}

// Close 关闭应用
func (a *LocalApps) Close(ctx context.Context, name string) error {
	if err := a.check(name); err != nil {
		return err
	}
	bin, args := closeCommand(a.goos, strings.TrimSpace(name))
	a.logger.Info("Closing application", zap.String("app", name), zap.String("command", bin))
	return a.run(ctx, true, bin, args...)
}

func (a *LocalApps) check(name string) error {
	if !a.enabled {
		return ErrAppControlDisabled
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyAppName
	}
	return nil
}

// openCommand 各平台打开应用的命令
func openCommand(goos, name string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{"-a", name}
	case "windows":
		return "cmd", []string{"/c", "start", "", name}
	default:
		return name, nil
	}
}

// closeCommand 各平台关闭应用的命令
func closeCommand(goos, name string) (string, []string) {
	switch goos {
	case "darwin":
		return "osascript", []string{"-e", fmt.Sprintf("quit app %q", name)}
	case "windows":
		return "taskkill", []string{"/IM", name + ".exe", "/F"}
	default:
		return "pkill", []string{"-f", name}
	}
}

func execCommand(ctx context.Context, wait bool, name string, args ...string) error {
	if !wait {
		// 打开的应用不跟随请求的生命周期
		cmd := exec.Command(name, args...)
		if err := cmd.Start(); err != nil {
			return err
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

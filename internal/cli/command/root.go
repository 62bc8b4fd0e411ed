// Package command 实现 mealmood 命令行客户端的各个子命令
package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mealmood-server/internal/cli/api"
	"mealmood-server/internal/cli/config"
)

// ErrNotLoggedIn 本地没有保存凭证
var ErrNotLoggedIn = errors.New("아직 로그인하지 않았습니다. 'mealmood login' 을 먼저 실행해 주세요")

// NewRootCommand 创建根命令及全部子命令
func NewRootCommand() *cobra.Command {
	var server, configDir string

	root := &cobra.Command{
		Use:           "mealmood",
		Short:         "기분에 맞는 음식을 추천해 주는 대화형 도우미",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir := configDir
			if dir == "" {
				var err error
				if dir, err = config.DefaultDir(); err != nil {
					return err
				}
			}
			if err := config.Init(dir); err != nil {
				return err
			}
			if server != "" {
				config.SetServerURL(server)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&server, "server", "s", "", "서버 주소 (기본값: "+config.DefaultServerURL+")")
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "설정 디렉터리 (기본값: ~/.mealmood)")

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newStatusCommand(),
		newAskCommand(),
		newChatCommand(),
		newSessionsCommand(),
		newBookmarksCommand(),
	)
	return root
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

// withClient 用已保存的 Token 调用 fn
// Access Token 过期时用 Refresh Token 换新后重试一次
func withClient(fn func(c *api.Client) error) error {
	if !config.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	err := fn(api.NewClient(config.ServerURL(), config.AccessToken()))
	if !api.IsUnauthorized(err) {
		return err
	}

	refreshToken := config.Get().Auth.RefreshToken
	if refreshToken == "" {
		return err
	}
	accessToken, refreshErr := api.NewClient(config.ServerURL(), "").Refresh(refreshToken)
	if refreshErr != nil {
		return fmt.Errorf("로그인이 만료되었습니다. 다시 로그인해 주세요: %w", err)
	}
	if saveErr := config.SaveAccessToken(accessToken); saveErr != nil {
		return saveErr
	}
	return fn(api.NewClient(config.ServerURL(), accessToken))
}

// printReply 打印一条助手回复
func printReply(w io.Writer, reply *api.ChatReply) {
	fmt.Fprintln(w, strings.TrimSpace(reply.Message))
	if r := reply.Restaurant; r != nil {
		line := fmt.Sprintf("  🍽  %s", r.Name)
		if r.Address != "" {
			line += " · " + r.Address
		}
		if r.Rating != nil {
			line += fmt.Sprintf(" · ★ %.1f", *r.Rating)
		}
		fmt.Fprintln(w, line)
	}
	if reply.URL != nil && *reply.URL != "" {
		fmt.Fprintf(w, "  🗺  %s\n", *reply.URL)
	}
}

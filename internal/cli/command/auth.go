package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mealmood-server/internal/cli/api"
	"mealmood-server/internal/cli/config"
)

func newLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "이메일과 비밀번호로 로그인",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if email == "" {
				fmt.Fprint(out, "이메일: ")
				line, err := in.ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				email = strings.TrimSpace(line)
			}
			if email == "" {
				return fmt.Errorf("이메일을 입력해 주세요")
			}

			fmt.Fprint(out, "비밀번호: ")
			password, err := readPassword(cmd, in)
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("비밀번호를 읽지 못했습니다: %w", err)
			}
			if password == "" {
				return fmt.Errorf("비밀번호를 입력해 주세요")
			}

			resp, err := api.NewClient(config.ServerURL(), "").Login(email, password)
			if err != nil {
				return fmt.Errorf("로그인 실패: %w", err)
			}
			if err := config.SaveAuth(email, resp.AccessToken, resp.RefreshToken); err != nil {
				return fmt.Errorf("로그인 정보를 저장하지 못했습니다: %w", err)
			}

			name := email
			if resp.User != nil && resp.User.Name != "" {
				name = resp.User.Name
			}
			fmt.Fprintf(out, "✓ %s 님, 환영합니다!\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "로그인 이메일")
	return cmd
}

// readPassword 终端下隐藏输入，管道输入时按行读取
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return strings.TrimSpace(string(b)), err
	}
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "로그아웃하고 저장된 토큰 삭제",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !config.IsLoggedIn() {
				fmt.Fprintln(out, "로그인 상태가 아닙니다.")
				return nil
			}

			// 服务器吊销失败（例如 Token 早已过期）也继续清除本地凭证
			if err := api.NewClient(config.ServerURL(), config.AccessToken()).Logout(); err != nil && !api.IsUnauthorized(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ 서버 로그아웃 실패: %v\n", err)
			}
			if err := config.ClearAuth(); err != nil {
				return fmt.Errorf("로그인 정보를 삭제하지 못했습니다: %w", err)
			}
			fmt.Fprintln(out, "✓ 로그아웃 되었습니다.")
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "서버 주소와 로그인 상태 확인",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "서버: %s\n", config.ServerURL())

			if !config.IsLoggedIn() {
				fmt.Fprintln(out, "로그인: ✗ (mealmood login 으로 로그인하세요)")
				return nil
			}

			var status *api.StatusResponse
			err := withClient(func(c *api.Client) error {
				var err error
				status, err = c.Status()
				return err
			})
			if err != nil {
				fmt.Fprintf(out, "로그인: ✗ (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "로그인: ✓ %s <%s>\n", status.Name, status.Email)
			return nil
		},
	}
}

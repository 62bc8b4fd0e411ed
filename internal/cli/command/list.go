package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mealmood-server/internal/cli/api"
)

func newSessionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "대화 세션 목록",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sessions []api.SessionSummary
			if err := withClient(func(c *api.Client) (err error) {
				sessions, err = c.Sessions()
				return err
			}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "세션이 없습니다.")
				return nil
			}
			for _, s := range sessions {
				title := s.Title
				if title == "" {
					title = "(제목 없음)"
				}
				fmt.Fprintf(out, "%s  %s  %s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), title)
			}
			return nil
		},
	}
}

func newBookmarksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "즐겨찾기 관리",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listBookmarks(cmd)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "즐겨찾기 목록",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listBookmarks(cmd)
			},
		},
		&cobra.Command{
			Use:   "add <name> <url>",
			Short: "즐겨찾기 추가",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var b *api.Bookmark
				if err := withClient(func(c *api.Client) (err error) {
					b, err = c.AddBookmark(args[0], args[1])
					return err
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ 추가됨 #%d %s\n", b.ID, b.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "즐겨찾기 삭제",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("잘못된 ID: %q", args[0])
				}
				if err := withClient(func(c *api.Client) error {
					return c.DeleteBookmark(id)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ 삭제됨 #%d\n", id)
				return nil
			},
		},
	)
	return cmd
}

func listBookmarks(cmd *cobra.Command) error {
	var bookmarks []api.Bookmark
	if err := withClient(func(c *api.Client) (err error) {
		bookmarks, err = c.Bookmarks()
		return err
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(bookmarks) == 0 {
		fmt.Fprintln(out, "즐겨찾기가 없습니다.")
		return nil
	}
	for _, b := range bookmarks {
		fmt.Fprintf(out, "#%d  %s  %s\n", b.ID, b.Name, b.URL)
	}
	return nil
}

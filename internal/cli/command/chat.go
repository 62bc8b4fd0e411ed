package command

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mealmood-server/internal/cli/api"
	"mealmood-server/internal/cli/config"
	"mealmood-server/internal/cli/wsclient"
)

const replyTimeout = 90 * time.Second

func newAskCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "메시지 하나를 보내고 답변 출력",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reply *api.ChatReply
			err := withClient(func(c *api.Client) error {
				var err error
				reply, err = c.Ask(strings.Join(args, " "), sessionID)
				return err
			})
			if err != nil {
				return err
			}
			printReply(cmd.OutOrStdout(), reply)
			fmt.Fprintf(cmd.ErrOrStderr(), "(session %s)\n", reply.SessionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "이어서 대화할 세션 ID")
	return cmd
}

// chatEvent 读协程交给输入循环的结果
type chatEvent struct {
	messageID string
	reply     *api.ChatReply
	err       error
}

func newChatCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "실시간 대화 (WebSocket)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.IsLoggedIn() {
				return ErrNotLoggedIn
			}
			out := cmd.OutOrStdout()

			client, err := wsclient.NewClient(config.ServerURL(), config.AccessToken())
			if err != nil {
				return err
			}

			events := make(chan chatEvent, 8)
			closed := make(chan struct{})
			client.OnMessage(func(msg *wsclient.Message) {
				ev, ok := decodeEvent(msg)
				if !ok {
					return
				}
				select {
				case events <- ev:
				default:
				}
			})
			client.OnClose(func() { close(closed) })

			if err := client.Connect(); err != nil {
				return err
			}
			defer client.Disconnect()

			fmt.Fprintln(out, "대화를 시작합니다. 종료하려면 /quit 을 입력하세요.")
			return chatLoop(cmd.InOrStdin(), out, client, events, closed, sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "이어서 대화할 세션 ID")
	return cmd
}

// chatSender 发送对话消息
type chatSender interface {
	SendChat(content, sessionID string) (string, error)
}

// chatLoop 逐行读取输入，等待对应回复后再读下一行
func chatLoop(in io.Reader, out io.Writer, client chatSender, events <-chan chatEvent, closed <-chan struct{}, sessionID string) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if line == "" {
			continue
		}

		id, err := client.SendChat(line, sessionID)
		if err != nil {
			return err
		}

		ev, err := waitReply(events, closed, id)
		if err != nil {
			return err
		}
		if ev.err != nil {
			fmt.Fprintf(out, "⚠ %v\n", ev.err)
			continue
		}
		sessionID = ev.reply.SessionID
		printReply(out, ev.reply)
	}
}

// waitReply 只返回 id 对应的结果，同一用户其他连接触发的回复被忽略
func waitReply(events <-chan chatEvent, closed <-chan struct{}, id string) (chatEvent, error) {
	timeout := time.NewTimer(replyTimeout)
	defer timeout.Stop()
	for {
		select {
		case ev := <-events:
			if ev.messageID == id {
				return ev, nil
			}
		case <-closed:
			return chatEvent{}, errors.New("서버와의 연결이 끊어졌습니다")
		case <-timeout.C:
			return chatEvent{}, errors.New("응답 시간이 초과되었습니다")
		}
	}
}

func decodeEvent(msg *wsclient.Message) (chatEvent, bool) {
	switch msg.Type {
	case wsclient.TypeChatReply:
		var reply api.ChatReply
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			return chatEvent{messageID: msg.MessageID, err: err}, true
		}
		return chatEvent{messageID: msg.MessageID, reply: &reply}, true
	case wsclient.TypeError:
		var payload struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(msg.Payload, &payload)
		return chatEvent{messageID: msg.MessageID, err: errors.New(payload.Message)}, true
	default:
		return chatEvent{}, false
	}
}

// Package wsclient 命令行客户端的 WebSocket 连接
package wsclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// 消息类型，与服务器保持一致
const (
	TypeHeartbeat   = "heartbeat"
	TypePong        = "pong"
	TypeChatMessage = "chat:message"
	TypeChatReply   = "chat:reply"
	TypeError       = "error"
)

const heartbeatInterval = 30 * time.Second

// ErrClosed 连接已关闭
var ErrClosed = errors.New("连接已关闭")

// Message 收到的消息，Payload 由调用方按 Type 解析
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	MessageID string          `json:"message_id,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

type outbound struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Client WebSocket 客户端
type Client struct {
	url       string
	conn      *websocket.Conn
	sendChan  chan []byte
	done      chan struct{}
	mu        sync.Mutex
	running   bool
	onMessage func(*Message)
	onClose   func()
}

// ChatURL 把 HTTP 服务器地址转换为对话 WebSocket 地址
func ChatURL(serverURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("无效的服务器地址: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("不支持的协议: %q", u.Scheme)
	}
	u.Path += "/ws/chat"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// NewClient 创建客户端
func NewClient(serverURL, token string) (*Client, error) {
	wsURL, err := ChatURL(serverURL, token)
	if err != nil {
		return nil, err
	}
	return &Client{
		url:      wsURL,
		sendChan: make(chan []byte, 64),
		done:     make(chan struct{}),
	}, nil
}

// OnMessage 设置消息回调，在读协程中调用
func (c *Client) OnMessage(handler func(*Message)) {
	c.onMessage = handler
}

// OnClose 设置连接关闭回调
func (c *Client) OnClose(handler func()) {
	c.onClose = handler
}

// Connect 建立连接并启动读写协程
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errors.New("客户端已在运行")
	}

	conn, resp, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("连接失败 (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("连接失败: %w", err)
	}

	c.conn = conn
	c.running = true
	c.done = make(chan struct{})

	go c.readPump()
	go c.writePump()
	return nil
}

// SendChat 发送一条对话消息，返回消息 ID
func (c *Client) SendChat(content, sessionID string) (string, error) {
	id := uuid.NewString()
	payload := map[string]string{"content": content}
	if sessionID != "" {
		payload["session_id"] = sessionID
	}
	return id, c.send(&outbound{Type: TypeChatMessage, Payload: payload, MessageID: id})
}

func (c *Client) send(msg *outbound) error {
	msg.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	done := c.done
	running := c.running
	c.mu.Unlock()
	if !running {
		return ErrClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	case <-done:
		return ErrClosed
	default:
		return errors.New("发送缓冲区已满")
	}
}

// Disconnect 断开连接，可重复调用
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = conn.Close()

	if c.onClose != nil {
		c.onClose()
	}
}

func (c *Client) readPump() {
	defer c.Disconnect()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if c.onMessage != nil {
			c.onMessage(&msg)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(heartbeatInterval)
	defer func() {
		ticker.Stop()
		c.Disconnect()
	}()

	for {
		select {
		case <-c.done:
			return

		case data := <-c.sendChan:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			data, _ := json.Marshal(&outbound{Type: TypeHeartbeat, Timestamp: time.Now().UnixMilli()})
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

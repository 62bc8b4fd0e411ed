package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 连接参数
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // 必须小于 pongWait
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
	chatQueueSize  = 8
)

// chatJob 一条待处理的对话消息
type chatJob struct {
	payload   ChatMessagePayload
	messageID string
}

// Client 一个已认证的 WebSocket 连接
// 同一用户可以同时持有多个连接（浏览器标签页、CLI）
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	chats  chan chatJob
	userID int64

	mu     sync.Mutex
	closed bool
}

// NewClient 创建客户端
func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		chats:  make(chan chatJob, chatQueueSize),
		userID: userID,
	}
}

// ReadPump 循环读取客户端消息，连接断开后注销
// 对话消息交给单独的协程按到达顺序逐条处理
func (c *Client) ReadPump() {
	go c.chatPump()
	defer func() {
		close(c.chats)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read error", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendMessage(NewMessage(TypeError, &ErrorPayload{Code: codeBadRequest, Message: "메시지 형식이 올바르지 않습니다."}))
			continue
		}
		c.handleMessage(&msg)
	}
}

// WritePump 把 send 通道里的消息写到连接上，并定时发送 Ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 非阻塞地把消息放入发送队列
// 队列已满或连接已关闭时丢弃并返回 false
func (c *Client) SendMessage(msg *Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("Failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.hub.logger.Warn("Client send buffer full, dropping message",
			zap.Int64("user_id", c.userID), zap.String("type", msg.Type))
		return false
	}
}

func (c *Client) handleMessage(msg *inboundMessage) {
	switch msg.Type {
	case TypeHeartbeat:
		c.SendMessage(NewMessageWithID(TypePong, nil, msg.MessageID))

	case TypeChatMessage:
		var payload ChatMessagePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.SendMessage(NewMessageWithID(TypeError, &ErrorPayload{Code: codeBadRequest, Message: "메시지 형식이 올바르지 않습니다."}, msg.MessageID))
			return
		}
		// 回复可能要等外部服务，不阻塞读循环
		select {
		case c.chats <- chatJob{payload: payload, messageID: msg.MessageID}:
		default:
			c.SendMessage(NewMessageWithID(TypeError, &ErrorPayload{Code: codeTooManyRequests, Message: "처리 중인 메시지가 너무 많습니다. 잠시 후 다시 시도해 주세요."}, msg.MessageID))
		}

	default:
		c.SendMessage(NewMessageWithID(TypeError, &ErrorPayload{Code: codeBadRequest, Message: "지원하지 않는 메시지 유형입니다."}, msg.MessageID))
	}
}

// chatPump 逐条处理对话消息，同一连接上的回复不会交错
func (c *Client) chatPump() {
	for job := range c.chats {
		c.hub.handleChatMessage(c, &job.payload, job.messageID)
	}
}

// Close 关闭发送队列，可重复调用
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

package websocket

import (
	"encoding/json"
	"time"

	"mealmood-server/pkg/util"
)

// 消息类型
const (
	TypeHeartbeat   = "heartbeat"    // 客户端心跳
	TypePong        = "pong"         // 心跳回应
	TypeChatMessage = "chat:message" // 客户端发送的对话消息
	TypeChatReply   = "chat:reply"   // 助手回复，推送给该用户的全部连接
	TypeError       = "error"
)

// Message 服务端下发的消息
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// inboundMessage 客户端上行消息，Payload 按 Type 延迟解析
type inboundMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	MessageID string          `json:"message_id,omitempty"`
}

// NewMessage 创建一条带新 ID 的消息
func NewMessage(msgType string, payload interface{}) *Message {
	return NewMessageWithID(msgType, payload, util.NewRequestID())
}

// NewMessageWithID 创建消息，沿用调用方给出的 ID（用于回复对应请求）
func NewMessageWithID(msgType string, payload interface{}, messageID string) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
		MessageID: messageID,
	}
}

// ChatMessagePayload chat:message 的内容
type ChatMessagePayload struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"` // 为空时新建会话
}

// ErrorPayload 错误消息内容
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

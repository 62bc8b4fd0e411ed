package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/cache"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/jwt"
	"mealmood-server/pkg/response"
)

type fakeChat struct {
	mu        sync.Mutex
	calls     []string
	err       error
	slow      string        // 内容等于 slow 的消息处理得更慢
	block     bool          // 一直等到 ctx 结束
	started   chan struct{} // block 模式下每次调用开始时通知
	ctxErr    chan error
	active    int
	maxActive int
}

func (f *fakeChat) Respond(ctx context.Context, userID int64, sessionID, text string) (*service.ChatResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.block {
		f.started <- struct{}{}
		<-ctx.Done()
		f.ctxErr <- ctx.Err()
		return nil, ctx.Err()
	}
	if f.slow != "" && text == f.slow {
		time.Sleep(200 * time.Millisecond)
	}
	if f.err != nil {
		return nil, f.err
	}
	if sessionID == "" {
		sessionID = "new-session"
	}
	return &service.ChatResponse{
		Message:   "echo: " + text,
		SessionID: sessionID,
		Route:     assistant.RouteGeneral,
		CreatedAt: time.Now(),
	}, nil
}

type wsFixture struct {
	stop   context.CancelFunc
	hub    *Hub
	chat   *fakeChat
	jwt    *jwt.JWTService
	cache  *cache.MemoryCache
	server *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &wsFixture{
		chat:  &fakeChat{},
		jwt:   jwt.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour),
		cache: cache.NewMemoryCache(5, 0),
	}
	f.hub = NewHub(f.chat, 5*time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	f.stop = cancel
	go f.hub.Run(ctx)

	router := gin.New()
	NewHandler(f.hub, f.jwt, f.cache, "token", nil, zap.NewNop()).RegisterRoutes(router)
	f.server = httptest.NewServer(router)

	t.Cleanup(func() {
		cancel()
		f.server.Close()
	})
	return f
}

func (f *wsFixture) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(userID, "u@example.com", "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (f *wsFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/chat?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *wsFixture) waitConnections(t *testing.T, userID int64, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.hub.ConnectionCount(userID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("user %d has %d connections, want %d", userID, f.hub.ConnectionCount(userID), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type received struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	MessageID string          `json:"message_id"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func sendChat(t *testing.T, conn *websocket.Conn, id, content, sessionID string) {
	t.Helper()
	msg := map[string]interface{}{
		"type":       TypeChatMessage,
		"message_id": id,
		"payload":    ChatMessagePayload{Content: content, SessionID: sessionID},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestChatReplyReachesEveryConnectionOfUser(t *testing.T) {
	f := newWSFixture(t)
	token := f.token(t, 1)
	first := f.dial(t, token)
	second := f.dial(t, token)
	other := f.dial(t, f.token(t, 2))
	f.waitConnections(t, 1, 2)
	f.waitConnections(t, 2, 1)

	sendChat(t, first, "m-1", "안녕", "")

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		if msg.Type != TypeChatReply || msg.MessageID != "m-1" {
			t.Fatalf("unexpected message %+v", msg)
		}
		var reply service.ChatResponse
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			t.Fatalf("decode reply: %v", err)
		}
		if reply.Message != "echo: 안녕" || reply.SessionID != "new-session" {
			t.Fatalf("unexpected reply %+v", reply)
		}
	}

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg received
	if err := other.ReadJSON(&msg); err == nil {
		t.Fatalf("other user must not receive the reply, got %+v", msg)
	}
}

func TestChatMessagesOfOneConnectionAreHandledInOrder(t *testing.T) {
	f := newWSFixture(t)
	f.chat.slow = "first"
	conn := f.dial(t, f.token(t, 1))
	f.waitConnections(t, 1, 1)

	sendChat(t, conn, "m1", "first", "s1")
	sendChat(t, conn, "m2", "second", "s1")

	for _, want := range []string{"m1", "m2"} {
		msg := readMessage(t, conn)
		if msg.Type != TypeChatReply || msg.MessageID != want {
			t.Fatalf("got %s %s, want reply %s", msg.Type, msg.MessageID, want)
		}
	}

	f.chat.mu.Lock()
	defer f.chat.mu.Unlock()
	if f.chat.maxActive != 1 {
		t.Fatalf("chat messages of one connection ran concurrently (max %d)", f.chat.maxActive)
	}
}

func TestPendingChatCancelledWhenHubStops(t *testing.T) {
	f := newWSFixture(t)
	f.chat.block = true
	f.chat.started = make(chan struct{}, 1)
	f.chat.ctxErr = make(chan error, 1)
	conn := f.dial(t, f.token(t, 1))
	f.waitConnections(t, 1, 1)

	sendChat(t, conn, "m1", "안녕", "")
	select {
	case <-f.chat.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("chat was not started")
	}

	f.stop()
	select {
	case err := <-f.chat.ctxErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pending chat was not cancelled")
	}
}

func TestHeartbeatAndUnknownType(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, f.token(t, 1))

	if err := conn.WriteJSON(map[string]string{"type": TypeHeartbeat, "message_id": "hb"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != TypePong || msg.MessageID != "hb" {
		t.Fatalf("expected pong, got %+v", msg)
	}

	if err := conn.WriteJSON(map[string]string{"type": "voice:start"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != TypeError {
		t.Fatalf("expected error, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, conn)
	var payload ErrorPayload
	_ = json.Unmarshal(msg.Payload, &payload)
	if msg.Type != TypeError || payload.Code != response.CodeBadRequest {
		t.Fatalf("expected bad request error, got %+v", msg)
	}
}

func TestChatErrorGoesToSenderOnly(t *testing.T) {
	f := newWSFixture(t)
	f.chat.err = service.ErrNoPermission
	token := f.token(t, 1)
	sender := f.dial(t, token)
	peer := f.dial(t, token)
	f.waitConnections(t, 1, 2)

	sendChat(t, sender, "m-2", "hi", "someone-elses-session")

	msg := readMessage(t, sender)
	var payload ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeError || msg.MessageID != "m-2" || payload.Code != response.CodeForbidden {
		t.Fatalf("unexpected message %+v %+v", msg, payload)
	}

	_ = peer.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var other received
	if err := peer.ReadJSON(&other); err == nil {
		t.Fatalf("peer must not receive the error, got %+v", other)
	}
}

func TestHandshakeRequiresValidToken(t *testing.T) {
	f := newWSFixture(t)
	base := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/chat"

	revoked := f.token(t, 3)
	_ = f.cache.BlacklistToken(context.Background(), cache.HashToken(revoked), time.Now().Add(time.Hour))

	for name, url := range map[string]string{
		"missing":     base,
		"garbage":     base + "?token=abc",
		"blacklisted": base + "?token=" + revoked,
	} {
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			conn.Close()
			t.Fatalf("%s: expected handshake failure", name)
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %+v", name, resp)
		}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+f.token(t, 4))
	conn, _, err := websocket.DefaultDialer.Dial(base, header)
	if err != nil {
		t.Fatalf("bearer header should be accepted: %v", err)
	}
	conn.Close()
}

func TestNotifyReplyAndClose(t *testing.T) {
	hub := NewHub(&fakeChat{}, 0, zap.NewNop())
	a := NewClient(hub, nil, 7)
	b := NewClient(hub, nil, 7)
	hub.registerClient(a)
	hub.registerClient(b)

	hub.NotifyReply(7, &service.ChatResponse{Message: "추천", SessionID: "s"})
	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.send:
			var msg received
			if err := json.Unmarshal(data, &msg); err != nil || msg.Type != TypeChatReply {
				t.Fatalf("unexpected payload %s %v", data, err)
			}
		default:
			t.Fatal("expected a queued reply")
		}
	}

	hub.unregisterClient(a)
	if hub.ConnectionCount(7) != 1 {
		t.Fatalf("expected one connection left, got %d", hub.ConnectionCount(7))
	}
	if a.SendMessage(NewMessage(TypePong, nil)) {
		t.Fatal("closed client must refuse messages")
	}
	a.Close()

	hub.unregisterClient(b)
	if hub.ConnectionCount(7) != 0 {
		t.Fatal("expected no connections")
	}
	if sent := hub.SendToUser(7, NewMessage(TypePong, nil)); sent != 0 {
		t.Fatalf("expected nothing sent, got %d", sent)
	}
}

func TestOriginChecker(t *testing.T) {
	cases := []struct {
		origins []string
		origin  string
		want    bool
	}{
		{nil, "http://evil.example", true},
		{[]string{"*"}, "http://evil.example", true},
		{[]string{"http://app.example"}, "http://app.example", true},
		{[]string{"http://app.example"}, "http://evil.example", false},
		{[]string{"http://app.example"}, "", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := originChecker(tc.origins)(req); got != tc.want {
			t.Errorf("origins=%v origin=%q: got %v want %v", tc.origins, tc.origin, got, tc.want)
		}
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mealmood-server/internal/assistant"
	"mealmood-server/internal/cache"
	"mealmood-server/internal/database"
	"mealmood-server/internal/middleware"
	"mealmood-server/internal/repository"
	"mealmood-server/internal/service"
	"mealmood-server/pkg/jwt"
	"mealmood-server/pkg/response"
)

type stubResponder struct {
	reply *assistant.Reply
	err   error
}

func (s *stubResponder) Respond(_ context.Context, text string, _ []string) (*assistant.Reply, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.reply != nil {
		return s.reply, nil
	}
	return &assistant.Reply{Route: assistant.Classify(text), Message: "응답: " + text}, nil
}

type recordingNotifier struct {
	userIDs []int64
}

func (n *recordingNotifier) NotifyReply(userID int64, _ *service.ChatResponse) {
	n.userIDs = append(n.userIDs, userID)
}

type apiFixture struct {
	router    *gin.Engine
	responder *stubResponder
	notifier  *recordingNotifier
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	tokenCache := cache.NewMemoryCache(5, 0)
	jwtService := jwt.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	turnRepo := repository.NewChatTurnRepository(db)

	f := &apiFixture{responder: &stubResponder{}, notifier: &recordingNotifier{}}
	chatService := service.NewChatService(sessionRepo, turnRepo, f.responder, tokenCache, nil)
	chatHandler := NewChatHandler(chatService)
	chatHandler.SetNotifier(f.notifier)

	f.router = gin.New()
	RegisterRoutes(f.router, Handlers{
		Auth:      NewAuthHandler(service.NewAuthService(userRepo, tokenCache, jwtService), CookieConfig{Name: "token", MaxAge: time.Hour}),
		User:      NewUserHandler(service.NewUserService(userRepo)),
		Session:   NewSessionHandler(service.NewSessionService(sessionRepo, turnRepo), chatService),
		Chat:      chatHandler,
		Bookmark:  NewBookmarkHandler(service.NewBookmarkService(repository.NewBookmarkRepository(db))),
		Assistant: NewAssistantHandler(),
	}, middleware.AuthMiddleware(jwtService, tokenCache, "token"))
	return f
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return f.serve(t, req)
}

func (f *apiFixture) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", req.Method, req.URL.Path, err, w.Body.String())
		}
	}
	return w, env
}

func (f *apiFixture) signup(t *testing.T, name, email string) string {
	t.Helper()
	w, env := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "pw1234",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", email, w.Code, w.Body.String())
	}
	var login service.LoginResponse
	if err := json.Unmarshal(env.Data, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return login.AccessToken
}

func TestAuthFlow(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "지민", "email": "jimin@example.com", "password": "pw1234",
	})
	if w.Code != http.StatusCreated || env.Code != response.CodeSuccess {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	if cookie := w.Header().Get("Set-Cookie"); !strings.Contains(cookie, "token=") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("expected httpOnly token cookie, got %q", cookie)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "x", "email": "jimin@example.com", "password": "pw",
	})
	if w.Code != http.StatusConflict || env.Code != response.CodeEmailExists {
		t.Fatalf("duplicate signup: %d %+v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "x", "email": "not-an-email", "password": "pw",
	})
	if w.Code != http.StatusBadRequest || env.Message != "이메일 형식이 올바르지 않습니다." {
		t.Fatalf("invalid email signup: %d %+v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "x", "email": "", "password": "pw",
	})
	if w.Code != http.StatusBadRequest || env.Message != "이름, 이메일, 비밀번호를 모두 입력해 주세요." {
		t.Fatalf("missing email signup: %d %+v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "jimin@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized || env.Code != response.CodeInvalidCredentials {
		t.Fatalf("wrong password: %d %+v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "jimin@example.com", "password": "pw1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var login service.LoginResponse
	_ = json.Unmarshal(env.Data, &login)

	// 只带 Cookie 也能通过认证
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: login.AccessToken})
	w, env = f.serve(t, req)
	var status service.StatusResponse
	_ = json.Unmarshal(env.Data, &status)
	if w.Code != http.StatusOK || !status.LoggedIn || status.Email != "jimin@example.com" {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": login.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	w, _ = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": login.AccessToken})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("access token must not refresh: %d", w.Code)
	}

	w, _ = f.do(t, http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", w.Code, w.Body.String())
	}
	w, env = f.do(t, http.MethodGet, "/api/v1/auth/status", login.AccessToken, nil)
	if w.Code != http.StatusUnauthorized || env.Code != response.CodeUnauthorized {
		t.Fatalf("revoked token accepted: %d %+v", w.Code, env)
	}

	w, _ = f.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous profile: %d", w.Code)
	}
}

func TestChatAndSessionOwnership(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.signup(t, "alice", "alice@example.com")
	bob := f.signup(t, "bob", "bob@example.com")

	w, env := f.do(t, http.MethodPost, "/api/v1/chat", alice, map[string]string{"message": "계산기 열어줘"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", w.Code, w.Body.String())
	}
	var reply service.ChatResponse
	_ = json.Unmarshal(env.Data, &reply)
	if reply.SessionID == "" || reply.Message != "응답: 계산기 열어줘" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(f.notifier.userIDs) != 1 {
		t.Fatalf("expected one notification, got %v", f.notifier.userIDs)
	}

	// 表单请求体
	form := url.Values{"message": {"배고파"}, "session_id": {reply.SessionID}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+alice)
	if w, _ = f.serve(t, req); w.Code != http.StatusOK {
		t.Fatalf("form chat: %d %s", w.Code, w.Body.String())
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/sessions", alice, nil)
	var sessions []map[string]interface{}
	_ = json.Unmarshal(env.Data, &sessions)
	if w.Code != http.StatusOK || len(sessions) != 1 || sessions[0]["title"] != "계산기 열어줘" {
		t.Fatalf("sessions: %d %s", w.Code, w.Body.String())
	}

	logsPath := "/api/v1/sessions/" + reply.SessionID + "/logs"
	w, env = f.do(t, http.MethodGet, logsPath, alice, nil)
	var turns []map[string]interface{}
	_ = json.Unmarshal(env.Data, &turns)
	if w.Code != http.StatusOK || len(turns) != 4 || turns[0]["role"] != "user" {
		t.Fatalf("logs: %d %s", w.Code, w.Body.String())
	}

	w, env = f.do(t, http.MethodGet, logsPath, bob, nil)
	if w.Code != http.StatusForbidden || env.Code != response.CodeForbidden {
		t.Fatalf("foreign logs: %d %+v", w.Code, env)
	}
	w, _ = f.do(t, http.MethodPost, "/api/v1/sessions/"+reply.SessionID+"/messages", bob, map[string]string{"message": "hi"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign message: %d", w.Code)
	}
	w, env = f.do(t, http.MethodGet, "/api/v1/sessions/missing/logs", alice, nil)
	if w.Code != http.StatusNotFound || env.Code != response.CodeSessionNotFound {
		t.Fatalf("missing session: %d %+v", w.Code, env)
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/sessions", bob, map[string]string{"title": "bob's"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	w, _ = f.do(t, http.MethodPost, "/api/v1/sessions", bob, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session without body: %d %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodDelete, "/api/v1/sessions/"+reply.SessionID, bob, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: %d", w.Code)
	}
	w, _ = f.do(t, http.MethodDelete, "/api/v1/sessions/"+reply.SessionID, alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	w, _ = f.do(t, http.MethodGet, logsPath, alice, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted session still readable: %d", w.Code)
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "alice@example.com")
	f.responder.err = errors.New("connection refused")

	w, env := f.do(t, http.MethodPost, "/api/v1/chat", token, map[string]string{"message": "오늘 뉴스"})
	if w.Code != http.StatusBadGateway || env.Code != response.CodeUpstreamError {
		t.Fatalf("expected 502, got %d %+v", w.Code, env)
	}
	if len(f.notifier.userIDs) != 0 {
		t.Fatal("failed replies must not be pushed")
	}
}

func TestBookmarkEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.signup(t, "alice", "alice@example.com")
	bob := f.signup(t, "bob", "bob@example.com")

	w, env := f.do(t, http.MethodPost, "/api/v1/bookmarks", alice, map[string]string{
		"name": "김밥천국", "url": "https://www.google.com/maps/place/?q=place_id:abc",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &created)
	path := "/api/v1/bookmarks/" + jsonNumber(created.ID)

	w, _ = f.do(t, http.MethodPost, "/api/v1/bookmarks", alice, map[string]string{"name": "no url"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing url: %d", w.Code)
	}

	w, env = f.do(t, http.MethodGet, "/api/v1/bookmarks", bob, nil)
	if w.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("bob list: %d %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodPut, path, bob, map[string]string{"name": "x", "url": "https://x"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign update: %d", w.Code)
	}
	w, env = f.do(t, http.MethodPut, path, alice, map[string]string{"name": "단골", "url": "https://x"})
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), "단골") {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodDelete, "/api/v1/bookmarks/abc", alice, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
	w, _ = f.do(t, http.MethodDelete, path, alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	w, env = f.do(t, http.MethodDelete, path, alice, nil)
	if w.Code != http.StatusNotFound || env.Code != response.CodeBookmarkNotFound {
		t.Fatalf("second delete: %d %+v", w.Code, env)
	}
}

func TestUsersAndClassify(t *testing.T) {
	f := newAPIFixture(t)
	token := f.signup(t, "alice", "alice@example.com")
	f.signup(t, "bob", "bob@example.com")

	w, env := f.do(t, http.MethodGet, "/api/v1/users", token, nil)
	if w.Code != http.StatusOK || strings.Contains(string(env.Data), "password") || !strings.Contains(string(env.Data), "bob") {
		t.Fatalf("users: %d %s", w.Code, w.Body.String())
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/assistant/classify", token, map[string]string{"message": "오늘 너무 우울해"})
	var got ClassifyResponse
	_ = json.Unmarshal(env.Data, &got)
	if w.Code != http.StatusOK || got.Route != assistant.RouteEmotion || len(got.Families) == 0 {
		t.Fatalf("classify: %d %s", w.Code, w.Body.String())
	}

	w, env = f.do(t, http.MethodPost, "/api/v1/assistant/classify", token, map[string]string{"message": "계산기 열어줘"})
	_ = json.Unmarshal(env.Data, &got)
	if got.Route != assistant.RouteGeneral || got.Families == nil {
		t.Fatalf("classify general: %d %s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
}

func jsonNumber(n int64) string {
	data, _ := json.Marshal(n)
	return string(data)
}

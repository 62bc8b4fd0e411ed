// Package api 封装命令行客户端对服务器 REST 接口的调用
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client API 客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient 创建 API 客户端
// 参数:
//   - baseURL: 例如 http://localhost:8080
//   - token: Access Token，未登录时为空
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Envelope 服务器统一响应
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Error 服务器返回的业务错误
type Error struct {
	Status  int
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d, code %d)", e.Message, e.Status, e.Code)
}

// IsUnauthorized 是否是认证失败
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// User 用户信息
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

// StatusResponse 登录状态
type StatusResponse struct {
	LoggedIn bool   `json:"logged_in"`
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Restaurant 推荐餐厅
type Restaurant struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Rating  *float64 `json:"rating,omitempty"`
}

// ChatReply 助手回复
type ChatReply struct {
	Message    string      `json:"message"`
	SessionID  string      `json:"session_id"`
	Route      string      `json:"route"`
	CreatedAt  time.Time   `json:"created_at"`
	URL        *string     `json:"url,omitempty"`
	Name       *string     `json:"name,omitempty"`
	Restaurant *Restaurant `json:"restaurant,omitempty"`
}

// SessionSummary 会话列表项
type SessionSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
	LastMessage *string    `json:"last_message"`
	LastDate    *time.Time `json:"last_date"`
}

// Bookmark 收藏
type Bookmark struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Login 邮箱密码登录
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	var result LoginResponse
	err := c.call(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	return &result, err
}

// Refresh 用 Refresh Token 换新的 Access Token
func (c *Client) Refresh(refreshToken string) (string, error) {
	var result struct {
		AccessToken string `json:"access_token"`
	}
	err := c.call(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": refreshToken}, &result)
	return result.AccessToken, err
}

// Logout 让服务器吊销当前 Token
func (c *Client) Logout() error {
	return c.call(http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Status 查询登录状态
func (c *Client) Status() (*StatusResponse, error) {
	var result StatusResponse
	err := c.call(http.MethodGet, "/api/v1/auth/status", nil, &result)
	return &result, err
}

// Ask 发送一条消息，sessionID 为空时服务器新建会话
func (c *Client) Ask(message, sessionID string) (*ChatReply, error) {
	var result ChatReply
	err := c.call(http.MethodPost, "/api/v1/chat", map[string]string{
		"message":    message,
		"session_id": sessionID,
	}, &result)
	return &result, err
}

// Sessions 会话列表
func (c *Client) Sessions() ([]SessionSummary, error) {
	var result []SessionSummary
	err := c.call(http.MethodGet, "/api/v1/sessions", nil, &result)
	return result, err
}

// Bookmarks 收藏列表
func (c *Client) Bookmarks() ([]Bookmark, error) {
	var result []Bookmark
	err := c.call(http.MethodGet, "/api/v1/bookmarks", nil, &result)
	return result, err
}

// AddBookmark 新增收藏
func (c *Client) AddBookmark(name, url string) (*Bookmark, error) {
	var result Bookmark
	err := c.call(http.MethodPost, "/api/v1/bookmarks", map[string]string{"name": name, "url": url}, &result)
	return &result, err
}

// DeleteBookmark 删除收藏
func (c *Client) DeleteBookmark(id int64) error {
	return c.call(http.MethodDelete, "/api/v1/bookmarks/"+strconv.FormatInt(id, 10), nil, nil)
}

// call 发送请求并把 data 解码到 out，out 为 nil 时忽略 data
func (c *Client) call(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("解析响应失败 (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Code != 0 {
		return &Error{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("解析响应数据失败: %w", err)
		}
	}
	return nil
}

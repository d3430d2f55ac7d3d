// Package client is a Go client for the chatbot REST API plus the
// HistoryView controller that drives the chat-history screen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatTurn is one recorded exchange as returned by GET /api/chat/history.
type ChatTurn struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply is the result of sending one message.
type ChatReply struct {
	Response  string    `json:"response"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// User mirrors the server's public user shape.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client calls the chatbot API. The bearer token is held explicitly on the
// client rather than read from ambient storage; Login sets it, SetToken
// replaces it after a refresh.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func NewWithToken(baseURL, token string) *Client {
	c := New(baseURL)
	c.token = token
	return c
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// SendMessage posts one message. An empty model means the server default.
func (c *Client) SendMessage(ctx context.Context, message, model string) (*ChatReply, error) {
	var reply ChatReply
	body := map[string]string{"message": message}
	if model != "" {
		body["model"] = model
	}
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// History fetches the caller's full turn list in server order (newest first).
func (c *Client) History(ctx context.Context) ([]ChatTurn, error) {
	var turns []ChatTurn
	if err := c.do(ctx, http.MethodGet, "/api/chat/history", nil, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// DeleteHistory removes every turn belonging to the caller.
func (c *Client) DeleteHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/history", nil, nil)
}

// Models lists the model names the server accepts.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var models []string
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN"}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/biosecret/tasktracker/common"
	"github.com/biosecret/tasktracker/models"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 10 * time.Second

// TaskInput là dữ liệu task khi tạo và cập nhật. Trường nil không được gửi.
type TaskInput struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Estimate    *float64           `json:"estimate,omitempty"`
	Status      *models.TaskStatus `json:"status,omitempty"`
	CompletedAt *string            `json:"completed_at,omitempty"`
	LoggedTime  *float64           `json:"loggedtime,omitempty"`
}

// APIError là response lỗi từ server; Unwrap trả về lỗi tương ứng trong common
type APIError struct {
	Status  int
	Message string
	Fields  []common.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, (&common.ValidationError{Fields: e.Fields}).Error())
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case fasthttp.StatusBadRequest:
		return &common.ValidationError{Fields: e.Fields}
	case fasthttp.StatusUnauthorized:
		if e.Message == "Invalid credentials" {
			return common.ErrInvalidCredentials
		}
		return common.ErrUnauthorized
	case fasthttp.StatusForbidden:
		return common.ErrInvalidToken
	case fasthttp.StatusNotFound:
		return common.ErrNotFound
	case fasthttp.StatusConflict:
		return common.ErrEmailTaken
	}
	return common.ErrInternal
}

type Option func(*Client)

func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout đặt timeout cho mỗi request khi ctx không có deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client gọi REST API của task tracker, dùng được từ nhiều goroutine
type Client struct {
	baseURL string
	hc      *fasthttp.Client
	timeout time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &fasthttp.Client{Name: "tasktracker-client"},
		timeout: defaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Signup(ctx context.Context, email, password string) error {
	return c.do(ctx, fasthttp.MethodPost, "/api/auth/signup", credentials{email, password}, nil)
}

// Login đăng nhập và lưu token cho các lần gọi sau
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/api/auth/login", credentials{email, password}, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if err := c.do(ctx, fasthttp.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, fasthttp.MethodGet, taskPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, fasthttp.MethodPost, "/api/tasks", in, &out)
	return out, err
}

// UpdateTask cập nhật một phần task.
// Chuyển sang Done mà không có completed_at thì tự gán ngày hôm nay (UTC).
func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskInput) (models.Task, error) {
	if in.Status != nil && *in.Status == models.StatusDone && (in.CompletedAt == nil || *in.CompletedAt == "") {
		today := c.now().UTC().Format(time.DateOnly)
		in.CompletedAt = &today
	}

	var out models.Task
	err := c.do(ctx, fasthttp.MethodPatch, taskPath(id), in, &out)
	return out, err
}

// LogTime cộng thêm số giờ làm việc
func (c *Client) LogTime(ctx context.Context, id int64, hours float64) (models.Task, error) {
	body := struct {
		LoggedTime float64 `json:"logged_time"`
	}{hours}

	var out models.Task
	err := c.do(ctx, fasthttp.MethodPatch, taskPath(id)+"/time", body, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, fasthttp.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(b)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.hc.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status >= fasthttp.StatusBadRequest {
		return decodeError(status, resp.Body())
	}
	if out == nil || status == fasthttp.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var payload struct {
		Error  string              `json:"error"`
		Errors []common.FieldError `json:"errors"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Fields = payload.Errors
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = fasthttp.StatusMessage(status)
	}
	return apiErr
}

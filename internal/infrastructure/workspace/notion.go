package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	DefaultNotionURL = "https://api.notion.com/v1"
	notionVersion    = "2022-06-28"
	initialStatus    = "Not Started"
)

type Task struct {
	Title       string
	Description string
}

// CreatedTask is the workspace page that now represents the task.
type CreatedTask struct {
	ID  string          `json:"id"`
	URL string          `json:"url"`
	Raw json.RawMessage `json:"-"`
}

type TaskCreator interface {
	CreateTask(ctx context.Context, t Task) (CreatedTask, error)
}

type NotionConfig struct {
	BaseURL    string
	APIKey     string
	DatabaseID string
	Timeout    time.Duration
}

// NotionClient creates pages in one Notion database.
type NotionClient struct {
	client     *resty.Client
	databaseID string
	configured bool
}

func NewNotionClient(cfg NotionConfig) *NotionClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultNotionURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Notion-Version", notionVersion).
		SetAuthToken(cfg.APIKey).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	// POST /pages is not idempotent: retry only replies where Notion
	// did not create the page.
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil || r == nil {
			return false
		}
		code := r.StatusCode()
		return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
	})

	return &NotionClient{
		client:     client,
		databaseID: cfg.DatabaseID,
		configured: cfg.APIKey != "" && cfg.DatabaseID != "",
	}
}

type notionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *NotionClient) CreateTask(ctx context.Context, t Task) (CreatedTask, error) {
	if !c.configured {
		return CreatedTask{}, domain.ErrWorkspaceNotConfigured()
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return CreatedTask{}, domain.ErrMissingField("title")
	}

	var (
		out    CreatedTask
		apiErr notionError
	)
	resp, err := c.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(pageRequest(c.databaseID, t)).
		SetResult(&out).
		SetError(&apiErr).
		Post("/pages")
	if err != nil {
		return CreatedTask{}, domain.ErrWorkspaceRejected(err)
	}
	if resp.IsError() {
		cause := fmt.Errorf("notion %d %s: %s", resp.StatusCode(), apiErr.Code, apiErr.Message)
		return CreatedTask{}, domain.WithMeta(domain.ErrWorkspaceRejected(cause), map[string]string{
			"status": fmt.Sprint(resp.StatusCode()),
		})
	}

	out.Raw = json.RawMessage(resp.Body())
	return out, nil
}

func pageRequest(databaseID string, t Task) map[string]any {
	req := map[string]any{
		"parent": map[string]any{"database_id": databaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []any{
					map[string]any{"text": map[string]any{"content": t.Title}},
				},
			},
			"Status": map[string]any{
				"status": map[string]any{"name": initialStatus},
			},
		},
	}
	// description goes in the page body so the database needs no extra column
	if d := strings.TrimSpace(t.Description); d != "" {
		req["children"] = []any{
			map[string]any{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": []any{
						map[string]any{"type": "text", "text": map[string]any{"content": d}},
					},
				},
			},
		}
	}
	return req
}

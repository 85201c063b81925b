// Package client talks to a running pomofocus server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kazz187/pomofocus/internal/chat"
	"github.com/kazz187/pomofocus/internal/enhance"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// Error is a non-2xx reply from the server.
type Error struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Reply implements the dialogue responder over /api/chat.
func (c *Client) Reply(ctx context.Context, message string, history []chat.Turn) (*chat.Reply, error) {
	if history == nil {
		history = []chat.Turn{}
	}
	var resp chat.Response
	if err := c.post(ctx, "/api/chat", &chat.Request{Message: message, ConversationHistory: history}, &resp); err != nil {
		return nil, err
	}
	return &chat.Reply{Text: resp.Response, SuggestedTask: resp.SuggestedTask}, nil
}

func (c *Client) EnhanceTask(ctx context.Context, taskID, title, description, userEmail string) (*enhance.EnhancedTask, error) {
	var resp enhance.HTTPResponse
	err := c.post(ctx, "/api/enhance-task", &enhance.HTTPRequest{
		TaskID:      taskID,
		Title:       title,
		Description: description,
		UserEmail:   userEmail,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.EnhancedTask == nil {
		return nil, fmt.Errorf("enhance response has no task")
	}
	return resp.EnhancedTask, nil
}

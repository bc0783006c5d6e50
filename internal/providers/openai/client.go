package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/pkg/retry"
)

const (
	filePurpose = "assistants"

	assistantName         = "Document Assistant"
	assistantInstructions = "You are a helpful assistant that answers questions based on the uploaded documents. " +
		"Use the file search tool to find relevant information."
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client is a typed facade over the Assistants v2 API. One Client (and its
// http.Client connection pool) is built at process start and shared by every
// request.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	retrier *retry.Retrier
}

func NewClient(cfg Config) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    3,
			BackoffFactor: 2.0,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			Jitter:        100 * time.Millisecond,
		}),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"OpenAI-Beta":   "assistants=v2",
		"User-Agent":    core.AppUserAgent,
	}
}

func (c *Client) doOnce(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.ProviderError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// do executes one API call. Only 429 responses are retried: a rate-limited
// request was never processed, while retrying any other failure could
// double-apply a non-idempotent POST such as AttachFile or AddMessage.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var data []byte
	var permErr error

	err := c.retrier.Do(ctx, func() error {
		b, err := c.doOnce(ctx, method, path, contentType, body)
		if err != nil {
			var pe *core.ProviderError
			if errors.As(err, &pe) && pe.StatusCode == http.StatusTooManyRequests {
				return err
			}
			permErr = err
			return nil
		}
		data = b
		return nil
	})
	if permErr != nil {
		return nil, permErr
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
	}
	return c.do(ctx, method, path, "application/json", body)
}

// UploadFile streams the document to the provider's file storage with the
// fixed "assistants" purpose and returns the remote file ID and the size the
// provider confirmed.
func (c *Client) UploadFile(ctx context.Context, data []byte, name string) (string, int64, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", 0, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", 0, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.WriteField("purpose", filePurpose); err != nil {
		return "", 0, fmt.Errorf("write purpose field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", 0, fmt.Errorf("close multipart writer: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/v1/files", mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return "", 0, fmt.Errorf("upload file: %w", err)
	}

	var file struct {
		ID    string `json:"id"`
		Bytes int64  `json:"bytes"`
	}
	if err := json.Unmarshal(respBody, &file); err != nil {
		return "", 0, fmt.Errorf("decode file response: %w", err)
	}
	return file.ID, file.Bytes, nil
}

func (c *Client) CreateVectorStore(ctx context.Context, name string) (string, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/v1/vector_stores", map[string]any{
		"name": name,
	})
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}

	var store struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &store); err != nil {
		return "", fmt.Errorf("decode vector store response: %w", err)
	}
	return store.ID, nil
}

// AttachFile binds an uploaded file to a vector store. The provider does not
// guarantee idempotency, so a pair must never be attached twice.
func (c *Client) AttachFile(ctx context.Context, storeID, fileID string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/v1/vector_stores/"+storeID+"/files", map[string]any{
		"file_id": fileID,
	})
	if err != nil {
		return fmt.Errorf("attach file: %w", err)
	}
	return nil
}

// CreateAssistant provisions an assistant whose only capability is file
// search over exactly one vector store.
func (c *Client) CreateAssistant(ctx context.Context, storeID string) (string, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/v1/assistants", map[string]any{
		"model":        c.model,
		"name":         assistantName,
		"instructions": assistantInstructions,
		"tools":        []map[string]any{{"type": "file_search"}},
		"tool_resources": map[string]any{
			"file_search": map[string]any{
				"vector_store_ids": []string{storeID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}

	var assistant struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &assistant); err != nil {
		return "", fmt.Errorf("decode assistant response: %w", err)
	}
	return assistant.ID, nil
}

func (c *Client) CreateThread(ctx context.Context) (string, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/v1/threads", nil)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}

	var thread struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &thread); err != nil {
		return "", fmt.Errorf("decode thread response: %w", err)
	}
	return thread.ID, nil
}

func (c *Client) AddMessage(ctx context.Context, threadID, text string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/v1/threads/"+threadID+"/messages", map[string]any{
		"role":    "user",
		"content": text,
	})
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (string, error) {
	respBody, err := c.doJSON(ctx, http.MethodPost, "/v1/threads/"+threadID+"/runs", map[string]any{
		"assistant_id": assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	var run struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &run); err != nil {
		return "", fmt.Errorf("decode run response: %w", err)
	}
	return run.ID, nil
}

func (c *Client) GetRunStatus(ctx context.Context, threadID, runID string) (core.RunStatus, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/v1/threads/"+threadID+"/runs/"+runID, "", nil)
	if err != nil {
		return "", fmt.Errorf("get run status: %w", err)
	}

	var run struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &run); err != nil {
		return "", fmt.Errorf("decode run status response: %w", err)
	}
	return core.RunStatus(run.Status), nil
}

// GetLatestMessage fetches the newest message in the thread, or an empty
// string when the thread has none.
func (c *Client) GetLatestMessage(ctx context.Context, threadID string) (string, error) {
	q := url.Values{"limit": {"1"}, "order": {"desc"}}
	respBody, err := c.do(ctx, http.MethodGet, "/v1/threads/"+threadID+"/messages?"+q.Encode(), "", nil)
	if err != nil {
		return "", fmt.Errorf("get latest message: %w", err)
	}

	var messages struct {
		Data []struct {
			Content []struct {
				Text struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &messages); err != nil {
		return "", fmt.Errorf("decode messages response: %w", err)
	}

	if len(messages.Data) == 0 || len(messages.Data[0].Content) == 0 {
		return "", nil
	}
	return messages.Data[0].Content[0].Text.Value, nil
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/pkg/retry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Config{BaseURL: ts.URL, APIKey: "sk-test", Model: "gpt-test"})
}

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/files" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.Header.Get("OpenAI-Beta"); got != "assistants=v2" {
			t.Errorf("unexpected beta header: %q", got)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != "assistants" {
			t.Errorf("unexpected purpose: %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "notes.txt" {
			t.Errorf("unexpected filename: %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "hello world!" {
			t.Errorf("unexpected content: %q", content)
		}

		json.NewEncoder(w).Encode(map[string]any{"id": "f1", "bytes": len(content)})
	})

	fileID, size, err := client.UploadFile(context.Background(), []byte("hello world!"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fileID != "f1" {
		t.Errorf("expected f1, got %q", fileID)
	}
	if size != 12 {
		t.Errorf("expected 12 bytes, got %d", size)
	}
}

func TestProviderErrorCarriesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"store exploded"}}`)
	})

	_, err := client.CreateVectorStore(context.Background(), "Store_notes.txt")

	var providerErr *core.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", providerErr.StatusCode)
	}
	if providerErr.Body != `{"error":{"message":"store exploded"}}` {
		t.Errorf("expected raw body carried, got %q", providerErr.Body)
	}
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error":{"message":"rate limited"}}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "thread_1"})
	})
	client.retrier = retry.NewRetrier(&retry.Config{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	})

	threadID, err := client.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if threadID != "thread_1" {
		t.Errorf("expected thread_1, got %q", threadID)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestNonRateLimitFailureIsNotRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"bad request"}}`)
	})

	err := client.AttachFile(context.Background(), "vs1", "f1")

	var providerErr *core.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestCreateAssistantPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/assistants" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var payload struct {
			Model string `json:"model"`
			Tools []struct {
				Type string `json:"type"`
			} `json:"tools"`
			ToolResources struct {
				FileSearch struct {
					VectorStoreIDs []string `json:"vector_store_ids"`
				} `json:"file_search"`
			} `json:"tool_resources"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}

		if payload.Model != "gpt-test" {
			t.Errorf("unexpected model: %q", payload.Model)
		}
		if len(payload.Tools) != 1 || payload.Tools[0].Type != "file_search" {
			t.Errorf("expected single file_search tool, got %+v", payload.Tools)
		}
		if len(payload.ToolResources.FileSearch.VectorStoreIDs) != 1 ||
			payload.ToolResources.FileSearch.VectorStoreIDs[0] != "vs1" {
			t.Errorf("expected assistant scoped to vs1, got %+v", payload.ToolResources.FileSearch.VectorStoreIDs)
		}

		json.NewEncoder(w).Encode(map[string]string{"id": "asst_1"})
	})

	assistantID, err := client.CreateAssistant(context.Background(), "vs1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assistantID != "asst_1" {
		t.Errorf("expected asst_1, got %q", assistantID)
	}
}

func TestGetRunStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/threads/thread_1/runs/run_1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "run_1", "status": "in_progress"})
	})

	status, err := client.GetRunStatus(context.Background(), "thread_1", "run_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != core.RunInProgress {
		t.Errorf("expected in_progress, got %q", status)
	}
}

func TestGetLatestMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "newest message returned",
			body: `{"data":[{"content":[{"text":{"value":"It says hello"}}]}]}`,
			want: "It says hello",
		},
		{
			name: "empty thread",
			body: `{"data":[]}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/threads/thread_1/messages" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("limit") != "1" || q.Get("order") != "desc" {
					t.Errorf("expected newest-first single-message query, got %v", q)
				}
				io.WriteString(w, tt.body)
			})

			answer, err := client.GetLatestMessage(context.Background(), "thread_1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if answer != tt.want {
				t.Errorf("expected %q, got %q", tt.want, answer)
			}
		})
	}
}

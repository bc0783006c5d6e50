package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/docvault/internal/config"
	"github.com/sandevgo/docvault/internal/core"
)

type fakeRepo struct {
	docs map[int64]core.Document
}

func (f *fakeRepo) Insert(ctx context.Context, doc core.Document) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (core.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return core.Document{}, fmt.Errorf("document %d: %w", id, core.ErrNotFound)
	}
	return doc, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]core.Document, error) {
	return nil, errors.New("not implemented")
}

// fakeProvider counts every call and serves run statuses from a script. When
// the script is exhausted the last status repeats.
type fakeProvider struct {
	statuses []core.RunStatus
	answer   string

	assistantCalls int
	threadCalls    int
	messageCalls   int
	runCalls       int
	pollCalls      int
	fetchCalls     int
}

func (f *fakeProvider) UploadFile(ctx context.Context, data []byte, name string) (string, int64, error) {
	return "", 0, errors.New("not implemented")
}

func (f *fakeProvider) CreateVectorStore(ctx context.Context, name string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeProvider) AttachFile(ctx context.Context, storeID, fileID string) error {
	return errors.New("not implemented")
}

func (f *fakeProvider) CreateAssistant(ctx context.Context, storeID string) (string, error) {
	f.assistantCalls++
	return "asst_1", nil
}

func (f *fakeProvider) CreateThread(ctx context.Context) (string, error) {
	f.threadCalls++
	return "thread_new", nil
}

func (f *fakeProvider) AddMessage(ctx context.Context, threadID, text string) error {
	f.messageCalls++
	return nil
}

func (f *fakeProvider) CreateRun(ctx context.Context, threadID, assistantID string) (string, error) {
	f.runCalls++
	return "run_1", nil
}

func (f *fakeProvider) GetRunStatus(ctx context.Context, threadID, runID string) (core.RunStatus, error) {
	idx := f.pollCalls
	f.pollCalls++
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func (f *fakeProvider) GetLatestMessage(ctx context.Context, threadID string) (string, error) {
	f.fetchCalls++
	return f.answer, nil
}

func newTestService(provider *fakeProvider, repo *fakeRepo, maxPolls int) *Service {
	return NewService(provider, repo,
		&config.OpenAIConfig{APIKey: "sk-test"},
		&config.AppConfig{RunPollInterval: time.Millisecond, RunMaxPolls: maxPolls},
	)
}

func docRepo() *fakeRepo {
	return &fakeRepo{docs: map[int64]core.Document{
		1: {ID: 1, VectorStoreID: "vs1", FileID: "f1", FileName: "notes.txt"},
	}}
}

func TestConverse_Validation(t *testing.T) {
	tests := []struct {
		name       string
		documentID int64
		message    string
	}{
		{name: "empty message", documentID: 1, message: ""},
		{name: "zero document id", documentID: 0, message: "hi"},
		{name: "negative document id", documentID: -5, message: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			svc := newTestService(provider, docRepo(), 30)

			_, err := svc.Converse(context.Background(), tt.documentID, tt.message, "")

			var validationErr *core.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if provider.assistantCalls != 0 || provider.pollCalls != 0 {
				t.Errorf("provider was contacted: %+v", provider)
			}
		})
	}
}

func TestConverse_UnknownDocument(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(provider, docRepo(), 30)

	_, err := svc.Converse(context.Background(), 99, "hi", "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if provider.assistantCalls != 0 {
		t.Errorf("expected no provider calls, got %d", provider.assistantCalls)
	}
}

func TestConverse_MissingAPIKey(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, docRepo(),
		&config.OpenAIConfig{},
		&config.AppConfig{RunPollInterval: time.Millisecond, RunMaxPolls: 30},
	)

	_, err := svc.Converse(context.Background(), 1, "hi", "")

	var configErr *core.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if provider.assistantCalls != 0 {
		t.Errorf("expected no provider calls, got %d", provider.assistantCalls)
	}
}

func TestConverse_CompletesAfterQueuedPolls(t *testing.T) {
	provider := &fakeProvider{
		statuses: []core.RunStatus{core.RunQueued, core.RunQueued, core.RunQueued, core.RunCompleted},
		answer:   "It says hello",
	}
	svc := newTestService(provider, docRepo(), 30)

	result, err := svc.Converse(context.Background(), 1, "what does it say?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Response != "It says hello" {
		t.Errorf("expected answer, got %q", result.Response)
	}
	if result.ThreadID != "thread_new" {
		t.Errorf("expected fresh thread, got %q", result.ThreadID)
	}
	if result.AssistantID != "asst_1" {
		t.Errorf("expected assistant id, got %q", result.AssistantID)
	}
	if provider.pollCalls != 4 { // 3 queued polls + the completing one
		t.Errorf("expected 4 polls, got %d", provider.pollCalls)
	}
	if provider.fetchCalls != 1 {
		t.Errorf("expected answer fetched exactly once, got %d", provider.fetchCalls)
	}
}

func TestConverse_ReusesSuppliedThread(t *testing.T) {
	provider := &fakeProvider{
		statuses: []core.RunStatus{core.RunCompleted},
		answer:   "answer",
	}
	svc := newTestService(provider, docRepo(), 30)

	result, err := svc.Converse(context.Background(), 1, "follow-up", "thread_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ThreadID != "thread_abc" {
		t.Errorf("expected supplied thread reused, got %q", result.ThreadID)
	}
	if provider.threadCalls != 0 {
		t.Errorf("expected no thread creation, got %d", provider.threadCalls)
	}
}

func TestConverse_TimesOut(t *testing.T) {
	provider := &fakeProvider{
		statuses: []core.RunStatus{core.RunInProgress},
	}
	svc := newTestService(provider, docRepo(), 30)

	_, err := svc.Converse(context.Background(), 1, "hi", "")

	var timeoutErr *core.RunTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected RunTimeoutError, got %v", err)
	}
	if timeoutErr.Attempts != 30 {
		t.Errorf("expected 30 attempts reported, got %d", timeoutErr.Attempts)
	}
	if provider.pollCalls != 30 {
		t.Errorf("expected exactly 30 polls, got %d", provider.pollCalls)
	}
	if provider.fetchCalls != 0 {
		t.Errorf("expected no answer fetch on timeout, got %d", provider.fetchCalls)
	}
}

func TestConverse_RunFailed(t *testing.T) {
	provider := &fakeProvider{
		statuses: []core.RunStatus{core.RunFailed},
	}
	svc := newTestService(provider, docRepo(), 30)

	_, err := svc.Converse(context.Background(), 1, "hi", "")

	var failedErr *core.RunFailedError
	if !errors.As(err, &failedErr) {
		t.Fatalf("expected RunFailedError, got %v", err)
	}
	if failedErr.Status != core.RunFailed {
		t.Errorf("expected failed status carried, got %q", failedErr.Status)
	}
	if provider.pollCalls != 1 {
		t.Errorf("expected 1 poll, got %d", provider.pollCalls)
	}
	if provider.fetchCalls != 0 {
		t.Errorf("expected no answer fetch after failure, got %d", provider.fetchCalls)
	}
}

func TestConverse_ContextCancelled(t *testing.T) {
	provider := &fakeProvider{
		statuses: []core.RunStatus{core.RunInProgress},
	}
	svc := newTestService(provider, docRepo(), 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Converse(ctx, 1, "hi", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

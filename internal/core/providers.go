package core

import "context"

// RAGProvider is the remote retrieval-augmented generation service: file
// storage, vector indexing and assistant execution behind one HTTP API.
type RAGProvider interface {
	UploadFile(ctx context.Context, data []byte, name string) (fileID string, size int64, err error)
	CreateVectorStore(ctx context.Context, name string) (storeID string, err error)
	AttachFile(ctx context.Context, storeID, fileID string) error
	CreateAssistant(ctx context.Context, storeID string) (assistantID string, err error)
	CreateThread(ctx context.Context) (threadID string, err error)
	AddMessage(ctx context.Context, threadID, text string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (runID string, err error)
	GetRunStatus(ctx context.Context, threadID, runID string) (RunStatus, error)
	GetLatestMessage(ctx context.Context, threadID string) (string, error)
}

package core

import "time"

const (
	AppName       = "DocVault"
	AppUserAgent  = "DocVault/0.1"
	RepositoryURL = "https://github.com/sandevgo/docvault"
	AppVersion    = "0.1.0"
)

// Document binds an uploaded file to the remote resources that make it
// queryable: the provider-side file and the vector store it was indexed into.
// Records are immutable once written.
type Document struct {
	ID            int64     `json:"id"`
	VectorStoreID string    `json:"vector_store_id"`
	FileID        string    `json:"file_id"`
	FileName      string    `json:"file_name"`
	SizeBytes     int64     `json:"size_bytes"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// RunStatus is the provider-reported state of an assistant run.
type RunStatus string

const (
	RunQueued     RunStatus = "queued"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// Terminal reports whether the run reached a state the provider will not
// leave. Unknown tokens are treated as non-terminal and polled again.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// Feedback is a caller's verdict on one assistant answer.
type Feedback struct {
	ID                int64     `json:"id"`
	DocumentID        int64     `json:"document_id"`
	ThreadID          string    `json:"thread_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	IsHelpful         bool      `json:"is_helpful"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

package core

import "context"

type DocumentsRepository interface {
	Insert(ctx context.Context, doc Document) (int64, error)
	GetByID(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context) ([]Document, error)
}

type FeedbackRepository interface {
	Insert(ctx context.Context, fb Feedback) (int64, error)
	ListByDocument(ctx context.Context, documentID int64) ([]Feedback, error)
}

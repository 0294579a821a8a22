package store

import (
	"context"

	"github.com/nhle/adchat/internal/model"
)

// Store defines the persistence interface for the local chat history
// and the upload log.
type Store interface {
	// AppendMessage adds a message to the end of the history log.
	AppendMessage(ctx context.Context, msg model.ChatMessage) error

	// GetMessages returns the full history log in insertion order.
	GetMessages(ctx context.Context) ([]model.ChatMessage, error)

	// PruneMessages deletes the oldest messages so that at most limit
	// remain. A non-positive limit disables pruning.
	PruneMessages(ctx context.Context, limit int) error

	// ClearMessages deletes the entire history log.
	ClearMessages(ctx context.Context) error

	// RecordUpload logs a successfully uploaded file name.
	RecordUpload(ctx context.Context, filename string) error
}

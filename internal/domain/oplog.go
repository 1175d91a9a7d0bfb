package domain

import (
	"context"

	"aushadhi/internal/core/id"
)

// Operation log actions.
const (
	OpCommit = "commit"
	OpAdjust = "adjust"
)

// OperationLogger records committed operations for change capture.
// The log is append-only; entries are never edited or pruned.
type OperationLogger interface {
	// LogOperation appends an entry with the full document snapshot.
	LogOperation(ctx context.Context, entityType string, entityID id.ID, action string, document any) error
}

// NopOperationLogger discards entries. Used in tests.
type NopOperationLogger struct{}

func (NopOperationLogger) LogOperation(context.Context, string, id.ID, string, any) error {
	return nil
}

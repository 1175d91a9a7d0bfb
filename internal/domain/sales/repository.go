package sales

import (
	"context"
	"time"

	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
)

// InvoiceFilter narrows invoice list queries.
type InvoiceFilter struct {
	domain.ListFilter

	Status   *InvoiceStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// Repository defines persistence for sale invoices.
type Repository interface {
	// Create inserts the invoice header and its lines.
	Create(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	GetLines(ctx context.Context, invoiceID id.ID) ([]Line, error)

	// MarkVoided flags a reversed invoice.
	MarkVoided(ctx context.Context, invoiceID id.ID) error

	List(ctx context.Context, filter InvoiceFilter) (domain.ListResult[*Invoice], error)
}

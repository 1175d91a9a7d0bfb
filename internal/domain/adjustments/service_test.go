package adjustments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/stock"
	"aushadhi/pkg/numerator"
)

type memBatchRepo struct {
	mu      sync.Mutex
	batches map[id.ID]*stock.Batch
}

func newMemBatchRepo(batches ...*stock.Batch) *memBatchRepo {
	r := &memBatchRepo{batches: make(map[id.ID]*stock.Batch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *memBatchRepo) Create(ctx context.Context, b *stock.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
	return nil
}

func (r *memBatchRepo) GetByID(ctx context.Context, batchID id.ID) (*stock.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[batchID]
	if !ok {
		return nil, apperror.NewNotFound("stock_batch", batchID.String())
	}
	copied := *b
	return &copied, nil
}

func (r *memBatchRepo) GetByBatchNumber(ctx context.Context, itemID id.ID, batchNumber string) (*stock.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.ItemID == itemID && b.BatchNumber == batchNumber {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("stock_batch", batchNumber)
}

func (r *memBatchRepo) UpdateQuantity(ctx context.Context, batchID id.ID, fromVersion int, newQty types.Quantity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[batchID]
	if !ok || b.Version != fromVersion {
		return false, nil
	}
	b.TotalQuantity = newQty
	b.Version++
	return true, nil
}

func (r *memBatchRepo) UpdatePricing(ctx context.Context, batchID id.ID, sellingPrice, mrp types.Money) error {
	return nil
}

func (r *memBatchRepo) List(ctx context.Context, filter stock.BatchFilter) (domain.ListResult[*stock.Batch], error) {
	return domain.ListResult[*stock.Batch]{}, nil
}

type memAdjustmentRepo struct {
	mu      sync.Mutex
	records []*Adjustment
}

func (r *memAdjustmentRepo) Append(ctx context.Context, a *Adjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.records = append(r.records, &copied)
	return nil
}

func (r *memAdjustmentRepo) ListByBatch(ctx context.Context, batchID id.ID) ([]*Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Adjustment
	for _, a := range r.records {
		if a.BatchID == batchID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAdjustmentRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Adjustment], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.ListResult[*Adjustment]{
		Items:      append([]*Adjustment(nil), r.records...),
		TotalCount: int64(len(r.records)),
	}, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r *seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct {
	mu  sync.Mutex
	val int64
}

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	// Mirror sys_sequences: strict queries bump by 1, cached-range queries
	// bump by the range size passed as the third argument.
	step := int64(1)
	if len(args) > 2 {
		if n, ok := args[2].(int64); ok {
			step = n
		}
	}
	q.val += step
	return &seqRow{val: q.val}
}

type fixture struct {
	service *Service
	batches *memBatchRepo
	repo    *memAdjustmentRepo
	batch   *stock.Batch
}

func newFixture(qty types.Quantity) *fixture {
	batch := stock.NewBatch(id.New(), "BN-042")
	batch.TotalQuantity = qty

	batches := newMemBatchRepo(batch)
	repo := &memAdjustmentRepo{}
	service := NewService(
		batches,
		stock.NewLedger(batches),
		repo,
		numerator.New(&seqQuerier{}),
		domain.NopOperationLogger{},
		passthroughTx{},
	)
	return &fixture{service: service, batches: batches, repo: repo, batch: batch}
}

func TestApply_Add(t *testing.T) {
	f := newFixture(types.QuantityFromInt(50))

	result, err := f.service.Apply(context.Background(), f.batch.ID,
		types.QuantityFromFloat64(12.5), AdjustAdd, "stock count surplus")
	require.NoError(t, err)

	assert.Equal(t, types.QuantityFromFloat64(62.5), result.NewRemaining)

	record := result.Record
	assert.Equal(t, f.batch.ID, record.BatchID)
	assert.Equal(t, f.batch.ItemID, record.ItemID)
	assert.Equal(t, "BN-042", record.BatchNumber)
	assert.Equal(t, AdjustAdd, record.AdjustType)
	assert.Equal(t, types.QuantityFromFloat64(12.5), record.TotalQuantity)
	assert.Equal(t, "stock count surplus", record.Reason)
	expectedNumber := fmt.Sprintf("ADJ-%d-00001", time.Now().Year())
	assert.Equal(t, expectedNumber, record.Number)

	require.Len(t, f.repo.records, 1)
}

func TestApply_Reduce(t *testing.T) {
	f := newFixture(types.QuantityFromInt(50))

	result, err := f.service.Apply(context.Background(), f.batch.ID,
		types.QuantityFromInt(20), AdjustReduce, "damaged in transit")
	require.NoError(t, err)

	assert.Equal(t, types.QuantityFromInt(30), result.NewRemaining)
	assert.Equal(t, AdjustReduce, result.Record.AdjustType)
	// The record carries the positive amount; direction lives in the type.
	assert.Equal(t, types.QuantityFromInt(20), result.Record.TotalQuantity)
}

func TestApply_ReduceBeyondRemaining(t *testing.T) {
	f := newFixture(types.QuantityFromInt(10))

	_, err := f.service.Apply(context.Background(), f.batch.ID,
		types.QuantityFromInt(11), AdjustReduce, "write-off")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	// Nothing moved and nothing was recorded.
	b, err := f.batches.GetByID(context.Background(), f.batch.ID)
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromInt(10), b.TotalQuantity)
	assert.Empty(t, f.repo.records)
}

func TestApply_ReduceToExactlyZero(t *testing.T) {
	f := newFixture(types.QuantityFromInt(10))

	result, err := f.service.Apply(context.Background(), f.batch.ID,
		types.QuantityFromInt(10), AdjustReduce, "expired, written off")
	require.NoError(t, err)
	assert.True(t, result.NewRemaining.IsZero())
}

func TestApply_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(types.QuantityFromInt(10))

	for _, qty := range []types.Quantity{0, types.QuantityFromInt(-5)} {
		_, err := f.service.Apply(context.Background(), f.batch.ID, qty, AdjustAdd, "")
		require.Error(t, err, "quantity %s", qty)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
	assert.Empty(t, f.repo.records)
}

func TestApply_RejectsUnknownType(t *testing.T) {
	f := newFixture(types.QuantityFromInt(10))

	_, err := f.service.Apply(context.Background(), f.batch.ID,
		types.QuantityFromInt(1), AdjustType("transfer"), "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestApply_UnknownBatch(t *testing.T) {
	f := newFixture(types.QuantityFromInt(10))

	_, err := f.service.Apply(context.Background(), id.New(),
		types.QuantityFromInt(1), AdjustAdd, "")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestApply_AuditTrailAccumulates(t *testing.T) {
	f := newFixture(types.QuantityFromInt(100))
	ctx := context.Background()

	_, err := f.service.Apply(ctx, f.batch.ID, types.QuantityFromInt(5), AdjustReduce, "sample use")
	require.NoError(t, err)
	_, err = f.service.Apply(ctx, f.batch.ID, types.QuantityFromInt(3), AdjustAdd, "returned")
	require.NoError(t, err)

	history, err := f.service.ListByBatch(ctx, f.batch.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, AdjustReduce, history[0].AdjustType)
	assert.Equal(t, AdjustAdd, history[1].AdjustType)

	b, err := f.batches.GetByID(ctx, f.batch.ID)
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromInt(98), b.TotalQuantity)
}

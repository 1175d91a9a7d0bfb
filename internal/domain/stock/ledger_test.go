package stock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain"
)

// memBatchRepo is an in-memory Repository with real conditional-update
// semantics, so the ledger's retry loop is exercised against actual races.
type memBatchRepo struct {
	mu      sync.Mutex
	batches map[id.ID]*Batch

	// forceLostRaces makes UpdateQuantity report a lost race this many
	// times before behaving normally.
	forceLostRaces int
	writeAttempts  int
}

func newMemBatchRepo(batches ...*Batch) *memBatchRepo {
	r := &memBatchRepo{batches: make(map[id.ID]*Batch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *memBatchRepo) Create(ctx context.Context, b *Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
	return nil
}

func (r *memBatchRepo) GetByID(ctx context.Context, batchID id.ID) (*Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[batchID]
	if !ok {
		return nil, apperror.NewNotFound("stock_batch", batchID.String())
	}
	copied := *b
	return &copied, nil
}

func (r *memBatchRepo) GetByBatchNumber(ctx context.Context, itemID id.ID, batchNumber string) (*Batch, error) {
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
	r.writeAttempts++
	if r.forceLostRaces > 0 {
		r.forceLostRaces--
		return false, nil
	}
	b, ok := r.batches[batchID]
	if !ok || b.Version != fromVersion {
		return false, nil
	}
	b.TotalQuantity = newQty
	b.Version++
	return true, nil
}

func (r *memBatchRepo) UpdatePricing(ctx context.Context, batchID id.ID, sellingPrice, mrp types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.batches[batchID]; ok {
		b.SellingPrice = sellingPrice
		b.MRP = mrp
	}
	return nil
}

func (r *memBatchRepo) List(ctx context.Context, filter BatchFilter) (domain.ListResult[*Batch], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := domain.ListResult[*Batch]{Limit: filter.Limit, Offset: filter.Offset}
	for _, b := range r.batches {
		copied := *b
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func testBatch(qty types.Quantity) *Batch {
	b := NewBatch(id.New(), "BN-001")
	b.TotalQuantity = qty
	return b
}

func TestDeduct(t *testing.T) {
	b := testBatch(types.QuantityFromInt(100))
	ledger := NewLedger(newMemBatchRepo(b))

	remaining, err := ledger.Deduct(context.Background(), b.ID, types.QuantityFromFloat64(2.5))
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromFloat64(97.5), remaining)
}

func TestDeduct_ToExactlyZero(t *testing.T) {
	b := testBatch(types.QuantityFromInt(10))
	ledger := NewLedger(newMemBatchRepo(b))

	remaining, err := ledger.Deduct(context.Background(), b.ID, types.QuantityFromInt(10))
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
}

func TestDeduct_InsufficientStock(t *testing.T) {
	b := testBatch(types.QuantityFromInt(10))
	repo := newMemBatchRepo(b)
	ledger := NewLedger(repo)

	_, err := ledger.Deduct(context.Background(), b.ID, types.QuantityFromFloat64(10.01))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 10.01, appErr.Details["requested"])
	assert.Equal(t, 10.0, appErr.Details["available"])

	// Nothing was written.
	remaining, err := ledger.Remaining(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromInt(10), remaining)
	assert.Equal(t, 0, repo.writeAttempts)
}

func TestDeduct_NegativeQuantity(t *testing.T) {
	b := testBatch(types.QuantityFromInt(10))
	ledger := NewLedger(newMemBatchRepo(b))

	_, err := ledger.Deduct(context.Background(), b.ID, types.QuantityFromInt(-1))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDeduct_UnknownBatch(t *testing.T) {
	ledger := NewLedger(newMemBatchRepo())

	_, err := ledger.Deduct(context.Background(), id.New(), types.QuantityFromInt(1))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeduct_RetriesLostRace(t *testing.T) {
	b := testBatch(types.QuantityFromInt(100))
	repo := newMemBatchRepo(b)
	repo.forceLostRaces = 2
	ledger := NewLedger(repo)

	remaining, err := ledger.Deduct(context.Background(), b.ID, types.QuantityFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromInt(70), remaining)
	assert.Equal(t, 3, repo.writeAttempts)
}

func TestDeduct_RetriesExhausted(t *testing.T) {
	b := testBatch(types.QuantityFromInt(100))
	repo := newMemBatchRepo(b)
	repo.forceLostRaces = maxWriteAttempts
	ledger := NewLedger(repo)

	_, err := ledger.Deduct(context.Background(), b.ID, types.QuantityFromInt(1))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConcurrentModification, appErr.Code)
	assert.Equal(t, maxWriteAttempts, repo.writeAttempts)
}

func TestCredit(t *testing.T) {
	b := testBatch(types.QuantityFromInt(5))
	ledger := NewLedger(newMemBatchRepo(b))

	remaining, err := ledger.Credit(context.Background(), b.ID, types.QuantityFromFloat64(0.25))
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromFloat64(5.25), remaining)
}

func TestCredit_NegativeQuantity(t *testing.T) {
	b := testBatch(types.QuantityFromInt(5))
	ledger := NewLedger(newMemBatchRepo(b))

	_, err := ledger.Credit(context.Background(), b.ID, types.QuantityFromInt(-1))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

// Two overlapping deductions of 60 against a balance of 100: exactly one
// must win, the other must fail against the fresh balance, and the final
// quantity must be 40. The quantity never goes negative no matter which
// goroutine wins the write race.
func TestDeduct_ConcurrentOversell(t *testing.T) {
	b := testBatch(types.QuantityFromInt(100))
	repo := newMemBatchRepo(b)
	ledger := NewLedger(repo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Deduct(context.Background(), b.ID, types.QuantityFromInt(60))
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		insufficient++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	remaining, err := ledger.Remaining(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromInt(40), remaining)
}

func TestLedger_ManyConcurrentMutations(t *testing.T) {
	b := testBatch(types.QuantityFromInt(1000))
	ledger := NewLedger(newMemBatchRepo(b))

	const workers = 8
	var wg sync.WaitGroup
	deducted := make([]types.Quantity, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			qty := types.QuantityFromInt(int64(i + 1))
			for {
				_, err := ledger.Deduct(context.Background(), b.ID, qty)
				if err == nil {
					deducted[i] = qty
					return
				}
				appErr, ok := apperror.AsAppError(err)
				if !ok || appErr.Code != apperror.CodeConcurrentModification {
					t.Errorf("unexpected error: %v", err)
					return
				}
				// Bounded retries exhausted under contention; resubmit
				// like a real caller would.
				time.Sleep(time.Millisecond)
			}
		}(i)
	}
	wg.Wait()

	var total types.Quantity
	for _, q := range deducted {
		total += q
	}
	remaining, err := ledger.Remaining(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.QuantityFromInt(1000)-total, remaining)
}

func TestBatchIsExpired(t *testing.T) {
	now := time.Now().UTC()

	b := testBatch(0)
	assert.False(t, b.IsExpired(now), "no expiry date never expires")

	b.ExpiryDate = now.Add(24 * time.Hour)
	assert.False(t, b.IsExpired(now))

	b.ExpiryDate = now.Add(-24 * time.Hour)
	assert.True(t, b.IsExpired(now))
}

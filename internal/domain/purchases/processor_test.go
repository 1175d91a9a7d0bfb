package purchases

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
	"aushadhi/internal/domain/catalogs/item"
	"aushadhi/internal/domain/stock"
	"aushadhi/internal/domain/tax"
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
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.batches[batchID]; ok {
		b.SellingPrice = sellingPrice
		b.MRP = mrp
	}
	return nil
}

func (r *memBatchRepo) List(ctx context.Context, filter stock.BatchFilter) (domain.ListResult[*stock.Batch], error) {
	return domain.ListResult[*stock.Batch]{}, nil
}

type memCatalog struct {
	items map[id.ID]*item.Item
}

func (c *memCatalog) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	it, ok := c.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return it, nil
}

type memEntryRepo struct {
	mu      sync.Mutex
	entries map[id.ID]*Entry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[id.ID]*Entry)}
}

func (r *memEntryRepo) Create(ctx context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *e
	r.entries[e.ID] = &copied
	return nil
}

func (r *memEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("purchase_entry", entryID.String())
	}
	copied := *e
	return &copied, nil
}

func (r *memEntryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Entry], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := domain.ListResult[*Entry]{}
	for _, e := range r.entries {
		copied := *e
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
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
	processor *Processor
	batches   *memBatchRepo
	repo      *memEntryRepo
	tablets   *item.Item // strip of 10 tablets
}

func newFixture() *fixture {
	tablets := item.New("ITM-1", "Triphala tablets", item.KindMedicine, "strip", 10)
	batches := newMemBatchRepo()
	repo := newMemEntryRepo()

	processor := NewProcessor(
		&memCatalog{items: map[id.ID]*item.Item{tablets.ID: tablets}},
		batches,
		stock.NewLedger(batches),
		repo,
		numerator.New(&seqQuerier{}),
		domain.NopOperationLogger{},
		passthroughTx{},
	)
	return &fixture{processor: processor, batches: batches, repo: repo, tablets: tablets}
}

func validInput(itemID id.ID) Input {
	return Input{
		ItemID:             itemID,
		BatchNumber:        "BN-100",
		TotalPurchasedUnit: types.QuantityFromInt(5),
		PricePerUnit:       types.MustMoney("100"),
		MRP:                types.MustMoney("150"),
		SellingPrice:       types.MustMoney("13"),
		TaxType:            tax.KindCentral,
		IGST:               types.MustMoney("12"),
		DiscountPercent:    types.MustMoney("10"),
		ExpiryDate:         time.Now().UTC().AddDate(2, 0, 0),
	}
}

func TestProcess_CreatesBatch(t *testing.T) {
	f := newFixture()

	// 5 strips at 100 = 500, 10% discount -> 450, 12% IGST -> 54, grand 504.
	result, err := f.processor.Process(context.Background(), validInput(f.tablets.ID))
	require.NoError(t, err)

	assert.True(t, result.TotalPrice.Equal(types.MustMoney("500")), "total %s", result.TotalPrice)
	assert.True(t, result.TaxableAmount.Equal(types.MustMoney("450")), "taxable %s", result.TaxableAmount)
	assert.True(t, result.TaxAmount.Equal(types.MustMoney("54")), "tax %s", result.TaxAmount)
	assert.True(t, result.GrandTotal.Equal(types.MustMoney("504")), "grand %s", result.GrandTotal)

	require.True(t, result.BatchCreated)
	batch := result.Batch
	assert.Equal(t, f.tablets.ID, batch.ItemID)
	assert.Equal(t, "BN-100", batch.BatchNumber)
	assert.Equal(t, types.QuantityFromInt(50), batch.TotalQuantity, "5 strips of 10")
	assert.True(t, batch.SellingPrice.Equal(types.MustMoney("13")))
	assert.True(t, batch.MRP.Equal(types.MustMoney("150")))
	assert.False(t, batch.ExpiryDate.IsZero())

	entry := result.Entry
	assert.Equal(t, batch.ID, entry.BatchID)
	assert.Equal(t, types.QuantityFromInt(50), entry.TotalSubUnits)
	expectedNumber := fmt.Sprintf("PUR-%d-00001", time.Now().Year())
	assert.Equal(t, expectedNumber, entry.Number)

	stored, err := f.processor.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Number, stored.Number)
}

func TestProcess_TopsUpExistingBatch(t *testing.T) {
	f := newFixture()

	existing := stock.NewBatch(f.tablets.ID, "BN-100")
	existing.TotalQuantity = types.QuantityFromInt(20)
	existing.SellingPrice = types.MustMoney("12")
	require.NoError(t, f.batches.Create(context.Background(), existing))

	result, err := f.processor.Process(context.Background(), validInput(f.tablets.ID))
	require.NoError(t, err)

	assert.False(t, result.BatchCreated)
	assert.Equal(t, existing.ID, result.Batch.ID)
	assert.Equal(t, types.QuantityFromInt(70), result.Batch.TotalQuantity, "20 existing + 50 purchased")

	// The purchase reprices the lot.
	b, err := f.batches.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.True(t, b.SellingPrice.Equal(types.MustMoney("13")))
	assert.True(t, b.MRP.Equal(types.MustMoney("150")))
}

func TestProcess_StateTax(t *testing.T) {
	f := newFixture()

	input := validInput(f.tablets.ID)
	input.TaxType = tax.KindState
	input.CGST = types.MustMoney("6")
	input.SGST = types.MustMoney("6")
	input.IGST = types.ZeroMoney()
	input.TotalPurchasedUnit = types.QuantityFromInt(10)

	// 10 strips at 100 = 1000, 10% discount -> 900, 6+6 -> 108, grand 1008.
	result, err := f.processor.Process(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, result.TaxableAmount.Equal(types.MustMoney("900")), "taxable %s", result.TaxableAmount)
	assert.True(t, result.TaxAmount.Equal(types.MustMoney("108")), "tax %s", result.TaxAmount)
	assert.True(t, result.GrandTotal.Equal(types.MustMoney("1008")), "grand %s", result.GrandTotal)
}

func TestProcess_NormalizesRates(t *testing.T) {
	f := newFixture()

	// Central tax with stray state rates: the unowned rates are zeroed.
	input := validInput(f.tablets.ID)
	input.CGST = types.MustMoney("6")
	input.SGST = types.MustMoney("6")

	result, err := f.processor.Process(context.Background(), input)
	require.NoError(t, err)

	entry := result.Entry
	assert.Equal(t, tax.KindCentral, entry.TaxType)
	assert.True(t, entry.CGST.IsZero())
	assert.True(t, entry.SGST.IsZero())
	assert.True(t, entry.IGST.Equal(types.MustMoney("12")))
	// Tax computed from the owned rate only.
	assert.True(t, result.TaxAmount.Equal(types.MustMoney("54")), "tax %s", result.TaxAmount)
}

func TestProcess_NoTax(t *testing.T) {
	f := newFixture()

	input := validInput(f.tablets.ID)
	input.TaxType = tax.KindNoTax
	input.DiscountPercent = types.ZeroMoney()

	result, err := f.processor.Process(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.TaxAmount.IsZero())
	assert.True(t, result.GrandTotal.Equal(types.MustMoney("500")), "grand %s", result.GrandTotal)
}

func TestProcess_UnknownItem(t *testing.T) {
	f := newFixture()

	_, err := f.processor.Process(context.Background(), validInput(id.New()))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestProcess_RejectsInvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name     string
		mutate   func(*Input)
		wantCode string
	}{
		{"zero units", func(in *Input) { in.TotalPurchasedUnit = 0 }, apperror.CodeValidation},
		{"negative units", func(in *Input) { in.TotalPurchasedUnit = types.QuantityFromInt(-1) }, apperror.CodeValidation},
		{"negative price", func(in *Input) { in.PricePerUnit = types.MustMoney("-1") }, apperror.CodeValidation},
		{"negative selling price", func(in *Input) { in.SellingPrice = types.MustMoney("-1") }, apperror.CodeValidation},
		{"missing batch number", func(in *Input) { in.BatchNumber = "" }, apperror.CodeValidation},
		{"rate above 100", func(in *Input) { in.IGST = types.MustMoney("101") }, apperror.CodeInvalidTaxConfig},
		{"negative rate", func(in *Input) { in.IGST = types.MustMoney("-5") }, apperror.CodeInvalidTaxConfig},
		{"discount above 100", func(in *Input) { in.DiscountPercent = types.MustMoney("101") }, apperror.CodeValidation},
		{"expiry before manufacturing", func(in *Input) {
			in.ManufacturingDate = time.Now().UTC()
			in.ExpiryDate = in.ManufacturingDate.AddDate(0, -6, 0)
		}, apperror.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(f.tablets.ID)
			tc.mutate(&input)

			_, err := f.processor.Process(ctx, input)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}

	// Nothing was persisted by any of the rejected inputs.
	list, err := f.processor.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

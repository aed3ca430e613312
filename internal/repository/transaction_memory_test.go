package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(productID uuid.UUID, typ model.TransactionType, qty int64) *model.Transaction {
	return &model.Transaction{ProductID: productID, Type: typ, Quantity: qty, CreatedBy: "tester"}
}

func TestMemoryLedgerAppendAssignsSequenceAndTime(t *testing.T) {
	repo := NewMemoryTransactionRepo()
	ctx := context.Background()
	p := uuid.New()

	first := entry(p, model.TxIn, 5)
	second := entry(p, model.TxOut, 2)
	require.NoError(t, repo.Append(ctx, first, nil))
	require.NoError(t, repo.Append(ctx, second, nil))

	assert.EqualValues(t, 1, first.ID)
	assert.EqualValues(t, 2, second.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, model.TxOut, got.Type)

	_, err = repo.FindByID(ctx, 3)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestMemoryLedgerCreatedAtNeverGoesBackwards(t *testing.T) {
	repo := NewMemoryTransactionRepo().(*memoryTransactionRepo)
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Hour), base.Add(time.Minute)}
	repo.now = func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}

	ctx := context.Background()
	p := uuid.New()
	var stamps []time.Time
	for i := 0; i < 3; i++ {
		e := entry(p, model.TxIn, 1)
		require.NoError(t, repo.Append(ctx, e, nil))
		stamps = append(stamps, e.CreatedAt)
	}

	assert.Equal(t, base, stamps[0])
	assert.Equal(t, base, stamps[1])
	assert.Equal(t, base.Add(time.Minute), stamps[2])
}

func TestMemoryLedgerStock(t *testing.T) {
	repo := NewMemoryTransactionRepo()
	ctx := context.Background()
	p, other := uuid.New(), uuid.New()

	require.NoError(t, repo.Append(ctx, entry(p, model.TxIn, 15), nil))
	require.NoError(t, repo.Append(ctx, entry(p, model.TxOut, 8), nil))
	require.NoError(t, repo.Append(ctx, entry(other, model.TxOut, 3), nil))

	stock, err := repo.StockOf(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 7, stock)

	scanned, err := repo.ScanStock(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 7, scanned)

	unknown, err := repo.StockOf(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, unknown)

	many, err := repo.StockOfMany(ctx, []uuid.UUID{p, other, uuid.Nil})
	require.NoError(t, err)
	assert.EqualValues(t, 7, many[p])
	assert.EqualValues(t, -3, many[other])
	assert.Len(t, many, 3)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LedgerTotals{TotalIn: 15, TotalOut: 11}, totals)
}

func TestMemoryLedgerGuardRejectionLeavesNothing(t *testing.T) {
	repo := NewMemoryTransactionRepo()
	ctx := context.Background()
	p := uuid.New()
	require.NoError(t, repo.Append(ctx, entry(p, model.TxIn, 2), nil))

	veto := errors.New("veto")
	var seen int64 = -1
	err := repo.Append(ctx, entry(p, model.TxOut, 5), func(current int64, _ *model.Transaction) error {
		seen = current
		return veto
	})
	assert.ErrorIs(t, err, veto)
	assert.EqualValues(t, 2, seen)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stock, err := repo.StockOf(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stock)

	// the sequence did not advance either
	next := entry(p, model.TxIn, 1)
	require.NoError(t, repo.Append(ctx, next, nil))
	assert.EqualValues(t, 2, next.ID)
}

func TestMemoryLedgerCancelledAppendWritesNothing(t *testing.T) {
	repo := NewMemoryTransactionRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Append(ctx, entry(uuid.New(), model.TxIn, 1), nil)
	assert.ErrorIs(t, err, context.Canceled)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryLedgerFindAllReturnsCopies(t *testing.T) {
	repo := NewMemoryTransactionRepo()
	ctx := context.Background()
	e := entry(uuid.New(), model.TxIn, 1)
	e.Description = strPtr("initial count")
	require.NoError(t, repo.Append(ctx, e, nil))

	*e.Description = "tampered"
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	all[0].Quantity = 99

	again, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "initial count", *again[0].Description)
	assert.EqualValues(t, 1, again[0].Quantity)
}

func TestMemoryLedgerConcurrentAppends(t *testing.T) {
	repo := NewMemoryTransactionRepo()
	ctx := context.Background()
	p := uuid.New()
	others := []uuid.UUID{uuid.New(), uuid.New()}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		typ := model.TxIn
		if i%2 == 1 {
			typ = model.TxOut
		}
		go func(typ model.TransactionType) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, entry(p, typ, 1), nil))
		}(typ)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, entry(others[i%2], model.TxIn, 2), nil))
		}(i)
	}
	wg.Wait()

	stock, err := repo.StockOf(ctx, p)
	require.NoError(t, err)
	assert.Zero(t, stock)

	for _, id := range others {
		balance, err := repo.StockOf(ctx, id)
		require.NoError(t, err)
		scanned, err := repo.ScanStock(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 100, balance)
		assert.Equal(t, scanned, balance)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 200)
	ids := make(map[uint64]struct{})
	for i, tx := range all {
		ids[tx.ID] = struct{}{}
		if i > 0 {
			assert.Greater(t, tx.ID, all[i-1].ID)
			assert.False(t, tx.CreatedAt.Before(all[i-1].CreatedAt))
		}
	}
	assert.Len(t, ids, 200)
}

func TestMemoryLedgerStockMovement(t *testing.T) {
	repo := NewMemoryTransactionRepo().(*memoryTransactionRepo)
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	clock := []time.Time{day1, day1.Add(time.Hour), day2, day2.Add(48 * time.Hour)}
	repo.now = func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}

	ctx := context.Background()
	p := uuid.New()
	require.NoError(t, repo.Append(ctx, entry(p, model.TxIn, 10), nil))
	require.NoError(t, repo.Append(ctx, entry(p, model.TxOut, 4), nil))
	require.NoError(t, repo.Append(ctx, entry(p, model.TxOut, 1), nil))
	require.NoError(t, repo.Append(ctx, entry(p, model.TxIn, 7), nil))

	data, err := repo.GetStockMovement(ctx, day1.Add(-time.Hour), day2.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []model.StockMovementData{
		{Date: "2026-03-01", Inbound: 10, Outbound: 4},
		{Date: "2026-03-02", Inbound: 0, Outbound: 1},
	}, data)
}

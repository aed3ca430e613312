package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
)

// memoryTransactionRepo guards the sequence, the log and the balances with
// one lock, so an append is applied entirely or not at all.
type memoryTransactionRepo struct {
	mu       sync.RWMutex
	seq      uint64
	lastAt   time.Time
	entries  []model.Transaction
	balances map[uuid.UUID]int64
	now      func() time.Time
}

func NewMemoryTransactionRepo() TransactionRepository {
	return &memoryTransactionRepo{
		balances: make(map[uuid.UUID]int64),
		now:      time.Now,
	}
}

func (r *memoryTransactionRepo) Append(ctx context.Context, entry *model.Transaction, guard StockGuard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.balances[entry.ProductID]
	if guard != nil {
		if err := guard(current, entry); err != nil {
			return err
		}
	}

	now := r.now().UTC()
	if now.Before(r.lastAt) {
		now = r.lastAt
	}

	r.seq++
	entry.ID = r.seq
	entry.CreatedAt = now

	r.entries = append(r.entries, cloneTransaction(entry))
	r.balances[entry.ProductID] = current + entry.Delta()
	r.lastAt = now
	return nil
}

func (r *memoryTransactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Transaction, len(r.entries))
	for i := range r.entries {
		out[i] = cloneTransaction(&r.entries[i])
	}
	return out, nil
}

func (r *memoryTransactionRepo) FindByID(ctx context.Context, id uint64) (*model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	// ids are dense and start at 1
	if id == 0 || id > uint64(len(r.entries)) {
		return nil, apperror.NotFound("transaction", id)
	}
	t := cloneTransaction(&r.entries[id-1])
	return &t, nil
}

func (r *memoryTransactionRepo) StockOf(ctx context.Context, productID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[productID], nil
}

func (r *memoryTransactionRepo) StockOfMany(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stock := make(map[uuid.UUID]int64, len(productIDs))
	for _, id := range productIDs {
		stock[id] = r.balances[id]
	}
	return stock, nil
}

func (r *memoryTransactionRepo) ScanStock(ctx context.Context, productID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stock int64
	for i := range r.entries {
		if r.entries[i].ProductID == productID {
			stock += r.entries[i].Delta()
		}
	}
	return stock, nil
}

func (r *memoryTransactionRepo) Totals(ctx context.Context) (model.LedgerTotals, error) {
	if err := ctx.Err(); err != nil {
		return model.LedgerTotals{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var totals model.LedgerTotals
	for i := range r.entries {
		if r.entries[i].Type == model.TxIn {
			totals.TotalIn += r.entries[i].Quantity
		} else {
			totals.TotalOut += r.entries[i].Quantity
		}
	}
	return totals, nil
}

func (r *memoryTransactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	byDay := make(map[string]*model.StockMovementData)
	for i := range r.entries {
		e := &r.entries[i]
		if e.CreatedAt.Before(startDate) || e.CreatedAt.After(endDate) {
			continue
		}
		day := e.CreatedAt.UTC().Format("2006-01-02")
		data, ok := byDay[day]
		if !ok {
			data = &model.StockMovementData{Date: day}
			byDay[day] = data
		}
		if e.Type == model.TxIn {
			data.Inbound += e.Quantity
		} else {
			data.Outbound += e.Quantity
		}
	}

	results := make([]model.StockMovementData, 0, len(byDay))
	for _, data := range byDay {
		results = append(results, *data)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

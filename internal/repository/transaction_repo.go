package repository

import (
	"context"
	"errors"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledgerLockKey names the transaction-scoped advisory lock that serializes
// appends: id assignment, created_at and the running balance move together.
const ledgerLockKey int64 = 71_400_001

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Append(ctx context.Context, entry *model.Transaction, guard StockGuard) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", ledgerLockKey).Error; err != nil {
			return err
		}

		var balance model.StockBalance
		err := tx.Where("product_id = ?", entry.ProductID).Take(&balance).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if guard != nil {
			if err := guard(balance.Balance, entry); err != nil {
				return err
			}
		}

		// clock_timestamp advances inside the lock, so created_at never
		// goes backwards relative to id
		var now time.Time
		if err := tx.Raw("SELECT clock_timestamp()").Scan(&now).Error; err != nil {
			return err
		}
		entry.ID = 0
		entry.CreatedAt = now

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"balance":    gorm.Expr("stock_balances.balance + ?", entry.Delta()),
				"updated_at": now,
			}),
		}).Create(&model.StockBalance{
			ProductID: entry.ProductID,
			Balance:   entry.Delta(),
			UpdatedAt: now,
		}).Error
	})
	if err == nil {
		return nil
	}
	entry.ID = 0
	entry.CreatedAt = time.Time{}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return storeError(ctx, "append transaction", err)
}

func (r *transactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	transactions := []model.Transaction{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&transactions).Error
	if err != nil {
		return nil, storeError(ctx, "list transactions", err)
	}
	return transactions, nil
}

func (r *transactionRepo) FindByID(ctx context.Context, id uint64) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).First(&transaction, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("transaction", id)
	}
	if err != nil {
		return nil, storeError(ctx, "find transaction", err)
	}
	return &transaction, nil
}

func (r *transactionRepo) StockOf(ctx context.Context, productID uuid.UUID) (int64, error) {
	var balance model.StockBalance
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Take(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storeError(ctx, "read stock", err)
	}
	return balance.Balance, nil
}

func (r *transactionRepo) StockOfMany(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	stock := make(map[uuid.UUID]int64, len(productIDs))
	if len(productIDs) == 0 {
		return stock, nil
	}

	var balances []model.StockBalance
	err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&balances).Error
	if err != nil {
		return nil, storeError(ctx, "read stock", err)
	}
	for _, id := range productIDs {
		stock[id] = 0
	}
	for _, b := range balances {
		stock[b.ProductID] = b.Balance
	}
	return stock, nil
}

// ScanStock recomputes stock from the full history of the product.
func (r *transactionRepo) ScanStock(ctx context.Context, productID uuid.UUID) (int64, error) {
	var stock int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0)", model.TxIn).
		Where("product_id = ?", productID).
		Scan(&stock).Error
	return stock, storeError(ctx, "scan stock", err)
}

func (r *transactionRepo) Totals(ctx context.Context) (model.LedgerTotals, error) {
	var totals model.LedgerTotals
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) AS total_in,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) AS total_out
		`).
		Scan(&totals).Error
	return totals, storeError(ctx, "ledger totals", err)
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]model.StockMovementData, error) {
	results := []model.StockMovementData{}

	// Query untuk aggregate transactions per hari (UTC, same as the memory store)
	rows, err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`
			TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, storeError(ctx, "stock movement", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data model.StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, storeError(ctx, "stock movement", err)
		}
		results = append(results, data)
	}

	return results, storeError(ctx, "stock movement", rows.Err())
}

package service

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

const (
	defaultMovementDays = 7
	lowStockScanPage    = 100
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]model.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	stock       StockService
	now         func() time.Time
}

func NewDashboardService(pRepo repository.ProductRepository, txRepo repository.TransactionRepository, stock StockService) DashboardService {
	return &dashboardService{productRepo: pRepo, txRepo: txRepo, stock: stock, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]model.StockMovementData, error) {
	if days <= 0 {
		days = defaultMovementDays
	}
	endDate := s.now().UTC()
	startDate := endDate.AddDate(0, 0, -days)

	return s.txRepo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.txRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.countLowStock(ctx)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		TotalProducts: totalProducts,
		TotalIn:       totals.TotalIn,
		TotalOut:      totals.TotalOut,
		LowStockCount: lowStock,
	}, nil
}

// countLowStock walks the whole catalog a page at a time.
func (s *dashboardService) countLowStock(ctx context.Context) (int64, error) {
	var count int64
	filter := model.ProductFilter{Page: 1, Limit: lowStockScanPage}
	for {
		products, total, err := s.productRepo.FindAll(ctx, filter)
		if err != nil {
			return 0, err
		}
		low, err := s.stock.LowStockProducts(ctx, products)
		if err != nil {
			return 0, err
		}
		count += int64(len(low))

		if len(products) < filter.Limit || int64(filter.Page*filter.Limit) >= total {
			return count, nil
		}
		filter.Page++
	}
}

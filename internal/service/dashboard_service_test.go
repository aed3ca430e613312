package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, Options{AllowNegativeStock: true})
	ctx := context.Background()

	// 120 products spans two scan pages; only the even ones get stocked.
	for i := 0; i < 120; i++ {
		p, err := f.svc.CreateProduct(ctx, widgetInput(fmt.Sprintf("SKU-%03d", i)), tester)
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = f.svc.RecordTransaction(ctx, movement(p.ID, model.TxIn, 20), tester)
			require.NoError(t, err)
			_, err = f.svc.RecordTransaction(ctx, movement(p.ID, model.TxOut, 5), tester)
			require.NoError(t, err)
		}
	}

	dash := NewDashboardService(f.products, f.ledger, f.stock)
	stats, err := dash.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 120, stats.TotalProducts)
	assert.EqualValues(t, 60*20, stats.TotalIn)
	assert.EqualValues(t, 60*5, stats.TotalOut)
	assert.EqualValues(t, 60, stats.LowStockCount)
}

func TestDashboardStockMovementDefaultsToAWeek(t *testing.T) {
	f := newFixture(t, Options{AllowNegativeStock: true})
	ctx := context.Background()

	_, err := f.svc.RecordTransaction(ctx, movement(widgetID, model.TxIn, 4), tester)
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, movement(widgetID, model.TxOut, 1), tester)
	require.NoError(t, err)

	dash := NewDashboardService(f.products, f.ledger, f.stock).(*dashboardService)
	dash.now = func() time.Time { return time.Now().Add(time.Minute) }

	series, err := dash.GetStockMovement(ctx, 0)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), series[0].Date)
	assert.EqualValues(t, 4, series[0].Inbound)
	assert.EqualValues(t, 1, series[0].Outbound)
}

package handler

import (
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under router. guards run ahead of every
// route (auth, rate limiting); privileges are checked per route.
func RegisterRoutes(router fiber.Router, inv *InventoryHandler, dash *DashboardHandler, guards ...fiber.Handler) {
	protected := router.Group("", guards...)

	// Dashboard Routes
	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), dash.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege(model.PrivDashboardView), dash.GetStockMovement)

	// Product Routes (low-stock before :id)
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), inv.GetProducts)
	protected.Get("/products/low-stock", middleware.RequirePrivilege(model.PrivProductView), inv.GetLowStockProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), inv.GetProduct)
	protected.Get("/products/:id/stock", middleware.RequirePrivilege(model.PrivProductView), inv.GetProductStock)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), inv.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), inv.UpdateProduct)
	protected.Patch("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), inv.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductDelete), inv.DeleteProduct)

	// Ledger Routes
	protected.Get("/ledger/reconcile/:productId", middleware.RequireAnyPrivilege(model.PrivTransactionView, model.PrivProductView), inv.ReconcileStock)

	// Transaction Routes
	protected.Get("/transactions", middleware.RequirePrivilege(model.PrivTransactionView), inv.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionView), inv.GetTransaction)
	protected.Post("/transactions", middleware.RequirePrivilege(model.PrivTransactionCreate), inv.CreateTransaction)
}

package handler

import (
	"strconv"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
	stock   service.StockService
}

func NewInventoryHandler(s service.InventoryService, stock service.StockService) *InventoryHandler {
	return &InventoryHandler{service: s, stock: stock}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req model.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.service.GetProduct(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var patch model.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidJSON()
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, &patch, actorFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), productID, actorFrom(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProducts returns one catalog page with live stock per row.
// Query params: search, category, page (default 1), limit (default 10)
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListProductsWithStock(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *InventoryHandler) GetLowStockProducts(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListLowStock(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *InventoryHandler) GetProductStock(c *fiber.Ctx) error {
	productID, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	stock, err := h.stock.StockOf(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"product_id": productID, "stock": stock})
}

func (h *InventoryHandler) ReconcileStock(c *fiber.Ctx) error {
	productID, err := parseUUID(c, "productId")
	if err != nil {
		return err
	}

	rec, err := h.stock.Reconcile(c.UserContext(), productID)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *InventoryHandler) CreateTransaction(c *fiber.Ctx) error {
	var req model.TransactionInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON()
	}

	actor := actorFrom(c)
	req.CreatedBy = actor.ID

	tx, err := h.service.RecordTransaction(c.UserContext(), &req, actor)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction recorded", "data": tx})
}

func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.GetAllTransactions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(transactions)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperror.Validation("id", "must be a positive integer")
	}

	tx, err := h.service.GetTransactionByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(tx)
}

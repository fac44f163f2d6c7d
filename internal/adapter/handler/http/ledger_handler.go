package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tristanfischer-ux/centauros-payment/internal/domain/repository"
	"go.uber.org/zap"
)

// LedgerHandler exposes the escrow ledger for operator inspection.
type LedgerHandler struct {
	logger *zap.Logger
	ledger repository.EscrowLedgerRepository
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(logger *zap.Logger, ledger repository.EscrowLedgerRepository) *LedgerHandler {
	return &LedgerHandler{
		logger: logger,
		ledger: ledger,
	}
}

// GetOrderEscrow returns all escrow ledger entries for an order, oldest
// first
func (h *LedgerHandler) GetOrderEscrow(c echo.Context) error {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Order id must be a valid UUID"})
	}

	entries, err := h.ledger.ListByOrder(c.Request().Context(), orderID)
	if err != nil {
		h.logger.Error("Failed to list escrow ledger",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list escrow ledger"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": orderID,
		"entries":  entries,
		"count":    len(entries),
	})
}

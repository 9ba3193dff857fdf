package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/bilal-alaabadi/mahen-b/internal/entity"
	"github.com/bilal-alaabadi/mahen-b/internal/usecase"
)

// OrderHandler exposes the pass-through order endpoints backed directly
// by the order repo.
type OrderHandler struct {
	repo usecase.OrderRepo
}

func NewOrderHandler(repo usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{repo: repo}
}

// ListCompleted handles GET / — all completed orders, newest first.
func (h *OrderHandler) ListCompleted(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.repo.ListByStatus(ctx, domain.StatusCompleted)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No orders found", "orders": []domain.Order{}})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetByEmail handles GET /email/:email.
func (h *OrderHandler) GetByEmail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.repo.ListByEmail(ctx, c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No orders found for this email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetByID handles GET /order/:id.
func (h *OrderHandler) GetByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.repo.GetByOrderID(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /update-order-status/:id.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.repo.UpdateStatus(ctx, c.Param("id"), domain.Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// Delete handles DELETE /delete-order/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.repo.Delete(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully", "order": order})
}

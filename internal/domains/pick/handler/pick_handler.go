package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warehouse-pick-coordinator/internal/domains/pick"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/internal/shared/middleware"
	"warehouse-pick-coordinator/internal/shared/response"
)

type PickHandler struct {
	service pick.Service
}

func NewPickHandler(service pick.Service) *PickHandler {
	return &PickHandler{service: service}
}

// PickList handles GET /picklist.
func (h *PickHandler) PickList(c *gin.Context) {
	rows, err := h.service.PickList(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// OrdersForSKU handles GET /picklist/{sku}/orders: the read-only FIFO
// preview a picker consults before committing a pick.
func (h *PickHandler) OrdersForSKU(c *gin.Context) {
	sku := c.Param("sku")
	lines, err := h.service.PreviewOrdersForSKU(c.Request.Context(), sku)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lines)
}

type pickRequest struct {
	SKU   string  `json:"sku" binding:"required"`
	Qty   int     `json:"qty" binding:"required"`
	Notes *string `json:"notes"`
}

// Pick handles POST /pick.
func (h *PickHandler) Pick(c *gin.Context) {
	var req pickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	result, err := h.service.Pick(c.Request.Context(), req.SKU, req.Qty, userID, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

type notInStockRequest struct {
	SKU         string             `json:"sku" binding:"required"`
	Allocations []pick.Allocation  `json:"allocations" binding:"required"`
	Notes       *string            `json:"notes"`
}

// MarkShort handles POST /not-in-stock.
func (h *PickHandler) MarkShort(c *gin.Context) {
	var req notInStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	result, err := h.service.MarkShort(c.Request.Context(), req.SKU, req.Allocations, userID, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// PickedItems handles GET /picked-items.
func (h *PickHandler) PickedItems(c *gin.Context) {
	events, err := h.service.PickedItems(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, events)
}

type revertRequest struct {
	Qty *int `json:"qty"`
}

// RevertPickedItem handles POST /picked-items/{id}/revert.
func (h *PickHandler) RevertPickedItem(c *gin.Context) {
	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order line id")
		return
	}
	var req revertRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	result, err := h.service.RevertPickedItem(c.Request.Context(), lineID, req.Qty, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *PickHandler) handleError(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		response.ErrorResponse(c, ae.HTTPStatus(), string(ae.Code), ae.Message)
		return
	}
	response.InternalServerError(c, "internal server error")
}

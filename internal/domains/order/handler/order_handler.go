package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warehouse-pick-coordinator/internal/domains/order"
	"warehouse-pick-coordinator/internal/domains/product"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/internal/shared/middleware"
	"warehouse-pick-coordinator/internal/shared/response"
	"warehouse-pick-coordinator/internal/shared/utils"
)

type OrderHandler struct {
	service     order.Service
	productRepo product.Repository
}

func NewOrderHandler(service order.Service, productRepo product.Repository) *OrderHandler {
	return &OrderHandler{service: service, productRepo: productRepo}
}

func (h *OrderHandler) toDetailDTO(ctx *gin.Context, detail *order.OrderDetail) order.DetailDTO {
	dto := order.DetailDTO{DTO: order.ToDTO(&detail.Order)}
	for _, l := range detail.Lines {
		lineDTO := order.LineDTO{
			ID:            l.ID,
			QtyOrdered:    l.QtyOrdered,
			QtyPicked:     l.QtyPicked,
			QtyShort:      l.QtyShort,
			ShipmentBatch: l.ShipmentBatch,
		}
		if p, err := h.productRepo.FindByID(ctx.Request.Context(), l.ProductID); err == nil {
			lineDTO.SKU = p.SKU
			lineDTO.Title = p.Title
		}
		dto.Lines = append(dto.Lines, lineDTO)
	}
	return dto
}

// GetOrder handles GET /orders/{id}.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.toDetailDTO(c, detail))
}

// ListByStatus handles GET /orders/status.
func (h *OrderHandler) ListByStatus(c *gin.Context) {
	h.list(c, order.ListFilter{Status: order.Status(c.Query("status"))})
}

// ListReadyToPack handles GET /orders/ready-to-pack.
func (h *OrderHandler) ListReadyToPack(c *gin.Context) {
	ready := true
	h.list(c, order.ListFilter{ReadyToPack: &ready, Status: order.StatusReadyToPack})
}

// ListPacked handles GET /orders/packed.
func (h *OrderHandler) ListPacked(c *gin.Context) {
	h.list(c, order.ListFilter{Status: order.StatusPacked})
}

func (h *OrderHandler) list(c *gin.Context, filter order.ListFilter) {
	filter.Page = utils.QueryInt(c, "page", 1)
	filter.Limit = utils.QueryInt(c, "limit", 20)

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	dtos := make([]order.DTO, len(orders))
	for i := range orders {
		dtos[i] = order.ToDTO(&orders[i])
	}
	response.SuccessWithMeta(c, http.StatusOK, dtos, &response.Meta{Page: filter.Page, Limit: filter.Limit, Total: total})
}

// MarkPacked handles POST /orders/{id}/mark-packed.
func (h *OrderHandler) MarkPacked(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	actorID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	if err := h.service.MarkPacked(c.Request.Context(), id, actorID); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "order marked packed"})
}

// RevertToPicking handles POST /orders/{id}/revert-to-picking.
func (h *OrderHandler) RevertToPicking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.service.RevertToPicking(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "order reverted to picking"})
}

// ChangeState handles POST /orders/{id}/change-state.
func (h *OrderHandler) ChangeState(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req order.ChangeStateRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}
	if err := h.service.ChangeState(c.Request.Context(), id, req.Status); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "order state changed"})
}

// UpdateMessage handles PATCH /orders/{id}/update-message.
func (h *OrderHandler) UpdateMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req order.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := h.service.UpdateMessage(c.Request.Context(), id, req.Message); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "customer message updated"})
}

// Split handles POST /orders/{id}/split.
func (h *OrderHandler) Split(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var req order.SplitRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}
	if err := h.service.Split(c.Request.Context(), id, req.Assignments); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "order split"})
}

// Unsplit handles POST /orders/{id}/unsplit.
func (h *OrderHandler) Unsplit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.service.Unsplit(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "order unsplit"})
}

func (h *OrderHandler) bindAndValidate(c *gin.Context, req interface{ Validate() error }) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request body")
		return err
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION", "validation failed", err.Error())
		return err
	}
	return nil
}

func (h *OrderHandler) handleError(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		response.ErrorResponse(c, ae.HTTPStatus(), string(ae.Code), ae.Message)
		return
	}
	response.InternalServerError(c, "internal server error")
}

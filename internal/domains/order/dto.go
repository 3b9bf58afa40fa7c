package order

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LineDTO is the wire projection of a Line, enriched with product fields
// the handler joins in from the product domain.
type LineDTO struct {
	ID            int64  `json:"id"`
	SKU           string `json:"sku"`
	Title         string `json:"title"`
	QtyOrdered    int    `json:"qty_ordered"`
	QtyPicked     int    `json:"qty_picked"`
	QtyShort      int    `json:"qty_short"`
	ShipmentBatch int    `json:"shipment_batch"`
}

// DTO is the wire projection of Order.
type DTO struct {
	ID              int64      `json:"id"`
	ExternalID      string     `json:"external_id"`
	Number          string     `json:"number"`
	CustomerName    string     `json:"customer_name"`
	Status          Status     `json:"status"`
	ReadyToPack     bool       `json:"ready_to_pack"`
	TotalShipments  int        `json:"total_shipments"`
	CurrentShipment int        `json:"current_shipment"`
	CustomerMessage *string    `json:"customer_message,omitempty"`
	EmailSent       bool       `json:"email_sent"`
	PackedAt        *time.Time `json:"packed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func ToDTO(o *Order) DTO {
	return DTO{
		ID:              o.ID,
		ExternalID:      o.ExternalID,
		Number:          o.Number,
		CustomerName:    o.CustomerName,
		Status:          o.Status,
		ReadyToPack:     o.ReadyToPack,
		TotalShipments:  o.TotalShipments,
		CurrentShipment: o.CurrentShipment,
		CustomerMessage: o.CustomerMessage,
		EmailSent:       o.EmailSent,
		PackedAt:        o.PackedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// DetailDTO is the order plus its lines, as returned by GET /orders/{id}.
type DetailDTO struct {
	DTO
	Lines []LineDTO `json:"lines"`
}

// ChangeStateRequest - admin-driven explicit transition.
type ChangeStateRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (r ChangeStateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.By(validStatusRule)),
	)
}

func validStatusRule(value interface{}) error {
	status, _ := value.(Status)
	switch status {
	case StatusOpen, StatusPicking, StatusReadyToPack, StatusPacked:
		return nil
	default:
		return errInvalidStatusValue
	}
}

var errInvalidStatusValue = errors.New("status must be one of open, picking, ready_to_pack, packed")

// UpdateMessageRequest - PATCH /orders/{id}/update-message.
type UpdateMessageRequest struct {
	Message string `json:"message"`
}

// SplitRequest - POST /orders/{id}/split.
type SplitRequest struct {
	Assignments []LineBatchAssignment `json:"assignments" binding:"required"`
}

func (r SplitRequest) Validate() error {
	if len(r.Assignments) == 0 {
		return errEmptyAssignments
	}
	return nil
}

var errEmptyAssignments = errors.New("at least one line assignment is required")

// ListQuery captures the paging params shared by the /orders/* list
// endpoints.
type ListQuery struct {
	Page  int
	Limit int
}

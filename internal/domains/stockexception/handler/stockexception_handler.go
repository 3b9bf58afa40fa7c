package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"warehouse-pick-coordinator/internal/domains/settings"
	"warehouse-pick-coordinator/internal/domains/stockexception"
	"warehouse-pick-coordinator/internal/infrastructure/email"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/internal/shared/response"
	"warehouse-pick-coordinator/internal/shared/utils"
)

// SMSSender is the subset of sms.MockSMSService/TwilioSMSService the
// out-of-stock notifier needs.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) (messageID string, err error)
}

type StockExceptionHandler struct {
	service      stockexception.Service
	emailService email.EmailService
	smsSender    SMSSender
	settingsRepo settings.Repository
}

func NewStockExceptionHandler(service stockexception.Service, emailService email.EmailService, smsSender SMSSender, settingsRepo settings.Repository) *StockExceptionHandler {
	return &StockExceptionHandler{service: service, emailService: emailService, smsSender: smsSender, settingsRepo: settingsRepo}
}

// List handles GET /out-of-stock.
func (h *StockExceptionHandler) List(c *gin.Context) {
	filter := stockexception.ListFilter{
		Search: c.Query("search"),
		SortBy: c.Query("sort"),
		Page:   utils.QueryInt(c, "page", 1),
		Limit:  utils.QueryInt(c, "limit", 50),
	}
	if v := c.Query("resolved"); v != "" {
		resolved := v == "true"
		filter.Resolved = &resolved
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, list, &response.Meta{Page: filter.Page, Limit: filter.Limit, Total: total})
}

// Export handles GET /out-of-stock/export: streams the filtered list as an
// XLSX workbook for the warehouse team to forward to vendors.
func (h *StockExceptionHandler) Export(c *gin.Context) {
	filter := stockexception.ListFilter{Search: c.Query("search"), SortBy: c.Query("sort"), Page: 1, Limit: 10000}
	if v := c.Query("resolved"); v != "" {
		resolved := v == "true"
		filter.Resolved = &resolved
	}

	list, _, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	f := excelize.NewFile()
	const sheet = "Out of Stock"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"SKU", "Product", "Category", "Qty Short", "Orders", "Ordered From Company", "NA/Cancel", "Resolved", "Reported At"}
	for col, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i, se := range list {
		row := i + 2
		values := []interface{}{
			se.SKU, se.ProductTitle, se.Category, se.QtyShort,
			strings.Join(se.OrderNumbers, ", "),
			se.OrderedFromCompany, se.NACancel, se.Resolved,
			se.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	fileName := fmt.Sprintf("out_of_stock_%s.xlsx", time.Now().Format("20060102_1504"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	if err := f.Write(c.Writer); err != nil {
		response.InternalServerError(c, "failed to write export")
		return
	}
}

type sendNotificationRequest struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// Send handles POST /out-of-stock/send: notifies purchasing/vendor contacts
// about the current unresolved shortages by email and SMS. Recipients in
// the request body override the NotifierConfig singleton's default lists.
func (h *StockExceptionHandler) Send(c *gin.Context) {
	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "invalid request body")
		return
	}

	if len(req.Emails) == 0 && len(req.Phones) == 0 && h.settingsRepo != nil {
		if notifier, err := h.settingsRepo.GetNotifierConfig(c.Request.Context()); err == nil && notifier != nil {
			req.Emails = notifier.EmailRecipients
			req.Phones = notifier.SMSRecipients
		}
	}

	if len(req.Emails) == 0 && len(req.Phones) == 0 {
		response.BadRequest(c, "no recipients configured: set emails/phones in the request or in the notifier settings")
		return
	}

	unresolved := false
	list, _, err := h.service.List(c.Request.Context(), stockexception.ListFilter{Resolved: &unresolved, Page: 1, Limit: 500})
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(list) == 0 {
		response.Success(c, http.StatusOK, gin.H{"message": "no unresolved shortages to report"})
		return
	}

	var lines []string
	for _, se := range list {
		lines = append(lines, fmt.Sprintf("%s (%s): short %d, orders %s", se.SKU, se.ProductTitle, se.QtyShort, strings.Join(se.OrderNumbers, ", ")))
	}
	body := "Unresolved out-of-stock items:\n\n" + strings.Join(lines, "\n")

	if len(req.Emails) > 0 && h.emailService != nil {
		if err := h.emailService.SendEmail(c.Request.Context(), email.EmailRequest{
			To:      req.Emails,
			Subject: fmt.Sprintf("Out-of-stock report (%d items)", len(list)),
			Body:    body,
		}); err != nil {
			response.InternalServerError(c, "failed to send email notification")
			return
		}
	}

	if h.smsSender != nil {
		smsBody := fmt.Sprintf("%d out-of-stock items need attention. Check the warehouse dashboard for details.", len(list))
		for _, phone := range req.Phones {
			if _, err := h.smsSender.SendSMS(c.Request.Context(), phone, smsBody); err != nil {
				response.InternalServerError(c, "failed to send sms notification")
				return
			}
		}
	}

	response.Success(c, http.StatusOK, gin.H{"message": "notification sent", "count": len(list)})
}

// Resolve handles POST /out-of-stock/{id}/resolve.
func (h *StockExceptionHandler) Resolve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	if err := h.service.Resolve(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "resolved"})
}

// ToggleOrderedFromCompany handles POST /out-of-stock/{id}/toggle-ordered.
func (h *StockExceptionHandler) ToggleOrderedFromCompany(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	if err := h.service.ToggleOrderedFromCompany(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "toggled"})
}

// ToggleNACancel handles POST /out-of-stock/{id}/toggle-na-cancel.
func (h *StockExceptionHandler) ToggleNACancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	if err := h.service.ToggleNACancel(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "toggled"})
}

func (h *StockExceptionHandler) handleError(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		response.ErrorResponse(c, ae.HTTPStatus(), string(ae.Code), ae.Message)
		return
	}
	response.InternalServerError(c, "internal server error")
}

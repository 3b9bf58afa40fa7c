package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warehouse-pick-coordinator/internal/domains/settings"
	"warehouse-pick-coordinator/internal/shared/apperr"
	"warehouse-pick-coordinator/internal/shared/response"
)

type SettingsHandler struct {
	service settings.Service
}

func NewSettingsHandler(service settings.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// GetAPIConfig handles GET /admin/settings.
func (h *SettingsHandler) GetAPIConfig(c *gin.Context) {
	cfg, err := h.service.GetAPIConfig(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// PutAPIConfig handles PUT /admin/settings.
func (h *SettingsHandler) PutAPIConfig(c *gin.Context) {
	var cfg settings.APIConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := h.service.PutAPIConfig(c.Request.Context(), cfg); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "settings updated"})
}

// GetNotifierConfig handles GET /admin/email-sms-settings.
func (h *SettingsHandler) GetNotifierConfig(c *gin.Context) {
	cfg, err := h.service.GetNotifierConfig(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

// PutNotifierConfig handles PUT /admin/email-sms-settings.
func (h *SettingsHandler) PutNotifierConfig(c *gin.Context) {
	var cfg settings.NotifierConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := h.service.PutNotifierConfig(c.Request.Context(), cfg); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "email/sms settings updated"})
}

func (h *SettingsHandler) handleError(c *gin.Context, err error) {
	if ae, ok := apperr.As(err); ok {
		response.ErrorResponse(c, ae.HTTPStatus(), string(ae.Code), ae.Message)
		return
	}
	response.InternalServerError(c, "internal server error")
}

// Package job adapts the out-of-stock notifier to an asynq task for the
// scheduled dispatch in cmd/worker. It builds the same report as
// StockExceptionHandler.Send but resolves recipients on its own: it always
// uses the NotifierConfig lists and only logs send failures.
package job

import (
	"context"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"warehouse-pick-coordinator/internal/domains/settings"
	"warehouse-pick-coordinator/internal/domains/stockexception"
	"warehouse-pick-coordinator/internal/infrastructure/email"
)

// SMSSender is the subset of sms.MockSMSService/TwilioSMSService the
// out-of-stock notifier needs.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) (messageID string, err error)
}

type NotifyShortageHandler struct {
	service      stockexception.Service
	settingsRepo settings.Repository
	emailService email.EmailService
	smsSender    SMSSender
}

func NewNotifyShortageHandler(service stockexception.Service, settingsRepo settings.Repository, emailService email.EmailService, smsSender SMSSender) *NotifyShortageHandler {
	return &NotifyShortageHandler{service: service, settingsRepo: settingsRepo, emailService: emailService, smsSender: smsSender}
}

func (h *NotifyShortageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	unresolved := false
	list, _, err := h.service.List(ctx, stockexception.ListFilter{Resolved: &unresolved, Page: 1, Limit: 500})
	if err != nil {
		return fmt.Errorf("list unresolved shortages: %w", err)
	}
	if len(list) == 0 {
		log.Info().Msg("no unresolved shortages, skipping notification")
		return nil
	}

	notifier, err := h.settingsRepo.GetNotifierConfig(ctx)
	if err != nil {
		return fmt.Errorf("load notifier config: %w", err)
	}

	var lines []string
	for _, se := range list {
		lines = append(lines, fmt.Sprintf("%s (%s): short %d, orders %s", se.SKU, se.ProductTitle, se.QtyShort, strings.Join(se.OrderNumbers, ", ")))
	}
	body := "Unresolved out-of-stock items:\n\n" + strings.Join(lines, "\n")

	if len(notifier.EmailRecipients) > 0 && h.emailService != nil {
		if err := h.emailService.SendEmail(ctx, email.EmailRequest{
			To:      notifier.EmailRecipients,
			Subject: fmt.Sprintf("Out-of-stock report (%d items)", len(list)),
			Body:    body,
		}); err != nil {
			log.Error().Err(err).Msg("failed to send scheduled out-of-stock email")
		}
	}

	if h.smsSender != nil && len(notifier.SMSRecipients) > 0 {
		smsBody := fmt.Sprintf("%d out-of-stock items need attention. Check the warehouse dashboard for details.", len(list))
		for _, phone := range notifier.SMSRecipients {
			if _, err := h.smsSender.SendSMS(ctx, phone, smsBody); err != nil {
				log.Error().Err(err).Str("phone", phone).Msg("failed to send scheduled out-of-stock sms")
			}
		}
	}

	log.Info().Int("count", len(list)).Msg("scheduled out-of-stock notification sent")
	return nil
}

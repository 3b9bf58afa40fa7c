// Package settings owns the two process-wide singletons named in spec §3
// — APIConfig and NotifierConfig — as rows in the singletons table rather
// than process globals, per §9's explicit guidance, fronted by a
// redis read-through cache invalidated on every write.
package settings

import (
	"context"
	"time"
)

// APIConfig holds the upstream feed's location/credentials and the sync
// schedule, plus the last-run bookkeeping the importer stamps.
type APIConfig struct {
	APIBaseURL          string     `json:"api_base_url"`
	APIKey              string     `json:"api_key"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus      string     `json:"last_sync_status,omitempty"`
}

// NotifierConfig holds the SMTP/SMS transport credentials and the
// out-of-stock alert recipient lists.
type NotifierConfig struct {
	SMTPHost        string   `json:"smtp_host"`
	SMTPPort        string   `json:"smtp_port"`
	SMTPUser        string   `json:"smtp_user"`
	SMTPPassword    string   `json:"smtp_password"`
	SMSAccountSID   string   `json:"sms_account_sid"`
	SMSAuthToken    string   `json:"sms_auth_token"`
	SMSFromNumber   string   `json:"sms_from_number"`
	EmailRecipients []string `json:"email_recipients"`
	SMSRecipients   []string `json:"sms_recipients"`
}

type Repository interface {
	GetAPIConfig(ctx context.Context) (*APIConfig, error)
	PutAPIConfig(ctx context.Context, cfg APIConfig) error
	StampLastSync(ctx context.Context, at time.Time, status string) error

	GetNotifierConfig(ctx context.Context) (*NotifierConfig, error)
	PutNotifierConfig(ctx context.Context, cfg NotifierConfig) error
}

// Service is the superadmin-gated C1 singleton surface.
type Service interface {
	GetAPIConfig(ctx context.Context) (*APIConfig, error)
	PutAPIConfig(ctx context.Context, cfg APIConfig) error

	GetNotifierConfig(ctx context.Context) (*NotifierConfig, error)
	PutNotifierConfig(ctx context.Context, cfg NotifierConfig) error
}

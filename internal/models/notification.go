// internal/models/notification.go
package models

import "time"

// NotificationChannel selects a delivery mechanism.
type NotificationChannel string

const (
	ChannelWebhook NotificationChannel = "webhook"
	ChannelSNS     NotificationChannel = "sns"
	ChannelEmail   NotificationChannel = "email"
)

// QueryNotification announces a finished orchestration to interested parties
// (bots, webhooks). Delivery is best-effort and retried internally.
type QueryNotification struct {
	ID           string    `json:"id"`
	Event        string    `json:"event"` // query.completed | query.failed
	Question     string    `json:"question"`
	DatasourceID int64     `json:"datasourceId,omitempty"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	RowCount     int       `json:"rowCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// internal/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	commonhttp "nlquery-gateway/internal/common/http"
	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/common/metrics"
	"nlquery-gateway/internal/common/retry"
	"nlquery-gateway/internal/models"
)

// Interfaces for mocking the AWS clients.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config selects which channels are active. An empty value disables the
// corresponding channel.
type Config struct {
	WebhookURL string
	SNSTopic   string
	EmailFrom  string
	EmailTo    []string
}

// Dispatcher fans a query event out to the configured channels. Delivery is
// best-effort and never blocks or fails the query that produced the event.
type Dispatcher struct {
	config  Config
	http    *commonhttp.Client
	retrier *retry.Executor
	ses     SESService
	sns     SNSService
	logger  logger.Logger
}

func NewDispatcher(
	config Config,
	httpClient *commonhttp.Client,
	retrier *retry.Executor,
	sesClient SESService,
	snsClient SNSService,
	log logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		config:  config,
		http:    httpClient,
		retrier: retrier,
		ses:     sesClient,
		sns:     snsClient,
		logger:  log.With(map[string]interface{}{"component": "notify"}),
	}
}

// Dispatch sends n to every active channel. A missing id is filled in.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.QueryNotification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	if d.config.WebhookURL != "" {
		d.sendWebhook(ctx, n)
	}
	if d.config.SNSTopic != "" && d.sns != nil {
		d.sendSNS(ctx, n)
	}
	if d.config.EmailFrom != "" && len(d.config.EmailTo) > 0 && d.ses != nil {
		d.sendEmail(ctx, n)
	}
}

func (d *Dispatcher) sendWebhook(ctx context.Context, n *models.QueryNotification) {
	if err := validatePayload(n); err != nil {
		d.record("webhook", "invalid")
		d.logger.Error("webhook payload rejected", map[string]interface{}{
			"notificationId": n.ID,
			"error":          err.Error(),
		})
		return
	}

	result := retry.ExecuteWithRetry(ctx, d.retrier, "webhook_notify", func(attempt int) (struct{}, error) {
		return struct{}{}, d.http.PostJSON(ctx, d.config.WebhookURL, n, nil)
	})
	if !result.Success {
		d.record("webhook", "error")
		d.logger.Warn("webhook delivery failed", map[string]interface{}{
			"notificationId": n.ID,
			"attempts":       result.Attempts,
			"error":          result.Error.Message,
		})
		return
	}
	d.record("webhook", "sent")
}

func (d *Dispatcher) sendSNS(ctx context.Context, n *models.QueryNotification) {
	body, err := json.Marshal(n)
	if err != nil {
		d.record("sns", "error")
		return
	}

	_, err = d.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(d.config.SNSTopic),
		Subject:  aws.String(fmt.Sprintf("query %s", n.Event)),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		d.record("sns", "error")
		d.logger.Warn("sns publish failed", map[string]interface{}{
			"notificationId": n.ID,
			"error":          err.Error(),
		})
		return
	}
	d.record("sns", "sent")
}

func (d *Dispatcher) sendEmail(ctx context.Context, n *models.QueryNotification) {
	subject := fmt.Sprintf("Query %s: %s", n.Event, truncate(n.Question, 80))
	body := fmt.Sprintf(
		"Event: %s\nQuestion: %s\nDatasource: %d\nRows: %d\nError code: %s\nTime: %s\n",
		n.Event, n.Question, n.DatasourceID, n.RowCount, n.ErrorCode, n.Timestamp.Format("2006-01-02 15:04:05 UTC"),
	)

	_, err := d.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(d.config.EmailFrom),
		Destination: &sestypes.Destination{
			ToAddresses: d.config.EmailTo,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		d.record("email", "error")
		d.logger.Warn("email send failed", map[string]interface{}{
			"notificationId": n.ID,
			"error":          err.Error(),
		})
		return
	}
	d.record("email", "sent")
}

func (d *Dispatcher) record(channel, status string) {
	metrics.NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

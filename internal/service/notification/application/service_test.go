package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"agrimart/internal/service/notification/application"
	"agrimart/internal/service/notification/domain"
	"agrimart/internal/service/notification/infrastructure"
)

func newService(sender *infrastructure.RecordingEmailSender, recipients []string) *application.NotificationService {
	return application.NewNotificationService(sender, recipients, noop.NewTracerProvider().Tracer("test"))
}

func TestHandlePromotionExpired_SendsAlertMail(t *testing.T) {
	sender := infrastructure.NewRecordingEmailSender()
	svc := newService(sender, []string{"ops@agrimart.ph"})

	err := svc.HandlePromotionExpired(context.Background(), &domain.PromotionExpiredEvent{
		PromotionID: "promo-1",
		Title:       "Harvest Festival Sale",
		EndDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, sender.Mails, 1)
	mail := sender.Mails[0]
	assert.Equal(t, []string{"ops@agrimart.ph"}, mail.To)
	assert.Equal(t, "Promotion ended: Harvest Festival Sale", mail.Subject)
	assert.Contains(t, mail.HTMLBody, "2026-03-15")
}

func TestHandleJobFailed_SubjectNamesThePage(t *testing.T) {
	sender := infrastructure.NewRecordingEmailSender()
	svc := newService(sender, []string{"ops@agrimart.ph", "social@agrimart.ph"})

	err := svc.HandleJobFailed(context.Background(), &domain.JobFailedEvent{
		JobID:     "job-42",
		PageID:    "page-main",
		LastError: "page token revoked",
	})
	require.NoError(t, err)

	require.Len(t, sender.Mails, 1)
	assert.Equal(t, "Social post failed after retries (page page-main)", sender.Mails[0].Subject)
	assert.Contains(t, sender.Mails[0].HTMLBody, "page token revoked")
	assert.Len(t, sender.Mails[0].To, 2)
}

func TestHandleLowStock_SendsReorderAlert(t *testing.T) {
	sender := infrastructure.NewRecordingEmailSender()
	svc := newService(sender, []string{"ops@agrimart.ph"})

	err := svc.HandleLowStock(context.Background(), &domain.LowStockEvent{
		ProductID:   "p1",
		ProductName: "Urea 50kg",
		BranchID:    "branch-laguna",
		Available:   0,
		Threshold:   20,
	})
	require.NoError(t, err)

	require.Len(t, sender.Mails, 1)
	assert.Equal(t, "Out of stock: Urea 50kg at branch-laguna", sender.Mails[0].Subject)
	assert.Contains(t, sender.Mails[0].HTMLBody, "threshold 20")
}

func TestSend_NoRecipientsDropsMailWithoutError(t *testing.T) {
	sender := infrastructure.NewRecordingEmailSender()
	svc := newService(sender, nil)

	err := svc.HandleJobFailed(context.Background(), &domain.JobFailedEvent{JobID: "job-1"})
	assert.NoError(t, err, "missing recipients is a configuration gap, not a processing failure")
	assert.Empty(t, sender.Mails)
}

func TestSend_DeliveryFailureIsReturned(t *testing.T) {
	sender := infrastructure.NewRecordingEmailSender()
	sender.FailNext(errors.New("smtp relay rejected"))
	svc := newService(sender, []string{"ops@agrimart.ph"})

	err := svc.HandleJobFailed(context.Background(), &domain.JobFailedEvent{JobID: "job-1"})
	assert.ErrorContains(t, err, "smtp relay rejected")
	assert.Empty(t, sender.Mails)
}

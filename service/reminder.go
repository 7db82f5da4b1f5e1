package service

import (
	"context"
	"docuflow/pkg/metrics"
	"docuflow/service/mailer"
	"docuflow/storage/postgres"
	"docuflow/types"
	"docuflow/vars"
	"fmt"
	"html"
	"math"
	"time"

	"go.uber.org/zap"
)

// ReminderService 到期提醒：扫描即将到期的待付发票，生成站内提醒并发邮件
type ReminderService struct {
	store      *postgres.Store
	mailer     Mailer
	recipients []string
	windowDays int
	log        *zap.Logger
}

// NewReminderService mailer may be nil; alerts are still created.
// recipients overrides the vendor email as the reminder destination.
func NewReminderService(store *postgres.Store, m Mailer, recipients []string, windowDays int, log *zap.Logger) *ReminderService {
	if windowDays < 0 {
		windowDays = vars.ReminderWindowDays
	}
	return &ReminderService{
		store:      store,
		mailer:     m,
		recipients: recipients,
		windowDays: windowDays,
		log:        log.Named("reminders"),
	}
}

// Sweep creates one alert per pending invoice due between today and
// today+window (inclusive) and returns how many were created.
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) (int, error) {
	today := postgres.DateOnly(now)
	until := today.AddDate(0, 0, s.windowDays)

	invoices, err := s.store.Invoices.FindDueBetween(ctx, today, until)
	if err != nil {
		return 0, fmt.Errorf("query due invoices: %w", err)
	}

	alerts := make([]postgres.Alert, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		title, message := ReminderText(inv, now)

		s.sendEmail(ctx, inv, title, message)

		alerts = append(alerts, postgres.Alert{
			UserID:           inv.UserID,
			Title:            title,
			Message:          &message,
			Type:             types.AlertTypeReminder,
			RelatedInvoiceID: &inv.ID,
		})
	}

	if err := s.store.Alerts.CreateBatch(ctx, alerts); err != nil {
		return 0, fmt.Errorf("insert alerts: %w", err)
	}
	metrics.RemindersTotal.Add(float64(len(alerts)))
	s.log.Info("reminder sweep finished", zap.Int("alerts", len(alerts)), zap.Time("today", today))
	return len(alerts), nil
}

// ReminderText builds the alert title and message for a due invoice.
func ReminderText(inv *postgres.InvoiceRecord, now time.Time) (title, message string) {
	days := 0
	if inv.DueDate != nil {
		days = int(math.Ceil(inv.DueDate.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}
	}

	ref := deref(inv.InvoiceNumber)
	if ref == "" {
		ref = inv.ID
		if len(ref) > 8 {
			ref = ref[:8]
		}
	}
	when := "today"
	if days > 0 {
		when = fmt.Sprintf("in %d day(s)", days)
	}
	title = fmt.Sprintf("Invoice %s due %s", ref, when)

	vendor := inv.VendorName()
	if vendor == "" {
		vendor = vars.UnknownVendor
	}
	amount := 0.0
	if inv.TotalAmount != nil {
		amount = *inv.TotalAmount
	}
	due := ""
	if inv.DueDate != nil {
		due = inv.DueDate.Format(vars.DateLayout)
	}
	message = fmt.Sprintf("Invoice from %s for $%.2f is due on %s.", vendor, amount, due)
	return title, message
}

// sendEmail 失败只记录，不影响提醒写入
func (s *ReminderService) sendEmail(ctx context.Context, inv *postgres.InvoiceRecord, title, message string) {
	if s.mailer == nil {
		return
	}
	to := s.recipients
	if len(to) == 0 && inv.Vendor != nil && inv.Vendor.Email != nil && *inv.Vendor.Email != "" {
		to = []string{*inv.Vendor.Email}
	}
	if len(to) == 0 {
		metrics.EmailsTotal.WithLabelValues("skipped").Inc()
		return
	}

	err := s.mailer.Send(ctx, mailer.Message{
		To:      to,
		Subject: title,
		HTML:    fmt.Sprintf("<p>%s</p><p>%s</p>", html.EscapeString(message), vars.PaymentNote),
		Text:    message + "\n\n" + vars.PaymentNote,
	})
	if err != nil {
		metrics.EmailsTotal.WithLabelValues("failed").Inc()
		s.log.Warn("reminder email failed", zap.String("invoice_id", inv.ID), zap.Error(err))
		return
	}
	metrics.EmailsTotal.WithLabelValues("sent").Inc()
}

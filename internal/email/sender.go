// Package email delivers transactional mail over SMTP.
package email

import "context"

// Sender delivers CRM notification mail. A nil Sender means email delivery
// is disabled.
type Sender interface {
	SendTaskReminderEmail(ctx context.Context, toEmail, taskTitle, dueAtFormatted string) error
}

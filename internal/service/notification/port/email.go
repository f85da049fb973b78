// notification-service/internal/port/email.go
package port

import "context"

// EmailSender 是邮件投递的出站端口。
// 返回投递方生成的 message id，便于排查。
type EmailSender interface {
	SendEmail(ctx context.Context, to []string, subject, htmlBody string) (string, error)
}

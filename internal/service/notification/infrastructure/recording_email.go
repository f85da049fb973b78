// notification-service/internal/infrastructure/recording_email.go
package infrastructure

import (
	"context"
	"fmt"
	"sync"
)

// SentMail 是一次被记录的投递。
type SentMail struct {
	To       []string
	Subject  string
	HTMLBody string
}

// RecordingEmailSender 把邮件记在内存里，供本地联调和测试使用。
// 配置 email.provider=recording 时被选中。
type RecordingEmailSender struct {
	mu     sync.Mutex
	Mails  []SentMail
	nextID int

	failNext error
}

// NewRecordingEmailSender 创建一个内存邮件记录器。
func NewRecordingEmailSender() *RecordingEmailSender {
	return &RecordingEmailSender{}
}

// FailNext 让下一次投递返回指定错误。
func (s *RecordingEmailSender) FailNext(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// SendEmail 实现 port.EmailSender。
func (s *RecordingEmailSender) SendEmail(_ context.Context, to []string, subject, htmlBody string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return "", err
	}
	s.Mails = append(s.Mails, SentMail{To: to, Subject: subject, HTMLBody: htmlBody})
	s.nextID++
	return fmt.Sprintf("recorded-%d", s.nextID), nil
}

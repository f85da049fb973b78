// notification-service/internal/infrastructure/http_email_sender.go
package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"agrimart/internal/pkg/httpclient"
	"agrimart/internal/service/notification/port"
)

// HTTPEmailSender 通过邮件中继服务的 HTTP API 投递邮件，
// 是 port.EmailSender 的生产实现。
type HTTPEmailSender struct {
	client *httpclient.Client
	apiURL string
	apiKey string
	from   string
}

// NewHTTPEmailSender 创建一个新的邮件适配器。
func NewHTTPEmailSender(client *httpclient.Client, apiURL, apiKey, from string) *HTTPEmailSender {
	return &HTTPEmailSender{client: client, apiURL: apiURL, apiKey: apiKey, from: from}
}

type sendMailRequest struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	HTMLBody string   `json:"html_body"`
}

type sendMailResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// SendEmail 实现 port.EmailSender。
func (s *HTTPEmailSender) SendEmail(ctx context.Context, to []string, subject, htmlBody string) (string, error) {
	endpoint := fmt.Sprintf("%s/send?api_key=%s", s.apiURL, url.QueryEscape(s.apiKey))

	req := sendMailRequest{From: s.from, To: to, Subject: subject, HTMLBody: htmlBody}
	var resp sendMailResponse
	status, err := s.client.PostJSON(ctx, endpoint, req, &resp)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		if resp.Error != "" {
			return "", fmt.Errorf("mail relay rejected message: %s", resp.Error)
		}
		return "", fmt.Errorf("mail relay returned status %d", status)
	}
	return resp.MessageID, nil
}

var _ port.EmailSender = (*HTTPEmailSender)(nil)

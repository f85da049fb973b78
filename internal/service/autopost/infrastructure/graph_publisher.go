// autopost-service/internal/infrastructure/graph_publisher.go
package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"agrimart/internal/pkg/httpclient"
	"agrimart/internal/service/autopost/domain"
	"agrimart/internal/service/autopost/port"
)

// GraphPublisher 是 port.Publisher 的 Graph API 实现。
// 平台返回 {success, data|error} 风格的信封，这里负责把它翻译成
// Go 侧的 (值, error)，错误统一包成 *port.PublishError。
type GraphPublisher struct {
	client      *httpclient.Client
	baseURL     string
	accessToken string
}

// NewGraphPublisher 创建一个新的 Graph API 适配器。
func NewGraphPublisher(client *httpclient.Client, baseURL, accessToken string) *GraphPublisher {
	return &GraphPublisher{
		client:      client,
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

// graphEnvelope 是 Graph API 的通用响应信封。
type graphEnvelope struct {
	ID    string `json:"id"`
	Error *struct {
		Code    int    `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePost 实现 port.Publisher。
func (p *GraphPublisher) CreatePost(ctx context.Context, pageID, content string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/feed", p.baseURL, pageID)
	body := map[string]string{
		"message":      content,
		"access_token": p.accessToken,
	}

	var envelope graphEnvelope
	status, err := p.client.PostJSON(ctx, endpoint, body, &envelope)
	if err != nil {
		// 网络层错误一律按瞬态处理
		return "", &port.PublishError{Code: "NETWORK", Message: err.Error(), Transient: true}
	}
	if envelope.Error != nil {
		return "", &port.PublishError{
			Code:      fmt.Sprintf("GRAPH_%d", envelope.Error.Code),
			Message:   envelope.Error.Message,
			Transient: isTransientStatus(status),
		}
	}
	if envelope.ID == "" {
		return "", &port.PublishError{Code: "EMPTY_RESPONSE", Message: "graph api returned no post id", Transient: true}
	}
	return envelope.ID, nil
}

// insightsEnvelope 是互动数据接口的响应。
type insightsEnvelope struct {
	Reach      int64 `json:"reach"`
	Engagement int64 `json:"engagement"`
	Likes      int64 `json:"likes"`
	Comments   int64 `json:"comments"`
	Shares     int64 `json:"shares"`
	Clicks     int64 `json:"clicks"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetPostInsights 实现 port.Publisher。
func (p *GraphPublisher) GetPostInsights(ctx context.Context, pageID, postID string) (domain.Insights, error) {
	endpoint := fmt.Sprintf("%s/%s/insights?access_token=%s", p.baseURL, postID, url.QueryEscape(p.accessToken))

	var envelope insightsEnvelope
	status, err := p.client.GetJSON(ctx, endpoint, &envelope)
	if err != nil {
		return domain.Insights{}, &port.PublishError{Code: "NETWORK", Message: err.Error(), Transient: true}
	}
	if envelope.Error != nil {
		return domain.Insights{}, &port.PublishError{
			Code:      fmt.Sprintf("GRAPH_%d", envelope.Error.Code),
			Message:   envelope.Error.Message,
			Transient: isTransientStatus(status),
		}
	}
	return domain.Insights{
		Reach:      envelope.Reach,
		Engagement: envelope.Engagement,
		Likes:      envelope.Likes,
		Comments:   envelope.Comments,
		Shares:     envelope.Shares,
		Clicks:     envelope.Clicks,
	}, nil
}

// DeletePost 实现 port.Publisher。
func (p *GraphPublisher) DeletePost(ctx context.Context, pageID, postID string) error {
	endpoint := fmt.Sprintf("%s/%s?access_token=%s", p.baseURL, postID, url.QueryEscape(p.accessToken))

	var envelope graphEnvelope
	status, err := p.client.PostJSON(ctx, endpoint, map[string]string{"method": "delete"}, &envelope)
	if err != nil {
		return &port.PublishError{Code: "NETWORK", Message: err.Error(), Transient: true}
	}
	if envelope.Error != nil {
		return &port.PublishError{
			Code:      fmt.Sprintf("GRAPH_%d", envelope.Error.Code),
			Message:   envelope.Error.Message,
			Transient: isTransientStatus(status),
		}
	}
	return nil
}

// isTransientStatus 粗分错误类别：限流和 5xx 算瞬态，4xx 算终端。
func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

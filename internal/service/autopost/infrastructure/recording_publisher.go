// autopost-service/internal/infrastructure/recording_publisher.go
package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"agrimart/internal/service/autopost/domain"
)

// RecordingPublisher 是 port.Publisher 的内存实现，
// 用于测试和没有真实凭证的本地环境（配置 social.provider=recording 时启用）。
// 它记录每次调用，并可以按脚本注入失败。
type RecordingPublisher struct {
	mu      sync.Mutex
	seq     int
	Posts   []RecordedPost
	Deleted []string
	// FailNext 大于 0 时，接下来 N 次 CreatePost 返回错误
	FailNext int
	// FailWith 为注入的错误，FailNext 生效时返回它
	FailWith error
	// InsightsFn 可选，自定义 GetPostInsights 的返回
	InsightsFn func(pageID, postID string) (domain.Insights, error)
}

// RecordedPost 是一次成功的 CreatePost 调用记录。
type RecordedPost struct {
	PostID  string
	PageID  string
	Content string
}

// NewRecordingPublisher 创建一个新的记录器实例。
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// CreatePost 实现 port.Publisher。
func (p *RecordingPublisher) CreatePost(_ context.Context, pageID, content string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext > 0 {
		p.FailNext--
		if p.FailWith != nil {
			return "", p.FailWith
		}
		return "", fmt.Errorf("simulated publish failure")
	}
	p.seq++
	postID := fmt.Sprintf("%s_post_%d", pageID, p.seq)
	p.Posts = append(p.Posts, RecordedPost{PostID: postID, PageID: pageID, Content: content})
	return postID, nil
}

// GetPostInsights 实现 port.Publisher。
func (p *RecordingPublisher) GetPostInsights(_ context.Context, pageID, postID string) (domain.Insights, error) {
	p.mu.Lock()
	fn := p.InsightsFn
	p.mu.Unlock()
	if fn != nil {
		return fn(pageID, postID)
	}
	return domain.Insights{}, nil
}

// DeletePost 实现 port.Publisher。
func (p *RecordingPublisher) DeletePost(_ context.Context, _, postID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Deleted = append(p.Deleted, postID)
	return nil
}

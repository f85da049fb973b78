// autopost-service/internal/port/publisher.go
package port

import (
	"context"
	"fmt"

	"agrimart/internal/service/autopost/domain"
)

// Publisher 是对社交平台发布能力的抽象。
// 生产环境用 Graph API 实现，测试与本地联调用 RecordingPublisher，
// 由配置选择实现，而不是运行时 try/catch 降级。
type Publisher interface {
	// CreatePost 发布一条帖子，成功时返回平台分配的帖子 ID。
	CreatePost(ctx context.Context, pageID, content string) (string, error)
	// GetPostInsights 拉取一条已发布帖子的互动数据。
	GetPostInsights(ctx context.Context, pageID, postID string) (domain.Insights, error)
	// DeletePost 删除一条帖子。
	DeletePost(ctx context.Context, pageID, postID string) error
}

// PublishError 携带平台侧的错误码。Transient 标记网络/限流这类
// 可恢复错误；目前重试策略对两类错误一视同仁（与源系统行为一致），
// 但错误分类先保留下来，方便以后对明确的终端错误快速失败。
type PublishError struct {
	Code      string
	Message   string
	Transient bool
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed (%s): %s", e.Code, e.Message)
}

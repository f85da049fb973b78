// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/agrimart_locks" // 所有分布式锁的根节点
)

// TickLock 是编排器跨实例互斥用的分布式锁。
// 进程内的重入由编排器自己的原子标志保证，这把锁只负责
// 多实例部署时同一时刻只有一个实例执行 tick。
type TickLock struct {
	conn     *Conn
	path     string // 锁的路径，例如 /agrimart_locks/orchestrator-tick
	lockNode string // 成功获取锁后，自己创建的节点路径
}

// NewTickLock 创建一个新的分布式锁实例，并确保锁路径存在。
func NewTickLock(conn *Conn, resourceID string) (*TickLock, error) {
	for _, p := range []string{lockRoot, lockRoot + "/" + resourceID} {
		exists, _, err := conn.Exists(p)
		if err != nil {
			return nil, fmt.Errorf("failed to check lock node %s: %w", p, err)
		}
		if !exists {
			if _, err := conn.Create(p, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
				return nil, fmt.Errorf("failed to create lock node %s: %w", p, err)
			}
		}
	}
	return &TickLock{
		conn: conn,
		path: lockRoot + "/" + resourceID,
	}, nil
}

// TryLock 非阻塞地尝试获取锁。
// tick 的语义是"并发请求跳过而不是排队"，所以这里拿不到锁就立即
// 删掉自己的节点并返回 false，绝不等待。
func (l *TickLock) TryLock() (bool, error) {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return false, fmt.Errorf("failed to create sequential node: %w", err)
	}

	children, _, err := l.conn.Children(l.path)
	if err != nil {
		_ = l.conn.Delete(nodePath, -1)
		return false, fmt.Errorf("failed to get children nodes: %w", err)
	}
	sort.Strings(children)

	myNodeName := strings.TrimPrefix(nodePath, l.path+"/")
	if myNodeName == children[0] {
		l.lockNode = nodePath
		return true, nil
	}

	// 不是最小节点说明别的实例正在 tick，放弃本轮
	if err := l.conn.Delete(nodePath, -1); err != nil && err != zk.ErrNoNode {
		return false, fmt.Errorf("failed to clean up lock node: %w", err)
	}
	return false, nil
}

// Unlock 释放锁。
func (l *TickLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}

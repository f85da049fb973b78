// orchestrator-service/internal/port/lock.go
package port

// TickLock 是跨实例的 tick 互斥。拿不到锁直接返回 false，
// 不排队，和进程内的重入保护语义一致。
type TickLock interface {
	TryLock() (bool, error)
	Unlock() error
}

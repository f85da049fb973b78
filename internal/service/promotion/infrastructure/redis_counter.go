// promotion-service/internal/infrastructure/redis_counter.go
package infrastructure

import (
	"context"
	"fmt"

	"agrimart/internal/pkg/redis"
)

const capIncrScriptName = "promo_cap_incr"

// capIncrScript 原子地完成 "检查上限 + 递增"。
// KEYS[1] 为计数器键，ARGV[1] 为上限（0 表示不限量）。
// 返回 {allowed, count}：allowed=0 时 count 为当前计数，未递增。
const capIncrScript = `
local cap = tonumber(ARGV[1])
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if cap > 0 and current >= cap then
    return {0, current}
end
current = redis.call('INCR', KEYS[1])
return {1, current}
`

// RedisUsageCounter 是 domain.UsageCounter 的 Redis 实现。
// 计数的权威值在 Redis，MySQL 中的列只是展示用镜像。
type RedisUsageCounter struct {
	redisClient *redis.Client
}

// NewRedisUsageCounter 创建适配器并预加载 Lua 脚本。
func NewRedisUsageCounter(redisClient *redis.Client) (*RedisUsageCounter, error) {
	if err := redisClient.LoadScriptFromContent(capIncrScriptName, capIncrScript); err != nil {
		return nil, fmt.Errorf("failed to load usage counter script: %w", err)
	}
	return &RedisUsageCounter{redisClient: redisClient}, nil
}

// Incr 实现 domain.UsageCounter。
func (c *RedisUsageCounter) Incr(ctx context.Context, promotionID string, cap int64) (bool, int64, error) {
	key := fmt.Sprintf("promo:usage:{%s}", promotionID)

	result, err := c.redisClient.RunScript(ctx, capIncrScriptName, []string{key}, cap)
	if err != nil {
		return false, 0, fmt.Errorf("usage counter script failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected result shape from usage counter script: %T", result)
	}
	allowed, ok1 := values[0].(int64)
	count, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected result types from usage counter script: %v", values)
	}
	return allowed == 1, count, nil
}

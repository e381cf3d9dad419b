package adapter

import (
	"context"
	"fmt"

	"promos/internal/pkg/redis"
)

const claimEntryScriptName = "claim_entry"

// EntryRedisAdapter 是 port.EntryGuard 接口的 Redis 实现。
// 用 Lua 脚本把"查成员 + 加成员"合成一个原子操作，
// 两个并发投稿里只有一个能占位成功。
type EntryRedisAdapter struct {
	redisClient *redis.Client
}

// NewEntryRedisAdapter 创建一个新的占位适配器实例。
// 它在创建时会加载所需的 Lua 脚本。
func NewEntryRedisAdapter(redisClient *redis.Client) (*EntryRedisAdapter, error) {
	if err := redisClient.LoadScriptFromContent(claimEntryScriptName, claimEntryScript); err != nil {
		return nil, fmt.Errorf("failed to load entry claim script: %w", err)
	}
	return &EntryRedisAdapter{redisClient: redisClient}, nil
}

// Claim 尝试为 (promo, participant) 占位。
func (a *EntryRedisAdapter) Claim(ctx context.Context, promoSlug, participantID string) (bool, error) {
	entrySetKey := fmt.Sprintf("promo:entries:{%s}", promoSlug)

	result, err := a.redisClient.RunScript(ctx, claimEntryScriptName, []string{entrySetKey}, participantID)
	if err != nil {
		return false, fmt.Errorf("entry guard failed to run script: %w", err)
	}

	code, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from Lua script: %T", result)
	}

	switch code {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unknown result code from claim script: %d", code)
	}
}

// Release 释放占位（仅在占位后落库失败时调用）。
func (a *EntryRedisAdapter) Release(ctx context.Context, promoSlug, participantID string) error {
	entrySetKey := fmt.Sprintf("promo:entries:{%s}", promoSlug)
	return a.redisClient.GetClient().SRem(ctx, entrySetKey, participantID).Err()
}

var claimEntryScript = `
-- KEYS[1]: 某活动的已报名参与者集合, 例如: promo:entries:{summer-photo}
-- ARGV[1]: 当前尝试报名的参与者 ID

-- 1. 检查参与者是否已经占位
if redis.call('sismember', KEYS[1], ARGV[1]) == 1 then
    return 0 -- 返回 0, 代表重复报名
end

-- 2. 占位成功
redis.call('sadd', KEYS[1], ARGV[1])
return 1
`

package port

import "context"

// EntryGuard 在插入答案之前对 (promo, participant) 做原子占位，
// 堵住"查重和插入之间"的并发窗口。存储层的唯一键是最终防线，
// EntryGuard 让绝大多数并发重复在到达数据库之前就被拦下。
type EntryGuard interface {
	// Claim 尝试占位。返回 false 表示该参与者已占位（并发或已参与）。
	Claim(ctx context.Context, promoSlug, participantID string) (bool, error)

	// Release 释放占位，仅在占位后落库失败时调用。
	Release(ctx context.Context, promoSlug, participantID string) error
}

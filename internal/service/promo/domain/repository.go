// promo-service/internal/domain/repository.go
package domain

import (
	"context"
	"time"
)

// PromoRepository 定义了活动聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type PromoRepository interface {
	// Save 保存一个活动（创建或更新），返回落库后的实体。
	Save(ctx context.Context, promo *Promo) error

	// FindBySlug 根据 slug 查找活动，不存在时返回 ErrPromoNotFound。
	FindBySlug(ctx context.Context, slug string) (*Promo, error)

	// FindOpened 返回 now 时刻开放中的已发布活动，按 Order 排序。
	FindOpened(ctx context.Context, now time.Time) ([]*Promo, error)

	// FindClosed 返回已开始且已截止的已发布活动。
	FindClosed(ctx context.Context, now time.Time) ([]*Promo, error)

	// FindByChannel 返回某频道下已发布且已开始的活动。
	FindByChannel(ctx context.Context, channelSlug string, now time.Time) ([]*Promo, error)

	// FindAll 返回全部活动（管理端用，不做可见性过滤）。
	FindAll(ctx context.Context) ([]*Promo, error)
}

// AnswerFilter 是管理端查询答案时的过滤条件，nil 字段表示不过滤。
type AnswerFilter struct {
	Published *bool
	IsWinner  *bool
}

// AnswerRepository 定义了答案记录的持久化接口。
type AnswerRepository interface {
	// Create 插入一条新答案。(PromoID, ParticipantID) 冲突时返回
	// ErrAlreadyEntered——唯一键是去重不变式的最终防线。
	Create(ctx context.Context, answer *Answer) error

	// HasEntered 判断该参与者是否已有记录（无论是否已发布）。
	HasEntered(ctx context.Context, promoID int64, participantID string) (bool, error)

	// FindPublished 返回某活动全部已发布的答案，倒序。
	FindPublished(ctx context.Context, promoID int64) ([]*Answer, error)

	// FindWinners 返回某活动已发布且被标记为获奖的答案。
	FindWinners(ctx context.Context, promoID int64) ([]*Answer, error)

	// FindByPromo 管理端查询，支持按发布/获奖状态过滤。
	FindByPromo(ctx context.Context, promoID int64, filter AnswerFilter) ([]*Answer, error)

	// FindByID 根据 ID 查找答案。
	FindByID(ctx context.Context, id int64) (*Answer, error)

	// SetPublished 管理员切换答案的发布状态。
	SetPublished(ctx context.Context, id int64, published bool) error

	// SetWinner 管理员标记/取消获奖。
	SetWinner(ctx context.Context, id int64, isWinner bool) error
}
